package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/palace-api/internal/api"
	apiMiddleware "github.com/phrazzld/palace-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.passwordVerifier, app.config.Auth)
	userHandler := api.NewUserHandler(app.userService, app.palaceService)
	palaceHandler := api.NewPalaceHandler(app.palaceService)
	taskHandler := api.NewTaskHandler(app.taskClient)
	healthHandler := api.NewHealthHandler(app.db, app.taskClient)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/verify", authHandler.Verify)

			r.Get("/users/profile", userHandler.GetProfile)
			r.Put("/users/profile", userHandler.UpdateProfile)
			r.Get("/users/memory-palaces", userHandler.ListPalaces)
			r.Post("/users/memory-palaces", userHandler.CreatePalace)

			r.Get("/palaces/{id}", palaceHandler.GetPalace)
			r.Put("/palaces/{id}", palaceHandler.UpdatePalace)
			r.Delete("/palaces/{id}", palaceHandler.DeletePalace)
			r.Get("/palaces/{id}/rooms", palaceHandler.ListRooms)
			r.Post("/palaces/{id}/rooms", palaceHandler.CreateRoom)
			r.Post("/palaces/{id}/suggestions", palaceHandler.RequestSuggestions)
			r.Post("/palaces/{id}/optimize", palaceHandler.OptimizeLayout)

			r.Get("/rooms/{id}/items", palaceHandler.ListItems)
			r.Post("/rooms/{id}/items", palaceHandler.CreateItem)

			r.Get("/tasks/{id}", taskHandler.GetJob)
		})
	})

	return r
}
