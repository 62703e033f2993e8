package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/store"
	"github.com/phrazzld/palace-api/internal/task"
)

// Profile is a user together with the number of palaces they own.
type Profile struct {
	*domain.User
	MemoryPalacesCount int `json:"memory_palaces_count"`
}

// ProfileUpdate carries the optional fields of a profile update. Nil fields
// are left unchanged.
type ProfileUpdate struct {
	Username *string
	Email    *string
}

// UserService provides user-related operations.
type UserService interface {
	// Register creates a user and queues their welcome email.
	Register(ctx context.Context, email, username, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUserByEmail retrieves a user by their email address
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetProfile returns the user with their palace count.
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// UpdateProfile changes username and/or email. Conflicts surface as
	// store.ErrEmailExists or store.ErrUsernameExists.
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)

	// UpdateUserPassword replaces the password of a user.
	UpdateUserPassword(ctx context.Context, userID uuid.UUID, newPassword string) error

	// DeleteUser deletes a user by their ID
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore   store.UserStore
	palaceStore store.PalaceStore
	tasks       task.Enqueuer
	db          *sql.DB
	logger      *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	palaceStore store.PalaceStore,
	tasks task.Enqueuer,
	db *sql.DB,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore:   userStore,
		palaceStore: palaceStore,
		tasks:       tasks,
		db:          db,
		logger:      logger.With("component", "user_service"),
	}
}

// Register creates a new user inside a transaction, then queues the welcome
// email. A failure to queue the email is logged and does not fail the
// registration.
func (s *UserServiceImpl) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, username, password)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("attempted to register an existing user", "user_id", user.ID)
		} else {
			s.logger.Error("failed to save user to database", "error", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	s.enqueue(ctx, task.SendWelcomeEmail, user.ID, user.Email, user.Username)
	return user, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to retrieve user", "error", err, "user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address
func (s *UserServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to retrieve user by email", "error", err)
		}
		return nil, fmt.Errorf("failed to retrieve user by email: %w", err)
	}
	return user, nil
}

// GetProfile returns the user with their palace count.
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.palaceStore.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count palaces", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to count palaces: %w", err)
	}

	return &Profile{User: user, MemoryPalacesCount: count}, nil
}

// UpdateProfile loads the user, applies the changed fields and saves the
// complete user back within one transaction.
func (s *UserServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	update ProfileUpdate,
) (*domain.User, error) {
	var updated *domain.User

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}

		changed := false
		if update.Email != nil && strings.TrimSpace(*update.Email) != user.Email {
			email := strings.TrimSpace(*update.Email)
			if err := domain.ValidateEmail(email); err != nil {
				return err
			}
			user.Email = email
			changed = true
		}
		if update.Username != nil && strings.TrimSpace(*update.Username) != user.Username {
			username := strings.TrimSpace(*update.Username)
			if err := domain.ValidateUsername(username); err != nil {
				return err
			}
			user.Username = username
			changed = true
		}

		if changed {
			if err := txStore.Update(ctx, user); err != nil {
				return fmt.Errorf("failed to update user profile: %w", err)
			}
		}

		updated = user
		return nil
	})
	if err != nil {
		if store.IsDuplicateError(err) || domain.IsValidationError(err) || store.IsNotFoundError(err) {
			s.logger.Debug("profile update rejected", "user_id", userID, "error", err)
		} else {
			s.logger.Error("failed to update profile", "user_id", userID, "error", err)
		}
		return nil, err
	}

	s.logger.Info("user profile updated", "user_id", userID)
	return updated, nil
}

// UpdateUserPassword updates a user's password. The store hashes it.
func (s *UserServiceImpl) UpdateUserPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for password update: %w", err)
		}

		user.Password = newPassword
		if err := txStore.Update(ctx, user); err != nil {
			s.logger.Error("failed to update user password", "error", err, "user_id", userID)
			return fmt.Errorf("failed to update user password: %w", err)
		}

		s.logger.Info("user password updated", "user_id", userID)
		return nil
	})
}

// DeleteUser deletes a user and, by cascade, their palaces.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.userStore.WithTx(tx).Delete(ctx, userID); err != nil {
			if !errors.Is(err, store.ErrUserNotFound) {
				s.logger.Error("failed to delete user", "error", err, "user_id", userID)
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}

		s.logger.Info("user deleted", "user_id", userID)
		return nil
	})
}

// enqueue submits a notification job. Notifications are best effort.
func (s *UserServiceImpl) enqueue(ctx context.Context, name task.Name, args ...any) {
	if s.tasks == nil {
		return
	}
	jobID, err := s.tasks.Enqueue(ctx, name, args...)
	if err != nil {
		s.logger.Error("failed to enqueue job", "task", name, "error", err)
		return
	}
	s.logger.Debug("job enqueued", "task", name, "job_id", jobID)
}
