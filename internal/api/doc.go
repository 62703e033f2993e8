// Package api handles incoming HTTP requests, request validation and
// response formatting. Handlers translate HTTP concerns into calls on the
// user and palace services and the task client, and map their errors to
// status codes in errors.go.
package api
