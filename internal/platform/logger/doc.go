// Package logger sets up the process-wide slog JSON logger and carries
// request and job scoped loggers in a context.Context, so stores and
// services log with the trace, user or job attributes of their caller.
package logger
