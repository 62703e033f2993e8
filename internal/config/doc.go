// Package config loads the server, database, auth and task settings from
// PALACE_* environment variables and an optional config.yaml, applies
// defaults and validates the result.
package config
