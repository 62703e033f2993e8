// Package postgres implements the store interfaces for users, memory
// palaces, rooms and items on PostgreSQL through database/sql and pgx, maps
// PostgreSQL errors onto the store sentinels, and embeds the goose schema
// migrations applied by Migrate.
package postgres
