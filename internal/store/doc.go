// Package store defines the persistence interfaces for users, palaces, rooms
// and items, together with the errors implementations return and a helper
// for running several store calls in one transaction.
package store
