// Package domain contains the core business entities of the memory palace
// application: users, the palaces they build, the rooms inside a palace and
// the items placed in each room. Entities validate themselves and are
// independent of storage and transport.
package domain
