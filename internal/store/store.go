// Package store persists bridge accounts: the users allowed to attach a
// websocket client to the bridge. Room state and message history are
// never persisted; both live and die with the XMPP session.
package store

import (
	"context"
	"time"
)

// User is an account that may open a bridge session.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	DefaultNick  string
	CreatedAt    time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new account with a hashed password.
	CreateUser(ctx context.Context, username, passwordHash, defaultNick string) (*User, error)

	// GetUserByID retrieves an account by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves an account by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// Store aggregates persistence concerns plus lifecycle.
type Store interface {
	UserStore

	// Close releases underlying resources.
	Close() error
}
