/*
Package user defines the authenticated principal and the user-store contract.

The Identity struct travels through tokens and hub messages; the Record struct
is the persisted shape, including the server-side refresh token state.
*/
package user

import (
	"context"
	"errors"
	"time"
)

// Default role assigned to newly registered users.
const DefaultRole = "User"

// Identity is the authenticated user principal derived from a validated token.
// It is immutable for the lifetime of a session.
type Identity struct {
	// ID is the opaque unique identifier of the user.
	ID string `json:"id"`

	// DisplayName is the name shown to other chat participants.
	DisplayName string `json:"displayName"`

	// Role is the user's role, sourced from the token claims.
	Role string `json:"role"`
}

// Record is the persisted user row, including credentials and the refresh
// token slot. One active refresh token exists per user; issuing a new one
// overwrites the previous value.
type Record struct {
	ID                 string
	Username           string
	PasswordHash       string
	Role               string
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Identity derives the session principal from a persisted record.
func (r *Record) Identity() Identity {
	return Identity{
		ID:          r.ID,
		DisplayName: r.Username,
		Role:        r.Role,
	}
}

var (
	// ErrNotFound indicates that no user matches the given id or username.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateUsername indicates an insert with an already registered username.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrRefreshTokenMismatch indicates that a conditional refresh token update
	// lost against a concurrent rotation or a stale token value.
	ErrRefreshTokenMismatch = errors.New("stored refresh token does not match")
)

// Store is the user persistence contract. Implementations must be safe for
// concurrent use.
type Store interface {
	// FindByUsername returns the record for the given username or ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*Record, error)

	// FindByID returns the record for the given user id or ErrNotFound.
	FindByID(ctx context.Context, id string) (*Record, error)

	// Save inserts a new user record. A duplicate username yields
	// ErrDuplicateUsername and no state change.
	Save(ctx context.Context, rec *Record) error

	// Exists reports whether a username is already registered.
	Exists(ctx context.Context, username string) (bool, error)

	// SaveRefreshToken unconditionally stores a refresh token and its expiry
	// for the given user, overwriting any prior token.
	SaveRefreshToken(ctx context.Context, id, token string, expiry time.Time) error

	// RotateRefreshToken replaces the stored refresh token only if the current
	// stored value equals the supplied one (compare-and-swap). A lost race or
	// stale value yields ErrRefreshTokenMismatch.
	RotateRefreshToken(ctx context.Context, id, current, next string, expiry time.Time) error
}
