/*
Package randx provides cryptographically secure random identifiers and secrets.

It generates refresh tokens, connection handles, and attachment keys used
across the session and hub layers.
*/
package randx

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// RefreshTokenBytes is the entropy, in bytes, of a generated refresh token.
const RefreshTokenBytes = 32

// RefreshToken generates a refresh token from RefreshTokenBytes of
// cryptographically secure randomness, encoded as standard base64.
func RefreshToken() (string, error) {
	raw := make([]byte, RefreshTokenBytes)

	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate refresh token randomness: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// ConnectionHandle generates an opaque identifier for one live transport session.
func ConnectionHandle() string {
	return uuid.New().String()
}

// NewID generates a UUID v4 string, used for user ids.
func NewID() string {
	return uuid.New().String()
}

// IsValidID reports whether the given string is a well-formed UUID.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
