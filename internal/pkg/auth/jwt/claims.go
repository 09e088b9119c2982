package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims carried by an access token.
// It combines the standard claims required for validity checks (expiry,
// issuer, audience) with the custom claims identifying the authenticated user.
type Payload struct {
	jwt.StandardClaims

	// ID is the unique identifier of the user the token was issued to.
	ID string `json:"id"`

	// Name is the user's display name as shown to other chat participants.
	Name string `json:"name"`

	// Role is the user's role (e.g. "User" or "Admin"), used for authorization.
	Role string `json:"role"`
}
