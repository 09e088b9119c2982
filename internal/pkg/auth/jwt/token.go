/*
Package jwt wraps access token generation and validation.

Tokens are HMAC-signed and bound to a configured issuer and audience; parsing
rejects signature, issuer, audience, and expiry mismatches.
*/
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// AccessTokenExpiration defines the lifetime of an issued access token.
const AccessTokenExpiration = 24 * time.Hour

// Options binds token generation and validation to a signing secret,
// issuer, and audience.
type Options struct {
	Secret   string
	Issuer   string
	Audience string
}

// GenerateToken creates and signs a JWT for the given payload. The standard
// claims (expiry, issued-at, issuer, audience) are filled in here so callers
// only provide the identity claims.
func GenerateToken(payload *Payload, opts Options, duration time.Duration) (string, error) {
	now := time.Now()

	payload.StandardClaims = jwt.StandardClaims{
		ExpiresAt: now.Add(duration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    opts.Issuer,
		Audience:  opts.Audience,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(opts.Secret))
}

// ParseToken parses and validates a JWT string. Beyond signature and expiry,
// the issuer and audience must match the configured values.
func ParseToken(tokenString string, opts Options) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(opts.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	if !claims.VerifyIssuer(opts.Issuer, true) {
		return nil, errors.New("token issuer mismatch")
	}

	if !claims.VerifyAudience(opts.Audience, true) {
		return nil, errors.New("token audience mismatch")
	}

	return claims, nil
}
