/*
Package session implements the token-based session lifecycle: registration,
login, access token issuance and validation, and refresh token rotation.

Access tokens are stateless HMAC JWTs bound to the configured issuer and
audience. Refresh tokens are high-entropy opaque secrets stored server-side on
the user record; one token is active per user at a time and every refresh
rotates it.
*/
package session

import (
	"context"
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"pingchat/internal/app/user"
	"pingchat/internal/pkg/auth/jwt"
	"pingchat/internal/pkg/errs"
	"pingchat/internal/pkg/logx"
	"pingchat/internal/pkg/randx"
)

// RefreshTokenExpiration defines the lifetime of an issued refresh token.
const RefreshTokenExpiration = 7 * 24 * time.Hour

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{4,20}$`)

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is the payload returned by a successful login.
type LoginResult struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service implements the session lifecycle on top of the user store and the
// password hasher.
type Service struct {
	store     user.Store
	hasher    Hasher
	tokenOpts jwt.Options
	logger    zerolog.Logger

	// now is the clock used for refresh expiry checks, replaceable in tests.
	now func() time.Time
}

// NewService constructs a session Service.
func NewService(store user.Store, hasher Hasher, tokenOpts jwt.Options) *Service {
	return &Service{
		store:     store,
		hasher:    hasher,
		tokenOpts: tokenOpts,
		logger:    logx.Logger().With().Str("component", "session").Logger(),
		now:       time.Now,
	}
}

// IssueAccessToken encodes the identity into a signed access token. Stateless;
// nothing is stored server-side.
func (s *Service) IssueAccessToken(ident user.Identity) (string, error) {
	payload := &jwt.Payload{
		ID:   ident.ID,
		Name: ident.DisplayName,
		Role: ident.Role,
	}

	return jwt.GenerateToken(payload, s.tokenOpts, jwt.AccessTokenExpiration)
}

// ValidateAccessToken verifies signature, issuer, audience, and expiry, and
// extracts the Identity from the claims.
func (s *Service) ValidateAccessToken(token string) (user.Identity, *errs.CustomError) {
	payload, err := jwt.ParseToken(token, s.tokenOpts)
	if err != nil {
		return user.Identity{}, errs.NewError(errs.ErrConnectionRejected)
	}

	return user.Identity{
		ID:          payload.ID,
		DisplayName: payload.Name,
		Role:        payload.Role,
	}, nil
}

// IssueRefreshToken generates a fresh refresh token and persists it on the
// user record, overwriting any prior token for that user.
func (s *Service) IssueRefreshToken(ctx context.Context, ident user.Identity) (string, error) {
	token, err := randx.RefreshToken()
	if err != nil {
		return "", err
	}

	expiry := s.now().Add(RefreshTokenExpiration)
	if err := s.store.SaveRefreshToken(ctx, ident.ID, token, expiry); err != nil {
		return "", err
	}

	return token, nil
}

// ValidateRefreshToken checks the supplied token against the stored value and
// expiry for the given user. It does not rotate the token.
func (s *Service) ValidateRefreshToken(ctx context.Context, userID, token string) (user.Identity, *errs.CustomError) {
	rec, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Identity{}, errs.NewError(errs.ErrInvalidRefreshToken)
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Refresh token lookup failed")
		return user.Identity{}, errs.NewError(errs.ErrUnknown)
	}

	if token == "" || rec.RefreshToken != token || !s.now().Before(rec.RefreshTokenExpiry) {
		return user.Identity{}, errs.NewError(errs.ErrInvalidRefreshToken)
	}

	return rec.Identity(), nil
}

// Refresh validates the supplied refresh token and issues a fresh token pair.
// The stored refresh token is rotated with a compare-and-swap on the old
// value, so two concurrent refreshes with the same token cannot both succeed.
func (s *Service) Refresh(ctx context.Context, userID, token string) (*TokenPair, *errs.CustomError) {
	ident, cerr := s.ValidateRefreshToken(ctx, userID, token)
	if cerr != nil {
		return nil, cerr
	}

	next, err := randx.RefreshToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("Refresh token generation failed")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	expiry := s.now().Add(RefreshTokenExpiration)
	if err := s.store.RotateRefreshToken(ctx, userID, token, next, expiry); err != nil {
		if errors.Is(err, user.ErrRefreshTokenMismatch) || errors.Is(err, user.ErrNotFound) {
			return nil, errs.NewError(errs.ErrInvalidRefreshToken)
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Refresh token rotation failed")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	access, err := s.IssueAccessToken(ident)
	if err != nil {
		s.logger.Error().Err(err).Msg("Access token generation failed during refresh")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	return &TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// Register creates a new user account. A duplicate username fails with the
// username-taken error and no state change.
func (s *Service) Register(ctx context.Context, username, password string) (user.Identity, *errs.CustomError) {
	if !usernameRegex.MatchString(username) {
		return user.Identity{}, errs.NewError(errs.ErrInvalidUsername)
	}

	passwordLen := utf8.RuneCountInString(password)
	if passwordLen < 6 || passwordLen > 50 {
		return user.Identity{}, errs.NewError(errs.ErrInvalidPassword)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Password hashing failed")
		return user.Identity{}, errs.NewError(errs.ErrUnknown)
	}

	rec := &user.Record{
		ID:           randx.NewID(),
		Username:     username,
		PasswordHash: hashed,
		Role:         user.DefaultRole,
	}

	if err := s.store.Save(ctx, rec); err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			s.logger.Warn().Str("username", username).Msg("Registration conflict: username already taken")
			return user.Identity{}, errs.NewError(errs.ErrUsernameTaken)
		}
		s.logger.Error().Err(err).Msg("Failed to persist new user")
		return user.Identity{}, errs.NewError(errs.ErrUnknown)
	}

	return rec.Identity(), nil
}

// Login verifies the credentials and issues an access/refresh token pair.
// Unknown usernames and wrong passwords produce the same error, so login does
// not leak whether an account exists.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, *errs.CustomError) {
	rec, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, errs.NewError(errs.ErrInvalidCredentials)
		}
		s.logger.Error().Err(err).Msg("User lookup failed during login")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	if !s.hasher.Verify(rec.PasswordHash, password) {
		s.logger.Warn().Str("username", username).Msg("Login failed: password mismatch")
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}

	ident := rec.Identity()

	access, err := s.IssueAccessToken(ident)
	if err != nil {
		s.logger.Error().Err(err).Msg("Access token generation failed during login")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	refresh, err := s.IssueRefreshToken(ctx, ident)
	if err != nil {
		s.logger.Error().Err(err).Msg("Refresh token issuance failed during login")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	return &LoginResult{
		ID:           ident.ID,
		Username:     rec.Username,
		Role:         ident.Role,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
