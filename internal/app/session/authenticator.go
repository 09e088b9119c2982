package session

import (
	"context"
	"net/http"
	"strings"

	"pingchat/internal/app/user"
	"pingchat/internal/pkg/errs"
	"pingchat/internal/pkg/randx"
	"pingchat/internal/pkg/resp"
)

type contextKey string

// identityContextKey stores the authenticated Identity in the request context.
const identityContextKey contextKey = "session_identity"

// ExtractAccessToken pulls the raw access token from a request. The bearer
// Authorization header is preferred; the message-transport path may instead
// carry the token in the access_token query parameter.
func ExtractAccessToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	return r.URL.Query().Get("access_token")
}

// AuthenticateConnectionRequest authenticates a connection upgrade request.
// It runs once, synchronously, before any connection state is created: a
// rejection here means the registry never observes the handle.
//
// Beyond token validity, the decoded identity must carry a well-formed unique
// id and a non-empty display name.
func (s *Service) AuthenticateConnectionRequest(r *http.Request) (user.Identity, *errs.CustomError) {
	raw := ExtractAccessToken(r)
	if raw == "" {
		return user.Identity{}, errs.NewError(errs.ErrConnectionRejected)
	}

	ident, cerr := s.ValidateAccessToken(raw)
	if cerr != nil {
		return user.Identity{}, errs.NewError(errs.ErrConnectionRejected)
	}

	if !randx.IsValidID(ident.ID) || strings.TrimSpace(ident.DisplayName) == "" {
		s.logger.Warn().Str("user_id", ident.ID).Msg("Connection rejected: malformed identity claims")
		return user.Identity{}, errs.NewError(errs.ErrConnectionRejected)
	}

	return ident, nil
}

// RequireIdentity is an HTTP middleware that validates the access token and
// injects the Identity into the request context, answering 401 when absent or
// invalid.
func (s *Service) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ExtractAccessToken(r)
		if raw == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		ident, cerr := s.ValidateAccessToken(raw)
		if cerr != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext extracts the authenticated Identity injected by
// RequireIdentity. The second return value is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (user.Identity, bool) {
	ident, ok := ctx.Value(identityContextKey).(user.Identity)
	return ident, ok
}
