package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingchat/internal/pkg/auth/jwt"
	"pingchat/internal/pkg/errs"
	"pingchat/internal/pkg/randx"
)

func issueTestToken(t *testing.T, payload *jwt.Payload) string {
	t.Helper()
	token, err := jwt.GenerateToken(payload, testTokenOpts, time.Hour)
	require.NoError(t, err)
	return token
}

func TestExtractAccessToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.Empty(t, ExtractAccessToken(r))

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", ExtractAccessToken(r))

	r = httptest.NewRequest(http.MethodGet, "/ws?access_token=xyz789", nil)
	assert.Equal(t, "xyz789", ExtractAccessToken(r))

	// The header wins over the query parameter.
	r = httptest.NewRequest(http.MethodGet, "/ws?access_token=query", nil)
	r.Header.Set("Authorization", "Bearer header")
	assert.Equal(t, "header", ExtractAccessToken(r))

	// Malformed scheme falls through to the query parameter.
	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, ExtractAccessToken(r))
}

func TestAuthenticateConnectionRequest(t *testing.T) {
	svc := newTestService()
	userID := randx.NewID()
	valid := issueTestToken(t, &jwt.Payload{ID: userID, Name: "alice", Role: "User"})

	r := httptest.NewRequest(http.MethodGet, "/ws?access_token="+valid, nil)
	ident, cerr := svc.AuthenticateConnectionRequest(r)
	require.Nil(t, cerr)
	assert.Equal(t, userID, ident.ID)
	assert.Equal(t, "alice", ident.DisplayName)
}

func TestAuthenticateConnectionRequestRejections(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not.a.jwt"},
		{"malformed user id", issueTestToken(t, &jwt.Payload{ID: "not-a-uuid", Name: "alice"})},
		{"blank display name", issueTestToken(t, &jwt.Payload{ID: randx.NewID(), Name: "   "})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			url := "/ws"
			if tc.token != "" {
				url += "?access_token=" + tc.token
			}

			_, cerr := svc.AuthenticateConnectionRequest(httptest.NewRequest(http.MethodGet, url, nil))
			require.NotNil(t, cerr)
			assert.Equal(t, errs.ErrConnectionRejected, cerr.Code)
			assert.Equal(t, http.StatusUnauthorized, cerr.Status)
		})
	}
}

func TestRequireIdentityMiddleware(t *testing.T) {
	svc := newTestService()
	userID := randx.NewID()
	valid := issueTestToken(t, &jwt.Payload{ID: userID, Name: "alice", Role: "User"})

	var seen context.Context
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context()
		w.WriteHeader(http.StatusOK)
	})

	// Authenticated request passes through with the identity in context.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/file/presign-upload", nil)
	r.Header.Set("Authorization", "Bearer "+valid)
	svc.RequireIdentity(next).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	ident, ok := IdentityFromContext(seen)
	require.True(t, ok)
	assert.Equal(t, userID, ident.ID)

	// Anonymous request is answered with 401 without reaching the handler.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/file/presign-upload", nil)
	svc.RequireIdentity(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentityFromContextWithoutMiddleware(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)
}
