package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pingchat/internal/app/hub"
	"pingchat/internal/app/session"
	"pingchat/internal/app/user"
	"pingchat/internal/configs"
	"pingchat/internal/pkg/auth/jwt"
	"pingchat/internal/pkg/errs"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:    "development",
		Port:           8080,
		AllowedOrigins: []string{},
		JWTSecret:      "handler-test-secret",
		JWTIssuer:      "PingChat-Server",
		JWTAudience:    "PingChat-Client",
	}

	sessionService := session.NewService(
		user.NewMemoryStore(),
		session.NewBcryptHasher(bcrypt.MinCost),
		jwt.Options{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience},
	)

	srv := httptest.NewServer(Router(&AppDeps{
		Hub:     hub.NewHub(),
		Session: sessionService,
		Config:  cfg,
	}))
	t.Cleanup(srv.Close)

	return srv
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func postJSON(t *testing.T, url string, body any) (*http.Response, apiResponse) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	res, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })

	var envelope apiResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&envelope))

	return res, envelope
}

func TestRegisterLoginRefreshFlow(t *testing.T) {
	srv := newTestServer(t)

	res, envelope := postJSON(t, srv.URL+"/api/auth/register", map[string]string{
		"username": "alice_01",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 0, envelope.Code)

	res, envelope = postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "alice_01",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var login struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &login))
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, "alice_01", login.User.Username)

	res, envelope = postJSON(t, srv.URL+"/api/auth/refresh-token", map[string]string{
		"userId":       login.User.ID,
		"refreshToken": login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var refreshed struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &refreshed))
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The rotated-out token is rejected with 401.
	res, envelope = postJSON(t, srv.URL+"/api/auth/refresh-token", map[string]string{
		"userId":       login.User.ID,
		"refreshToken": login.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, errs.ErrInvalidRefreshToken, envelope.Code)
	assert.Equal(t, "Invalid refresh token.", envelope.Message)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	input := map[string]string{"username": "alice_01", "password": "password123"}

	res, _ := postJSON(t, srv.URL+"/api/auth/register", input)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, envelope := postJSON(t, srv.URL+"/api/auth/register", input)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, errs.ErrUsernameTaken, envelope.Code)
	assert.Equal(t, "Username is already taken.", envelope.Message)
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newTestServer(t)

	res, envelope := postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "no_such_user",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, errs.ErrInvalidCredentials, envelope.Code)
	assert.Equal(t, "Invalid username or password.", envelope.Message)
}

func TestRegisterRejectsUnknownFields(t *testing.T) {
	srv := newTestServer(t)

	res, envelope := postJSON(t, srv.URL+"/api/auth/register", map[string]string{
		"username": "alice_01",
		"password": "password123",
		"admin":    "true",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, errs.ErrInvalidJSONFormat, envelope.Code)
}

func TestFileEndpointsRequireIdentity(t *testing.T) {
	srv := newTestServer(t)

	res, envelope := postJSON(t, srv.URL+"/api/file/presign-upload", map[string]any{
		"fileName": "cat.png",
		"mimeType": "image/png",
		"fileSize": 1024,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, errs.ErrUnauthorized, envelope.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var envelope apiResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&envelope))
	assert.Equal(t, 0, envelope.Code)
}
