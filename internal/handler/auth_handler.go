package handler

import (
	"net/http"

	"pingchat/internal/pkg/req"
	"pingchat/internal/pkg/resp"
)

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister processes the request to create a new user account with only
// username and password.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ident, customErr := deps.Session.Register(r.Context(), input.Username, input.Password)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": map[string]any{
				"id":       ident.ID,
				"username": input.Username,
				"role":     ident.Role,
			},
		})
	}
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies user credentials and issues an access/refresh token pair.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, customErr := deps.Session.Login(r.Context(), input.Username, input.Password)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"accessToken":  result.AccessToken,
			"refreshToken": result.RefreshToken,
			"user": map[string]any{
				"id":       result.ID,
				"username": result.Username,
				"role":     result.Role,
			},
		})
	}
}

type RefreshTokenInput struct {
	UserID       string `json:"userId"`
	RefreshToken string `json:"refreshToken"`
}

// HandleRefreshToken exchanges a valid refresh token for a fresh token pair.
// The stored refresh token rotates on every successful exchange, so the one
// that was presented is dead afterwards.
func HandleRefreshToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RefreshTokenInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		pair, customErr := deps.Session.Refresh(r.Context(), input.UserID, input.RefreshToken)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		})
	}
}
