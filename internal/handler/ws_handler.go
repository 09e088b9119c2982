/*
Package handler provides the HTTP handler function for WebSocket connection
upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate
limiting, authenticating the access token before the upgrade, upgrading the
HTTP connection to WebSocket, and initiating the client lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"pingchat/internal/app/hub"
	"pingchat/internal/pkg/errs"
	"pingchat/internal/pkg/limiter"
	"pingchat/internal/pkg/logx"
	"pingchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection
// requests. Authentication runs before the upgrade: a request without a valid
// access token is answered with a plain 401 and never produces a connection.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		ident, customErr := deps.Session.AuthenticateConnectionRequest(r)
		if customErr != nil {
			logx.Warn("WebSocket connection rejected: Authentication failed.", "ip", ip)
			resp.RespondError(w, r, customErr)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := hub.NewClient(deps.Hub, conn, ident)

		go client.WritePump()

		deps.Hub.Admit(client)

		logx.Info("WebSocket connection established",
			"user_id", ident.ID,
			"handle", client.Handle(),
		)

		client.ReadPump()
	}
}
