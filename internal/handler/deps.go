package handler

import (
	"pingchat/internal/app/hub"
	"pingchat/internal/app/session"
	"pingchat/internal/app/storage"
	"pingchat/internal/configs"
)

// AppDeps bundles the shared dependencies the HTTP handlers need.
// StorageService is nil when no attachment backend is configured.
type AppDeps struct {
	Hub            *hub.Hub
	Session        *session.Service
	Config         *configs.AppConfig
	StorageService storage.StorageService
}
