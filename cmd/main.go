/*
Package main is the entry point for the PingChat server.

It is responsible for loading configuration, initializing the global logging
system, selecting the user store (PostgreSQL or the in-memory development
store), wiring the session service and the connection hub into the HTTP
server, and gracefully handling operating system interrupt signals (SIGINT,
SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pingchat/internal/app/db"
	"pingchat/internal/app/hub"
	"pingchat/internal/app/session"
	"pingchat/internal/app/storage"
	"pingchat/internal/app/user"
	"pingchat/internal/configs"
	"pingchat/internal/handler"
	"pingchat/internal/pkg/auth/jwt"
	"pingchat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("storage_configured", cfg.StorageConfigured()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Select the user store. An empty DATABASE_URL is only allowed in
	// development, where the in-memory store keeps local runs dependency-free.
	var store user.Store
	var pool interface{ Close() }

	if cfg.DatabaseDSN != "" {
		pgPool, err := db.NewPool(cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to connect to database")
		}
		store = user.NewPostgresStore(pgPool)
		pool = pgPool
		logx.Info("Using PostgreSQL user store")
	} else {
		store = user.NewMemoryStore()
		logx.Warn("DATABASE_URL not set. Using in-memory user store; accounts do not survive restarts.")
	}

	// Session service (registration, login, token lifecycle).
	sessionService := session.NewService(store, session.NewBcryptHasher(0), jwt.Options{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})

	// Optional attachment storage.
	var storageService storage.StorageService
	if cfg.StorageConfigured() {
		storageService, err = storage.NewStorageService(storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize storage service")
		}
		logx.Info("Attachment storage enabled", "bucket", cfg.S3BucketName)
	} else {
		logx.Warn("S3 storage not configured. Attachment endpoints are disabled.")
	}

	// Connection hub.
	chatHub := hub.NewHub()

	// Setup HTTP server and routes
	router := handler.Router(&handler.AppDeps{
		Hub:            chatHub,
		Session:        sessionService,
		Config:         cfg,
		StorageService: storageService,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("PingChat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	chatHub.Shutdown()

	if pool != nil {
		pool.Close()
	}

	logx.Info("Server gracefully stopped.")
}
