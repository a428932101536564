// Package main is the entry point for the Inkpress server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkpress/internal/cache"
	"inkpress/internal/captcha"
	"inkpress/internal/config"
	"inkpress/internal/database"
	"inkpress/internal/handlers"
	"inkpress/internal/render"
	"inkpress/internal/router"
	"inkpress/internal/session"
	"inkpress/internal/storage"
	"inkpress/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, session cookies are HTTPS-only.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	renderer, err := render.New(sessionStore, cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	userStore := store.NewUserStore(db)
	profileStore := store.NewProfileStore(db)
	categoryStore := store.NewCategoryStore(db)
	postStore := store.NewPostStore(db)
	commentStore := store.NewCommentStore(db)
	messageStore := store.NewMessageStore(db)

	// S3-compatible object storage is optional; without it, avatar and
	// post image uploads are disabled.
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize s3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured - image uploads disabled")
	}

	sidebarCache := cache.NewSidebarCache(valkeyClient, cache.DefaultSidebarTTL)
	captchaProvider := captcha.NewProvider(valkeyClient)

	blogHandlers := handlers.NewBlog(renderer, sessionStore, postStore, categoryStore, commentStore, sidebarCache, storageClient)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore, captchaProvider)
	profileHandlers := handlers.NewProfile(renderer, sessionStore, userStore, profileStore, storageClient)
	chatHandlers := handlers.NewChat(renderer, userStore, messageStore)
	adminHandlers := handlers.NewAdmin(renderer, sessionStore, postStore, categoryStore, userStore, sidebarCache, storageClient)
	adminAuthHandlers := handlers.NewAdminAuth(renderer, sessionStore, userStore)

	r := router.New(router.Deps{
		Sessions:  sessionStore,
		Blog:      blogHandlers,
		Auth:      authHandlers,
		Profile:   profileHandlers,
		Chat:      chatHandlers,
		Admin:     adminHandlers,
		AdminAuth: adminAuthHandlers,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
