package main

import (
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/ledgerline/backoffice/internal/auth"
	"github.com/ledgerline/backoffice/internal/billing"
	"github.com/ledgerline/backoffice/internal/config"
	"github.com/ledgerline/backoffice/internal/files"
	"github.com/ledgerline/backoffice/internal/server"
	"github.com/ledgerline/backoffice/internal/session"
	"github.com/ledgerline/backoffice/internal/storage/sqlite"
	"github.com/ledgerline/backoffice/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	fileStore, err := files.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		slog.Error("Failed to initialize file store", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	revoker := session.NewRevocationStore(redisClient)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	engine := billing.NewEngine(store, fileStore)

	srv := server.New(cfg, store, engine, authenticator, jwtManager, revoker)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
