package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/friendfinder/internal/api"
	"github.com/mcoot/friendfinder/internal/config"
	"github.com/mcoot/friendfinder/internal/factory"
	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/services/friends"
	"github.com/mcoot/friendfinder/internal/services/positions"
	"github.com/mcoot/friendfinder/internal/storage"
	redisstorage "github.com/mcoot/friendfinder/internal/storage/redis"
)

func main() {
	// Load configuration from .env and the environment
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Build factory config
	factoryCfg := factory.Config{
		Logger:        logger,
		StorageType:   cfg.StorageType,
		DatabaseURL:   cfg.DatabaseURL,
		FriendsConfig: friends.Config{BcryptCost: cfg.BcryptCost},
		TokenSecret:   []byte(cfg.TokenSecret),
		TokenTTL:      cfg.TokenTTL,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == storage.TypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	if cfg.GameAreaFile != "" {
		area, err := positions.LoadGameArea(cfg.GameAreaFile)
		if err != nil {
			logger.Error("failed to load game area", slog.String("path", cfg.GameAreaFile), slog.String("error", err.Error()))
			os.Exit(1)
		}
		factoryCfg.GameArea = &area
	}

	if cfg.AdminEmail != "" {
		factoryCfg.Admin = &model.FriendInput{
			FirstName: "Admin",
			LastName:  "Account",
			Email:     cfg.AdminEmail,
			Password:  cfg.AdminPassword,
		}
	}

	// Create application factory
	app, err := factory.New(context.Background(), factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(app.Router(), serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageType),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
