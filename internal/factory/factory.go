package factory

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/mcoot/friendfinder/internal/api"
	"github.com/mcoot/friendfinder/internal/api/handler"
	"github.com/mcoot/friendfinder/internal/dependencies/clock"
	"github.com/mcoot/friendfinder/internal/dependencies/ids"
	"github.com/mcoot/friendfinder/internal/graph"
	"github.com/mcoot/friendfinder/internal/middleware"
	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/services/access"
	"github.com/mcoot/friendfinder/internal/services/friends"
	"github.com/mcoot/friendfinder/internal/services/positions"
	"github.com/mcoot/friendfinder/internal/storage"
	"github.com/mcoot/friendfinder/internal/storage/memory"
	"github.com/mcoot/friendfinder/internal/storage/postgres"
	redisstorage "github.com/mcoot/friendfinder/internal/storage/redis"
)

// DefaultTokenTTL is used when Config.TokenTTL is zero
const DefaultTokenTTL = 24 * time.Hour

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Services
	Friends       *friends.Service
	Positions     *positions.Service
	Tokens        *access.Tokens
	Authenticator *access.Authenticator

	// Transport
	Schema  graphql.Schema
	Metrics *middleware.Metrics

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL is the PostgreSQL connection string (required if StorageType is "postgres")
	DatabaseURL string
	// FriendsConfig holds configuration for the friends service (optional)
	FriendsConfig friends.Config
	// TokenSecret signs login tokens. If empty, a random secret is generated.
	TokenSecret []byte
	// TokenTTL is the lifetime of login tokens (optional)
	TokenTTL time.Duration
	// GameArea bounds play. If nil, positions.DefaultGameArea is used.
	GameArea *model.Polygon
	// Admin, if set, is created as an admin account at startup unless the email exists
	Admin *model.FriendInput
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = storage.TypeMemory
	}

	switch storageType {
	case storage.TypeMemory:
		store = memory.New()
	case storage.TypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case storage.TypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		pgStore, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	if len(cfg.TokenSecret) == 0 {
		logger.Warn("no token secret configured; generated a random one, tokens will not survive a restart")
		cfg.TokenSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.TokenSecret); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
	}

	app, err := newWithDependencies(store, clock.New(), ids.New(), cfg, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.StorageType = storageType

	if cfg.Admin != nil {
		if err := app.Friends.EnsureAdmin(ctx, *cfg.Admin); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, idGen ids.Generator, cfg Config, logger *slog.Logger) (*App, error) {
	gameArea := positions.DefaultGameArea()
	if cfg.GameArea != nil {
		gameArea = *cfg.GameArea
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	// Create services
	friendService := friends.New(store, clk, idGen, logger, cfg.FriendsConfig)
	positionService := positions.New(store, clk, logger, gameArea)
	tokens := access.NewTokens(cfg.TokenSecret, ttl, clk)
	authenticator := access.NewAuthenticator(friendService, tokens)

	app := &App{
		Storage:       store,
		StorageType:   storage.TypeMemory,
		Clock:         clk,
		IDs:           idGen,
		Friends:       friendService,
		Positions:     positionService,
		Tokens:        tokens,
		Authenticator: authenticator,
		Metrics:       middleware.NewMetrics("friendfinder"),
		logger:        logger,
	}

	schema, err := graph.NewSchema(friendService, positionService, logger)
	if err != nil {
		return app, fmt.Errorf("build graphql schema: %w", err)
	}
	app.Schema = schema

	return app, nil
}

// Router builds the HTTP handler serving the REST API, GraphQL and metrics
func (a *App) Router() http.Handler {
	pinger, _ := a.Storage.(handler.Pinger)
	return api.NewRouter(api.RouterConfig{
		Logger:        a.logger,
		Friends:       a.Friends,
		Positions:     a.Positions,
		Authenticator: a.Authenticator,
		Metrics:       a.Metrics,
		GraphQL:       graph.NewHandler(a.Schema),
		StorageType:   a.StorageType,
		Pinger:        pinger,
	})
}

// Close releases storage connections
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
