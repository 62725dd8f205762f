package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/friendfinder/internal/api/handler"
	"github.com/mcoot/friendfinder/internal/api/middleware"
	basemw "github.com/mcoot/friendfinder/internal/middleware"
	"github.com/mcoot/friendfinder/internal/services/access"
	"github.com/mcoot/friendfinder/internal/services/friends"
	"github.com/mcoot/friendfinder/internal/services/positions"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	Friends       *friends.Service
	Positions     *positions.Service
	Authenticator *access.Authenticator
	// Metrics is optional; when set /metrics is served and API requests are counted
	Metrics *basemw.Metrics
	// GraphQL is optional; when set it is mounted at /api/graphql
	GraphQL http.Handler
	// StorageType and Pinger feed the health check. Pinger may be nil.
	StorageType string
	Pinger      handler.Pinger
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	friendHandler := handler.NewFriendHandler(cfg.Friends, cfg.Authenticator, cfg.Logger)
	positionHandler := handler.NewPositionHandler(cfg.Positions, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.StorageType, cfg.Pinger, cfg.Logger)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		api.Use(cfg.Metrics.Middleware)
	}
	api.Use(middleware.Authenticate(cfg.Authenticator, cfg.Logger))

	route := func(method, path string, op access.Operation, h http.HandlerFunc) {
		api.Handle(path, middleware.Require(op)(h)).Methods(method)
	}

	// Friend routes. Fixed paths go before /friends/{email}.
	route(http.MethodPost, "/friends", access.CreateFriend, friendHandler.Register)
	route(http.MethodPost, "/friends/login", access.Login, friendHandler.Login)
	route(http.MethodGet, "/friends/all", access.GetAllFriends, friendHandler.List)
	route(http.MethodGet, "/friends/me", access.GetFriend, friendHandler.Me)
	route(http.MethodPut, "/friends/editme", access.EditFriend, friendHandler.EditMe)
	route(http.MethodGet, "/friends/find-user/{email}", access.GetFriendByEmail, friendHandler.FindUser)
	route(http.MethodPut, "/friends/{email}", access.AdminEditFriend, friendHandler.Edit)
	route(http.MethodDelete, "/friends/{email}", access.DeleteFriend, friendHandler.Delete)

	// Position routes
	route(http.MethodPost, "/positions", access.AddPosition, positionHandler.Report)
	route(http.MethodGet, "/positions/nearby", access.NearbyFriends, positionHandler.Nearby)
	route(http.MethodGet, "/positions/game-area", access.GetGameArea, positionHandler.GameArea)
	route(http.MethodGet, "/positions/all", access.GetAllPositions, positionHandler.List)
	route(http.MethodGet, "/positions/{email}", access.GetPosition, positionHandler.Get)

	// GraphQL authorizes per field
	if cfg.GraphQL != nil {
		api.Handle("/graphql", cfg.GraphQL).Methods(http.MethodGet, http.MethodPost)
	}

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	return r
}
