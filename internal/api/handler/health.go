package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/friendfinder/internal/api/response"
)

// Pinger is implemented by storage backends with a remote connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and storage reachability
type HealthHandler struct {
	storageType string
	pinger      Pinger
	logger      *slog.Logger
}

// NewHealthHandler creates a health handler. pinger may be nil.
func NewHealthHandler(storageType string, pinger Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storageType: storageType,
		pinger:      pinger,
		logger:      logger,
	}
}

// Check handles GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn("storage ping failed", slog.String("error", err.Error()))
			response.JSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable", Storage: h.storageType})
			return
		}
	}
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Storage: h.storageType})
}
