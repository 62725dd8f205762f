package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/friendfinder/internal/api/middleware"
	"github.com/mcoot/friendfinder/internal/api/request"
	"github.com/mcoot/friendfinder/internal/api/response"
	"github.com/mcoot/friendfinder/internal/services/positions"
)

// PositionHandler handles position-related endpoints
type PositionHandler struct {
	positions *positions.Service
	logger    *slog.Logger
}

// NewPositionHandler creates a new position handler
func NewPositionHandler(positionService *positions.Service, logger *slog.Logger) *PositionHandler {
	return &PositionHandler{
		positions: positionService,
		logger:    logger,
	}
}

// Report handles POST /api/positions
func (h *PositionHandler) Report(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	var req request.PositionRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Longitude == nil || req.Latitude == nil {
		WriteError(w, NewInvalidRequestError("longitude and latitude are required"))
		return
	}

	position, err := h.positions.UpsertPosition(r.Context(), principal.Email, *req.Longitude, *req.Latitude)
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PositionFromModel(position, h.positions.InGameArea(position.Location)))
}

// Nearby handles GET /api/positions/nearby?longitude=&latitude=&distance=
func (h *PositionHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	query := r.URL.Query()
	var values [3]float64
	for i, name := range []string{"longitude", "latitude", "distance"} {
		v, err := strconv.ParseFloat(query.Get(name), 64)
		if err != nil {
			WriteError(w, NewInvalidRequestError(name+" must be a number"))
			return
		}
		values[i] = v
	}

	nearby, err := h.positions.FindNearby(r.Context(), principal.Email, values[0], values[1], values[2])
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NearbyFromModel(nearby))
}

// GameArea handles GET /api/positions/game-area
func (h *PositionHandler) GameArea(w http.ResponseWriter, r *http.Request) {
	response.GeoJSON(w, http.StatusOK, response.GeoJSONFromPolygon(h.positions.GameArea()))
}

// List handles GET /api/positions/all
func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.positions.ListAllPositions(r.Context())
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	result := make([]response.Position, len(all))
	for i, p := range all {
		result[i] = response.PositionFromModel(p, h.positions.InGameArea(p.Location))
	}
	response.JSON(w, http.StatusOK, result)
}

// Get handles GET /api/positions/{email}
func (h *PositionHandler) Get(w http.ResponseWriter, r *http.Request) {
	position, err := h.positions.GetPosition(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PositionFromModel(position, h.positions.InGameArea(position.Location)))
}
