package handler

import (
	"encoding/json"
	"net/http"

	"github.com/grandline/server/internal/api/middleware"
	"github.com/grandline/server/internal/api/request"
	"github.com/grandline/server/internal/api/response"
	"github.com/grandline/server/internal/services/worldmap"
)

// WorldMapHandler handles map and movement endpoints
type WorldMapHandler struct {
	worldmapService *worldmap.Service
}

// NewWorldMapHandler creates a new world map handler
func NewWorldMapHandler(worldmapService *worldmap.Service) *WorldMapHandler {
	return &WorldMapHandler{
		worldmapService: worldmapService,
	}
}

// Get handles GET /api/v1/map
func (h *WorldMapHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.MapResponseFromModel(h.worldmapService.Map()))
}

// Move handles POST /api/v1/map/move
func (h *WorldMapHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	var req request.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	outcome, err := h.worldmapService.Move(r.Context(), userID, req.DX, req.DY)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MoveResponseFromModel(outcome))
}
