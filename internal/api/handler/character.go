package handler

import (
	"encoding/json"
	"net/http"

	"github.com/grandline/server/internal/api/middleware"
	"github.com/grandline/server/internal/api/request"
	"github.com/grandline/server/internal/api/response"
	"github.com/grandline/server/internal/services/character"
)

// CharacterHandler handles character endpoints
type CharacterHandler struct {
	characterService *character.Service
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(characterService *character.Service) *CharacterHandler {
	return &CharacterHandler{
		characterService: characterService,
	}
}

// Get handles GET /api/v1/character
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	char, err := h.characterService.Get(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CharacterFromModel(char))
}

// Create handles POST /api/v1/character/create
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	var req request.CreateCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}
	if req.Faction == "" {
		WriteError(w, NewInvalidRequestError("faction is required"))
		return
	}

	char, err := h.characterService.Create(r.Context(), userID, req.Name, req.Faction)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CharacterFromModel(char))
}
