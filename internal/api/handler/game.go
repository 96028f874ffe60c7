package handler

import (
	"encoding/json"
	"net/http"

	"github.com/acmei/landgrab/internal/api/apierr"
	"github.com/acmei/landgrab/internal/api/middleware"
	"github.com/acmei/landgrab/internal/api/request"
	"github.com/acmei/landgrab/internal/api/response"
	"github.com/acmei/landgrab/internal/services/game"
)

// GameHandler handles started-game state endpoints
type GameHandler struct {
	gameController *game.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller) *GameHandler {
	return &GameHandler{
		gameController: gameController,
	}
}

// Get handles GET /api/v1/games/me/state
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec := middleware.MustGetTokenRecord(r.Context())

	g, err := h.gameController.FindByID(r.Context(), rec.SessionID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, g)
}

// Save handles PUT /api/v1/games/me
func (h *GameHandler) Save(w http.ResponseWriter, r *http.Request) {
	rec := middleware.MustGetTokenRecord(r.Context())

	var req request.SaveGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.gameController.Save(r.Context(), rec.SessionID, &req.Game); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
