package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/acmei/landgrab/internal/api/apierr"
	"github.com/acmei/landgrab/internal/api/middleware"
	"github.com/acmei/landgrab/internal/api/request"
	"github.com/acmei/landgrab/internal/api/response"
	"github.com/acmei/landgrab/internal/services/lobby"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	lobbyController *lobby.Controller
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(lobbyController *lobby.Controller) *SessionHandler {
	return &SessionHandler{
		lobbyController: lobbyController,
	}
}

// Create handles POST /api/v1/games
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		// Empty body selects the default map
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	created, err := h.lobbyController.CreateSession(r.Context(), req.MapID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreatedGameFromModel(created))
}

// Join handles POST /api/v1/games/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.JoinToken == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("joinToken is required"))
		return
	}

	playerToken, err := h.lobbyController.Join(r.Context(), req.JoinToken)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinedGameResponse{PlayerToken: playerToken})
}

// Get handles GET /api/v1/games/me
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec := middleware.MustGetTokenRecord(r.Context())

	view, err := h.lobbyController.Resolve(r.Context(), rec.Token)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromView(view))
}

// Rename handles PATCH /api/v1/games/me/name
func (h *SessionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	rec := middleware.MustGetTokenRecord(r.Context())

	var req request.RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.lobbyController.Rename(r.Context(), rec.Token, req.Name); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Recolor handles PATCH /api/v1/games/me/color
func (h *SessionHandler) Recolor(w http.ResponseWriter, r *http.Request) {
	rec := middleware.MustGetTokenRecord(r.Context())

	var req request.RecolorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.lobbyController.Recolor(r.Context(), rec.Token, req.Color); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// UpdateMap handles PUT /api/v1/games/me/map
func (h *SessionHandler) UpdateMap(w http.ResponseWriter, r *http.Request) {
	rec := middleware.MustGetTokenRecord(r.Context())

	var req request.UpdateMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.lobbyController.UpdateMap(r.Context(), rec.Token, req.MapID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Start handles POST /api/v1/games/me/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	rec := middleware.MustGetTokenRecord(r.Context())

	game, err := h.lobbyController.Start(r.Context(), rec.Token)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, game)
}
