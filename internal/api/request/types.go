package request

import (
	"encoding/json"

	"github.com/acmei/landgrab/internal/model"
)

// CreateGameRequest is the body for POST /api/v1/games. MapID is
// optional; the catalog's first map is used when absent.
type CreateGameRequest struct {
	MapID *model.MapID `json:"mapId,omitempty"`
}

// JoinGameRequest is the body for POST /api/v1/games/join
type JoinGameRequest struct {
	JoinToken string `json:"joinToken"`
}

// RenameRequest is the body for PATCH /api/v1/games/me/name
type RenameRequest struct {
	Name string `json:"name"`
}

// RecolorRequest is the body for PATCH /api/v1/games/me/color
type RecolorRequest struct {
	Color model.Color `json:"color"`
}

// UpdateMapRequest is the body for PUT /api/v1/games/me/map
type UpdateMapRequest struct {
	MapID model.MapID `json:"mapId"`
}

// SaveGameRequest is the body for PUT /api/v1/games/me: a full
// replacement game state
type SaveGameRequest struct {
	Game model.Game `json:"game"`
}

// CreateMapRequest is the body for POST /api/v1/maps
type CreateMapRequest struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}
