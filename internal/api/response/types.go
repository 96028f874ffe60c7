package response

import (
	"encoding/json"
	"net/http"

	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/services/lobby"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// CreatedGameResponse answers a session creation: the join token is
// shared with other players, the player token is the creator's own
// credential. Neither is ever readable again through the API.
type CreatedGameResponse struct {
	SessionID     model.SessionID      `json:"sessionId"`
	JoinToken     string               `json:"joinToken"`
	PlayerToken   string               `json:"playerToken"`
	Configuration *model.Configuration `json:"configuration"`
}

// CreatedGameFromModel converts a created session to its response form
func CreatedGameFromModel(created *lobby.CreatedSession) CreatedGameResponse {
	return CreatedGameResponse{
		SessionID:     created.SessionID,
		JoinToken:     created.JoinToken,
		PlayerToken:   created.PlayerToken,
		Configuration: created.Configuration,
	}
}

// JoinedGameResponse answers a join with the new player's credential
type JoinedGameResponse struct {
	PlayerToken string `json:"playerToken"`
}

// Session states reported by SessionResponse
const (
	StateConfiguration = "configuration"
	StateGame          = "game"
)

// SessionResponse is a session viewed through the caller's player
// token: the shape it currently has, tagged with a state discriminator.
type SessionResponse struct {
	State         string               `json:"state"`
	PlayerID      model.PlayerID       `json:"playerId"`
	Configuration *model.Configuration `json:"configuration,omitempty"`
	Game          *model.Game          `json:"game,omitempty"`
}

// SessionFromView converts a session view to its response form. The
// join token is the only secret a Configuration carries, so it is
// blanked for everyone but the host.
func SessionFromView(view *model.SessionView) SessionResponse {
	resp := SessionResponse{
		PlayerID: view.PlayerID,
		Game:     view.Game,
	}
	if view.Configuration != nil {
		resp.State = StateConfiguration
		cfg := *view.Configuration
		if !cfg.IsHost(view.PlayerID) {
			cfg.JoinToken = ""
		}
		resp.Configuration = &cfg
	} else {
		resp.State = StateGame
	}
	return resp
}

// MapResponse is a map catalog record
type MapResponse struct {
	ID   model.MapID     `json:"id"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MapFromModel converts a map to its response form
func MapFromModel(m *model.Map) MapResponse {
	return MapResponse{ID: m.ID, Name: m.Name, Data: m.Data}
}

// MapsFromModel converts a map list to its response form
func MapsFromModel(maps []*model.Map) []MapResponse {
	out := make([]MapResponse, len(maps))
	for i, m := range maps {
		out[i] = MapFromModel(m)
	}
	return out
}
