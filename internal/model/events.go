package model

import "time"

// EventType identifies the type of change event
type EventType string

const (
	// EventLobbyChanged signals that a session's Configuration changed,
	// or that it stopped being a Configuration entirely (game started).
	EventLobbyChanged EventType = "lobby_changed"
	// EventGameChanged signals that a session's Game state was saved.
	EventGameChanged EventType = "game_changed"
)

// Event is a change notification published on the bus. Delivery is
// best-effort with no replay: events are wake-up hints telling
// subscribers to re-fetch current state, never a source of truth.
type Event struct {
	Type       EventType `json:"type"`
	SessionID  SessionID `json:"sessionId"`
	OccurredAt time.Time `json:"occurredAt"`
}
