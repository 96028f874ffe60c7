package model

// SessionID identifies an Internet Game session. A single id serves both
// session shapes: the Configuration (lobby) shape before the game starts,
// and the Game shape after. The transition is one-way.
type SessionID string

// Configuration is the lobby shape of a session.
type Configuration struct {
	ID        SessionID    `json:"id"`
	Version   int64        `json:"version"`
	MapID     MapID        `json:"mapId"`
	JoinToken string       `json:"joinToken"`
	Players   []PlayerSlot `json:"players"`
}

// Host returns the host slot, or nil if the lobby has no players yet.
// The host is the first player in list order; list order is the only
// carrier of host identity.
func (c *Configuration) Host() *PlayerSlot {
	if len(c.Players) == 0 {
		return nil
	}
	return &c.Players[0]
}

// IsHost reports whether the given player is the session host.
func (c *Configuration) IsHost(id PlayerID) bool {
	host := c.Host()
	return host != nil && host.ID == id
}

// Slot returns the slot for the given player, or nil if absent.
func (c *Configuration) Slot(id PlayerID) *PlayerSlot {
	for i := range c.Players {
		if c.Players[i].ID == id {
			return &c.Players[i]
		}
	}
	return nil
}

// TakenColors returns the colors currently assigned to slots.
func (c *Configuration) TakenColors() []Color {
	colors := make([]Color, len(c.Players))
	for i, p := range c.Players {
		colors[i] = p.Color
	}
	return colors
}

// NextPlayerID returns the id to assign to the next joiner.
func (c *Configuration) NextPlayerID() PlayerID {
	next := PlayerID(1)
	for _, p := range c.Players {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}

// Game is the active shape of a session.
type Game struct {
	ID            SessionID            `json:"id"`
	MapID         MapID                `json:"mapId"`
	Players       []Player             `json:"players"`
	NeutralTroops []CountryTroopCounts `json:"neutralCountryTroops"`
	Turn          TurnState            `json:"playerTurn"`
}

// SessionView is a session read through a player token: whichever shape
// the session currently has, plus the caller's player id. Exactly one of
// Configuration and Game is non-nil.
type SessionView struct {
	PlayerID      PlayerID
	Configuration *Configuration
	Game          *Game
}
