package model

// PlayerID identifies a player within one session. Ids are ordinals
// assigned at join time and stay stable across the configuration-to-game
// transition.
type PlayerID int

// PlayerSlot is a player's lobby-time state, before the game starts.
type PlayerSlot struct {
	ID    PlayerID `json:"playerId"`
	Name  string   `json:"name"`
	Color Color    `json:"color"`
}

// Player is a player's in-game state.
type Player struct {
	ID                 PlayerID             `json:"playerId"`
	Name               string               `json:"name"`
	Color              Color                `json:"color"`
	CountryTroopCounts []CountryTroopCounts `json:"countryTroopCounts"`
	Capitol            *string              `json:"capitol,omitempty"`
	Ports              []string             `json:"ports"`
}

// CountryTroopCounts records troops stationed in one country.
type CountryTroopCounts struct {
	CountryID  string `json:"countryId"`
	TroopCount int    `json:"troopCount"`
}

// PlayerTokenRecord maps an opaque player token to a session and player.
// One record is created per join (including the host's) and never mutated;
// it is the system's sole authentication mechanism.
type PlayerTokenRecord struct {
	Token     string    `json:"token"`
	SessionID SessionID `json:"sessionId"`
	PlayerID  PlayerID  `json:"playerId"`
}
