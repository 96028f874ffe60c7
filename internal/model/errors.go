package model

import "errors"

// Common errors used across the application
var (
	// Not-found errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrPlayerTokenNotFound = errors.New("player token not found")
	ErrPlayerNotFound      = errors.New("player not found in session")
	ErrMapNotFound         = errors.New("map not found")

	// Shape errors: reading a session as the wrong variant
	ErrStillConfiguring = errors.New("session is still configuring")
	ErrAlreadyStarted   = errors.New("session has already started")

	// Authorization
	ErrNotHost = errors.New("player is not the host")

	// Validation
	ErrColorNotAllowed     = errors.New("color is not in the palette")
	ErrColorTaken          = errors.New("color is taken by another player")
	ErrInvalidMapKind      = errors.New("unknown map kind")
	ErrInvalidTurnStage    = errors.New("unknown turn stage")
	ErrMapChangeNotAllowed = errors.New("map cannot change after the game starts")

	// Resource exhaustion; a palette smaller than the supported player
	// count is a configuration bug, not a user error
	ErrPaletteExhausted = errors.New("all player colors are taken")
)
