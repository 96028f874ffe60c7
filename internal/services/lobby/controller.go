package lobby

import (
	"context"
	"errors"

	"github.com/acmei/landgrab/internal/bus"
	"github.com/acmei/landgrab/internal/dependencies/clock"
	"github.com/acmei/landgrab/internal/dependencies/random"
	"github.com/acmei/landgrab/internal/dependencies/token"
	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/services/game"
	"github.com/acmei/landgrab/internal/services/maps"
	"github.com/acmei/landgrab/internal/storage"
)

// casRetries bounds the re-read-and-retry loop around version-checked
// configuration writes. Conflicts only happen when two requests race on
// the same lobby, so a handful of retries is plenty.
const casRetries = 5

// HostName is the display name given to the host slot at creation
const HostName = "Host"

const (
	// SessionIDLength is the length of generated session ids
	SessionIDLength = 12
	// SessionIDAlphabet is the characters used in session ids (avoid confusing chars)
	SessionIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller manages the Configuration (lobby) phase of sessions
type Controller struct {
	storage        storage.Storage
	gameController *game.Controller
	maps           *maps.Service
	bus            *bus.Bus
	clock          clock.Clock
	random         random.Random
	token          token.Generator
}

// NewController creates a new lobby controller
func NewController(
	storage storage.Storage,
	gameController *game.Controller,
	maps *maps.Service,
	bus *bus.Bus,
	clock clock.Clock,
	random random.Random,
	token token.Generator,
) *Controller {
	return &Controller{
		storage:        storage,
		gameController: gameController,
		maps:           maps,
		bus:            bus,
		clock:          clock,
		random:         random,
		token:          token,
	}
}

// CreatedSession is everything a creator needs to share and play: the
// join token is handed to other players, the player token is the
// creator's own credential.
type CreatedSession struct {
	SessionID     model.SessionID
	JoinToken     string
	PlayerToken   string
	Configuration *model.Configuration
}

// CreateSession creates a new lobby with the caller as host. A nil mapID
// selects the catalog's first map.
func (c *Controller) CreateSession(ctx context.Context, mapID *model.MapID) (*CreatedSession, error) {
	var resolvedMapID model.MapID
	if mapID == nil {
		id, err := c.maps.FindFirstOrDefaultID(ctx)
		if err != nil {
			return nil, err
		}
		resolvedMapID = id
	} else {
		if _, err := c.maps.Get(ctx, *mapID); err != nil {
			return nil, err
		}
		resolvedMapID = *mapID
	}

	// Generate an unused session id
	var sessionID model.SessionID
	for {
		sessionID = model.SessionID(c.random.String(SessionIDLength, SessionIDAlphabet))
		_, err := c.storage.GetConfiguration(ctx, sessionID)
		if errors.Is(err, model.ErrSessionNotFound) {
			break
		}
		if err != nil && !errors.Is(err, model.ErrAlreadyStarted) {
			return nil, err
		}
	}

	cfg := &model.Configuration{
		ID:        sessionID,
		Version:   1,
		MapID:     resolvedMapID,
		JoinToken: c.token.Generate(),
		Players: []model.PlayerSlot{
			{ID: 1, Name: HostName, Color: model.Palette[0]},
		},
	}
	if err := c.storage.CreateConfiguration(ctx, cfg); err != nil {
		return nil, err
	}

	playerToken := c.token.Generate()
	err := c.storage.SavePlayerToken(ctx, &model.PlayerTokenRecord{
		Token:     playerToken,
		SessionID: cfg.ID,
		PlayerID:  1,
	})
	if err != nil {
		return nil, err
	}

	// No publish: nobody can be subscribed before the session exists
	return &CreatedSession{
		SessionID:     cfg.ID,
		JoinToken:     cfg.JoinToken,
		PlayerToken:   playerToken,
		Configuration: cfg,
	}, nil
}

// Join adds a player to a lobby via its join token and returns the new
// player's own token. Unknown tokens and tokens of already-started
// sessions both fail with ErrSessionNotFound.
func (c *Controller) Join(ctx context.Context, joinToken string) (string, error) {
	var cfg *model.Configuration
	var playerID model.PlayerID

	err := c.withRetry(func() error {
		var err error
		cfg, err = c.storage.GetConfigurationByJoinToken(ctx, joinToken)
		if err != nil {
			return err
		}

		color, err := model.NextAvailableColor(cfg.TakenColors(), model.Palette)
		if err != nil {
			return err
		}

		playerID = cfg.NextPlayerID()
		cfg.Players = append(cfg.Players, model.PlayerSlot{
			ID:    playerID,
			Name:  "",
			Color: color,
		})
		return c.storage.UpdateConfiguration(ctx, cfg)
	})
	if err != nil {
		return "", err
	}

	playerToken := c.token.Generate()
	err = c.storage.SavePlayerToken(ctx, &model.PlayerTokenRecord{
		Token:     playerToken,
		SessionID: cfg.ID,
		PlayerID:  playerID,
	})
	if err != nil {
		return "", err
	}

	c.publish(model.EventLobbyChanged, cfg.ID)
	return playerToken, nil
}

// Rename sets the caller's display name
func (c *Controller) Rename(ctx context.Context, playerToken string, name string) error {
	rec, err := c.storage.GetPlayerToken(ctx, playerToken)
	if err != nil {
		return err
	}

	err = c.withRetry(func() error {
		cfg, err := c.storage.GetConfiguration(ctx, rec.SessionID)
		if err != nil {
			return err
		}

		slot := cfg.Slot(rec.PlayerID)
		if slot == nil {
			return model.ErrPlayerNotFound
		}
		slot.Name = name
		return c.storage.UpdateConfiguration(ctx, cfg)
	})
	if err != nil {
		return err
	}

	c.publish(model.EventLobbyChanged, rec.SessionID)
	return nil
}

// Recolor sets the caller's color. The color must come from the palette
// and must not be held by another player.
func (c *Controller) Recolor(ctx context.Context, playerToken string, color model.Color) error {
	if !model.InPalette(color) {
		return model.ErrColorNotAllowed
	}

	rec, err := c.storage.GetPlayerToken(ctx, playerToken)
	if err != nil {
		return err
	}

	err = c.withRetry(func() error {
		cfg, err := c.storage.GetConfiguration(ctx, rec.SessionID)
		if err != nil {
			return err
		}

		slot := cfg.Slot(rec.PlayerID)
		if slot == nil {
			return model.ErrPlayerNotFound
		}
		for _, other := range cfg.Players {
			if other.ID != rec.PlayerID && other.Color == color {
				return model.ErrColorTaken
			}
		}
		slot.Color = color
		return c.storage.UpdateConfiguration(ctx, cfg)
	})
	if err != nil {
		return err
	}

	c.publish(model.EventLobbyChanged, rec.SessionID)
	return nil
}

// UpdateMap re-selects the lobby's map. Host only.
func (c *Controller) UpdateMap(ctx context.Context, playerToken string, mapID model.MapID) error {
	if _, err := c.maps.Get(ctx, mapID); err != nil {
		return err
	}

	rec, err := c.storage.GetPlayerToken(ctx, playerToken)
	if err != nil {
		return err
	}

	err = c.withRetry(func() error {
		cfg, err := c.storage.GetConfiguration(ctx, rec.SessionID)
		if err != nil {
			return err
		}

		if !cfg.IsHost(rec.PlayerID) {
			return model.ErrNotHost
		}
		cfg.MapID = mapID
		return c.storage.UpdateConfiguration(ctx, cfg)
	})
	if err != nil {
		return err
	}

	c.publish(model.EventLobbyChanged, rec.SessionID)
	return nil
}

// Start transitions the lobby into a running game. Host only: any other
// player is denied with ErrNotHost and the lobby is left untouched.
func (c *Controller) Start(ctx context.Context, playerToken string) (*model.Game, error) {
	rec, err := c.storage.GetPlayerToken(ctx, playerToken)
	if err != nil {
		return nil, err
	}

	var started *model.Game
	err = c.withRetry(func() error {
		cfg, err := c.storage.GetConfiguration(ctx, rec.SessionID)
		if err != nil {
			return err
		}

		if !cfg.IsHost(rec.PlayerID) {
			return model.ErrNotHost
		}

		started = c.gameController.Initialize(cfg)
		return c.storage.StartGame(ctx, started, cfg.Version)
	})
	if err != nil {
		return nil, err
	}

	c.publish(model.EventLobbyChanged, rec.SessionID)
	return started, nil
}

// Resolve reads the session behind a player token in whichever shape it
// currently has. Resolution never mutates anything, so it is safe to
// call repeatedly.
func (c *Controller) Resolve(ctx context.Context, playerToken string) (*model.SessionView, error) {
	rec, err := c.storage.GetPlayerToken(ctx, playerToken)
	if err != nil {
		return nil, err
	}

	cfg, err := c.storage.GetConfiguration(ctx, rec.SessionID)
	if err == nil {
		return &model.SessionView{PlayerID: rec.PlayerID, Configuration: cfg}, nil
	}
	if !errors.Is(err, model.ErrAlreadyStarted) {
		return nil, err
	}

	g, err := c.storage.GetGame(ctx, rec.SessionID)
	if err != nil {
		return nil, err
	}
	return &model.SessionView{PlayerID: rec.PlayerID, Game: g}, nil
}

// withRetry runs a read-modify-write cycle again when its version check
// fails. The final conflict surfaces if the retries run out.
func (c *Controller) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < casRetries; attempt++ {
		err = fn()
		if !errors.Is(err, storage.ErrVersionConflict) {
			return err
		}
	}
	return err
}

func (c *Controller) publish(t model.EventType, id model.SessionID) {
	c.bus.Publish(model.Event{
		Type:       t,
		SessionID:  id,
		OccurredAt: c.clock.Now(),
	})
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateSession(ctx context.Context, mapID *model.MapID) (*CreatedSession, error)
	Join(ctx context.Context, joinToken string) (string, error)
	Rename(ctx context.Context, playerToken string, name string) error
	Recolor(ctx context.Context, playerToken string, color model.Color) error
	UpdateMap(ctx context.Context, playerToken string, mapID model.MapID) error
	Start(ctx context.Context, playerToken string) (*model.Game, error)
	Resolve(ctx context.Context, playerToken string) (*model.SessionView, error)
}

var _ ControllerInterface = (*Controller)(nil)
