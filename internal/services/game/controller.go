package game

import (
	"context"

	"github.com/acmei/landgrab/internal/bus"
	"github.com/acmei/landgrab/internal/dependencies/clock"
	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/storage"
)

// Controller manages the Game shape of sessions: building the initial
// game state from a finished lobby and persisting turn-by-turn saves.
type Controller struct {
	storage storage.Storage
	bus     *bus.Bus
	clock   clock.Clock
}

// NewController creates a new game state controller
func NewController(storage storage.Storage, bus *bus.Bus, clock clock.Clock) *Controller {
	return &Controller{
		storage: storage,
		bus:     bus,
		clock:   clock,
	}
}

// Initialize builds the starting game state for a lobby. Slots become
// players with no troops, capitols, or ports yet; the host opens play in
// the capitol placement stage.
func (c *Controller) Initialize(cfg *model.Configuration) *model.Game {
	players := make([]model.Player, len(cfg.Players))
	for i, slot := range cfg.Players {
		players[i] = model.Player{
			ID:                 slot.ID,
			Name:               slot.Name,
			Color:              slot.Color,
			CountryTroopCounts: []model.CountryTroopCounts{},
			Ports:              []string{},
		}
	}

	game := &model.Game{
		ID:            cfg.ID,
		MapID:         cfg.MapID,
		Players:       players,
		NeutralTroops: []model.CountryTroopCounts{},
		Turn: model.TurnState{
			Stage: model.StageCapitolPlacement,
		},
	}
	if host := cfg.Host(); host != nil {
		game.Turn.CurrentPlayerID = host.ID
	}
	return game
}

// Save persists a new game state for a started session. The turn stage
// must be a known stage, and the map is fixed once the game exists: a
// save carrying a different map id is rejected without touching storage.
func (c *Controller) Save(ctx context.Context, id model.SessionID, game *model.Game) error {
	if !game.Turn.Stage.Valid() {
		return model.ErrInvalidTurnStage
	}

	current, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if game.MapID != current.MapID {
		return model.ErrMapChangeNotAllowed
	}

	game.ID = id
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return err
	}

	c.bus.Publish(model.Event{
		Type:       model.EventGameChanged,
		SessionID:  id,
		OccurredAt: c.clock.Now(),
	})
	return nil
}

// FindByID retrieves a started session's game state
func (c *Controller) FindByID(ctx context.Context, id model.SessionID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// Interface for dependency injection
type ControllerInterface interface {
	Initialize(cfg *model.Configuration) *model.Game
	Save(ctx context.Context, id model.SessionID, game *model.Game) error
	FindByID(ctx context.Context, id model.SessionID) (*model.Game, error)
}

var _ ControllerInterface = (*Controller)(nil)
