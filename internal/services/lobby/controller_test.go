package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/acmei/landgrab/internal/bus"
	"github.com/acmei/landgrab/internal/dependencies/mocks"
	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/services/game"
	"github.com/acmei/landgrab/internal/services/maps"
	"github.com/acmei/landgrab/internal/storage/memory"
	"github.com/acmei/landgrab/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage        *memory.Storage
	bus            *bus.Bus
	clock          *mocks.MockClock
	random         *mocks.MockRandom
	token          *mocks.MockToken
	mapService     *maps.Service
	gameController *game.Controller
	controller     *Controller
	ctx            context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.bus = bus.New(testutil.NopLogger())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.random.QueueString("SESSION00001", "SESSION00002", "SESSION00003")
	s.token = mocks.NewMockToken()
	s.mapService = maps.NewService(s.storage, s.token)
	s.gameController = game.NewController(s.storage, s.bus, s.clock)
	s.controller = NewController(s.storage, s.gameController, s.mapService, s.bus, s.clock, s.random, s.token)
	s.ctx = context.Background()
}

func (s *ControllerSuite) TearDownTest() {
	s.bus.Close()
}

// CreateSession tests

func (s *ControllerSuite) TestCreateSessionDefaultsToFirstMap() {
	created, err := s.controller.CreateSession(s.ctx, nil)
	s.Require().NoError(err)

	s.Equal(maps.DefaultMapID, created.Configuration.MapID)
	s.Equal(model.SessionID("SESSION00001"), created.SessionID)
	s.NotEmpty(created.JoinToken)
	s.NotEmpty(created.PlayerToken)
	s.NotEqual(created.JoinToken, created.PlayerToken)
}

func (s *ControllerSuite) TestCreateSessionSeedsHostSlot() {
	created, err := s.controller.CreateSession(s.ctx, nil)
	s.Require().NoError(err)

	s.Require().Len(created.Configuration.Players, 1)
	host := created.Configuration.Players[0]
	s.Equal(model.PlayerID(1), host.ID)
	s.Equal(HostName, host.Name)
	s.Equal(model.Palette[0], host.Color)
	s.True(created.Configuration.IsHost(1))
}

func (s *ControllerSuite) TestCreateSessionIsPersisted() {
	created, _ := s.controller.CreateSession(s.ctx, nil)

	cfg, err := s.storage.GetConfiguration(s.ctx, created.SessionID)
	s.Require().NoError(err)
	s.Equal(created.Configuration, cfg)
}

func (s *ControllerSuite) TestCreateSessionWithExplicitMap() {
	s.token.Queue("42")
	m, err := s.mapService.Create(s.ctx, "Archipelago", nil)
	s.Require().NoError(err)
	s.Equal(model.MapID{Kind: model.UserMap, ID: "42"}, m.ID)

	created, err := s.controller.CreateSession(s.ctx, &m.ID)
	s.Require().NoError(err)
	s.Equal(m.ID, created.Configuration.MapID)
}

func (s *ControllerSuite) TestCreateSessionWithUnknownMap() {
	unknown := model.MapID{Kind: model.UserMap, ID: "999"}
	_, err := s.controller.CreateSession(s.ctx, &unknown)
	s.ErrorIs(err, model.ErrMapNotFound)
}

func (s *ControllerSuite) TestCreateSessionRecordsHostToken() {
	created, _ := s.controller.CreateSession(s.ctx, nil)

	view, err := s.controller.Resolve(s.ctx, created.PlayerToken)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(1), view.PlayerID)
	s.Require().NotNil(view.Configuration)
	s.Nil(view.Game)
}

// Join tests

func (s *ControllerSuite) TestJoinAddsSlotWithNextColor() {
	created, _ := s.controller.CreateSession(s.ctx, nil)

	playerToken, err := s.controller.Join(s.ctx, created.JoinToken)
	s.Require().NoError(err)
	s.NotEmpty(playerToken)

	cfg, _ := s.storage.GetConfiguration(s.ctx, created.SessionID)
	s.Require().Len(cfg.Players, 2)
	s.Equal(model.PlayerID(2), cfg.Players[1].ID)
	s.Equal("", cfg.Players[1].Name)
	s.Equal(model.Palette[1], cfg.Players[1].Color)
}

func (s *ControllerSuite) TestJoinersGetDistinctColorsInPaletteOrder() {
	created, _ := s.controller.CreateSession(s.ctx, nil)

	for i := 0; i < 3; i++ {
		_, err := s.controller.Join(s.ctx, created.JoinToken)
		s.Require().NoError(err)
	}

	cfg, _ := s.storage.GetConfiguration(s.ctx, created.SessionID)
	s.Require().Len(cfg.Players, 4)
	for i, slot := range cfg.Players {
		s.Equal(model.Palette[i], slot.Color)
	}
}

func (s *ControllerSuite) TestJoinWithUnknownToken() {
	_, err := s.controller.Join(s.ctx, "no-such-token")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestJoinAfterStart() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	_, err := s.controller.Start(s.ctx, created.PlayerToken)
	s.Require().NoError(err)

	_, err = s.controller.Join(s.ctx, created.JoinToken)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestJoinExhaustsPalette() {
	created, _ := s.controller.CreateSession(s.ctx, nil)

	// Host holds one color; the rest of the palette fills one join at a time
	for i := 0; i < len(model.Palette)-1; i++ {
		_, err := s.controller.Join(s.ctx, created.JoinToken)
		s.Require().NoError(err)
	}

	_, err := s.controller.Join(s.ctx, created.JoinToken)
	s.ErrorIs(err, model.ErrPaletteExhausted)
}

func (s *ControllerSuite) TestJoinPublishesLobbyChanged() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	sub := s.bus.Subscribe(created.SessionID)

	_, err := s.controller.Join(s.ctx, created.JoinToken)
	s.Require().NoError(err)

	select {
	case ev := <-sub.Events():
		s.Equal(model.EventLobbyChanged, ev.Type)
		s.Equal(created.SessionID, ev.SessionID)
		s.Equal(s.clock.Now(), ev.OccurredAt)
	default:
		s.Fail("expected a lobby_changed event")
	}
}

// Rename tests

func (s *ControllerSuite) TestRename() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)

	err := s.controller.Rename(s.ctx, playerToken, "Imogen")
	s.Require().NoError(err)

	cfg, _ := s.storage.GetConfiguration(s.ctx, created.SessionID)
	s.Equal("Imogen", cfg.Players[1].Name)
	s.Equal(HostName, cfg.Players[0].Name)
}

func (s *ControllerSuite) TestRenameWithUnknownToken() {
	err := s.controller.Rename(s.ctx, "no-such-token", "Imogen")
	s.ErrorIs(err, model.ErrPlayerTokenNotFound)
}

func (s *ControllerSuite) TestRenameAfterStart() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)
	_, err := s.controller.Start(s.ctx, created.PlayerToken)
	s.Require().NoError(err)

	err = s.controller.Rename(s.ctx, playerToken, "Imogen")
	s.ErrorIs(err, model.ErrAlreadyStarted)
}

// Recolor tests

func (s *ControllerSuite) TestRecolor() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)

	err := s.controller.Recolor(s.ctx, playerToken, model.Palette[5])
	s.Require().NoError(err)

	cfg, _ := s.storage.GetConfiguration(s.ctx, created.SessionID)
	s.Equal(model.Palette[5], cfg.Players[1].Color)
}

func (s *ControllerSuite) TestRecolorToOwnColorIsANoOp() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)

	err := s.controller.Recolor(s.ctx, playerToken, model.Palette[1])
	s.NoError(err)
}

func (s *ControllerSuite) TestRecolorOutsidePalette() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)

	err := s.controller.Recolor(s.ctx, playerToken, model.Color{Red: 1, Green: 2, Blue: 3})
	s.ErrorIs(err, model.ErrColorNotAllowed)
}

func (s *ControllerSuite) TestRecolorToTakenColor() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)

	// Palette[0] belongs to the host
	err := s.controller.Recolor(s.ctx, playerToken, model.Palette[0])
	s.ErrorIs(err, model.ErrColorTaken)

	cfg, _ := s.storage.GetConfiguration(s.ctx, created.SessionID)
	s.Equal(model.Palette[1], cfg.Players[1].Color)
}

// UpdateMap tests

func (s *ControllerSuite) TestUpdateMap() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	m, err := s.mapService.Create(s.ctx, "Archipelago", nil)
	s.Require().NoError(err)

	err = s.controller.UpdateMap(s.ctx, created.PlayerToken, m.ID)
	s.Require().NoError(err)

	cfg, _ := s.storage.GetConfiguration(s.ctx, created.SessionID)
	s.Equal(m.ID, cfg.MapID)
}

func (s *ControllerSuite) TestUpdateMapRequiresHost() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)
	m, _ := s.mapService.Create(s.ctx, "Archipelago", nil)

	err := s.controller.UpdateMap(s.ctx, playerToken, m.ID)
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *ControllerSuite) TestUpdateMapToUnknownMap() {
	created, _ := s.controller.CreateSession(s.ctx, nil)

	err := s.controller.UpdateMap(s.ctx, created.PlayerToken, model.MapID{Kind: model.UserMap, ID: "999"})
	s.ErrorIs(err, model.ErrMapNotFound)
}

// Start tests

func (s *ControllerSuite) TestStartByHost() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	_, _ = s.controller.Join(s.ctx, created.JoinToken)

	g, err := s.controller.Start(s.ctx, created.PlayerToken)
	s.Require().NoError(err)

	s.Equal(created.SessionID, g.ID)
	s.Equal(created.Configuration.MapID, g.MapID)
	s.Require().Len(g.Players, 2)
	s.Equal(model.PlayerID(1), g.Turn.CurrentPlayerID)
	s.Equal(model.StageCapitolPlacement, g.Turn.Stage)

	// The stored record now has the game shape
	_, err = s.storage.GetConfiguration(s.ctx, created.SessionID)
	s.ErrorIs(err, model.ErrAlreadyStarted)
	stored, err := s.storage.GetGame(s.ctx, created.SessionID)
	s.Require().NoError(err)
	s.Equal(g, stored)
}

func (s *ControllerSuite) TestStartByNonHostLeavesLobbyUntouched() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)

	before, _ := s.storage.GetConfiguration(s.ctx, created.SessionID)

	_, err := s.controller.Start(s.ctx, playerToken)
	s.ErrorIs(err, model.ErrNotHost)

	after, err := s.storage.GetConfiguration(s.ctx, created.SessionID)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *ControllerSuite) TestStartTwice() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	_, err := s.controller.Start(s.ctx, created.PlayerToken)
	s.Require().NoError(err)

	_, err = s.controller.Start(s.ctx, created.PlayerToken)
	s.ErrorIs(err, model.ErrAlreadyStarted)
}

func (s *ControllerSuite) TestStartCarriesSlotStateIntoGame() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)
	_ = s.controller.Rename(s.ctx, playerToken, "Imogen")
	_ = s.controller.Recolor(s.ctx, playerToken, model.Palette[7])

	g, err := s.controller.Start(s.ctx, created.PlayerToken)
	s.Require().NoError(err)

	s.Equal("Imogen", g.Players[1].Name)
	s.Equal(model.Palette[7], g.Players[1].Color)
	s.Empty(g.Players[1].CountryTroopCounts)
	s.Empty(g.Players[1].Ports)
	s.Nil(g.Players[1].Capitol)
}

// Resolve tests

func (s *ControllerSuite) TestResolveTracksTheShapeTransition() {
	created, _ := s.controller.CreateSession(s.ctx, nil)
	playerToken, _ := s.controller.Join(s.ctx, created.JoinToken)

	view, err := s.controller.Resolve(s.ctx, playerToken)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(2), view.PlayerID)
	s.NotNil(view.Configuration)
	s.Nil(view.Game)

	_, err = s.controller.Start(s.ctx, created.PlayerToken)
	s.Require().NoError(err)

	view, err = s.controller.Resolve(s.ctx, playerToken)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(2), view.PlayerID)
	s.Nil(view.Configuration)
	s.NotNil(view.Game)
}

func (s *ControllerSuite) TestResolveIsIdempotent() {
	created, _ := s.controller.CreateSession(s.ctx, nil)

	first, err := s.controller.Resolve(s.ctx, created.PlayerToken)
	s.Require().NoError(err)
	second, err := s.controller.Resolve(s.ctx, created.PlayerToken)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *ControllerSuite) TestResolveWithUnknownToken() {
	_, err := s.controller.Resolve(s.ctx, "no-such-token")
	s.ErrorIs(err, model.ErrPlayerTokenNotFound)
}

// Full two-player walkthrough

func (s *ControllerSuite) TestTwoPlayerSessionLifecycle() {
	s.token.Queue("42")
	m, err := s.mapService.Create(s.ctx, "Forty-Two", nil)
	s.Require().NoError(err)

	created, err := s.controller.CreateSession(s.ctx, &m.ID)
	s.Require().NoError(err)

	guestToken, err := s.controller.Join(s.ctx, created.JoinToken)
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Rename(s.ctx, guestToken, "Ada"))

	g, err := s.controller.Start(s.ctx, created.PlayerToken)
	s.Require().NoError(err)

	s.Equal(model.MapID{Kind: model.UserMap, ID: "42"}, g.MapID)
	s.Require().Len(g.Players, 2)
	s.Equal(HostName, g.Players[0].Name)
	s.Equal("Ada", g.Players[1].Name)
	s.Equal(model.Palette[0], g.Players[0].Color)
	s.Equal(model.Palette[1], g.Players[1].Color)
	s.Equal(model.PlayerID(1), g.Turn.CurrentPlayerID)
	s.Equal(model.StageCapitolPlacement, g.Turn.Stage)

	// Both tokens still resolve, now to the game shape
	for _, token := range []string{created.PlayerToken, guestToken} {
		view, err := s.controller.Resolve(s.ctx, token)
		s.Require().NoError(err)
		s.NotNil(view.Game)
	}
}
