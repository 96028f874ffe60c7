package memory

import (
	"context"
	"sync"

	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are stored as deep copies so callers can keep mutating their
// own values without aliasing the store.
type Storage struct {
	mu sync.RWMutex

	sessions   map[model.SessionID]*sessionRecord
	joinTokens map[string]model.SessionID
	tokens     map[string]*model.PlayerTokenRecord
	maps       map[model.MapID]*model.Map
	mapOrder   []model.MapID
}

// sessionRecord holds exactly one of the two session shapes
type sessionRecord struct {
	config *model.Configuration
	game   *model.Game
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:   make(map[model.SessionID]*sessionRecord),
		joinTokens: make(map[string]model.SessionID),
		tokens:     make(map[string]*model.PlayerTokenRecord),
		maps:       make(map[model.MapID]*model.Map),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) CreateConfiguration(ctx context.Context, cfg *model.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[cfg.ID] = &sessionRecord{config: cloneConfiguration(cfg)}
	s.joinTokens[cfg.JoinToken] = cfg.ID
	return nil
}

func (s *Storage) GetConfiguration(ctx context.Context, id model.SessionID) (*model.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	if rec.config == nil {
		return nil, model.ErrAlreadyStarted
	}
	return cloneConfiguration(rec.config), nil
}

func (s *Storage) GetConfigurationByJoinToken(ctx context.Context, joinToken string) (*model.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.joinTokens[joinToken]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	rec, ok := s.sessions[id]
	if !ok || rec.config == nil {
		// A started session's join token no longer resolves
		return nil, model.ErrSessionNotFound
	}
	return cloneConfiguration(rec.config), nil
}

func (s *Storage) UpdateConfiguration(ctx context.Context, cfg *model.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[cfg.ID]
	if !ok {
		return model.ErrSessionNotFound
	}
	if rec.config == nil {
		return model.ErrAlreadyStarted
	}
	if rec.config.Version != cfg.Version {
		return storage.ErrVersionConflict
	}
	updated := cloneConfiguration(cfg)
	updated.Version = cfg.Version + 1
	rec.config = updated
	return nil
}

func (s *Storage) StartGame(ctx context.Context, game *model.Game, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[game.ID]
	if !ok {
		return model.ErrSessionNotFound
	}
	if rec.config == nil {
		return model.ErrAlreadyStarted
	}
	if rec.config.Version != expectedVersion {
		return storage.ErrVersionConflict
	}
	delete(s.joinTokens, rec.config.JoinToken)
	rec.config = nil
	rec.game = cloneGame(game)
	return nil
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[game.ID]
	if !ok {
		return model.ErrSessionNotFound
	}
	if rec.game == nil {
		return model.ErrStillConfiguring
	}
	rec.game = cloneGame(game)
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.SessionID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	if rec.game == nil {
		return nil, model.ErrStillConfiguring
	}
	return cloneGame(rec.game), nil
}

// Player token operations

func (s *Storage) SavePlayerToken(ctx context.Context, rec *model.PlayerTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *rec
	s.tokens[rec.Token] = &copied
	return nil
}

func (s *Storage) GetPlayerToken(ctx context.Context, token string) (*model.PlayerTokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tokens[token]
	if !ok {
		return nil, model.ErrPlayerTokenNotFound
	}
	copied := *rec
	return &copied, nil
}

// Map catalog operations

func (s *Storage) SaveMap(ctx context.Context, m *model.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.maps[m.ID]; !exists {
		s.mapOrder = append(s.mapOrder, m.ID)
	}
	s.maps[m.ID] = cloneMap(m)
	return nil
}

func (s *Storage) GetMap(ctx context.Context, id model.MapID) (*model.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.maps[id]
	if !ok {
		return nil, model.ErrMapNotFound
	}
	return cloneMap(m), nil
}

func (s *Storage) ListMaps(ctx context.Context) ([]*model.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Map, 0, len(s.mapOrder))
	for _, id := range s.mapOrder {
		result = append(result, cloneMap(s.maps[id]))
	}
	return result, nil
}

func (s *Storage) FindFirstMapID(ctx context.Context) (model.MapID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.mapOrder) == 0 {
		return model.MapID{}, model.ErrMapNotFound
	}
	return s.mapOrder[0], nil
}

// Clone helpers. Slices are copied but nil stays nil, so stored values
// serialize the same way the caller's did.

func cloneConfiguration(cfg *model.Configuration) *model.Configuration {
	copied := *cfg
	copied.Players = cloneSlice(cfg.Players)
	return &copied
}

func cloneGame(game *model.Game) *model.Game {
	copied := *game
	if game.Players != nil {
		copied.Players = make([]model.Player, len(game.Players))
		for i, p := range game.Players {
			copied.Players[i] = clonePlayer(p)
		}
	}
	copied.NeutralTroops = cloneSlice(game.NeutralTroops)
	return &copied
}

func clonePlayer(p model.Player) model.Player {
	copied := p
	copied.CountryTroopCounts = cloneSlice(p.CountryTroopCounts)
	copied.Ports = cloneSlice(p.Ports)
	if p.Capitol != nil {
		capitol := *p.Capitol
		copied.Capitol = &capitol
	}
	return copied
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneMap(m *model.Map) *model.Map {
	copied := *m
	if m.Data != nil {
		copied.Data = make([]byte, len(m.Data))
		copy(copied.Data, m.Data)
	}
	return &copied
}
