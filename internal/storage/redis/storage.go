package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// sessionEnvelope is the stored form of a session record. Exactly one of
// the two payloads is set, matching the envelope kind.
type sessionEnvelope struct {
	Kind          string               `json:"kind"`
	Configuration *model.Configuration `json:"configuration,omitempty"`
	Game          *model.Game          `json:"game,omitempty"`
}

const (
	kindConfiguration = "configuration"
	kindGame          = "game"
)

// Session operations

func (s *Storage) CreateConfiguration(ctx context.Context, cfg *model.Configuration) error {
	data, err := json.Marshal(sessionEnvelope{Kind: kindConfiguration, Configuration: cfg})
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(cfg.ID), data, s.cfg.SessionTTL)
	pipe.Set(ctx, joinTokenIndexKey(cfg.JoinToken), string(cfg.ID), s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetConfiguration(ctx context.Context, id model.SessionID) (*model.Configuration, error) {
	env, err := s.getEnvelope(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	if env.Kind != kindConfiguration {
		return nil, model.ErrAlreadyStarted
	}
	return env.Configuration, nil
}

func (s *Storage) GetConfigurationByJoinToken(ctx context.Context, joinToken string) (*model.Configuration, error) {
	// Look up session ID from join token index
	idStr, err := s.client.Get(ctx, joinTokenIndexKey(joinToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	cfg, err := s.GetConfiguration(ctx, model.SessionID(idStr))
	if errors.Is(err, model.ErrAlreadyStarted) {
		// A started session's join token no longer resolves
		return nil, model.ErrSessionNotFound
	}
	return cfg, err
}

func (s *Storage) UpdateConfiguration(ctx context.Context, cfg *model.Configuration) error {
	key := sessionKey(cfg.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		env, err := s.getEnvelope(ctx, tx, cfg.ID)
		if err != nil {
			return err
		}
		if env.Kind != kindConfiguration {
			return model.ErrAlreadyStarted
		}
		if env.Configuration.Version != cfg.Version {
			return storage.ErrVersionConflict
		}

		updated := *cfg
		updated.Version = cfg.Version + 1
		data, err := json.Marshal(sessionEnvelope{Kind: kindConfiguration, Configuration: &updated})
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.SessionTTL)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// Key changed between WATCH and EXEC
		return storage.ErrVersionConflict
	}
	return err
}

func (s *Storage) StartGame(ctx context.Context, game *model.Game, expectedVersion int64) error {
	key := sessionKey(game.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		env, err := s.getEnvelope(ctx, tx, game.ID)
		if err != nil {
			return err
		}
		if env.Kind != kindConfiguration {
			return model.ErrAlreadyStarted
		}
		if env.Configuration.Version != expectedVersion {
			return storage.ErrVersionConflict
		}

		data, err := json.Marshal(sessionEnvelope{Kind: kindGame, Game: game})
		if err != nil {
			return err
		}

		joinToken := env.Configuration.JoinToken
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.SessionTTL)
			pipe.Del(ctx, joinTokenIndexKey(joinToken))
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return storage.ErrVersionConflict
	}
	return err
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	env, err := s.getEnvelope(ctx, s.client, game.ID)
	if err != nil {
		return err
	}
	if env.Kind != kindGame {
		return model.ErrStillConfiguring
	}

	data, err := json.Marshal(sessionEnvelope{Kind: kindGame, Game: game})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(game.ID), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetGame(ctx context.Context, id model.SessionID) (*model.Game, error) {
	env, err := s.getEnvelope(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	if env.Kind != kindGame {
		return nil, model.ErrStillConfiguring
	}
	return env.Game, nil
}

// getEnvelope reads and decodes a session record via any client capable
// of GET, so it works both directly and inside a WATCH transaction.
func (s *Storage) getEnvelope(ctx context.Context, c redis.Cmdable, id model.SessionID) (*sessionEnvelope, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var env sessionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Player token operations

func (s *Storage) SavePlayerToken(ctx context.Context, rec *model.PlayerTokenRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerTokenKey(rec.Token), data, s.cfg.PlayerTokenTTL).Err()
}

func (s *Storage) GetPlayerToken(ctx context.Context, token string) (*model.PlayerTokenRecord, error) {
	data, err := s.client.Get(ctx, playerTokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerTokenNotFound
		}
		return nil, err
	}

	var rec model.PlayerTokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Map catalog operations

func (s *Storage) SaveMap(ctx context.Context, m *model.Map) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	key := mapKey(m.ID)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}

	// Maps are permanent: no TTL
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, 0)
	if exists == 0 {
		pipe.RPush(ctx, mapOrderKey(), encodeMapID(m.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMap(ctx context.Context, id model.MapID) (*model.Map, error) {
	data, err := s.client.Get(ctx, mapKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMapNotFound
		}
		return nil, err
	}

	var m model.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Storage) ListMaps(ctx context.Context) ([]*model.Map, error) {
	encodedIDs, err := s.client.LRange(ctx, mapOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(encodedIDs) == 0 {
		return []*model.Map{}, nil
	}

	keys := make([]string, 0, len(encodedIDs))
	for _, enc := range encodedIDs {
		id, err := decodeMapID(enc)
		if err != nil {
			continue // Skip malformed index entries
		}
		keys = append(keys, mapKey(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	maps := make([]*model.Map, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var m model.Map
		if err := json.Unmarshal([]byte(val.(string)), &m); err != nil {
			continue // Skip invalid data
		}
		maps = append(maps, &m)
	}

	return maps, nil
}

func (s *Storage) FindFirstMapID(ctx context.Context) (model.MapID, error) {
	enc, err := s.client.LIndex(ctx, mapOrderKey(), 0).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.MapID{}, model.ErrMapNotFound
		}
		return model.MapID{}, err
	}
	return decodeMapID(enc)
}
