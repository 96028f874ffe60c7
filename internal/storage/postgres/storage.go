package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface.
// Session records carry a kind column alongside their JSON payload, and
// configuration writes compare-and-swap on the version column.
type Storage struct {
	pool *pgxpool.Pool
}

// New creates a new Postgres storage instance
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Storage{pool: pool}, nil
}

// NewWithPool creates a Postgres storage with an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close closes the connection pool
func (s *Storage) Close() {
	s.pool.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

const (
	kindConfiguration = "configuration"
	kindGame          = "game"
)

// EnsureSchema creates the tables if they do not exist yet
func (s *Storage) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			version    BIGINT NOT NULL,
			join_token TEXT UNIQUE,
			state_json JSONB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS player_tokens (
			token      TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions (id),
			player_id  INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS maps (
			kind     TEXT NOT NULL,
			id       TEXT NOT NULL,
			name     TEXT NOT NULL,
			data     JSONB,
			position BIGSERIAL,
			PRIMARY KEY (kind, id)
		);
	`)
	return err
}

// Session operations

func (s *Storage) CreateConfiguration(ctx context.Context, cfg *model.Configuration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	q := `
	INSERT INTO sessions (id, kind, version, join_token, state_json)
	VALUES ($1, $2, $3, $4, $5);
	`
	_, err = s.pool.Exec(ctx, q, string(cfg.ID), kindConfiguration, cfg.Version, cfg.JoinToken, data)
	return err
}

func (s *Storage) GetConfiguration(ctx context.Context, id model.SessionID) (*model.Configuration, error) {
	q := `SELECT kind, state_json FROM sessions WHERE id = $1;`

	var kind string
	var data []byte
	if err := s.pool.QueryRow(ctx, q, string(id)).Scan(&kind, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	if kind != kindConfiguration {
		return nil, model.ErrAlreadyStarted
	}

	var cfg model.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Storage) GetConfigurationByJoinToken(ctx context.Context, joinToken string) (*model.Configuration, error) {
	// Started sessions have their join_token nulled out, so a match here
	// is always a configuration
	q := `SELECT state_json FROM sessions WHERE join_token = $1;`

	var data []byte
	if err := s.pool.QueryRow(ctx, q, joinToken).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var cfg model.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Storage) UpdateConfiguration(ctx context.Context, cfg *model.Configuration) error {
	updated := *cfg
	updated.Version = cfg.Version + 1
	data, err := json.Marshal(&updated)
	if err != nil {
		return err
	}

	q := `
	UPDATE sessions SET version = $1, state_json = $2
	WHERE id = $3 AND kind = $4 AND version = $5;
	`
	ct, err := s.pool.Exec(ctx, q, updated.Version, data, string(cfg.ID), kindConfiguration, cfg.Version)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.classifyMissedWrite(ctx, cfg.ID, kindConfiguration)
	}
	return nil
}

func (s *Storage) StartGame(ctx context.Context, game *model.Game, expectedVersion int64) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	q := `
	UPDATE sessions
	SET kind = $1, version = version + 1, join_token = NULL, state_json = $2
	WHERE id = $3 AND kind = $4 AND version = $5;
	`
	ct, err := s.pool.Exec(ctx, q, kindGame, data, string(game.ID), kindConfiguration, expectedVersion)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.classifyMissedWrite(ctx, game.ID, kindConfiguration)
	}
	return nil
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	q := `UPDATE sessions SET state_json = $1 WHERE id = $2 AND kind = $3;`
	ct, err := s.pool.Exec(ctx, q, data, string(game.ID), kindGame)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.classifyMissedWrite(ctx, game.ID, kindGame)
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.SessionID) (*model.Game, error) {
	q := `SELECT kind, state_json FROM sessions WHERE id = $1;`

	var kind string
	var data []byte
	if err := s.pool.QueryRow(ctx, q, string(id)).Scan(&kind, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	if kind != kindGame {
		return nil, model.ErrStillConfiguring
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// classifyMissedWrite turns a zero-row UPDATE into the right sentinel by
// checking what the stored record actually looks like.
func (s *Storage) classifyMissedWrite(ctx context.Context, id model.SessionID, wantKind string) error {
	var kind string
	err := s.pool.QueryRow(ctx, `SELECT kind FROM sessions WHERE id = $1;`, string(id)).Scan(&kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	if kind != wantKind {
		if wantKind == kindConfiguration {
			return model.ErrAlreadyStarted
		}
		return model.ErrStillConfiguring
	}
	return storage.ErrVersionConflict
}

// Player token operations

func (s *Storage) SavePlayerToken(ctx context.Context, rec *model.PlayerTokenRecord) error {
	q := `
	INSERT INTO player_tokens (token, session_id, player_id) VALUES ($1, $2, $3)
	ON CONFLICT (token) DO UPDATE SET session_id = $2, player_id = $3;
	`
	_, err := s.pool.Exec(ctx, q, rec.Token, string(rec.SessionID), int(rec.PlayerID))
	return err
}

func (s *Storage) GetPlayerToken(ctx context.Context, token string) (*model.PlayerTokenRecord, error) {
	q := `SELECT session_id, player_id FROM player_tokens WHERE token = $1;`

	var sessionID string
	var playerID int
	if err := s.pool.QueryRow(ctx, q, token).Scan(&sessionID, &playerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerTokenNotFound
		}
		return nil, err
	}

	return &model.PlayerTokenRecord{
		Token:     token,
		SessionID: model.SessionID(sessionID),
		PlayerID:  model.PlayerID(playerID),
	}, nil
}

// Map catalog operations

func (s *Storage) SaveMap(ctx context.Context, m *model.Map) error {
	q := `
	INSERT INTO maps (kind, id, name, data) VALUES ($1, $2, $3, $4)
	ON CONFLICT (kind, id) DO UPDATE SET name = $3, data = $4;
	`
	_, err := s.pool.Exec(ctx, q, string(m.ID.Kind), m.ID.ID, m.Name, []byte(m.Data))
	return err
}

func (s *Storage) GetMap(ctx context.Context, id model.MapID) (*model.Map, error) {
	q := `SELECT name, data FROM maps WHERE kind = $1 AND id = $2;`

	m := model.Map{ID: id}
	var data []byte
	if err := s.pool.QueryRow(ctx, q, string(id.Kind), id.ID).Scan(&m.Name, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrMapNotFound
		}
		return nil, err
	}
	m.Data = json.RawMessage(data)
	return &m, nil
}

func (s *Storage) ListMaps(ctx context.Context) ([]*model.Map, error) {
	q := `SELECT kind, id, name, data FROM maps ORDER BY position;`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	maps := []*model.Map{}
	for rows.Next() {
		var kind, id string
		var m model.Map
		var data []byte
		if err := rows.Scan(&kind, &id, &m.Name, &data); err != nil {
			return nil, err
		}
		m.ID = model.MapID{Kind: model.MapKind(kind), ID: id}
		m.Data = json.RawMessage(data)
		maps = append(maps, &m)
	}
	return maps, rows.Err()
}

func (s *Storage) FindFirstMapID(ctx context.Context) (model.MapID, error) {
	q := `SELECT kind, id FROM maps ORDER BY position LIMIT 1;`

	var kind, id string
	if err := s.pool.QueryRow(ctx, q).Scan(&kind, &id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MapID{}, model.ErrMapNotFound
		}
		return model.MapID{}, err
	}
	return model.MapID{Kind: model.MapKind(kind), ID: id}, nil
}
