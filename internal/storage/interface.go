package storage

import (
	"context"
	"errors"

	"github.com/acmei/landgrab/internal/model"
)

// ErrVersionConflict is returned by version-checked writes when the
// stored record changed since it was read. Callers re-read and retry.
var ErrVersionConflict = errors.New("session was modified concurrently")

// Storage defines the interface for data persistence.
//
// A session record holds exactly one of the two session shapes. Reads are
// shape-checked: asking for a Configuration when the record is a Game
// fails with model.ErrAlreadyStarted, and asking for a Game when the
// record is a Configuration fails with model.ErrStillConfiguring.
// Configuration writes are guarded by an optimistic version counter so
// two concurrent read-modify-write cycles cannot both land.
type Storage interface {
	// Session operations
	CreateConfiguration(ctx context.Context, cfg *model.Configuration) error
	GetConfiguration(ctx context.Context, id model.SessionID) (*model.Configuration, error)
	// GetConfigurationByJoinToken resolves a join token. Join tokens of
	// started sessions are treated as unresolvable: the result is
	// model.ErrSessionNotFound, not a shape error.
	GetConfigurationByJoinToken(ctx context.Context, joinToken string) (*model.Configuration, error)
	// UpdateConfiguration writes cfg if the stored version still equals
	// cfg.Version, bumping the version on success. Fails with
	// ErrVersionConflict otherwise.
	UpdateConfiguration(ctx context.Context, cfg *model.Configuration) error
	// StartGame atomically replaces the Configuration shape with the Game
	// shape, subject to the same version check. The transition is one-way;
	// starting an already-started session fails with model.ErrAlreadyStarted.
	StartGame(ctx context.Context, game *model.Game, expectedVersion int64) error
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.SessionID) (*model.Game, error)

	// Player token operations
	SavePlayerToken(ctx context.Context, rec *model.PlayerTokenRecord) error
	GetPlayerToken(ctx context.Context, token string) (*model.PlayerTokenRecord, error)

	// Map catalog operations
	SaveMap(ctx context.Context, m *model.Map) error
	GetMap(ctx context.Context, id model.MapID) (*model.Map, error)
	ListMaps(ctx context.Context) ([]*model.Map, error)
	// FindFirstMapID returns the id of the first map in the catalog, used
	// as the default when a session is created without an explicit map.
	FindFirstMapID(ctx context.Context) (model.MapID, error)
}
