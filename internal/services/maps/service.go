package maps

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/acmei/landgrab/internal/dependencies/token"
	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/storage"
)

// DefaultMapID identifies the seeded system map
var DefaultMapID = model.MapID{Kind: model.SystemMap, ID: "classic"}

// defaultMapData is a minimal playable geometry for the seeded map. The
// session core treats it as opaque; only renderers interpret it.
const defaultMapData = `{"countries":["alpha","bravo","charlie","delta"],"bodiesOfWater":["atlantic"],"dimensions":{"width":40,"height":30}}`

// Service manages the map catalog
type Service struct {
	storage storage.Storage
	token   token.Generator
}

// NewService creates a new map catalog service
func NewService(storage storage.Storage, token token.Generator) *Service {
	return &Service{
		storage: storage,
		token:   token,
	}
}

// FindFirstOrDefaultID returns the id of the first map in the catalog,
// seeding the default system map if the catalog is empty. Sessions
// created without an explicit map land on this.
func (s *Service) FindFirstOrDefaultID(ctx context.Context) (model.MapID, error) {
	id, err := s.storage.FindFirstMapID(ctx)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, model.ErrMapNotFound) {
		return model.MapID{}, err
	}

	if err := s.seedDefault(ctx); err != nil {
		return model.MapID{}, err
	}
	return DefaultMapID, nil
}

// Get retrieves a map by id
func (s *Service) Get(ctx context.Context, id model.MapID) (*model.Map, error) {
	if !id.Kind.Valid() {
		return nil, model.ErrInvalidMapKind
	}
	return s.storage.GetMap(ctx, id)
}

// List returns all maps in catalog order
func (s *Service) List(ctx context.Context) ([]*model.Map, error) {
	return s.storage.ListMaps(ctx)
}

// Create adds a user map to the catalog
func (s *Service) Create(ctx context.Context, name string, data json.RawMessage) (*model.Map, error) {
	m := &model.Map{
		ID:   model.MapID{Kind: model.UserMap, ID: s.token.Generate()},
		Name: name,
		Data: data,
	}
	if err := s.storage.SaveMap(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) seedDefault(ctx context.Context) error {
	return s.storage.SaveMap(ctx, &model.Map{
		ID:   DefaultMapID,
		Name: "Classic",
		Data: json.RawMessage(defaultMapData),
	})
}

// ServiceInterface for dependency injection
type ServiceInterface interface {
	FindFirstOrDefaultID(ctx context.Context) (model.MapID, error)
	Get(ctx context.Context, id model.MapID) (*model.Map, error)
	List(ctx context.Context) ([]*model.Map, error)
	Create(ctx context.Context, name string, data json.RawMessage) (*model.Map, error)
}

var _ ServiceInterface = (*Service)(nil)
