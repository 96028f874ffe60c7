package model

import "encoding/json"

// MapKind distinguishes the two map catalogs
type MapKind string

const (
	UserMap   MapKind = "user"
	SystemMap MapKind = "system"
)

// Valid reports whether k is a known map kind.
func (k MapKind) Valid() bool {
	return k == UserMap || k == SystemMap
}

// MapID is a tagged reference to a map resource. Two ids with the same ID
// but different kinds refer to different maps, so the kind participates in
// equality and must survive persistence round-trips.
type MapID struct {
	Kind MapKind `json:"kind"`
	ID   string  `json:"id"`
}

func (m MapID) String() string {
	return string(m.Kind) + "/" + m.ID
}

// Map is a map catalog record. The session core never inspects the
// geometry; Data is carried opaquely for the rendering layer.
type Map struct {
	ID   MapID           `json:"id"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}
