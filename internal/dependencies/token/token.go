package token

import "github.com/google/uuid"

// Generator produces opaque identifiers used as join and player tokens.
// Tokens are capability credentials: holders are assumed authorized, so
// implementations must be cryptographically unguessable.
type Generator interface {
	Generate() string
}

// UUIDGenerator implements Generator using random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a new random token
func (g *UUIDGenerator) Generate() string {
	return uuid.NewString()
}
