package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings. Sessions and player tokens expire together so a
	// token never outlives the session it points at. Maps never expire.
	SessionTTL     time.Duration
	PlayerTokenTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		SessionTTL:     7 * 24 * time.Hour,
		PlayerTokenTTL: 7 * 24 * time.Hour,
	}
}
