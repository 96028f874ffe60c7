package redis

import (
	"fmt"
	"strings"

	"github.com/acmei/landgrab/internal/model"
)

// Key prefix for all session-related data
const keyPrefix = "landgrab"

// sessionKey returns the Redis key for a session record (either shape)
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// joinTokenIndexKey returns the Redis key for the join_token -> session_id index
func joinTokenIndexKey(joinToken string) string {
	return fmt.Sprintf("%s:idx:join_token:%s", keyPrefix, joinToken)
}

// playerTokenKey returns the Redis key for a PlayerTokenRecord
func playerTokenKey(token string) string {
	return fmt.Sprintf("%s:player_token:%s", keyPrefix, token)
}

// mapKey returns the Redis key for a Map
func mapKey(id model.MapID) string {
	return fmt.Sprintf("%s:map:%s", keyPrefix, encodeMapID(id))
}

// mapOrderKey returns the Redis key for the LIST of map ids in catalog order
func mapOrderKey() string {
	return fmt.Sprintf("%s:idx:map_order", keyPrefix)
}

// encodeMapID flattens a MapID into a single list-member string
func encodeMapID(id model.MapID) string {
	return fmt.Sprintf("%s:%s", id.Kind, id.ID)
}

func decodeMapID(s string) (model.MapID, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok || !model.MapKind(kind).Valid() {
		return model.MapID{}, fmt.Errorf("malformed map id %q", s)
	}
	return model.MapID{Kind: model.MapKind(kind), ID: rest}, nil
}
