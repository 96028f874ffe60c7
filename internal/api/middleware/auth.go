package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/acmei/landgrab/internal/api/apierr"
	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/storage"
)

type contextKey string

const tokenContextKey contextKey = "player_token"

// Auth creates authentication middleware. The bearer token is the
// player token minted at create/join time; resolving it to a
// PlayerTokenRecord is the entire authentication model.
func Auth(store storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			rec, err := store.GetPlayerToken(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), tokenContextKey, rec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the player token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// SSE via EventSource cannot set headers; allow a query parameter
	return r.URL.Query().Get("token")
}

// GetTokenRecord returns the authenticated token record from the
// request context
func GetTokenRecord(ctx context.Context) *model.PlayerTokenRecord {
	rec, _ := ctx.Value(tokenContextKey).(*model.PlayerTokenRecord)
	return rec
}

// MustGetTokenRecord returns the token record or panics
func MustGetTokenRecord(ctx context.Context) *model.PlayerTokenRecord {
	rec := GetTokenRecord(ctx)
	if rec == nil {
		panic("no token record in context - auth middleware not applied?")
	}
	return rec
}
