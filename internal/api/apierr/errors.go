package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/storage"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotHost             = "NOT_HOST"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeMapNotFound         = "MAP_NOT_FOUND"
	CodeStillConfiguring    = "STILL_CONFIGURING"
	CodeAlreadyStarted      = "ALREADY_STARTED"
	CodeColorNotAllowed     = "COLOR_NOT_ALLOWED"
	CodeColorTaken          = "COLOR_TAKEN"
	CodeInvalidMapKind      = "INVALID_MAP_KIND"
	CodeInvalidTurnStage    = "INVALID_TURN_STAGE"
	CodeMapChangeNotAllowed = "MAP_CHANGE_NOT_ALLOWED"
	CodePaletteExhausted    = "PALETTE_EXHAUSTED"
	CodeConflict            = "CONFLICT"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Not found
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found in session"}}
	case errors.Is(err, model.ErrMapNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMapNotFound, "Map not found"}}

	// The player token is the credential; an unknown one is an auth failure
	case errors.Is(err, model.ErrPlayerTokenNotFound):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid player token"}}

	// Wrong shape for the operation
	case errors.Is(err, model.ErrStillConfiguring):
		return &httpError{http.StatusConflict, APIError{CodeStillConfiguring, "Game has not started yet"}}
	case errors.Is(err, model.ErrAlreadyStarted):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyStarted, "Game has already started"}}

	// Authorization
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}

	// Validation
	case errors.Is(err, model.ErrColorNotAllowed):
		return &httpError{http.StatusBadRequest, APIError{CodeColorNotAllowed, "Color is not in the palette"}}
	case errors.Is(err, model.ErrColorTaken):
		return &httpError{http.StatusConflict, APIError{CodeColorTaken, "Color is taken by another player"}}
	case errors.Is(err, model.ErrInvalidMapKind):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMapKind, "Unknown map kind"}}
	case errors.Is(err, model.ErrInvalidTurnStage):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTurnStage, "Unknown turn stage"}}
	case errors.Is(err, model.ErrMapChangeNotAllowed):
		return &httpError{http.StatusConflict, APIError{CodeMapChangeNotAllowed, "Map cannot change after the game starts"}}

	// Exhaustion and contention
	case errors.Is(err, model.ErrPaletteExhausted):
		return &httpError{http.StatusConflict, APIError{CodePaletteExhausted, "Session is full: all colors are taken"}}
	case errors.Is(err, storage.ErrVersionConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Session was modified concurrently, retry"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
