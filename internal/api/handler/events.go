package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/acmei/landgrab/internal/api/middleware"
	"github.com/acmei/landgrab/internal/bus"
	"github.com/acmei/landgrab/internal/model"
)

// pingPeriod is the time between SSE keepalive comments
const pingPeriod = 15 * time.Second

// EventsHandler streams session change events over SSE
type EventsHandler struct {
	bus *bus.Bus
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(bus *bus.Bus) *EventsHandler {
	return &EventsHandler{
		bus: bus,
	}
}

// Stream handles GET /api/v1/games/me/events. Events are wake-up hints:
// clients re-fetch session state on each one rather than reading state
// out of the event.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rec := middleware.MustGetTokenRecord(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	sub := h.bus.Subscribe(rec.SessionID)
	defer h.bus.Unsubscribe(sub)

	// Initial event so clients know the stream is live
	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				// Bus shut down
				return
			}
			if _, err := w.Write(formatSSEEvent(ev)); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}

// formatSSEEvent renders a bus event as an SSE message. Event payloads
// are single-line JSON, so one data field is enough.
func formatSSEEvent(ev model.Event) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil
	}
	msg := "event: " + string(ev.Type) + "\ndata: " + string(data) + "\n\n"
	return []byte(msg)
}
