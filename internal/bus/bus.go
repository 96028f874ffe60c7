package bus

import (
	"log/slog"
	"sync"

	"github.com/acmei/landgrab/internal/model"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber
// that falls this far behind starts losing events.
const subscriberBuffer = 16

// Bus fans session change events out to subscribers. Delivery is
// best-effort: publishing never blocks, and events published before a
// subscription exists are not replayed. Subscribers are expected to
// re-read session state on every notification rather than treat events
// as a change log.
type Bus struct {
	mu     sync.RWMutex
	subs   map[model.SessionID]map[*Subscription]struct{}
	closed bool
	logger *slog.Logger
}

// Subscription is a single subscriber's feed of events for one session
type Subscription struct {
	sessionID model.SessionID
	ch        chan model.Event
}

// Events returns the channel events are delivered on. It is closed when
// the subscription is cancelled or the bus shuts down.
func (s *Subscription) Events() <-chan model.Event {
	return s.ch
}

// New creates a new event bus
func New(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[model.SessionID]map[*Subscription]struct{}),
		logger: logger.With(slog.String("component", "bus")),
	}
}

// Subscribe registers interest in one session's events
func (b *Bus) Subscribe(sessionID model.SessionID) *Subscription {
	sub := &Subscription{
		sessionID: sessionID,
		ch:        make(chan model.Event, subscriberBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[*Subscription]struct{})
	}
	b.subs[sessionID][sub] = struct{}{}
	return sub
}

// Unsubscribe cancels a subscription and closes its channel. Cancelling
// twice is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[sub.sessionID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.sessionID)
	}
	close(sub.ch)
}

// Publish delivers an event to every current subscriber of its session.
// Subscribers with full buffers are skipped.
func (b *Bus) Publish(ev model.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	dropped := 0
	for sub := range b.subs[ev.SessionID] {
		select {
		case sub.ch <- ev:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.logger.Warn("event dropped - subscriber buffer full",
			slog.String("session_id", string(ev.SessionID)),
			slog.String("event_type", string(ev.Type)),
			slog.Int("dropped", dropped))
	}
}

// Close shuts down the bus and closes all subscriber channels
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, set := range b.subs {
		for sub := range set {
			close(sub.ch)
		}
	}
	b.subs = make(map[model.SessionID]map[*Subscription]struct{})
}

// SubscriberCount returns the number of active subscriptions for a session
func (b *Bus) SubscriberCount(sessionID model.SessionID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}
