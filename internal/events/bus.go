// Package events carries the process-wide logout notification. Both an
// operator-initiated logout and a logout forced by the API gateway publish
// here, and the portal surfaces subscribe to show the reason.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogoutEvent announces that the session ended. Reason is a human-readable
// message and may be empty.
type LogoutEvent struct {
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// Bus is a broadcast channel for LogoutEvents. Publishing never blocks: a
// subscriber that is not keeping up misses events.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	now    func() time.Time
	log    zerolog.Logger
	closed bool
}

// Subscription is one listener on a Bus.
type Subscription struct {
	C    <-chan LogoutEvent
	ch   chan LogoutEvent
	bus  *Bus
	once sync.Once
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[*Subscription]struct{}),
		now:  time.Now,
		log:  log.Logger.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers a listener with the given channel buffer (minimum 1).
// On a closed bus the returned subscription's channel is already closed.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan LogoutEvent, buffer)
	s := &Subscription{C: ch, ch: ch, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		s.once.Do(func() {})
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Close unregisters the subscription and closes its channel. It is safe to
// call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

// Publish delivers a logout event with reason to every subscriber and
// returns the event.
func (b *Bus) Publish(reason string) LogoutEvent {
	ev := LogoutEvent{Reason: reason, At: b.now().UTC()}

	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		select {
		case s.ch <- ev:
		default:
			b.log.Warn().Msg("logout subscriber is full, event dropped")
		}
	}
	return ev
}

// Close closes every subscription. Later Publish calls are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.closed = true
	b.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}
