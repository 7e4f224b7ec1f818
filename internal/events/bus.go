package events

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lumeo-dev/lumeo/internal/domain"
)

// Subscriber consumes a lifecycle event. A returned error does not stop
// delivery to the remaining subscribers.
type Subscriber func(e domain.Event) error

// Bus is a synchronous in-process fan-out of lifecycle events.
// Subscribers run in registration order on the publisher's goroutine,
// so Publish returns only after every subscriber has seen the event.
// There are no delivery guarantees beyond that: events are not
// persisted and there is no replay.
type Bus struct {
	mu   sync.RWMutex
	subs map[domain.EventKind][]Subscriber
	all  []Subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[domain.EventKind][]Subscriber)}
}

// Subscribe registers a subscriber for one event kind.
func (b *Bus) Subscribe(kind domain.EventKind, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[kind] = append(b.subs[kind], s)
}

// SubscribeAll registers a subscriber for every event kind. All-kind
// subscribers run after the kind-specific ones.
func (b *Bus) SubscribeAll(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, s)
}

// Publish delivers e to all matching subscribers. Subscriber errors and
// panics are isolated per subscriber and joined into the returned
// error, which callers treat as a non-fatal warning: the state
// transition that produced the event has already committed.
func (b *Bus) Publish(e domain.Event) error {
	b.mu.RLock()
	targets := make([]Subscriber, 0, len(b.subs[e.Kind])+len(b.all))
	targets = append(targets, b.subs[e.Kind]...)
	targets = append(targets, b.all...)
	b.mu.RUnlock()

	var errs []error
	for _, s := range targets {
		if err := b.deliver(s, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(s Subscriber, e domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic on %s: %v", e.Kind, r)
		}
	}()
	return s(e)
}
