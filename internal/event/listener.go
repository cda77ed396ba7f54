package event

import (
	"sync"

	"github.com/dshills/docsurface/internal/event/topic"
)

// Listener records the subscriptions a component makes on other emitters
// so they can be released together.
type Listener struct {
	mu       sync.Mutex
	entries  []listenEntry
	released bool
}

type listenEntry struct {
	emitter *Emitter
	sub     Subscription
}

// NewListener creates an empty listener.
func NewListener() *Listener {
	return &Listener{}
}

// ListenTo subscribes handler on src and records the subscription.
func (l *Listener) ListenTo(src *Emitter, pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if src == nil {
		return nil, ErrNilEmitter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return nil, ErrListenerReleased
	}

	sub, err := src.On(pattern, handler, opts...)
	if err != nil {
		return nil, err
	}
	l.entries = append(l.entries, listenEntry{emitter: src, sub: sub})
	return sub, nil
}

// ListenToFunc is ListenTo with a function handler.
func (l *Listener) ListenToFunc(src *Emitter, pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return l.ListenTo(src, pattern, fn, opts...)
}

// StopListeningTo releases the subscriptions made on src and returns how
// many were removed. The listener stays usable.
func (l *Listener) StopListeningTo(src *Emitter) int {
	l.mu.Lock()
	var keep, drop []listenEntry
	for _, e := range l.entries {
		if e.emitter == src {
			drop = append(drop, e)
		} else {
			keep = append(keep, e)
		}
	}
	l.entries = keep
	l.mu.Unlock()

	for _, e := range drop {
		_ = e.emitter.Off(e.sub)
	}
	return len(drop)
}

// StopListening releases every recorded subscription on every emitter.
// The listener cannot be used afterwards.
func (l *Listener) StopListening() {
	l.mu.Lock()
	entries := l.entries
	l.entries = nil
	l.released = true
	l.mu.Unlock()

	for _, e := range entries {
		// Already-removed subscriptions (Once, manual Off) are fine to skip.
		_ = e.emitter.Off(e.sub)
	}
}

// Count returns the number of live recorded subscriptions.
func (l *Listener) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, e := range l.entries {
		if e.sub.State() != SubscriptionStateCancelled {
			n++
		}
	}
	return n
}
