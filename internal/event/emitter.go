package event

import (
	"context"
	"errors"
	"runtime/debug"
	"sort"
	"strconv"
	"sync"

	"github.com/dshills/docsurface/internal/event/topic"
)

// Emitter delivers events synchronously to the handlers subscribed on it.
// It is safe for concurrent use, but handlers always run in the goroutine
// that called Fire.
type Emitter struct {
	mu     sync.RWMutex
	source string
	subs   []*subscription
	nextID uint64

	panicHandler PanicHandler
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithPanicHandler sets a callback invoked when a handler panics.
func WithPanicHandler(h PanicHandler) EmitterOption {
	return func(e *Emitter) {
		e.panicHandler = h
	}
}

// NewEmitter creates an emitter. The source names the owning component and
// is stamped into events built with Emit.
func NewEmitter(source string, opts ...EmitterOption) *Emitter {
	e := &Emitter{source: source}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Source returns the name of the owning component.
func (e *Emitter) Source() string {
	return e.source
}

// On subscribes a handler to a topic pattern.
func (e *Emitter) On(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	sub := newSubscription(e.source+"#"+strconv.FormatUint(e.nextID, 10), pattern, handler, opts...)

	// Keep subscriptions ordered by priority; equal priorities keep insertion order.
	idx := sort.Search(len(e.subs), func(i int) bool {
		return e.subs[i].config.Priority > sub.config.Priority
	})
	e.subs = append(e.subs, nil)
	copy(e.subs[idx+1:], e.subs[idx:])
	e.subs[idx] = sub

	return sub, nil
}

// OnFunc is a convenience method for subscribing with a function handler.
func (e *Emitter) OnFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return e.On(pattern, fn, opts...)
}

// Off cancels and removes a subscription.
func (e *Emitter) Off(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()
	if !e.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Count returns the number of subscriptions that are not cancelled.
func (e *Emitter) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, s := range e.subs {
		if s.State() != SubscriptionStateCancelled {
			n++
		}
	}
	return n
}

// Emit builds an Event from the payload, stamped with this emitter's
// source, and fires it.
func Emit[T any](ctx context.Context, e *Emitter, eventType topic.Topic, payload T) error {
	return e.Fire(ctx, NewEvent(eventType, payload, e.source))
}

// Fire delivers an event to every matching subscription.
// Handler errors and panics do not stop delivery; they are joined into the
// returned error.
func (e *Emitter) Fire(ctx context.Context, event any) error {
	eventTopic := extractTopic(event)
	if eventTopic == "" {
		return ErrInvalidEvent
	}

	e.mu.RLock()
	matched := make([]*subscription, 0, len(e.subs))
	for _, s := range e.subs {
		if eventTopic.Matches(s.topic) {
			matched = append(matched, s)
		}
	}
	e.mu.RUnlock()

	var errs []error
	for _, s := range matched {
		if !s.shouldDeliver(event) {
			continue
		}
		if err := e.deliver(ctx, s, eventTopic, event); err != nil {
			errs = append(errs, err)
			continue
		}
		if s.config.Once {
			s.Cancel()
			e.remove(s.id)
		}
	}
	return errors.Join(errs...)
}

// deliver runs one handler, converting a panic into a PanicError.
func (e *Emitter) deliver(ctx context.Context, s *subscription, t topic.Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			if e.panicHandler != nil {
				e.panicHandler(event, r, stack)
			}
			err = &PanicError{
				SubscriptionID: s.id,
				Topic:          t.String(),
				Value:          r,
				Stack:          string(stack),
			}
		}
	}()

	if herr := s.handler.Handle(ctx, event); herr != nil {
		return &HandlerError{SubscriptionID: s.id, Topic: t.String(), Err: herr}
	}
	return nil
}

func (e *Emitter) remove(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return true
		}
	}
	return false
}

// extractTopic extracts the topic from an event.
func extractTopic(event any) topic.Topic {
	if tp, ok := event.(TopicProvider); ok {
		return tp.EventTopic()
	}
	if env, ok := event.(Envelope); ok {
		return env.Topic
	}
	return ""
}
