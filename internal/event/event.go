package event

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/dshills/docsurface/internal/event/topic"
)

// Event represents a structured notification.
// Events are immutable once created.
type Event[T any] struct {
	// Type is the hierarchical event type (e.g., "view.keydown").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that fired the event.
	Source string
}

// NewEvent creates a new event with the given type and payload.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        generateID(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// EventMetadata returns the event's metadata for type-erased handling.
func (e Event[T]) EventMetadata() Metadata {
	return e.Metadata
}

// EventPayload returns the payload as an untyped value.
func (e Event[T]) EventPayload() any {
	return e.Payload
}

// TopicProvider is implemented by types that can provide their topic.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// MetadataProvider is implemented by types that can provide their metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}

// PayloadProvider is implemented by types that expose an untyped payload.
type PayloadProvider interface {
	EventPayload() any
}

// Envelope wraps any event for type-erased handling.
type Envelope struct {
	// Topic is the event topic.
	Topic topic.Topic

	// Payload is the type-erased event payload.
	Payload any

	// Metadata is the event metadata.
	Metadata Metadata
}

// ToEnvelope converts an event to an Envelope.
// Returns an empty Envelope if the event doesn't carry a topic.
func ToEnvelope(event any) Envelope {
	if env, ok := event.(Envelope); ok {
		return env
	}
	tp, ok := event.(TopicProvider)
	if !ok {
		return Envelope{}
	}

	env := Envelope{
		Topic:   tp.EventTopic(),
		Payload: event,
	}
	if pp, ok := event.(PayloadProvider); ok {
		env.Payload = pp.EventPayload()
	}
	if mp, ok := event.(MetadataProvider); ok {
		env.Metadata = mp.EventMetadata()
	}
	return env
}

// Payload extracts a typed payload from a delivered event.
func Payload[T any](event any) (T, bool) {
	switch e := event.(type) {
	case Event[T]:
		return e.Payload, true
	case Envelope:
		p, ok := e.Payload.(T)
		return p, ok
	}
	var zero T
	return zero, false
}

// generateID generates a unique event ID.
func generateID() string {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}
