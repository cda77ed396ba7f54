package observer

import (
	"context"

	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/event/topic"
	"github.com/dshills/docsurface/internal/view"
)

// TranslateFunc turns one accepted raw event into structured events.
type TranslateFunc func(ctx context.Context, root *view.Root, raw view.RawEvent) error

// DomEventObserver listens for a set of raw event types on every observed
// root and hands each accepted event to its translate function.
type DomEventObserver struct {
	*view.BaseObserver

	name         string
	types        []string
	editableOnly bool
	translate    TranslateFunc

	// Filter replaces the ignore check. It defaults to
	// CheckShouldIgnoreEventFromTarget.
	Filter func(view.Node) bool
}

// NewDomEventObserver creates a disabled observer for the raw event types.
func NewDomEventObserver(c *view.Controller, name string, types []string, translate TranslateFunc) *DomEventObserver {
	o := &DomEventObserver{
		BaseObserver: view.NewBaseObserver(c),
		name:         name,
		types:        types,
		translate:    translate,
	}
	o.Filter = o.CheckShouldIgnoreEventFromTarget
	return o
}

// Name returns the observer name.
func (o *DomEventObserver) Name() string { return o.name }

// Types returns the raw event types the observer listens for.
func (o *DomEventObserver) Types() []string { return o.types }

// RequireEditable makes Observe reject read-only roots.
func (o *DomEventObserver) RequireEditable() *DomEventObserver {
	o.editableOnly = true
	return o
}

// Observe listens for the observer's raw event types on root.
func (o *DomEventObserver) Observe(root *view.Root, name string) error {
	if o.editableOnly && !root.IsEditable() {
		return &view.UnsupportedRootError{Observer: o.name, Root: name, Kind: root.Kind()}
	}
	if !o.MarkObserved(name) {
		return nil
	}
	for _, t := range o.types {
		if _, err := o.Listener().ListenToFunc(root.Emitter(), view.RawTopic(t), func(ctx context.Context, ev any) error {
			return o.onRawEvent(ctx, root, ev)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (o *DomEventObserver) onRawEvent(ctx context.Context, root *view.Root, ev any) error {
	if !o.IsEnabled() {
		return nil
	}
	raw, ok := event.Payload[view.RawEvent](ev)
	if !ok {
		return nil
	}
	if raw.Type != view.RawMutation && o.Filter(raw.Target) {
		return nil
	}
	return o.translate(ctx, root, raw)
}

// Fire emits a structured event on the controller emitter.
func Fire[T any](ctx context.Context, o *DomEventObserver, t topic.Topic, payload T) error {
	return event.Emit(ctx, o.Controller().Emitter(), t, payload)
}
