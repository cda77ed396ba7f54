package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/event/topic"
	"github.com/dshills/docsurface/internal/logging"
)

// Document event topics.
const (
	// TopicChangeData is fired after a change block that altered content
	// or data-affecting markers.
	TopicChangeData topic.Topic = "document.change.data"

	// TopicMarkersUpdate is the parent of the per-marker update topics.
	TopicMarkersUpdate topic.Topic = "markers.update"
)

// MarkerTopic returns the update topic for one marker.
func MarkerTopic(name string) topic.Topic {
	return TopicMarkersUpdate.Child(name)
}

// DataChange is the payload of TopicChangeData.
type DataChange struct {
	// Version is the document version after the change.
	Version uint64

	// ChangedElements lists the elements whose children changed, in the
	// order they were first touched.
	ChangedElements []*Element
}

// Document is a structured document with named roots and markers.
type Document struct {
	schema  *Schema
	roots   []*Element
	markers *MarkerCollection
	emitter *event.Emitter
	version uint64
	logger  *slog.Logger

	// active change block
	writer *Writer
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the document logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		d.logger = l
	}
}

// NewDocument creates an empty document. A nil schema means DefaultSchema.
func NewDocument(schema *Schema, opts ...Option) *Document {
	if schema == nil {
		schema = DefaultSchema()
	}
	d := &Document{
		schema:  schema,
		markers: newMarkerCollection(),
		emitter: event.NewEmitter("document"),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.OrDefault(d.logger)
	return d
}

// Schema returns the document schema.
func (d *Document) Schema() *Schema { return d.schema }

// Markers returns the marker collection.
func (d *Document) Markers() *MarkerCollection { return d.markers }

// Emitter returns the emitter that document events are fired on.
func (d *Document) Emitter() *event.Emitter { return d.emitter }

// Version returns the number of change blocks that modified the document.
func (d *Document) Version() uint64 { return d.version }

// CreateRoot adds a named root.
func (d *Document) CreateRoot(name string) (*Element, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty root name", ErrNoSuchRoot)
	}
	if d.Root(name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootExists, name)
	}
	root := NewElement(RootName, nil)
	root.rootName = name
	root.rootIndex = len(d.roots)
	d.roots = append(d.roots, root)
	return root, nil
}

// Root returns the named root, or nil.
func (d *Document) Root(name string) *Element {
	for _, r := range d.roots {
		if r.rootName == name {
			return r
		}
	}
	return nil
}

// Roots returns the roots in creation order.
func (d *Document) Roots() []*Element {
	out := make([]*Element, len(d.roots))
	copy(out, d.roots)
	return out
}

// Change runs fn as one atomic mutation. Calls made while a change block
// is running join it. Document events are fired after the outermost block
// returns, even when fn fails; changes made before the failure are kept.
func (d *Document) Change(fn func(w *Writer) error) error {
	if d.writer != nil {
		return fn(d.writer)
	}

	w := newWriter(d)
	d.writer = w
	err := d.runBlock(w, fn)
	d.writer = nil
	w.closed = true

	if w.dataChanged {
		d.version++
	}
	return errors.Join(err, d.fireChangeEvents(w))
}

// runBlock calls fn and turns a panic into an error so the writer is
// always released.
func (d *Document) runBlock(w *Writer, fn func(w *Writer) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("change block panicked: %v", r)
		}
	}()
	return fn(w)
}

func (d *Document) fireChangeEvents(w *Writer) error {
	ctx := context.Background()
	var errs []error

	for _, name := range w.markerOrder {
		change := w.markerChanges[name]
		if m := d.markers.Get(name); m != nil && !change.Removed {
			change.NewRange = m.rng
		}
		if !change.Added && !change.Removed &&
			change.OldRange.Start.IsEqual(change.NewRange.Start) && change.OldRange.End.IsEqual(change.NewRange.End) {
			continue
		}
		if change.Added && change.Removed {
			continue
		}
		if err := event.Emit(ctx, d.emitter, MarkerTopic(name), *change); err != nil {
			errs = append(errs, err)
		}
	}

	if w.dataChanged {
		payload := DataChange{Version: d.version, ChangedElements: w.changedElements}
		if err := event.Emit(ctx, d.emitter, TopicChangeData, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		d.logger.Warn("document event handlers failed", "errors", len(errs))
	}
	return errors.Join(errs...)
}
