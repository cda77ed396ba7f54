package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/docsurface/internal/backend"
	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/event/topic"
	"github.com/dshills/docsurface/internal/logging"
)

// Raw event types fired by the surface.
const (
	RawKeyDown   = "keydown"
	RawKeyUp     = "keyup"
	RawMouseDown = "mousedown"
	RawMouseUp   = "mouseup"
	RawWheel     = "wheel"
	RawFocus     = "focus"
	RawBlur      = "blur"
	RawPaste     = "paste"
	RawMutation  = "mutation"
)

// RawTopic returns the topic raw events of the given type are fired on.
func RawTopic(eventType string) topic.Topic {
	return topic.Join("surface", eventType)
}

// RawEvent is an unfiltered event that happened on the surface.
type RawEvent struct {
	Type   string
	Target Node

	// Keys
	Key  backend.Key
	Rune rune
	Mod  backend.ModMask

	// Mouse
	X, Y   int
	Button backend.MouseButton

	// Paste
	Text string

	// Mutations
	Mutations []MutationRecord
}

// RootKind tells what an attached root permits.
type RootKind int

const (
	// RootEditable accepts user input.
	RootEditable RootKind = iota
	// RootReadOnly is display only.
	RootReadOnly
)

// String returns the kind name.
func (k RootKind) String() string {
	if k == RootReadOnly {
		return "read-only"
	}
	return "editable"
}

// Root is an attached surface root.
type Root struct {
	name    string
	kind    RootKind
	element *Element
	emitter *event.Emitter
	surface *Surface

	batching int
	pending  []MutationRecord
}

// Name returns the root name.
func (r *Root) Name() string { return r.name }

// Kind returns the root kind.
func (r *Root) Kind() RootKind { return r.kind }

// IsEditable reports whether the root accepts user input.
func (r *Root) IsEditable() bool { return r.kind == RootEditable }

// Element returns the root element.
func (r *Root) Element() *Element { return r.element }

// Emitter returns the emitter raw events for this root are fired on.
func (r *Root) Emitter() *event.Emitter { return r.emitter }

// Batch runs fn and fires the mutations it made as one record batch.
func (r *Root) Batch(fn func()) error {
	r.batching++
	func() {
		defer func() { r.batching-- }()
		fn()
	}()
	if r.batching > 0 || len(r.pending) == 0 {
		return nil
	}
	recs := r.pending
	r.pending = nil
	return r.fireMutations(recs)
}

func (r *Root) record(rec MutationRecord) {
	if r.batching > 0 {
		r.pending = append(r.pending, rec)
		return
	}
	if err := r.fireMutations([]MutationRecord{rec}); err != nil {
		r.surface.logger.Warn("mutation handlers failed", "root", r.name, "error", err)
	}
}

func (r *Root) fireMutations(recs []MutationRecord) error {
	ev := RawEvent{Type: RawMutation, Target: r.element, Mutations: recs}
	return event.Emit(context.Background(), r.emitter, RawTopic(RawMutation), ev)
}

// Surface holds the attached roots and routes raw events to them.
type Surface struct {
	roots   []*Root
	focused *Root
	logger  *slog.Logger
}

// NewSurface creates an empty surface.
func NewSurface(logger *slog.Logger) *Surface {
	return &Surface{logger: logging.OrDefault(logger)}
}

// Attach makes el a root named name.
func (s *Surface) Attach(name string, el *Element, kind RootKind) (*Root, error) {
	if s.Root(name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootExists, name)
	}
	if el == nil || el.parent != nil || el.root != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootInUse, name)
	}
	r := &Root{
		name:    name,
		kind:    kind,
		element: el,
		emitter: event.NewEmitter("surface:" + name),
		surface: s,
	}
	el.root = r
	s.roots = append(s.roots, r)
	if s.focused == nil && r.IsEditable() {
		s.focused = r
	}
	return r, nil
}

// Detach removes a root. Its emitter keeps existing subscriptions but no
// longer receives events; Controller.DetachRoot also releases observers.
func (s *Surface) Detach(name string) error {
	for i, r := range s.roots {
		if r.name != name {
			continue
		}
		r.element.root = nil
		s.roots = append(s.roots[:i], s.roots[i+1:]...)
		if s.focused == r {
			s.focused = nil
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNoSuchRoot, name)
}

// Root returns the named root, or nil.
func (s *Surface) Root(name string) *Root {
	for _, r := range s.roots {
		if r.name == name {
			return r
		}
	}
	return nil
}

// Roots returns the attached roots in attach order.
func (s *Surface) Roots() []*Root {
	out := make([]*Root, len(s.roots))
	copy(out, s.roots)
	return out
}

// Focused returns the root receiving keyboard input, or nil.
func (s *Surface) Focused() *Root { return s.focused }

// Focus moves keyboard focus to the named root, firing blur on the old
// root and focus on the new one.
func (s *Surface) Focus(name string) error {
	r := s.Root(name)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrNoSuchRoot, name)
	}
	if r == s.focused {
		return nil
	}
	var errs []error
	if old := s.focused; old != nil {
		errs = append(errs, s.Dispatch(RawEvent{Type: RawBlur, Target: old.element}))
	}
	s.focused = r
	errs = append(errs, s.Dispatch(RawEvent{Type: RawFocus, Target: r.element}))
	return errors.Join(errs...)
}

// Dispatch fires ev on the emitter of the root containing its target.
func (s *Surface) Dispatch(ev RawEvent) error {
	r := s.rootOf(ev.Target)
	if r == nil {
		return ErrNoTarget
	}
	return event.Emit(context.Background(), r.emitter, RawTopic(ev.Type), ev)
}

func (s *Surface) rootOf(n Node) *Root {
	el := ElementOf(n)
	if el == nil {
		return nil
	}
	r := el.Root()
	if r == nil || r.surface != s {
		return nil
	}
	return r
}
