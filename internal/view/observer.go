package view

import (
	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/model"
)

// DefaultIgnoreAttribute marks a subtree whose events observers skip.
const DefaultIgnoreAttribute = "data-ignore-events"

// Observer translates one family of raw surface events into structured
// events. Observers start disabled; the controller enables them once they
// observe every attached root and keeps them disabled while it renders.
type Observer interface {
	// Observe starts listening on root. Observing a root name twice is a
	// no-op. An observer that cannot handle the root returns an
	// *UnsupportedRootError.
	Observe(root *Root, name string) error

	// Enable turns translation on. It has no effect after Destroy.
	Enable()

	// Disable turns translation off.
	Disable()

	// Destroy disables the observer and releases its listeners for good.
	Destroy()

	// IsEnabled reports whether the observer is translating events.
	IsEnabled() bool

	// CheckShouldIgnoreEventFromTarget reports whether events that
	// originate from node must be skipped.
	CheckShouldIgnoreEventFromTarget(node Node) bool
}

// ObserverConstructor builds an observer for a controller.
type ObserverConstructor func(c *Controller) Observer

// BaseObserver implements the shared part of Observer. Concrete observers
// embed it and add Observe.
type BaseObserver struct {
	controller *Controller
	document   *model.Document
	listener   *event.Listener
	observed   map[string]bool
	enabled    bool
	destroyed  bool
}

// NewBaseObserver creates a disabled base bound to c and its document.
func NewBaseObserver(c *Controller) *BaseObserver {
	return &BaseObserver{
		controller: c,
		document:   c.Document(),
		listener:   event.NewListener(),
		observed:   make(map[string]bool),
	}
}

// Controller returns the owning controller.
func (o *BaseObserver) Controller() *Controller { return o.controller }

// Document returns the document the controller renders.
func (o *BaseObserver) Document() *model.Document { return o.document }

// Listener returns the composition object that records every listener
// the observer registers.
func (o *BaseObserver) Listener() *event.Listener { return o.listener }

// Enable turns translation on.
func (o *BaseObserver) Enable() {
	if o.destroyed {
		return
	}
	o.enabled = true
}

// Disable turns translation off.
func (o *BaseObserver) Disable() {
	o.enabled = false
}

// IsEnabled reports whether the observer is translating events.
func (o *BaseObserver) IsEnabled() bool { return o.enabled }

// IsDestroyed reports whether Destroy was called.
func (o *BaseObserver) IsDestroyed() bool { return o.destroyed }

// Destroy disables the observer and releases every listener.
func (o *BaseObserver) Destroy() {
	o.Disable()
	o.destroyed = true
	o.listener.StopListening()
}

// MarkObserved records that the root name is observed. It returns false
// when the name was already observed or the observer is destroyed.
func (o *BaseObserver) MarkObserved(name string) bool {
	if o.destroyed || o.observed[name] {
		return false
	}
	o.observed[name] = true
	return true
}

// StopObserving releases the listeners registered on root and forgets its
// name, so a root attached later under the same name is observed again.
func (o *BaseObserver) StopObserving(root *Root) {
	o.listener.StopListeningTo(root.Emitter())
	delete(o.observed, root.Name())
}

// CheckShouldIgnoreEventFromTarget walks up from node (text resolves to
// its parent) and reports whether any element carries the ignore
// attribute. Nodes without an element ancestor are not ignored.
func (o *BaseObserver) CheckShouldIgnoreEventFromTarget(node Node) bool {
	return ShouldIgnore(node, o.controller.IgnoreAttribute())
}

// ShouldIgnore reports whether node or an ancestor element carries attr.
func ShouldIgnore(node Node, attr string) bool {
	for el := ElementOf(node); el != nil; el = el.parent {
		if el.HasAttribute(attr) {
			return true
		}
	}
	return false
}
