// Package event provides the emission capability shared by the surface,
// the document model, the observers and the find feature.
//
// Every component that publishes notifications owns an Emitter. Components
// that consume notifications hold a Listener, which records every
// subscription it makes so that all of them can be released at once:
//
//	               ┌────────────────────────┐
//	raw events ──▶ │ Emitter (surface root) │
//	               └────────────────────────┘
//	                           │ ListenTo
//	                           ▼
//	               ┌────────────────────────┐        ┌──────────────────────┐
//	               │  Observer (Listener)   │ Fire ▶ │ Emitter (controller) │
//	               └────────────────────────┘        └──────────────────────┘
//
// # Event Topics
//
// Events use hierarchical topics with dot notation:
//
//	surface.keydown          - raw key press on a surface root
//	surface.mutation         - the view tree under a root changed
//	view.keydown             - structured key event for the editing engine
//	document.change.data     - a model change block completed
//	markers.update.<name>    - a marker was added, moved or removed
//
// Subscriptions accept the wildcards described in package topic.
//
// # Delivery
//
// Delivery is synchronous. Fire runs every matching handler in the caller's
// goroutine, ordered by Priority and then by subscription order. A failing
// or panicking handler does not stop delivery to the remaining handlers;
// the failures are joined into the error returned by Fire.
//
// # Releasing
//
// Listener.StopListening cancels every subscription the listener created on
// any emitter. It is terminal: later ListenTo calls fail with
// ErrListenerReleased. Observers call it from Destroy.
package event
