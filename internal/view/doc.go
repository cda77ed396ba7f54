// Package view provides the rendered document surface and the observer
// contract that guards it.
//
// The surface is a tree of Elements and Text nodes attached under named
// roots. Every change to an attached tree produces a MutationRecord, and
// terminal input is dispatched to the root that contains the event target.
// Both arrive as raw events ("surface.keydown", "surface.mutation", ...) on
// the root's own emitter.
//
// Observers turn raw events into structured "view.*" events on the
// controller emitter. An Observer starts disabled, is enabled once it
// observes every root, and is disabled by the controller for the whole of
// each Render:
//
//	c.DisableObservers()
//	renderer.Render(c) // rebuilds the surface; mutations fire but are dropped
//	c.EnableObservers()
//
// so a renderer never feeds its own changes back into the editing engine.
// Destroy is terminal: the observer's Listener releases every subscription
// and Enable no longer has any effect.
//
// Events whose target sits under an element carrying the ignore attribute
// (data-ignore-events by default) are skipped by every observer.
package view
