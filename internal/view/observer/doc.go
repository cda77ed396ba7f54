// Package observer provides the concrete surface observers. Each one
// translates a family of raw surface events into structured "view.*"
// events on the controller emitter, only while it is enabled and only for
// targets outside ignored subtrees.
package observer
