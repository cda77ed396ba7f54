package view

import (
	"errors"
	"fmt"
)

// Sentinel errors for the surface.
var (
	// ErrRootExists is returned when attaching a root name twice.
	ErrRootExists = errors.New("surface root already attached")

	// ErrNoSuchRoot is returned for an unknown root name.
	ErrNoSuchRoot = errors.New("no such surface root")

	// ErrRootInUse is returned when attaching an element that already
	// belongs to a surface or has a parent.
	ErrRootInUse = errors.New("element cannot be attached as a root")

	// ErrNoTarget is returned when a raw event has no target inside an
	// attached root.
	ErrNoTarget = errors.New("event target is not inside an attached root")

	// ErrUnsupportedRoot is matched by every UnsupportedRootError.
	ErrUnsupportedRoot = errors.New("unsupported root")

	// ErrControllerDestroyed is returned when using a destroyed controller.
	ErrControllerDestroyed = errors.New("controller destroyed")
)

// UnsupportedRootError reports that an observer cannot attach to a root.
type UnsupportedRootError struct {
	Observer string
	Root     string
	Kind     RootKind
}

func (e *UnsupportedRootError) Error() string {
	return fmt.Sprintf("observer %s does not support %s root %q", e.Observer, e.Kind, e.Root)
}

// Is makes errors.Is(err, ErrUnsupportedRoot) succeed.
func (e *UnsupportedRootError) Is(target error) bool {
	return target == ErrUnsupportedRoot
}
