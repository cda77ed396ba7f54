package model

import "errors"

// Sentinel errors for the document model.
var (
	// ErrInvalidPosition is returned when a position does not resolve inside the tree.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrNotFlatRange is returned when an operation needs start and end in the same parent.
	ErrNotFlatRange = errors.New("range is not flat")

	// ErrMarkerExists is returned when adding a marker whose name is taken.
	ErrMarkerExists = errors.New("marker already exists")

	// ErrMarkerNotFound is returned when removing an unknown marker.
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrNoSuchRoot is returned when a named root does not exist.
	ErrNoSuchRoot = errors.New("no such root")

	// ErrRootExists is returned when creating a root whose name is taken.
	ErrRootExists = errors.New("root already exists")

	// ErrNotAllowed is returned when the schema forbids a child in a parent.
	ErrNotAllowed = errors.New("not allowed by schema")

	// ErrAttached is returned when inserting an element that already has a parent.
	ErrAttached = errors.New("element already attached")

	// ErrOutsideChange is returned when a Writer is used after its change block ended.
	ErrOutsideChange = errors.New("writer used outside its change block")

	// ErrItemExists is returned when registering a schema item twice.
	ErrItemExists = errors.New("schema item already registered")
)
