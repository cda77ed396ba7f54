package model

import (
	"slices"
	"strings"
)

// MarkerOptions configures a marker added through Writer.AddMarker.
type MarkerOptions struct {
	// Range is the initial range of the marker.
	Range Range

	// UsingOperation marks the marker as managed by the operation history.
	// Markers that are not tracked by operations are local to this editor.
	UsingOperation bool

	// AffectsData marks the marker as part of the document data, so adding
	// or removing it counts as a data change.
	AffectsData bool
}

// Marker is a named live range.
type Marker struct {
	name           string
	rng            Range
	usingOperation bool
	affectsData    bool
	removed        bool
}

// Name returns the marker name.
func (m *Marker) Name() string { return m.name }

// Range returns the current range.
func (m *Marker) Range() Range { return m.rng }

// Start returns the current start position.
func (m *Marker) Start() Position { return m.rng.Start }

// End returns the current end position.
func (m *Marker) End() Position { return m.rng.End }

// ManagedUsingOperation reports whether the marker is tracked by operations.
func (m *Marker) ManagedUsingOperation() bool { return m.usingOperation }

// AffectsData reports whether the marker is part of document data.
func (m *Marker) AffectsData() bool { return m.affectsData }

// IsRemoved reports whether the marker was removed from its collection.
func (m *Marker) IsRemoved() bool { return m.removed }

// MarkerChange describes a marker update reported after a change block.
type MarkerChange struct {
	// Name is the marker name.
	Name string

	// OldRange is the range before the change block; zero when added.
	OldRange Range

	// NewRange is the range after the change block; zero when removed.
	NewRange Range

	// Added is set when the marker did not exist before the block.
	Added bool

	// Removed is set when the marker no longer exists.
	Removed bool
}

// MarkerCollection holds the document's markers. Markers are shared by all
// features; each feature only touches markers under its own name prefix.
type MarkerCollection struct {
	byName map[string]*Marker
}

func newMarkerCollection() *MarkerCollection {
	return &MarkerCollection{byName: make(map[string]*Marker)}
}

// Get returns the marker with the given name, or nil.
func (c *MarkerCollection) Get(name string) *Marker {
	return c.byName[name]
}

// Has reports whether a marker with the name exists.
func (c *MarkerCollection) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Len returns the number of markers.
func (c *MarkerCollection) Len() int {
	return len(c.byName)
}

// Names returns the sorted marker names.
func (c *MarkerCollection) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Group returns the markers named prefix or "prefix:...", sorted by start
// position.
func (c *MarkerCollection) Group(prefix string) []*Marker {
	var out []*Marker
	for name, m := range c.byName {
		if name == prefix || strings.HasPrefix(name, prefix+":") {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b *Marker) int {
		if c := a.rng.Start.Compare(b.rng.Start); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	return out
}

func (c *MarkerCollection) add(m *Marker) {
	c.byName[m.name] = m
}

func (c *MarkerCollection) remove(name string) *Marker {
	m, ok := c.byName[name]
	if !ok {
		return nil
	}
	delete(c.byName, name)
	m.removed = true
	return m
}

// transform applies fn to every marker range and returns the markers
// whose range changed, keyed by name with their previous range.
func (c *MarkerCollection) transform(fn func(Range) Range) map[string]Range {
	moved := make(map[string]Range)
	for name, m := range c.byName {
		next := fn(m.rng)
		if next.End.IsBefore(next.Start) {
			next.End = next.Start
		}
		if !next.Start.IsEqual(m.rng.Start) || !next.End.IsEqual(m.rng.End) {
			moved[name] = m.rng
			m.rng = next
		}
	}
	return moved
}
