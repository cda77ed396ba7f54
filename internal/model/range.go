package model

import (
	"fmt"
	"iter"
)

// Range is the span between two positions. Start is never after End.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range, swapping the ends if they are reversed.
func NewRange(start, end Position) Range {
	if end.IsBefore(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// RangeIn returns the range spanning the whole content of el.
func RangeIn(el *Element) Range {
	root := el.Root()
	path := el.Path()
	return Range{
		Start: Position{root: root, path: append(path, 0)},
		End:   Position{root: root, path: append(el.Path(), el.MaxOffset())},
	}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start, r.End)
}

// IsCollapsed returns true if the range has zero length.
func (r Range) IsCollapsed() bool {
	return r.Start.IsEqual(r.End)
}

// IsFlat returns true if start and end share the same parent.
func (r Range) IsFlat() bool {
	return r.Start.hasSameParentAs(r.End)
}

// ContainsPosition returns true if p is strictly between start and end.
func (r Range) ContainsPosition(p Position) bool {
	return p.IsAfter(r.Start) && p.IsBefore(r.End)
}

// ContainsRange returns true if other lies within r (ends may touch).
func (r Range) ContainsRange(other Range) bool {
	return !other.Start.IsBefore(r.Start) && !other.End.IsAfter(r.End)
}

// Walker returns a walker positioned at the start of the range.
func (r Range) Walker() *Walker {
	return &Walker{boundaries: r, position: r.Start}
}

// All iterates every walker value in the range.
func (r Range) All() iter.Seq[WalkerValue] {
	return func(yield func(WalkerValue) bool) {
		w := r.Walker()
		for {
			v, ok := w.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
