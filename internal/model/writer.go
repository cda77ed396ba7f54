package model

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// Writer performs mutations inside a Document.Change block.
type Writer struct {
	doc    *Document
	closed bool

	dataChanged     bool
	changedElements []*Element

	markerOrder   []string
	markerChanges map[string]*MarkerChange
}

func newWriter(d *Document) *Writer {
	return &Writer{
		doc:           d,
		markerChanges: make(map[string]*MarkerChange),
	}
}

// Document returns the document being changed.
func (w *Writer) Document() *Document { return w.doc }

// CreatePositionAt returns the position at offset inside parent.
func (w *Writer) CreatePositionAt(parent *Element, offset int) (Position, error) {
	return PositionAt(parent, offset)
}

// CreatePositionBefore returns the position just before node.
func (w *Writer) CreatePositionBefore(node Node) (Position, error) {
	off := StartOffset(node)
	if off < 0 {
		return Position{}, fmt.Errorf("%w: node is detached", ErrInvalidPosition)
	}
	return PositionAt(node.Parent(), off)
}

// CreateRange returns the range between two positions.
func (w *Writer) CreateRange(start, end Position) Range {
	return NewRange(start, end)
}

// CreateRangeIn returns the range spanning the content of el.
func (w *Writer) CreateRangeIn(el *Element) Range {
	return RangeIn(el)
}

// PositionAt returns the position at offset inside parent.
func PositionAt(parent *Element, offset int) (Position, error) {
	if parent == nil {
		return Position{}, fmt.Errorf("%w: nil parent", ErrInvalidPosition)
	}
	if offset < 0 || offset > parent.MaxOffset() {
		return Position{}, fmt.Errorf("%w: offset %d outside 0..%d", ErrInvalidPosition, offset, parent.MaxOffset())
	}
	return Position{root: parent.Root(), path: append(parent.Path(), offset)}, nil
}

// AddMarker registers a new marker.
func (w *Writer) AddMarker(name string, opts MarkerOptions) (*Marker, error) {
	if err := w.check(); err != nil {
		return nil, err
	}
	if w.doc.markers.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrMarkerExists, name)
	}
	if !opts.Range.Start.IsValid() || !opts.Range.End.IsValid() {
		return nil, fmt.Errorf("%w: marker %s range %s", ErrInvalidPosition, name, opts.Range)
	}

	m := &Marker{
		name:           name,
		rng:            NewRange(opts.Range.Start, opts.Range.End),
		usingOperation: opts.UsingOperation,
		affectsData:    opts.AffectsData,
	}
	w.doc.markers.add(m)

	change := w.markerChange(name, Range{})
	if change.Removed {
		// Re-added within the same block: report as a move.
		change.Removed = false
	} else {
		change.Added = true
	}
	if m.affectsData {
		w.dataChanged = true
	}
	return m, nil
}

// RemoveMarker removes a marker by name.
func (w *Writer) RemoveMarker(name string) error {
	if err := w.check(); err != nil {
		return err
	}
	m := w.doc.markers.Get(name)
	if m == nil {
		return fmt.Errorf("%w: %s", ErrMarkerNotFound, name)
	}
	change := w.markerChange(name, m.rng)
	w.doc.markers.remove(name)
	change.Removed = true
	change.NewRange = Range{}
	if m.affectsData {
		w.dataChanged = true
	}
	return nil
}

// InsertText inserts text at pos.
func (w *Writer) InsertText(text string, pos Position) error {
	if err := w.check(); err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	parent, err := w.resolve(pos)
	if err != nil {
		return err
	}
	if !w.doc.schema.CheckChild(parent, TextChild) {
		return fmt.Errorf("%w: text in %s", ErrNotAllowed, parent.name)
	}

	idx, within := parent.offsetToIndex(pos.Offset())
	switch {
	case idx < len(parent.children) && within > 0:
		// Strictly inside a text node.
		t := parent.children[idx].(*Text)
		runes := []rune(t.data)
		t.data = string(runes[:within]) + text + string(runes[within:])
	case idx > 0 && isText(parent.children[idx-1]):
		t := parent.children[idx-1].(*Text)
		t.data += text
	default:
		parent.insertChildren(idx, NewText(text, nil))
	}
	parent.normalize()

	w.afterInsertion(parent, pos, utf8.RuneCountInString(text))
	return nil
}

// InsertElement inserts a detached element at pos, splitting a text node
// when pos lies inside one.
func (w *Writer) InsertElement(el *Element, pos Position) error {
	if err := w.check(); err != nil {
		return err
	}
	if el.parent != nil || el.IsRoot() {
		return ErrAttached
	}
	parent, err := w.resolve(pos)
	if err != nil {
		return err
	}
	if !w.doc.schema.CheckChild(parent, el.name) {
		return fmt.Errorf("%w: %s in %s", ErrNotAllowed, el.name, parent.name)
	}

	idx, within := parent.offsetToIndex(pos.Offset())
	if idx < len(parent.children) && within > 0 {
		t := parent.children[idx].(*Text)
		runes := []rune(t.data)
		t.data = string(runes[:within])
		tail := NewText(string(runes[within:]), t.attrs)
		parent.insertChildren(idx+1, el, tail)
	} else {
		parent.insertChildren(idx, el)
	}

	w.afterInsertion(parent, pos, 1)
	return nil
}

// Remove deletes the content of a flat range.
func (w *Writer) Remove(r Range) error {
	if err := w.check(); err != nil {
		return err
	}
	if !r.IsFlat() {
		return fmt.Errorf("%w: %s", ErrNotFlatRange, r)
	}
	parent, err := w.resolve(r.Start)
	if err != nil {
		return err
	}
	if r.IsCollapsed() {
		return nil
	}
	o1, o2 := r.Start.Offset(), r.End.Offset()
	if o2 > parent.MaxOffset() {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, r.End)
	}

	kept := make([]Node, 0, len(parent.children))
	cum := 0
	for _, c := range parent.children {
		cs, ce := cum, cum+c.OffsetSize()
		cum = ce
		if ce <= o1 || cs >= o2 {
			kept = append(kept, c)
			continue
		}
		t, ok := c.(*Text)
		if !ok {
			c.setParent(nil)
			continue
		}
		runes := []rune(t.data)
		from := max(o1-cs, 0)
		to := min(o2-cs, len(runes))
		t.data = string(runes[:from]) + string(runes[to:])
		kept = append(kept, t)
	}
	parent.children = kept
	parent.normalize()

	howMany := o2 - o1
	start := r.Start
	moved := w.doc.markers.transform(func(rng Range) Range {
		return Range{
			Start: rng.Start.transformedByRemoval(start, howMany),
			End:   rng.End.transformedByRemoval(start, howMany),
		}
	})
	w.recordMoves(moved)
	w.touch(parent)
	return nil
}

// afterInsertion moves markers past inserted content and records the change.
func (w *Writer) afterInsertion(parent *Element, at Position, howMany int) {
	moved := w.doc.markers.transform(func(rng Range) Range {
		return Range{
			Start: rng.Start.transformedByInsertion(at, howMany, true),
			End:   rng.End.transformedByInsertion(at, howMany, false),
		}
	})
	w.recordMoves(moved)
	w.touch(parent)
}

func (w *Writer) recordMoves(moved map[string]Range) {
	names := make([]string, 0, len(moved))
	for name := range moved {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		w.markerChange(name, moved[name])
	}
}

// markerChange returns the pending change for a marker, creating it with
// old as the pre-block range on first touch.
func (w *Writer) markerChange(name string, old Range) *MarkerChange {
	if c, ok := w.markerChanges[name]; ok {
		return c
	}
	c := &MarkerChange{Name: name, OldRange: old}
	w.markerChanges[name] = c
	w.markerOrder = append(w.markerOrder, name)
	return c
}

func (w *Writer) touch(el *Element) {
	w.dataChanged = true
	if !slices.Contains(w.changedElements, el) {
		w.changedElements = append(w.changedElements, el)
	}
}

func (w *Writer) resolve(pos Position) (*Element, error) {
	if !pos.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}
	return pos.Parent(), nil
}

func (w *Writer) check() error {
	if w.closed {
		return ErrOutsideChange
	}
	return nil
}

func isText(n Node) bool {
	_, ok := n.(*Text)
	return ok
}
