package model

// WalkerValueType tells what a walker step crossed.
type WalkerValueType int

const (
	// ElementStart is the opening boundary of an element.
	ElementStart WalkerValueType = iota
	// ElementEnd is the closing boundary of an element.
	ElementEnd
	// TextValue is a run of characters.
	TextValue
)

// String returns a human-readable value type name.
func (t WalkerValueType) String() string {
	switch t {
	case ElementStart:
		return "elementStart"
	case ElementEnd:
		return "elementEnd"
	case TextValue:
		return "text"
	default:
		return "unknown"
	}
}

// WalkerValue is one step of a Walker.
type WalkerValue struct {
	// Type tells what was crossed.
	Type WalkerValueType

	// Item is an *Element for element boundaries or a TextProxy for text.
	Item any

	// Length is the number of offsets crossed at the current level.
	Length int

	// PreviousPosition is where the step began.
	PreviousPosition Position

	// NextPosition is where the step ended.
	NextPosition Position
}

// Element returns the element for element boundaries, or nil.
func (v WalkerValue) Element() *Element {
	e, _ := v.Item.(*Element)
	return e
}

// Walker iterates a range forward in document order.
type Walker struct {
	boundaries Range
	position   Position
	done       bool
}

// Position returns the walker's current position.
func (w *Walker) Position() Position { return w.position }

// Next advances the walker. It returns false once the range end is reached.
func (w *Walker) Next() (WalkerValue, bool) {
	if w.done || !w.position.IsBefore(w.boundaries.End) {
		w.done = true
		return WalkerValue{}, false
	}

	pos := w.position
	parent := pos.Parent()
	if parent == nil {
		w.done = true
		return WalkerValue{}, false
	}

	idx, within := parent.offsetToIndex(pos.Offset())
	if idx < len(parent.children) {
		switch n := parent.children[idx].(type) {
		case *Text:
			runes := []rune(n.data)
			avail := len(runes) - within
			if pos.hasSameParentAs(w.boundaries.End) {
				if limit := w.boundaries.End.Offset() - pos.Offset(); limit < avail {
					avail = limit
				}
			}
			next := pos.shifted(avail)
			w.position = next
			return WalkerValue{
				Type:             TextValue,
				Item:             TextProxy{Text: n, OffsetInText: within, Data: string(runes[within : within+avail])},
				Length:           avail,
				PreviousPosition: pos,
				NextPosition:     next,
			}, true

		case *Element:
			next := pos.child(0)
			w.position = next
			return WalkerValue{
				Type:             ElementStart,
				Item:             n,
				Length:           1,
				PreviousPosition: pos,
				NextPosition:     next,
			}, true
		}
	}

	// End of the parent's content.
	if len(pos.path) <= 1 {
		w.done = true
		return WalkerValue{}, false
	}
	next := pos.after()
	w.position = next
	return WalkerValue{
		Type:             ElementEnd,
		Item:             parent,
		Length:           1,
		PreviousPosition: pos,
		NextPosition:     next,
	}, true
}
