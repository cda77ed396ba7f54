package model

import (
	"maps"
	"slices"
	"unicode/utf8"
)

// Node is an element or a text node in the document tree.
type Node interface {
	// Parent returns the containing element, or nil for roots and detached nodes.
	Parent() *Element

	// OffsetSize is the number of offsets the node occupies in its parent.
	OffsetSize() int

	setParent(*Element)
}

// Element is a named node with attributes and children.
type Element struct {
	name     string
	attrs    map[string]string
	children []Node
	parent   *Element

	// Set only on document roots.
	rootName  string
	rootIndex int
}

// NewElement creates a detached element.
func NewElement(name string, attrs map[string]string, children ...Node) *Element {
	e := &Element{name: name, attrs: maps.Clone(attrs)}
	for _, c := range children {
		c.setParent(e)
	}
	e.children = append(e.children, children...)
	return e
}

// Name returns the element name.
func (e *Element) Name() string { return e.name }

// Parent returns the containing element.
func (e *Element) Parent() *Element { return e.parent }

// OffsetSize is always 1 for elements.
func (e *Element) OffsetSize() int { return 1 }

func (e *Element) setParent(p *Element) { e.parent = p }

// Attribute returns the attribute value and whether it is set.
func (e *Element) Attribute(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// Attributes returns a copy of the attributes.
func (e *Element) Attributes() map[string]string {
	return maps.Clone(e.attrs)
}

// IsRoot reports whether the element is a document root.
func (e *Element) IsRoot() bool { return e.rootName != "" }

// RootName returns the root name for document roots, or "".
func (e *Element) RootName() string { return e.rootName }

// ChildCount returns the number of child nodes.
func (e *Element) ChildCount() int { return len(e.children) }

// Child returns the child at index i, or nil.
func (e *Element) Child(i int) Node {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Children returns a copy of the child list.
func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// MaxOffset is the sum of the children's offset sizes.
func (e *Element) MaxOffset() int {
	n := 0
	for _, c := range e.children {
		n += c.OffsetSize()
	}
	return n
}

// Root returns the topmost ancestor (the element itself when detached).
func (e *Element) Root() *Element {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// StartOffset returns the node's offset in its parent, or -1 when detached.
func StartOffset(n Node) int {
	p := n.Parent()
	if p == nil {
		return -1
	}
	off := 0
	for _, c := range p.children {
		if c == n {
			return off
		}
		off += c.OffsetSize()
	}
	return -1
}

// Path returns the offsets leading from the root to the element.
// A root's path is empty.
func (e *Element) Path() []int {
	var path []int
	for n := e; n.parent != nil; n = n.parent {
		path = append(path, StartOffset(n))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// offsetToIndex finds the child containing offset. It returns the child
// index and the offset inside that child. An offset at the very end
// returns len(children).
func (e *Element) offsetToIndex(offset int) (index, within int) {
	cum := 0
	for i, c := range e.children {
		size := c.OffsetSize()
		if offset < cum+size {
			return i, offset - cum
		}
		cum += size
	}
	return len(e.children), 0
}

func (e *Element) insertChildren(index int, nodes ...Node) {
	for _, n := range nodes {
		n.setParent(e)
	}
	e.children = slices.Insert(e.children, index, nodes...)
}

// normalize merges adjacent text nodes with identical attributes and drops
// empty ones.
func (e *Element) normalize() {
	out := e.children[:0]
	for _, c := range e.children {
		t, ok := c.(*Text)
		if ok && t.data == "" {
			t.parent = nil
			continue
		}
		if ok && len(out) > 0 {
			if prev, pok := out[len(out)-1].(*Text); pok && maps.Equal(prev.attrs, t.attrs) {
				prev.data += t.data
				t.parent = nil
				continue
			}
		}
		out = append(out, c)
	}
	for i := len(out); i < len(e.children); i++ {
		e.children[i] = nil
	}
	e.children = out
}

// Text is a run of characters sharing the same attributes.
type Text struct {
	data   string
	attrs  map[string]string
	parent *Element
}

// NewText creates a detached text node.
func NewText(data string, attrs map[string]string) *Text {
	return &Text{data: data, attrs: maps.Clone(attrs)}
}

// Data returns the text content.
func (t *Text) Data() string { return t.data }

// Parent returns the containing element.
func (t *Text) Parent() *Element { return t.parent }

// OffsetSize is the number of runes in the text.
func (t *Text) OffsetSize() int { return utf8.RuneCountInString(t.data) }

func (t *Text) setParent(p *Element) { t.parent = p }

// Attribute returns the attribute value and whether it is set.
func (t *Text) Attribute(key string) (string, bool) {
	v, ok := t.attrs[key]
	return v, ok
}

// TextProxy is the part of a text node covered by a range.
type TextProxy struct {
	// Text is the underlying node.
	Text *Text

	// OffsetInText is where the proxy starts inside Text, in runes.
	OffsetInText int

	// Data is the covered content.
	Data string
}

// Parent returns the element containing the underlying text node.
func (p TextProxy) Parent() *Element { return p.Text.parent }
