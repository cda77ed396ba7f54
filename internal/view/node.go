package view

import (
	"maps"
	"slices"
)

// Node is an element or a text node of the surface tree.
type Node interface {
	// Parent returns the containing element, or nil.
	Parent() *Element

	setParent(*Element)
}

// MutationType tells what a MutationRecord describes.
type MutationType int

const (
	// MutationChildList records added or removed children.
	MutationChildList MutationType = iota
	// MutationAttributes records an attribute change.
	MutationAttributes
	// MutationCharacterData records a text change.
	MutationCharacterData
)

// String returns the mutation type name.
func (t MutationType) String() string {
	switch t {
	case MutationChildList:
		return "childList"
	case MutationAttributes:
		return "attributes"
	case MutationCharacterData:
		return "characterData"
	default:
		return "unknown"
	}
}

// MutationRecord describes one change of the surface tree.
type MutationRecord struct {
	Type   MutationType
	Target Node

	// Child list changes.
	Added   []Node
	Removed []Node

	// Attribute changes.
	AttributeName string

	// Previous attribute value or text.
	OldValue string
}

// Element is a named surface node with attributes and children.
type Element struct {
	name     string
	attrs    map[string]string
	children []Node
	parent   *Element

	// Set while the element is an attached surface root.
	root *Root
}

// NewElement creates a detached element.
func NewElement(name string, attrs map[string]string) *Element {
	return &Element{name: name, attrs: maps.Clone(attrs)}
}

// Name returns the element name.
func (e *Element) Name() string { return e.name }

// Parent returns the containing element.
func (e *Element) Parent() *Element { return e.parent }

func (e *Element) setParent(p *Element) { e.parent = p }

// Attribute returns the attribute value and whether it is set.
func (e *Element) Attribute(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// HasAttribute reports whether the attribute is set.
func (e *Element) HasAttribute(key string) bool {
	_, ok := e.attrs[key]
	return ok
}

// SetAttribute sets an attribute and records the mutation.
func (e *Element) SetAttribute(key, value string) {
	old, had := e.attrs[key]
	if had && old == value {
		return
	}
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[key] = value
	e.record(MutationRecord{Type: MutationAttributes, Target: e, AttributeName: key, OldValue: old})
}

// RemoveAttribute removes an attribute and records the mutation.
func (e *Element) RemoveAttribute(key string) {
	old, had := e.attrs[key]
	if !had {
		return
	}
	delete(e.attrs, key)
	e.record(MutationRecord{Type: MutationAttributes, Target: e, AttributeName: key, OldValue: old})
}

// Children returns a copy of the child list.
func (e *Element) Children() []Node {
	return slices.Clone(e.children)
}

// ChildCount returns the number of children.
func (e *Element) ChildCount() int { return len(e.children) }

// AppendChild detaches n from its current parent and appends it to e.
func (e *Element) AppendChild(n Node) {
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
	n.setParent(e)
	e.children = append(e.children, n)
	e.record(MutationRecord{Type: MutationChildList, Target: e, Added: []Node{n}})
}

// RemoveChild removes n when it is a child of e.
func (e *Element) RemoveChild(n Node) {
	i := slices.Index(e.children, n)
	if i < 0 {
		return
	}
	e.children = slices.Delete(e.children, i, i+1)
	n.setParent(nil)
	e.record(MutationRecord{Type: MutationChildList, Target: e, Removed: []Node{n}})
}

// RemoveChildren removes all children in one mutation.
func (e *Element) RemoveChildren() {
	if len(e.children) == 0 {
		return
	}
	removed := e.children
	e.children = nil
	for _, n := range removed {
		n.setParent(nil)
	}
	e.record(MutationRecord{Type: MutationChildList, Target: e, Removed: removed})
}

// Root returns the surface root the element belongs to, or nil when the
// element is not attached.
func (e *Element) Root() *Root {
	top := e
	for top.parent != nil {
		top = top.parent
	}
	return top.root
}

// TextContent concatenates the text of all descendants.
func (e *Element) TextContent() string {
	var out []byte
	var walk func(*Element)
	walk = func(el *Element) {
		for _, c := range el.children {
			switch n := c.(type) {
			case *Text:
				out = append(out, n.data...)
			case *Element:
				walk(n)
			}
		}
	}
	walk(e)
	return string(out)
}

func (e *Element) record(rec MutationRecord) {
	if r := e.Root(); r != nil {
		r.record(rec)
	}
}

// Text is a surface text node.
type Text struct {
	data   string
	parent *Element
}

// NewText creates a detached text node.
func NewText(data string) *Text {
	return &Text{data: data}
}

// Data returns the text.
func (t *Text) Data() string { return t.data }

// Parent returns the containing element.
func (t *Text) Parent() *Element { return t.parent }

func (t *Text) setParent(p *Element) { t.parent = p }

// SetData replaces the text and records the mutation.
func (t *Text) SetData(data string) {
	if data == t.data {
		return
	}
	old := t.data
	t.data = data
	if t.parent != nil {
		t.parent.record(MutationRecord{Type: MutationCharacterData, Target: t, OldValue: old})
	}
}

// ElementOf resolves a node to itself when it is an element, or to its
// parent when it is text. It returns nil for detached text.
func ElementOf(n Node) *Element {
	switch v := n.(type) {
	case *Element:
		return v
	case *Text:
		return v.parent
	}
	return nil
}
