package model

import (
	"fmt"
	"slices"
)

// Position is a location between two offsets in the tree: a root plus a
// path of offsets. The last path entry is the offset inside the parent
// element.
type Position struct {
	root *Element
	path []int
}

// NewPosition creates a position from a root and a path. The path is copied.
func NewPosition(root *Element, path []int) Position {
	return Position{root: root, path: slices.Clone(path)}
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	name := ""
	if p.root != nil {
		name = p.root.rootName
	}
	return fmt.Sprintf("%s%v", name, p.path)
}

// Root returns the root the position is anchored in.
func (p Position) Root() *Element { return p.root }

// Path returns a copy of the offset path.
func (p Position) Path() []int { return slices.Clone(p.path) }

// Depth returns the path length.
func (p Position) Depth() int { return len(p.path) }

// Offset returns the offset inside the parent element.
func (p Position) Offset() int {
	if len(p.path) == 0 {
		return 0
	}
	return p.path[len(p.path)-1]
}

// Parent resolves the element the position is inside, or nil when the path
// does not resolve.
func (p Position) Parent() *Element {
	if p.root == nil || len(p.path) == 0 {
		return nil
	}
	el := p.root
	for _, off := range p.path[:len(p.path)-1] {
		idx, within := el.offsetToIndex(off)
		if idx >= len(el.children) || within != 0 {
			return nil
		}
		child, ok := el.children[idx].(*Element)
		if !ok {
			return nil
		}
		el = child
	}
	return el
}

// IsValid reports whether the position resolves inside the tree.
func (p Position) IsValid() bool {
	parent := p.Parent()
	if parent == nil {
		return false
	}
	off := p.Offset()
	return off >= 0 && off <= parent.MaxOffset()
}

// NodeAfter returns the node starting at the position, or nil. A position
// inside a text node has no node after it.
func (p Position) NodeAfter() Node {
	parent := p.Parent()
	if parent == nil {
		return nil
	}
	idx, within := parent.offsetToIndex(p.Offset())
	if idx >= len(parent.children) || within != 0 {
		return nil
	}
	return parent.children[idx]
}

// TextNode returns the text node the position is strictly inside, or nil.
func (p Position) TextNode() *Text {
	parent := p.Parent()
	if parent == nil {
		return nil
	}
	idx, within := parent.offsetToIndex(p.Offset())
	if idx >= len(parent.children) || within == 0 {
		return nil
	}
	t, _ := parent.children[idx].(*Text)
	return t
}

// Compare returns -1 if p is before other in document order, 1 if after
// and 0 if equal. Positions in different roots are ordered by root
// creation order.
func (p Position) Compare(other Position) int {
	if p.root != other.root {
		switch {
		case p.root == nil:
			return -1
		case other.root == nil:
			return 1
		case p.root.rootIndex < other.root.rootIndex:
			return -1
		case p.root.rootIndex > other.root.rootIndex:
			return 1
		}
	}
	// A shorter prefix path is the position before the deeper node.
	return slices.Compare(p.path, other.path)
}

// IsBefore returns true if p comes before other.
func (p Position) IsBefore(other Position) bool { return p.Compare(other) < 0 }

// IsAfter returns true if p comes after other.
func (p Position) IsAfter(other Position) bool { return p.Compare(other) > 0 }

// IsEqual returns true if both positions point at the same place.
func (p Position) IsEqual(other Position) bool { return p.Compare(other) == 0 }

// hasSameParentAs reports whether both positions share a parent path.
func (p Position) hasSameParentAs(other Position) bool {
	if p.root != other.root || len(p.path) != len(other.path) || len(p.path) == 0 {
		return false
	}
	return slices.Equal(p.path[:len(p.path)-1], other.path[:len(other.path)-1])
}

// shifted returns the position moved by n offsets in the same parent.
func (p Position) shifted(n int) Position {
	np := NewPosition(p.root, p.path)
	np.path[len(np.path)-1] += n
	return np
}

// child returns the position at offset inside the node at p.
func (p Position) child(offset int) Position {
	return Position{root: p.root, path: append(slices.Clone(p.path), offset)}
}

// after returns the position just after the parent element.
func (p Position) after() Position {
	np := Position{root: p.root, path: slices.Clone(p.path[:len(p.path)-1])}
	np.path[len(np.path)-1]++
	return np
}

// transformedByInsertion returns p after howMany offsets were inserted at
// at. When p sits exactly at the insertion offset it moves only if
// moveOnEqual is set.
func (p Position) transformedByInsertion(at Position, howMany int, moveOnEqual bool) Position {
	depth := len(at.path) - 1
	if !p.sharesPrefix(at, depth) {
		return p
	}
	c, o := p.path[depth], at.path[depth]
	if c > o || (c == o && (len(p.path) > depth+1 || moveOnEqual)) {
		np := NewPosition(p.root, p.path)
		np.path[depth] += howMany
		return np
	}
	return p
}

// transformedByRemoval returns p after howMany offsets starting at start
// were removed. Positions inside the removed content collapse to start.
func (p Position) transformedByRemoval(start Position, howMany int) Position {
	depth := len(start.path) - 1
	if !p.sharesPrefix(start, depth) {
		return p
	}
	c, o1 := p.path[depth], start.path[depth]
	o2 := o1 + howMany
	switch {
	case c >= o2:
		np := NewPosition(p.root, p.path)
		np.path[depth] -= howMany
		return np
	case c > o1 || (c == o1 && len(p.path) > depth+1):
		return NewPosition(p.root, start.path)
	default:
		return p
	}
}

// sharesPrefix reports whether p lies in the parent of other (or below it)
// at the given depth.
func (p Position) sharesPrefix(other Position, depth int) bool {
	if p.root != other.root || depth < 0 || len(p.path) <= depth {
		return false
	}
	return slices.Equal(p.path[:depth], other.path[:depth])
}
