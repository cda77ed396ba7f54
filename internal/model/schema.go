package model

import (
	"fmt"
	"sync"
)

// TextChild is the pseudo item name used to ask whether plain text is allowed.
const TextChild = "$text"

// RootName is the element name given to document roots.
const RootName = "$root"

// Role classifies how an item behaves in text flow.
type Role int

const (
	// RoleContainer holds block elements only.
	RoleContainer Role = iota
	// RoleBlock is a text-bearing block such as a paragraph.
	RoleBlock
	// RoleSoftBreak is an inline line break inside a block.
	RoleSoftBreak
	// RoleObject is an inline object such as an image.
	RoleObject
)

// String returns a human-readable role name.
func (r Role) String() string {
	switch r {
	case RoleContainer:
		return "container"
	case RoleBlock:
		return "block"
	case RoleSoftBreak:
		return "softBreak"
	case RoleObject:
		return "object"
	default:
		return "unknown"
	}
}

// ItemDefinition describes one element name.
type ItemDefinition struct {
	// AllowText permits plain text children.
	AllowText bool

	// Inline marks elements that live inside text flow.
	Inline bool

	// Role classifies the element.
	Role Role
}

// Schema holds the registered item definitions.
type Schema struct {
	mu    sync.RWMutex
	items map[string]ItemDefinition
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{items: make(map[string]ItemDefinition)}
}

// DefaultSchema registers the items used by plain-text documents.
func DefaultSchema() *Schema {
	s := NewSchema()
	s.mustRegister(RootName, ItemDefinition{Role: RoleContainer})
	s.mustRegister("blockQuote", ItemDefinition{Role: RoleContainer})
	s.mustRegister("paragraph", ItemDefinition{AllowText: true, Role: RoleBlock})
	s.mustRegister("heading", ItemDefinition{AllowText: true, Role: RoleBlock})
	s.mustRegister("softBreak", ItemDefinition{Inline: true, Role: RoleSoftBreak})
	s.mustRegister("inlineImage", ItemDefinition{Inline: true, Role: RoleObject})
	return s
}

// Register adds an item definition.
func (s *Schema) Register(name string, def ItemDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[name]; ok {
		return fmt.Errorf("%w: %s", ErrItemExists, name)
	}
	s.items[name] = def
	return nil
}

func (s *Schema) mustRegister(name string, def ItemDefinition) {
	if err := s.Register(name, def); err != nil {
		panic(err)
	}
}

// Definition returns the definition registered for name.
func (s *Schema) Definition(name string) (ItemDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.items[name]
	return def, ok
}

// CheckChild reports whether child (an item name or TextChild) may be
// placed directly inside parent.
func (s *Schema) CheckChild(parent *Element, child string) bool {
	if parent == nil {
		return false
	}
	pdef, ok := s.Definition(parent.name)
	if !ok {
		return false
	}
	if child == TextChild {
		return pdef.AllowText
	}
	cdef, ok := s.Definition(child)
	if !ok || child == RootName {
		return false
	}
	// Inline items need a text-bearing parent; blocks need a container.
	return cdef.Inline == pdef.AllowText
}

// RoleOf returns the role of an element, and false for unregistered names.
func (s *Schema) RoleOf(e *Element) (Role, bool) {
	def, ok := s.Definition(e.name)
	return def.Role, ok
}

// IsInline reports whether the node is text or an inline element.
func (s *Schema) IsInline(n Node) bool {
	switch v := n.(type) {
	case *Text:
		return true
	case *Element:
		def, ok := s.Definition(v.name)
		return ok && def.Inline
	}
	return false
}
