package view

import "github.com/dshills/docsurface/internal/model"

// Mapper binds view elements to the model elements they were rendered from.
type Mapper struct {
	toModel map[*Element]*model.Element
	toView  map[*model.Element]*Element
}

// NewMapper creates an empty mapper.
func NewMapper() *Mapper {
	return &Mapper{
		toModel: make(map[*Element]*model.Element),
		toView:  make(map[*model.Element]*Element),
	}
}

// Bind links a view element and a model element.
func (m *Mapper) Bind(v *Element, el *model.Element) {
	m.toModel[v] = el
	m.toView[el] = v
}

// Unbind removes the bindings of v and its descendants.
func (m *Mapper) Unbind(v *Element) {
	if el, ok := m.toModel[v]; ok {
		delete(m.toModel, v)
		if m.toView[el] == v {
			delete(m.toView, el)
		}
	}
	for _, c := range v.children {
		if ce, ok := c.(*Element); ok {
			m.Unbind(ce)
		}
	}
}

// ToModel returns the model element bound to v, or nil.
func (m *Mapper) ToModel(v *Element) *model.Element { return m.toModel[v] }

// ToView returns the view element bound to el, or nil.
func (m *Mapper) ToView(el *model.Element) *Element { return m.toView[el] }
