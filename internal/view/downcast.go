package view

import (
	"errors"

	"github.com/dshills/docsurface/internal/model"
)

// StatusElement is the name of the status line element appended to every
// rendered root. It carries the ignore attribute.
const StatusElement = "status"

var defaultViewNames = map[string]string{
	"paragraph":   "p",
	"heading":     "h",
	"blockQuote":  "blockquote",
	"softBreak":   "br",
	"inlineImage": "img",
}

// DowncastRenderer rebuilds each surface root from the model root with the
// same name.
type DowncastRenderer struct {
	names  map[string]string
	status func(root string) string
}

// NewDowncastRenderer creates a renderer. status, when not nil, supplies
// the text of each root's status element.
func NewDowncastRenderer(status func(root string) string) *DowncastRenderer {
	return &DowncastRenderer{names: defaultViewNames, status: status}
}

// Render replaces the children of every attached root that has a model
// counterpart. Each root is rebuilt in one mutation batch.
func (r *DowncastRenderer) Render(c *Controller) error {
	var errs []error
	for _, root := range c.Surface().Roots() {
		mroot := c.Document().Root(root.Name())
		if mroot == nil {
			continue
		}
		errs = append(errs, root.Batch(func() {
			r.rebuild(c, root, mroot)
		}))
	}
	return errors.Join(errs...)
}

func (r *DowncastRenderer) rebuild(c *Controller, root *Root, mroot *model.Element) {
	el := root.Element()
	c.Mapper().Unbind(el)
	el.RemoveChildren()

	c.Mapper().Bind(el, mroot)
	for _, child := range mroot.Children() {
		el.AppendChild(r.downcast(c.Mapper(), child))
	}

	status := NewElement(StatusElement, map[string]string{c.IgnoreAttribute(): ""})
	if r.status != nil {
		status.AppendChild(NewText(r.status(root.Name())))
	}
	el.AppendChild(status)
}

func (r *DowncastRenderer) downcast(m *Mapper, n model.Node) Node {
	switch v := n.(type) {
	case *model.Text:
		return NewText(v.Data())
	case *model.Element:
		name, ok := r.names[v.Name()]
		if !ok {
			name = v.Name()
		}
		el := NewElement(name, v.Attributes())
		m.Bind(el, v)
		for _, child := range v.Children() {
			el.AppendChild(r.downcast(m, child))
		}
		return el
	}
	return NewText("")
}
