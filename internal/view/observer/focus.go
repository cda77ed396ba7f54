package observer

import (
	"context"

	"github.com/dshills/docsurface/internal/view"
)

// FocusObserver fires view.focus and view.blur and tracks which root has
// focus.
type FocusObserver struct {
	*DomEventObserver
	focused string
}

// NewFocusObserver creates a focus observer for c.
func NewFocusObserver(c *view.Controller) view.Observer {
	o := &FocusObserver{}
	o.DomEventObserver = NewDomEventObserver(c, NameFocus, []string{view.RawFocus, view.RawBlur}, o.translate)
	return o
}

// IsFocused reports whether an observed root has focus.
func (o *FocusObserver) IsFocused() bool { return o.focused != "" }

// FocusedRoot returns the name of the focused root, or "".
func (o *FocusObserver) FocusedRoot() string { return o.focused }

func (o *FocusObserver) translate(ctx context.Context, root *view.Root, raw view.RawEvent) error {
	focused := raw.Type == view.RawFocus
	t := TopicBlur
	if focused {
		o.focused = root.Name()
		t = TopicFocus
	} else if o.focused == root.Name() {
		o.focused = ""
	}
	return Fire(ctx, o.DomEventObserver, t, FocusEventData{
		DomEventData: DomEventData{Root: root.Name(), Target: raw.Target},
		Focused:      focused,
	})
}
