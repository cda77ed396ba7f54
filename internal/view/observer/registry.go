package observer

import (
	"errors"

	"github.com/dshills/docsurface/internal/view"
)

// Registration pairs an observer name with its constructor.
type Registration struct {
	Name string
	New  view.ObserverConstructor
}

// Defaults returns the observers of this package in registration order.
func Defaults() []Registration {
	return []Registration{
		{NameMutation, NewMutationObserver},
		{NameFocus, NewFocusObserver},
		{NameKey, NewKeyObserver},
		{NameMouse, NewMouseObserver},
		{NameClipboard, NewClipboardObserver},
	}
}

// RegisterDefaults adds every default observer to c. Observers that are
// rejected are skipped and their errors returned together.
func RegisterDefaults(c *view.Controller) error {
	var errs []error
	for _, r := range Defaults() {
		if _, err := c.AddObserver(r.Name, r.New); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
