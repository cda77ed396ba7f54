package observer

import (
	"context"

	"github.com/dshills/docsurface/internal/view"
)

// KeyObserver fires view.keydown and view.keyup. It only observes
// editable roots.
type KeyObserver struct {
	*DomEventObserver
}

// NewKeyObserver creates a key observer for c.
func NewKeyObserver(c *view.Controller) view.Observer {
	o := &KeyObserver{}
	o.DomEventObserver = NewDomEventObserver(c, NameKey, []string{view.RawKeyDown, view.RawKeyUp}, o.translate).RequireEditable()
	return o
}

func (o *KeyObserver) translate(ctx context.Context, root *view.Root, raw view.RawEvent) error {
	t := TopicKeyDown
	if raw.Type == view.RawKeyUp {
		t = TopicKeyUp
	}
	return Fire(ctx, o.DomEventObserver, t, KeyEventData{
		DomEventData: DomEventData{Root: root.Name(), Target: raw.Target},
		Key:          raw.Key,
		Rune:         raw.Rune,
		Mod:          raw.Mod,
	})
}
