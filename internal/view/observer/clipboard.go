package observer

import (
	"context"

	"github.com/dshills/docsurface/internal/view"
)

// ClipboardObserver fires view.clipboardInput for pasted text. It only
// observes editable roots.
type ClipboardObserver struct {
	*DomEventObserver
}

// NewClipboardObserver creates a clipboard observer for c.
func NewClipboardObserver(c *view.Controller) view.Observer {
	o := &ClipboardObserver{}
	o.DomEventObserver = NewDomEventObserver(c, NameClipboard, []string{view.RawPaste}, o.translate).RequireEditable()
	return o
}

func (o *ClipboardObserver) translate(ctx context.Context, root *view.Root, raw view.RawEvent) error {
	if raw.Text == "" {
		return nil
	}
	return Fire(ctx, o.DomEventObserver, TopicClipboardInput, ClipboardInputData{
		DomEventData: DomEventData{Root: root.Name(), Target: raw.Target},
		Text:         raw.Text,
	})
}
