package observer

import (
	"context"

	"github.com/dshills/docsurface/internal/event/topic"
	"github.com/dshills/docsurface/internal/view"
)

var mouseTopics = map[string]topic.Topic{
	view.RawMouseDown: TopicMouseDown,
	view.RawMouseUp:   TopicMouseUp,
	view.RawWheel:     TopicWheel,
}

// MouseObserver fires view.mousedown, view.mouseup and view.wheel.
type MouseObserver struct {
	*DomEventObserver
}

// NewMouseObserver creates a mouse observer for c.
func NewMouseObserver(c *view.Controller) view.Observer {
	o := &MouseObserver{}
	o.DomEventObserver = NewDomEventObserver(c, NameMouse, []string{view.RawMouseDown, view.RawMouseUp, view.RawWheel}, o.translate)
	return o
}

func (o *MouseObserver) translate(ctx context.Context, root *view.Root, raw view.RawEvent) error {
	return Fire(ctx, o.DomEventObserver, mouseTopics[raw.Type], MouseEventData{
		DomEventData: DomEventData{Root: root.Name(), Target: raw.Target},
		X:            raw.X,
		Y:            raw.Y,
		Button:       raw.Button,
	})
}
