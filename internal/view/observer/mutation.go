package observer

import (
	"context"

	"github.com/dshills/docsurface/internal/view"
)

// MutationObserver fires view.mutations with the records of each batch
// whose target is not ignored.
type MutationObserver struct {
	*DomEventObserver
}

// NewMutationObserver creates a mutation observer for c.
func NewMutationObserver(c *view.Controller) view.Observer {
	o := &MutationObserver{}
	o.DomEventObserver = NewDomEventObserver(c, NameMutation, []string{view.RawMutation}, o.translate)
	return o
}

func (o *MutationObserver) translate(ctx context.Context, root *view.Root, raw view.RawEvent) error {
	records := make([]view.MutationRecord, 0, len(raw.Mutations))
	for _, rec := range raw.Mutations {
		if o.Filter(rec.Target) {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}
	return Fire(ctx, o.DomEventObserver, TopicMutations, MutationsData{Root: root.Name(), Records: records})
}
