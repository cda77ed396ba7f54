package trace

import (
	"fmt"

	"github.com/dshills/docsurface/internal/find"
	"github.com/dshills/docsurface/internal/model"
	"github.com/dshills/docsurface/internal/view"
	"github.com/dshills/docsurface/internal/view/observer"
)

type field struct {
	key   string
	value any
}

// summarize picks the payload fields written to the trace. Payloads hold
// tree nodes with parent links, so they are never marshaled whole.
func summarize(payload any) []field {
	switch p := payload.(type) {
	case nil:
		return nil
	case observer.KeyEventData:
		return append(domFields(p.DomEventData),
			field{"key", p.Key.String()}, field{"rune", string(p.Rune)}, field{"mod", int(p.Mod)})
	case observer.MouseEventData:
		return append(domFields(p.DomEventData),
			field{"x", p.X}, field{"y", p.Y}, field{"button", int(p.Button)})
	case observer.FocusEventData:
		return append(domFields(p.DomEventData), field{"focused", p.Focused})
	case observer.ClipboardInputData:
		return append(domFields(p.DomEventData), field{"text", p.Text})
	case observer.MutationsData:
		return []field{{"root", p.Root}, {"records", len(p.Records)}}
	case view.RawEvent:
		return []field{{"type", p.Type}, {"target", nodeName(p.Target)}}
	case model.DataChange:
		names := make([]string, len(p.ChangedElements))
		for i, el := range p.ChangedElements {
			names[i] = el.Name()
		}
		return []field{{"version", p.Version}, {"changed", names}}
	case model.MarkerChange:
		return []field{
			{"name", p.Name}, {"added", p.Added}, {"removed", p.Removed},
			{"old", p.OldRange.String()}, {"new", p.NewRange.String()},
		}
	case find.Change:
		return []field{{"id", p.Record.ID}, {"label", p.Record.Label}, {"index", p.Index}}
	default:
		return []field{{"type", fmt.Sprintf("%T", p)}}
	}
}

func domFields(d observer.DomEventData) []field {
	return []field{{"root", d.Root}, {"target", nodeName(d.Target)}}
}

func nodeName(n view.Node) string {
	switch v := n.(type) {
	case *view.Element:
		return v.Name()
	case *view.Text:
		return "#text"
	default:
		return ""
	}
}
