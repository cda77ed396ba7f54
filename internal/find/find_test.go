package find

import (
	"testing"

	"github.com/dshills/docsurface/internal/model"
	"github.com/dshills/docsurface/internal/uid"
)

func newDoc(t *testing.T, text string) (*model.Document, *model.Element) {
	t.Helper()
	doc := model.NewDocument(nil)
	root, err := model.LoadPlainText(doc, "main", text)
	if err != nil {
		t.Fatalf("LoadPlainText() failed: %v", err)
	}
	return doc, root
}

func block(t *testing.T, root *model.Element, i int) *model.Element {
	t.Helper()
	el, ok := root.Child(i).(*model.Element)
	if !ok {
		t.Fatalf("root child %d is not an element", i)
	}
	return el
}

func addMarker(t *testing.T, doc *model.Document, name string, parent *model.Element, start, end int) *model.Marker {
	t.Helper()
	var m *model.Marker
	err := doc.Change(func(w *model.Writer) error {
		s, err := w.CreatePositionAt(parent, start)
		if err != nil {
			return err
		}
		e, err := w.CreatePositionAt(parent, end)
		if err != nil {
			return err
		}
		m, err = w.AddMarker(name, model.MarkerOptions{Range: w.CreateRange(s, e)})
		return err
	})
	if err != nil {
		t.Fatalf("AddMarker(%s) failed: %v", name, err)
	}
	return m
}

func newScanner(doc *model.Document) *Scanner {
	return NewScanner(doc, uid.NewCounter(""))
}

// hits returns a matcher that reports fixed hits for every element.
func hits(hs ...Hit) Matcher {
	return func(MatchInput) ([]Hit, error) {
		return hs, nil
	}
}

func labels(recs []*Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Label
	}
	return out
}
