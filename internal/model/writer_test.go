package model

import (
	"errors"
	"testing"
)

func textOf(t *testing.T, el *Element) string {
	t.Helper()
	s := ""
	for _, c := range el.Children() {
		if tn, ok := c.(*Text); ok {
			s += tn.Data()
		}
	}
	return s
}

func addMarker(t *testing.T, d *Document, name string, parent *Element, from, to int) *Marker {
	t.Helper()
	var m *Marker
	err := d.Change(func(w *Writer) error {
		var err error
		m, err = w.AddMarker(name, MarkerOptions{
			Range: NewRange(mustPosition(t, parent, from), mustPosition(t, parent, to)),
		})
		return err
	})
	if err != nil {
		t.Fatalf("AddMarker(%s) failed: %v", name, err)
	}
	return m
}

func TestWriter_InsertText(t *testing.T) {
	d, root := newTestDoc(t)
	p1 := paragraph(t, root, 1)

	err := d.Change(func(w *Writer) error {
		return w.InsertText("Q", mustPosition(t, p1, 1))
	})
	if err != nil {
		t.Fatalf("InsertText() failed: %v", err)
	}
	if got := textOf(t, p1); got != "xQyz" {
		t.Errorf("text = %q, want %q", got, "xQyz")
	}
	if p1.ChildCount() != 1 {
		t.Errorf("ChildCount() = %d, want 1 merged text node", p1.ChildCount())
	}
}

func TestWriter_InsertTextNotAllowed(t *testing.T) {
	d, root := newTestDoc(t)
	err := d.Change(func(w *Writer) error {
		return w.InsertText("x", mustPosition(t, root, 0))
	})
	if !errors.Is(err, ErrNotAllowed) {
		t.Errorf("InsertText() in root error = %v, want ErrNotAllowed", err)
	}
}

func TestWriter_InsertElementSplitsText(t *testing.T) {
	d, root := newTestDoc(t)
	p1 := paragraph(t, root, 1)

	err := d.Change(func(w *Writer) error {
		return w.InsertElement(NewElement("softBreak", nil), mustPosition(t, p1, 1))
	})
	if err != nil {
		t.Fatalf("InsertElement() failed: %v", err)
	}
	if p1.ChildCount() != 3 || p1.MaxOffset() != 4 {
		t.Errorf("children = %d, max offset = %d; want 3 and 4", p1.ChildCount(), p1.MaxOffset())
	}

	err = d.Change(func(w *Writer) error {
		return w.InsertElement(NewElement("paragraph", nil), mustPosition(t, p1, 0))
	})
	if !errors.Is(err, ErrNotAllowed) {
		t.Errorf("paragraph inside paragraph error = %v, want ErrNotAllowed", err)
	}
}

func TestWriter_Remove(t *testing.T) {
	d, root := newTestDoc(t)
	p0 := paragraph(t, root, 0)

	err := d.Change(func(w *Writer) error {
		return w.Remove(NewRange(mustPosition(t, p0, 1), mustPosition(t, p0, 4)))
	})
	if err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if got := textOf(t, p0); got != "ad" {
		t.Errorf("text = %q, want %q", got, "ad")
	}
	if p0.ChildCount() != 1 {
		t.Errorf("ChildCount() = %d, want 1 after merge", p0.ChildCount())
	}

	p1 := paragraph(t, root, 1)
	err = d.Change(func(w *Writer) error {
		return w.Remove(NewRange(mustPosition(t, p0, 0), mustPosition(t, p1, 1)))
	})
	if !errors.Is(err, ErrNotFlatRange) {
		t.Errorf("Remove() across blocks error = %v, want ErrNotFlatRange", err)
	}
}

func TestWriter_MarkerTransforms(t *testing.T) {
	tests := []struct {
		name         string
		from, to     int
		mutate       func(w *Writer, p *Element) error
		wantStart    int
		wantEnd      int
		wantCollapse bool
	}{
		{
			name: "insert inside", from: 0, to: 2,
			mutate:    func(w *Writer, p *Element) error { return w.InsertText("Q", mustPosition(t, p, 1)) },
			wantStart: 0, wantEnd: 3,
		},
		{
			name: "insert at start moves start", from: 1, to: 2,
			mutate:    func(w *Writer, p *Element) error { return w.InsertText("QQ", mustPosition(t, p, 1)) },
			wantStart: 3, wantEnd: 4,
		},
		{
			name: "insert at end does not grow", from: 1, to: 2,
			mutate:    func(w *Writer, p *Element) error { return w.InsertText("Q", mustPosition(t, p, 2)) },
			wantStart: 1, wantEnd: 2,
		},
		{
			name: "remove before shifts", from: 3, to: 5,
			mutate: func(w *Writer, p *Element) error {
				return w.Remove(NewRange(mustPosition(t, p, 0), mustPosition(t, p, 2)))
			},
			wantStart: 1, wantEnd: 3,
		},
		{
			name: "remove covering collapses", from: 0, to: 2,
			mutate: func(w *Writer, p *Element) error {
				return w.Remove(NewRange(mustPosition(t, p, 0), mustPosition(t, p, 2)))
			},
			wantStart: 0, wantEnd: 0, wantCollapse: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, root := newTestDoc(t)
			p0 := paragraph(t, root, 0)
			m := addMarker(t, d, "test:1", p0, tt.from, tt.to)

			if err := d.Change(func(w *Writer) error { return tt.mutate(w, p0) }); err != nil {
				t.Fatalf("change failed: %v", err)
			}
			if m.Start().Offset() != tt.wantStart || m.End().Offset() != tt.wantEnd {
				t.Errorf("marker = %s, want [%d, %d]", m.Range(), tt.wantStart, tt.wantEnd)
			}
			if m.Range().IsCollapsed() != tt.wantCollapse {
				t.Errorf("IsCollapsed() = %v, want %v", m.Range().IsCollapsed(), tt.wantCollapse)
			}
		})
	}
}

func TestWriter_MarkerErrors(t *testing.T) {
	d, root := newTestDoc(t)
	p0 := paragraph(t, root, 0)
	addMarker(t, d, "test:1", p0, 0, 1)

	err := d.Change(func(w *Writer) error {
		_, err := w.AddMarker("test:1", MarkerOptions{Range: RangeIn(p0)})
		return err
	})
	if !errors.Is(err, ErrMarkerExists) {
		t.Errorf("duplicate AddMarker() error = %v, want ErrMarkerExists", err)
	}

	err = d.Change(func(w *Writer) error { return w.RemoveMarker("test:2") })
	if !errors.Is(err, ErrMarkerNotFound) {
		t.Errorf("RemoveMarker() unknown error = %v, want ErrMarkerNotFound", err)
	}
}

func TestWriter_OutsideChange(t *testing.T) {
	d, root := newTestDoc(t)
	var kept *Writer
	_ = d.Change(func(w *Writer) error {
		kept = w
		return nil
	})
	err := kept.InsertText("x", mustPosition(t, paragraph(t, root, 0), 0))
	if !errors.Is(err, ErrOutsideChange) {
		t.Errorf("InsertText() after block error = %v, want ErrOutsideChange", err)
	}
}

func TestMarkerCollection_Group(t *testing.T) {
	d, root := newTestDoc(t)
	p0 := paragraph(t, root, 0)
	p1 := paragraph(t, root, 1)
	addMarker(t, d, "find:b", p1, 0, 1)
	addMarker(t, d, "find:a", p0, 3, 4)
	addMarker(t, d, "other:a", p0, 0, 1)

	group := d.Markers().Group("find")
	if len(group) != 2 {
		t.Fatalf("Group() returned %d markers, want 2", len(group))
	}
	if group[0].Name() != "find:a" || group[1].Name() != "find:b" {
		t.Errorf("Group() order = [%s %s], want document order", group[0].Name(), group[1].Name())
	}
	if d.Markers().Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Markers().Len())
	}
}
