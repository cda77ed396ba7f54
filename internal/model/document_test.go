package model

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/docsurface/internal/event"
)

func TestDocument_ChangeEventsAfterOutermostBlock(t *testing.T) {
	d, root := newTestDoc(t)
	p0 := paragraph(t, root, 0)
	before := d.Version()

	fired := 0
	var payload DataChange
	d.Emitter().OnFunc(TopicChangeData, func(ctx context.Context, ev any) error {
		fired++
		payload, _ = event.Payload[DataChange](ev)
		return nil
	})

	err := d.Change(func(w *Writer) error {
		if err := w.InsertText("1", mustPosition(t, p0, 0)); err != nil {
			return err
		}
		if err := d.Change(func(inner *Writer) error {
			if inner != w {
				t.Error("nested Change() should reuse the outer writer")
			}
			return inner.InsertText("2", mustPosition(t, p0, 0))
		}); err != nil {
			return err
		}
		if fired != 0 {
			t.Errorf("change event fired %d times inside the block", fired)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Change() failed: %v", err)
	}

	if fired != 1 {
		t.Errorf("change event fired %d times, want 1", fired)
	}
	if d.Version() != before+1 {
		t.Errorf("Version() = %d, want %d", d.Version(), before+1)
	}
	if payload.Version != d.Version() || len(payload.ChangedElements) != 1 || payload.ChangedElements[0] != p0 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestDocument_MarkerEvents(t *testing.T) {
	d, root := newTestDoc(t)
	p0 := paragraph(t, root, 0)

	var changes []MarkerChange
	d.Emitter().OnFunc(TopicMarkersUpdate.Child("*"), func(ctx context.Context, ev any) error {
		c, ok := event.Payload[MarkerChange](ev)
		if !ok {
			t.Errorf("unexpected payload %T", ev)
		}
		changes = append(changes, c)
		return nil
	})
	dataChanges := 0
	d.Emitter().OnFunc(TopicChangeData, func(ctx context.Context, ev any) error {
		dataChanges++
		return nil
	})

	addMarker(t, d, "find:1", p0, 0, 2)
	if len(changes) != 1 || !changes[0].Added || changes[0].Name != "find:1" {
		t.Fatalf("changes after add = %+v", changes)
	}
	if dataChanges != 0 {
		t.Errorf("adding a local marker fired %d data changes", dataChanges)
	}

	if err := d.Change(func(w *Writer) error {
		return w.InsertText("Q", mustPosition(t, p0, 1))
	}); err != nil {
		t.Fatal(err)
	}
	if len(changes) != 2 || changes[1].Added || changes[1].NewRange.End.Offset() != 3 {
		t.Errorf("move change = %+v", changes[len(changes)-1])
	}

	if err := d.Change(func(w *Writer) error { return w.RemoveMarker("find:1") }); err != nil {
		t.Fatal(err)
	}
	if len(changes) != 3 || !changes[2].Removed {
		t.Errorf("remove change = %+v", changes[len(changes)-1])
	}
}

func TestDocument_AddAndRemoveInOneBlockIsQuiet(t *testing.T) {
	d, root := newTestDoc(t)
	p0 := paragraph(t, root, 0)

	fired := 0
	d.Emitter().OnFunc(TopicMarkersUpdate.Child("*"), func(ctx context.Context, ev any) error {
		fired++
		return nil
	})
	err := d.Change(func(w *Writer) error {
		if _, err := w.AddMarker("tmp", MarkerOptions{Range: RangeIn(p0)}); err != nil {
			return err
		}
		return w.RemoveMarker("tmp")
	})
	if err != nil {
		t.Fatal(err)
	}
	if fired != 0 {
		t.Errorf("marker events fired %d times, want 0", fired)
	}
}

func TestDocument_ChangeKeepsWorkOnError(t *testing.T) {
	d, root := newTestDoc(t)
	p1 := paragraph(t, root, 1)
	boom := errors.New("boom")

	fired := 0
	d.Emitter().OnFunc(TopicChangeData, func(ctx context.Context, ev any) error {
		fired++
		return nil
	})

	err := d.Change(func(w *Writer) error {
		if err := w.InsertText("!", mustPosition(t, p1, 3)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Change() error = %v, want boom", err)
	}
	if got := textOf(t, p1); got != "xyz!" {
		t.Errorf("text = %q, want %q", got, "xyz!")
	}
	if fired != 1 {
		t.Errorf("change event fired %d times, want 1", fired)
	}
}

func TestDocument_ChangeRecoversPanic(t *testing.T) {
	d, _ := newTestDoc(t)
	err := d.Change(func(w *Writer) error {
		panic("bad block")
	})
	if err == nil {
		t.Fatal("Change() should turn a panic into an error")
	}
	// The document accepts new blocks afterwards.
	if err := d.Change(func(w *Writer) error { return nil }); err != nil {
		t.Errorf("Change() after panic failed: %v", err)
	}
}

func TestDocument_Roots(t *testing.T) {
	d := NewDocument(nil)
	if _, err := d.CreateRoot("main"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateRoot("main"); !errors.Is(err, ErrRootExists) {
		t.Errorf("duplicate CreateRoot() error = %v, want ErrRootExists", err)
	}
	if _, err := d.PlainText("missing"); !errors.Is(err, ErrNoSuchRoot) {
		t.Errorf("PlainText() error = %v, want ErrNoSuchRoot", err)
	}
}

func TestPlainText_RoundTrip(t *testing.T) {
	inputs := []string{
		"ab\ncd\n\nxyz",
		"single",
		"one\n\ntwo\n\nthree",
	}
	for _, in := range inputs {
		d := NewDocument(nil)
		if _, err := LoadPlainText(d, "main", in); err != nil {
			t.Fatalf("LoadPlainText(%q) failed: %v", in, err)
		}
		got, err := d.PlainText("main")
		if err != nil {
			t.Fatal(err)
		}
		if got != in {
			t.Errorf("PlainText() = %q, want %q", got, in)
		}
	}
}

func TestSchema_CheckChild(t *testing.T) {
	s := DefaultSchema()
	root := NewElement(RootName, nil)
	para := NewElement("paragraph", nil)

	tests := []struct {
		parent *Element
		child  string
		want   bool
	}{
		{root, "paragraph", true},
		{root, TextChild, false},
		{root, "softBreak", false},
		{para, TextChild, true},
		{para, "softBreak", true},
		{para, "paragraph", false},
		{para, "unknown", false},
	}
	for _, tt := range tests {
		if got := s.CheckChild(tt.parent, tt.child); got != tt.want {
			t.Errorf("CheckChild(%s, %s) = %v, want %v", tt.parent.Name(), tt.child, got, tt.want)
		}
	}
	if err := s.Register("paragraph", ItemDefinition{}); !errors.Is(err, ErrItemExists) {
		t.Errorf("Register() duplicate error = %v, want ErrItemExists", err)
	}
}
