package view

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/model"
)

// recordingObserver counts raw mutation batches it translates.
type recordingObserver struct {
	*BaseObserver
	name         string
	rejectKind   RootKind
	rejects      bool
	translated   int
	observeCalls int
}

func newRecordingObserver(name string) ObserverConstructor {
	return func(c *Controller) Observer {
		return &recordingObserver{BaseObserver: NewBaseObserver(c), name: name}
	}
}

func newEditableOnlyObserver(name string) ObserverConstructor {
	return func(c *Controller) Observer {
		return &recordingObserver{BaseObserver: NewBaseObserver(c), name: name, rejects: true, rejectKind: RootReadOnly}
	}
}

func (o *recordingObserver) Observe(root *Root, name string) error {
	o.observeCalls++
	if o.rejects && root.Kind() == o.rejectKind {
		return &UnsupportedRootError{Observer: o.name, Root: name, Kind: root.Kind()}
	}
	if !o.MarkObserved(name) {
		return nil
	}
	_, err := o.Listener().ListenToFunc(root.Emitter(), RawTopic(RawMutation), func(ctx context.Context, ev any) error {
		if !o.IsEnabled() {
			return nil
		}
		raw, _ := event.Payload[RawEvent](ev)
		if o.CheckShouldIgnoreEventFromTarget(raw.Target) {
			return nil
		}
		o.translated++
		return nil
	})
	return err
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	doc := model.NewDocument(nil)
	if _, err := model.LoadPlainText(doc, "main", "hello"); err != nil {
		t.Fatal(err)
	}
	return NewController(doc)
}

func TestBaseObserver_EnableDisableIdempotent(t *testing.T) {
	sequences := [][]bool{
		{true},
		{false},
		{true, true},
		{false, false},
		{true, false},
		{false, true},
		{true, false, true, true, false},
		{false, true, true, false, true},
	}
	c := newTestController(t)
	for _, seq := range sequences {
		o := NewBaseObserver(c)
		if o.IsEnabled() {
			t.Fatal("observer should start disabled")
		}
		for _, on := range seq {
			if on {
				o.Enable()
			} else {
				o.Disable()
			}
		}
		if want := seq[len(seq)-1]; o.IsEnabled() != want {
			t.Errorf("sequence %v: IsEnabled() = %v, want %v", seq, o.IsEnabled(), want)
		}
		if o.Listener().Count() != 0 {
			t.Errorf("sequence %v registered listeners", seq)
		}
	}
}

func TestBaseObserver_DestroyIsTerminal(t *testing.T) {
	c := newTestController(t)
	obs, err := c.AddObserver("rec", newRecordingObserver("rec"))
	if err != nil {
		t.Fatal(err)
	}
	root := NewElement("div", nil)
	if _, err := c.AttachRoot("main", root, RootEditable); err != nil {
		t.Fatal(err)
	}
	rec := obs.(*recordingObserver)

	root.AppendChild(NewText("x"))
	if rec.translated != 1 {
		t.Fatalf("translated = %d before destroy, want 1", rec.translated)
	}

	rec.Destroy()
	if rec.IsEnabled() {
		t.Error("destroyed observer is enabled")
	}
	if rec.Listener().Count() != 0 {
		t.Errorf("destroyed observer keeps %d listeners", rec.Listener().Count())
	}

	rec.Enable()
	if rec.IsEnabled() {
		t.Error("Enable() after Destroy() should have no effect")
	}
	root.AppendChild(NewText("y"))
	if rec.translated != 1 {
		t.Errorf("destroyed observer translated an event (%d)", rec.translated)
	}
	if err := rec.Observe(c.Surface().Root("main"), "other"); err != nil || rec.Listener().Count() != 0 {
		t.Error("destroyed observer attached new listeners")
	}
}

func TestCheckShouldIgnoreEventFromTarget(t *testing.T) {
	c := newTestController(t)
	o := NewBaseObserver(c)

	ignored := NewElement("status", map[string]string{DefaultIgnoreAttribute: ""})
	inner := NewElement("span", nil)
	ignored.AppendChild(inner)
	text := NewText("status text")
	inner.AppendChild(text)

	plain := NewElement("p", nil)
	plainText := NewText("body")
	plain.AppendChild(plainText)

	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"text under ignored ancestor", text, true},
		{"element carrying attribute", ignored, true},
		{"element under ignored ancestor", inner, true},
		{"element without marker", plain, false},
		{"text without marker", plainText, false},
		{"detached text", NewText("loose"), false},
		{"nil node", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.CheckShouldIgnoreEventFromTarget(tt.node); got != tt.want {
				t.Errorf("CheckShouldIgnoreEventFromTarget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckShouldIgnore_CustomAttribute(t *testing.T) {
	doc := model.NewDocument(nil)
	c := NewController(doc, WithIgnoreAttribute("data-skip"))
	o := NewBaseObserver(c)

	el := NewElement("div", map[string]string{"data-skip": "1"})
	if !o.CheckShouldIgnoreEventFromTarget(el) {
		t.Error("custom ignore attribute not honored")
	}
	other := NewElement("div", map[string]string{DefaultIgnoreAttribute: ""})
	if o.CheckShouldIgnoreEventFromTarget(other) {
		t.Error("default attribute should not apply when overridden")
	}
}

func TestUnsupportedRootError(t *testing.T) {
	err := error(&UnsupportedRootError{Observer: "key", Root: "preview", Kind: RootReadOnly})
	if !errors.Is(err, ErrUnsupportedRoot) {
		t.Error("UnsupportedRootError should match ErrUnsupportedRoot")
	}
	var ure *UnsupportedRootError
	if !errors.As(err, &ure) || ure.Root != "preview" {
		t.Errorf("errors.As() = %+v", ure)
	}
}
