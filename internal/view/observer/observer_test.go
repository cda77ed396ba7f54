package observer

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/docsurface/internal/backend"
	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/event/topic"
	"github.com/dshills/docsurface/internal/model"
	"github.com/dshills/docsurface/internal/view"
)

type fixture struct {
	c          *view.Controller
	main       *view.Element
	body       *view.Text
	statusText *view.Text
	events     []event.Envelope
}

// newFixture attaches an editable "main" root holding <p>body</p> and an
// ignored status element.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc := model.NewDocument(nil)
	f := &fixture{c: view.NewController(doc)}

	f.main = view.NewElement("div", nil)
	p := view.NewElement("p", nil)
	f.body = view.NewText("body")
	p.AppendChild(f.body)
	f.main.AppendChild(p)
	status := view.NewElement(view.StatusElement, map[string]string{view.DefaultIgnoreAttribute: ""})
	f.statusText = view.NewText("status")
	status.AppendChild(f.statusText)
	f.main.AppendChild(status)

	if _, err := f.c.AttachRoot("main", f.main, view.RootEditable); err != nil {
		t.Fatal(err)
	}
	if _, err := f.c.Emitter().OnFunc("view.**", func(ctx context.Context, ev any) error {
		f.events = append(f.events, event.ToEnvelope(ev))
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) add(t *testing.T, name string, ctor view.ObserverConstructor) view.Observer {
	t.Helper()
	obs, err := f.c.AddObserver(name, ctor)
	if err != nil {
		t.Fatalf("AddObserver(%s) failed: %v", name, err)
	}
	return obs
}

func (f *fixture) dispatch(t *testing.T, ev view.RawEvent) {
	t.Helper()
	if err := f.c.Surface().Dispatch(ev); err != nil {
		t.Fatalf("Dispatch(%s) failed: %v", ev.Type, err)
	}
}

func (f *fixture) topics() []topic.Topic {
	out := make([]topic.Topic, len(f.events))
	for i, e := range f.events {
		out[i] = e.Topic
	}
	return out
}

func TestKeyObserver(t *testing.T) {
	f := newFixture(t)
	obs := f.add(t, NameKey, NewKeyObserver)

	f.dispatch(t, view.RawEvent{Type: view.RawKeyDown, Target: f.body, Key: backend.KeyRune, Rune: 'x'})
	f.dispatch(t, view.RawEvent{Type: view.RawKeyUp, Target: f.body, Key: backend.KeyRune, Rune: 'x'})
	f.dispatch(t, view.RawEvent{Type: view.RawKeyDown, Target: f.statusText, Key: backend.KeyEnter})

	if len(f.events) != 2 || f.events[0].Topic != TopicKeyDown || f.events[1].Topic != TopicKeyUp {
		t.Fatalf("events = %v", f.topics())
	}
	data, ok := f.events[0].Payload.(KeyEventData)
	if !ok || data.Rune != 'x' || data.Root != "main" || data.Target != f.body {
		t.Errorf("payload = %+v", f.events[0].Payload)
	}

	obs.Disable()
	f.dispatch(t, view.RawEvent{Type: view.RawKeyDown, Target: f.body})
	if len(f.events) != 2 {
		t.Error("disabled observer fired")
	}
}

func TestKeyObserver_ReattachedRoot(t *testing.T) {
	f := newFixture(t)
	f.add(t, NameKey, NewKeyObserver)
	old := f.c.Surface().Root("main").Emitter()

	if err := f.c.DetachRoot("main"); err != nil {
		t.Fatalf("DetachRoot failed: %v", err)
	}
	if n := old.Count(); n != 0 {
		t.Errorf("detached root emitter keeps %d subscriptions, want 0", n)
	}

	div := view.NewElement("div", nil)
	text := view.NewText("again")
	div.AppendChild(text)
	if _, err := f.c.AttachRoot("main", div, view.RootEditable); err != nil {
		t.Fatalf("AttachRoot failed: %v", err)
	}

	f.dispatch(t, view.RawEvent{Type: view.RawKeyDown, Target: text, Key: backend.KeyRune, Rune: 'y'})
	if len(f.events) != 1 || f.events[0].Topic != TopicKeyDown {
		t.Fatalf("events after reattach = %v", f.topics())
	}
	if data, ok := f.events[0].Payload.(KeyEventData); !ok || data.Target != text {
		t.Errorf("payload = %+v", f.events[0].Payload)
	}

	if err := f.c.DetachRoot("missing"); !errors.Is(err, view.ErrNoSuchRoot) {
		t.Errorf("DetachRoot(missing) error = %v, want ErrNoSuchRoot", err)
	}
}

func TestKeyObserver_ReadOnlyRoot(t *testing.T) {
	f := newFixture(t)
	f.add(t, NameKey, NewKeyObserver)

	preview := view.NewElement("div", nil)
	if _, err := f.c.AttachRoot("preview", preview, view.RootReadOnly); err != nil {
		t.Fatalf("AttachRoot() = %v, want unsupported roots skipped", err)
	}
	f.dispatch(t, view.RawEvent{Type: view.RawKeyDown, Target: preview})
	if len(f.events) != 0 {
		t.Errorf("key observer fired for a read-only root: %v", f.topics())
	}

	// Registering while a read-only root is attached is rejected.
	f.c.Observer(NameKey).Destroy()
	_, err := f.c.AddObserver("key2", NewKeyObserver)
	var ure *view.UnsupportedRootError
	if !errors.As(err, &ure) || ure.Root != "preview" || ure.Observer != NameKey {
		t.Errorf("AddObserver() error = %v, want UnsupportedRootError for preview", err)
	}
}

func TestMouseObserver(t *testing.T) {
	f := newFixture(t)
	f.add(t, NameMouse, NewMouseObserver)

	preview := view.NewElement("div", nil)
	if _, err := f.c.AttachRoot("preview", preview, view.RootReadOnly); err != nil {
		t.Fatal(err)
	}

	f.dispatch(t, view.RawEvent{Type: view.RawMouseDown, Target: f.body, X: 1, Y: 2, Button: backend.MouseLeft})
	f.dispatch(t, view.RawEvent{Type: view.RawMouseUp, Target: preview, Button: backend.MouseLeft})
	f.dispatch(t, view.RawEvent{Type: view.RawWheel, Target: f.body, Button: backend.MouseWheelDown})
	f.dispatch(t, view.RawEvent{Type: view.RawMouseDown, Target: f.statusText})

	want := []topic.Topic{TopicMouseDown, TopicMouseUp, TopicWheel}
	got := f.topics()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	if data := f.events[0].Payload.(MouseEventData); data.X != 1 || data.Y != 2 {
		t.Errorf("mouse payload = %+v", data)
	}
	if data := f.events[1].Payload.(MouseEventData); data.Root != "preview" {
		t.Errorf("mouse up root = %q", data.Root)
	}
}

func TestFocusObserver(t *testing.T) {
	f := newFixture(t)
	obs := f.add(t, NameFocus, NewFocusObserver).(*FocusObserver)

	other := view.NewElement("div", nil)
	if _, err := f.c.AttachRoot("other", other, view.RootEditable); err != nil {
		t.Fatal(err)
	}
	if obs.IsFocused() {
		t.Error("no focus event seen yet")
	}

	if err := f.c.Surface().Focus("other"); err != nil {
		t.Fatal(err)
	}
	got := f.topics()
	if len(got) != 2 || got[0] != TopicBlur || got[1] != TopicFocus {
		t.Fatalf("events = %v", got)
	}
	if !obs.IsFocused() || obs.FocusedRoot() != "other" {
		t.Errorf("FocusedRoot() = %q", obs.FocusedRoot())
	}

	f.dispatch(t, view.RawEvent{Type: view.RawBlur, Target: other})
	if obs.IsFocused() {
		t.Error("blur should clear focus")
	}
}

func TestClipboardObserver(t *testing.T) {
	f := newFixture(t)
	f.add(t, NameClipboard, NewClipboardObserver)

	f.dispatch(t, view.RawEvent{Type: view.RawPaste, Target: f.body, Text: "pasted"})
	f.dispatch(t, view.RawEvent{Type: view.RawPaste, Target: f.body})

	if len(f.events) != 1 || f.events[0].Topic != TopicClipboardInput {
		t.Fatalf("events = %v", f.topics())
	}
	if data := f.events[0].Payload.(ClipboardInputData); data.Text != "pasted" {
		t.Errorf("clipboard text = %q", data.Text)
	}
}

func TestMutationObserver(t *testing.T) {
	f := newFixture(t)
	f.add(t, NameMutation, NewMutationObserver)

	f.body.SetData("edited")
	f.statusText.SetData("status changed")

	if len(f.events) != 1 || f.events[0].Topic != TopicMutations {
		t.Fatalf("events = %v", f.topics())
	}
	data := f.events[0].Payload.(MutationsData)
	if len(data.Records) != 1 || data.Records[0].Target != f.body || data.Records[0].OldValue != "body" {
		t.Errorf("records = %+v", data.Records)
	}
}

func TestMutationObserver_QuietDuringRender(t *testing.T) {
	f := newFixture(t)
	f.add(t, NameMutation, NewMutationObserver)

	f.c.SetRenderer(view.RendererFunc(func(c *view.Controller) error {
		f.body.SetData("rendered")
		f.main.AppendChild(view.NewElement("p", nil))
		return nil
	}))
	if err := f.c.Render(); err != nil {
		t.Fatal(err)
	}
	if len(f.events) != 0 {
		t.Errorf("render produced view events: %v", f.topics())
	}

	f.body.SetData("typed")
	if len(f.events) != 1 {
		t.Errorf("mutation after render produced %d events, want 1", len(f.events))
	}
}

func TestDestroyedObserverNeverFires(t *testing.T) {
	f := newFixture(t)
	for _, r := range Defaults() {
		f.add(t, r.Name, r.New)
	}
	f.c.Destroy()

	f.body.SetData("after destroy")
	f.dispatch(t, view.RawEvent{Type: view.RawKeyDown, Target: f.body})
	f.dispatch(t, view.RawEvent{Type: view.RawMouseDown, Target: f.body})
	f.dispatch(t, view.RawEvent{Type: view.RawPaste, Target: f.body, Text: "x"})
	if len(f.events) != 0 {
		t.Errorf("destroyed observers fired: %v", f.topics())
	}
}

func TestRegisterDefaults(t *testing.T) {
	f := newFixture(t)
	if _, err := f.c.AttachRoot("preview", view.NewElement("div", nil), view.RootReadOnly); err != nil {
		t.Fatal(err)
	}

	err := RegisterDefaults(f.c)
	if !errors.Is(err, view.ErrUnsupportedRoot) {
		t.Errorf("RegisterDefaults() error = %v, want unsupported root errors", err)
	}
	for _, name := range []string{NameMutation, NameFocus, NameMouse} {
		if obs := f.c.Observer(name); obs == nil || !obs.IsEnabled() {
			t.Errorf("observer %s not registered", name)
		}
	}
	for _, name := range []string{NameKey, NameClipboard} {
		if f.c.Observer(name) != nil {
			t.Errorf("editable-only observer %s registered with a read-only root", name)
		}
	}
}
