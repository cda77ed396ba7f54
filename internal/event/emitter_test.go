package event

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/docsurface/internal/event/topic"
)

func TestEmitter_FireDeliversToMatchingTopics(t *testing.T) {
	e := NewEmitter("test")
	var got []string

	if _, err := e.OnFunc("view.*", func(ctx context.Context, ev any) error {
		got = append(got, "wildcard:"+ToEnvelope(ev).Topic.String())
		return nil
	}); err != nil {
		t.Fatalf("OnFunc() failed: %v", err)
	}
	if _, err := e.OnFunc("view.keydown", func(ctx context.Context, ev any) error {
		got = append(got, "exact")
		return nil
	}); err != nil {
		t.Fatalf("OnFunc() failed: %v", err)
	}

	if err := Emit(context.Background(), e, "view.keydown", 1); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}
	if err := Emit(context.Background(), e, "document.change.data", 1); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}

	if len(got) != 2 || got[0] != "wildcard:view.keydown" || got[1] != "exact" {
		t.Errorf("delivery = %v", got)
	}
}

func TestEmitter_PriorityOrder(t *testing.T) {
	e := NewEmitter("test")
	var order []string
	record := func(name string) HandlerFunc {
		return func(ctx context.Context, ev any) error {
			order = append(order, name)
			return nil
		}
	}

	e.OnFunc("a", record("low"), WithPriority(PriorityLow))
	e.OnFunc("a", record("normal-1"))
	e.OnFunc("a", record("critical"), WithPriority(PriorityCritical))
	e.OnFunc("a", record("normal-2"))

	if err := Emit(context.Background(), e, "a", struct{}{}); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}

	want := []string{"critical", "normal-1", "normal-2", "low"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestEmitter_ErrorsAndPanicsAreJoined(t *testing.T) {
	e := NewEmitter("test")
	boom := errors.New("boom")
	delivered := false

	e.OnFunc("x", func(ctx context.Context, ev any) error { return boom })
	e.OnFunc("x", func(ctx context.Context, ev any) error { panic("kaboom") })
	e.OnFunc("x", func(ctx context.Context, ev any) error {
		delivered = true
		return nil
	})

	err := Emit(context.Background(), e, "x", 0)
	if err == nil {
		t.Fatal("expected joined error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected errors.Is(err, boom), got %v", err)
	}
	if !errors.Is(err, ErrHandlerPanic) {
		t.Errorf("expected errors.Is(err, ErrHandlerPanic), got %v", err)
	}
	var herr *HandlerError
	if !errors.As(err, &herr) || herr.Topic != "x" {
		t.Errorf("expected HandlerError for topic x, got %v", err)
	}
	if !delivered {
		t.Error("expected delivery to continue after failing handlers")
	}
}

func TestEmitter_OnceAndOff(t *testing.T) {
	e := NewEmitter("test")
	calls := 0
	e.OnFunc("x", func(ctx context.Context, ev any) error {
		calls++
		return nil
	}, WithOnce())

	Emit(context.Background(), e, "x", 0)
	Emit(context.Background(), e, "x", 0)
	if calls != 1 {
		t.Errorf("once handler called %d times, want 1", calls)
	}
	if e.Count() != 0 {
		t.Errorf("Count() = %d, want 0", e.Count())
	}

	sub, _ := e.OnFunc("y", func(ctx context.Context, ev any) error { return nil })
	if err := e.Off(sub); err != nil {
		t.Fatalf("Off() failed: %v", err)
	}
	if err := e.Off(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Off() = %v, want ErrSubscriptionNotFound", err)
	}
	if err := e.Off(nil); !errors.Is(err, ErrInvalidSubscription) {
		t.Errorf("Off(nil) = %v, want ErrInvalidSubscription", err)
	}
}

func TestEmitter_InvalidInput(t *testing.T) {
	e := NewEmitter("test")
	if _, err := e.On("x", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("On(nil handler) = %v, want ErrNilHandler", err)
	}
	if _, err := e.OnFunc("", func(ctx context.Context, ev any) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("OnFunc(empty topic) = %v, want ErrInvalidTopic", err)
	}
	if err := e.Fire(context.Background(), 42); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Fire(42) = %v, want ErrInvalidEvent", err)
	}
}

func TestPayload(t *testing.T) {
	ev := NewEvent(topic.Topic("a"), "hello", "src")
	if p, ok := Payload[string](ev); !ok || p != "hello" {
		t.Errorf("Payload() = %q, %v", p, ok)
	}
	if _, ok := Payload[int](ev); ok {
		t.Error("Payload[int] should not match a string event")
	}
	env := ToEnvelope(ev)
	if env.Metadata.Source != "src" || env.Payload != "hello" {
		t.Errorf("ToEnvelope() = %+v", env)
	}
	if p, ok := Payload[string](env); !ok || p != "hello" {
		t.Errorf("Payload(envelope) = %q, %v", p, ok)
	}
}
