package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/event/topic"
	"github.com/dshills/docsurface/internal/find"
	"github.com/dshills/docsurface/internal/model"
	"github.com/dshills/docsurface/internal/uid"
)

func TestRecorder_RoundTrip(t *testing.T) {
	doc := model.NewDocument(nil)
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	if err := rec.Attach(doc.Emitter()); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	results := find.NewResults()
	if err := rec.Attach(results.Emitter()); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	root, err := model.LoadPlainText(doc, "main", "a cat")
	if err != nil {
		t.Fatal(err)
	}
	m, err := find.TextMatcher("cat", find.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s := find.NewScanner(doc, uid.NewCounter(""))
	if err := s.ScanRange(model.RangeIn(root), m, results); err != nil {
		t.Fatal(err)
	}
	rec.Close()

	entries, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if uint64(len(entries)) != rec.Count() {
		t.Errorf("read %d entries, recorder counted %d", len(entries), rec.Count())
	}

	var topics []string
	for i, e := range entries {
		topics = append(topics, e.Topic)
		if e.Seq != uint64(i+1) {
			t.Errorf("entry %d seq = %d", i, e.Seq)
		}
		if e.Time.IsZero() {
			t.Errorf("entry %d has no time", i)
		}
	}
	want := []string{"document.change.data", "results.add", "markers.update.findResult:1"}
	if strings.Join(topics, " ") != strings.Join(want, " ") {
		t.Errorf("topics = %v, want %v", topics, want)
	}

	data := entries[0].Payload
	if data.Get("version").Uint() != 1 || data.Get("changed.0").String() != "$root" {
		t.Errorf("data change payload = %s", data.Raw)
	}
	add := entries[1]
	if add.Source != "results" || add.Payload.Get("label").String() != "cat" || add.Payload.Get("index").Int() != 0 {
		t.Errorf("results.add entry = %+v %s", add, add.Payload.Raw)
	}
	marker := entries[2].Payload
	if !marker.Get("added").Bool() || marker.Get("name").String() != "findResult:1" {
		t.Errorf("marker payload = %s", marker.Raw)
	}

	if got := Filter(entries, "markers.**"); len(got) != 1 {
		t.Errorf("Filter(markers.**) = %d entries, want 1", len(got))
	}
}

func TestRecorder_StopsAfterClose(t *testing.T) {
	e := event.NewEmitter("test")
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	if err := rec.Attach(e); err != nil {
		t.Fatal(err)
	}

	_ = event.Emit(context.Background(), e, "test.one", 1)
	rec.Close()
	_ = event.Emit(context.Background(), e, "test.two", 2)

	entries, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Topic != "test.one" {
		t.Errorf("entries = %+v", entries)
	}
	if got := entries[0].Payload.Get("type").String(); got != "int" {
		t.Errorf("payload type = %q, want int", got)
	}
}

func TestRecorder_WithTopics(t *testing.T) {
	e := event.NewEmitter("test")
	var buf bytes.Buffer
	rec := NewRecorder(&buf, WithTopics("view.*", "results.add"))
	if err := rec.Attach(e); err != nil {
		t.Fatal(err)
	}

	for _, tp := range []string{"view.keydown", "view.mouse.down", "results.add", "results.remove", "document.change.data"} {
		_ = event.Emit(context.Background(), e, topic.Topic(tp), 0)
	}

	entries, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, en := range entries {
		got = append(got, en.Topic)
	}
	if want := "view.keydown results.add"; strings.Join(got, " ") != want {
		t.Errorf("topics = %v, want %s", got, want)
	}
	if entries[1].Seq != 2 {
		t.Errorf("seq = %d, want 2", entries[1].Seq)
	}
}

func TestRecorder_RunsAfterOtherHandlers(t *testing.T) {
	e := event.NewEmitter("test")
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	if err := rec.Attach(e); err != nil {
		t.Fatal(err)
	}
	var before uint64
	if _, err := e.OnFunc("test.one", func(ctx context.Context, ev any) error {
		before = rec.Count()
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	_ = event.Emit(context.Background(), e, "test.one", 1)
	if before != 0 || rec.Count() != 1 {
		t.Errorf("count seen by handler = %d, after = %d, want 0 and 1", before, rec.Count())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRecorder_WriteError(t *testing.T) {
	e := event.NewEmitter("test")
	rec := NewRecorder(failingWriter{})
	if err := rec.Attach(e); err != nil {
		t.Fatal(err)
	}

	if err := event.Emit(context.Background(), e, "test.one", 1); err != nil {
		t.Errorf("Emit() error = %v, write errors must not fail handlers", err)
	}
	if rec.Err() == nil {
		t.Error("Err() = nil, want the write error")
	}
	if rec.Count() != 0 {
		t.Errorf("Count() = %d, want 0", rec.Count())
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"invalid json", `{"seq":1` + "\n"},
		{"bad time", `{"seq":1,"topic":"a","time":"yesterday"}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.in)); err == nil {
				t.Error("Read() should fail")
			}
		})
	}

	entries, err := Read(strings.NewReader("\n" + `{"seq":7,"topic":"x.y","time":"` + time.Unix(0, 0).UTC().Format(time.RFC3339Nano) + `"}` + "\n\n"))
	if err != nil || len(entries) != 1 || entries[0].Seq != 7 {
		t.Errorf("Read() = %+v, %v", entries, err)
	}
}
