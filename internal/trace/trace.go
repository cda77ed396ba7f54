// Package trace records events as JSON lines and reads them back.
//
// Each line holds seq, topic, source, time and a payload object with the
// fields worth inspecting for the event type:
//
//	{"seq":3,"topic":"view.keydown","source":"view","time":"...","payload":{"root":"main","key":"Rune","rune":"a"}}
package trace

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tidwall/sjson"

	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/event/topic"
)

// AllTopics matches every event.
const AllTopics topic.Topic = "**"

// Recorder writes every event fired on the attached emitters. Write errors
// stop recording; Err reports the first one.
type Recorder struct {
	mu       sync.Mutex
	w        io.Writer
	listener *event.Listener
	seq      uint64
	err      error
	now      func() time.Time
	topics   []topic.Topic
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithTopics limits recording to events matching one of the patterns.
func WithTopics(patterns ...topic.Topic) RecorderOption {
	return func(r *Recorder) {
		r.topics = append(r.topics, patterns...)
	}
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w io.Writer, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		w:        w,
		listener: event.NewListener(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach records the events fired on src. The recorder runs after the
// other handlers of an event.
func (r *Recorder) Attach(src *event.Emitter) error {
	opts := []event.SubscriptionOption{event.WithPriority(event.PriorityLow)}
	if len(r.topics) > 0 {
		opts = append(opts, event.WithFilter(r.accepts))
	}
	_, err := r.listener.ListenToFunc(src, AllTopics, r.record, opts...)
	return err
}

func (r *Recorder) accepts(ev any) bool {
	t := event.ToEnvelope(ev).Topic
	for _, p := range r.topics {
		if t.Matches(p) {
			return true
		}
	}
	return false
}

// Close detaches from every emitter.
func (r *Recorder) Close() {
	r.listener.StopListening()
}

// Err returns the first write error.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Count returns the number of events written.
func (r *Recorder) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

func (r *Recorder) record(_ context.Context, ev any) error {
	env := event.ToEnvelope(ev)
	if env.Topic == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil
	}

	ts := env.Metadata.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}
	line, err := encode(r.seq+1, env.Topic, env.Metadata.Source, ts, env.Payload)
	if err != nil {
		return fmt.Errorf("trace %s: %w", env.Topic, err)
	}
	if _, err := io.WriteString(r.w, line+"\n"); err != nil {
		r.err = err
		return nil
	}
	r.seq++
	return nil
}

// encode builds one trace line.
func encode(seq uint64, t topic.Topic, source string, ts time.Time, payload any) (string, error) {
	line := "{}"
	var err error
	set := func(path string, v any) {
		if err == nil {
			line, err = sjson.Set(line, path, v)
		}
	}
	set("seq", seq)
	set("topic", string(t))
	set("source", source)
	set("time", ts.Format(time.RFC3339Nano))
	for _, f := range summarize(payload) {
		set("payload."+f.key, f.value)
	}
	return line, err
}
