package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordFrame(2 * time.Millisecond)
	m.RecordFrame(4 * time.Millisecond)
	m.RecordEvent(time.Millisecond, false)
	m.RecordEvent(3*time.Millisecond, true)

	s := m.Snapshot()
	if s.FrameCount != 2 {
		t.Errorf("FrameCount = %d, want 2", s.FrameCount)
	}
	if s.AvgFrame != 3*time.Millisecond {
		t.Errorf("AvgFrame = %v, want 3ms", s.AvgFrame)
	}
	if s.MaxFrame != 4*time.Millisecond || s.LastFrame != 4*time.Millisecond {
		t.Errorf("MaxFrame = %v, LastFrame = %v, want 4ms", s.MaxFrame, s.LastFrame)
	}
	if s.EventCount != 2 || s.EventErrors != 1 {
		t.Errorf("EventCount = %d, EventErrors = %d, want 2, 1", s.EventCount, s.EventErrors)
	}
	if s.AvgEvent != 2*time.Millisecond {
		t.Errorf("AvgEvent = %v, want 2ms", s.AvgEvent)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	m.RecordFrame(time.Millisecond)
	m.RecordEvent(time.Millisecond, true)
	m.Reset()

	s := m.Snapshot()
	if s.FrameCount != 0 || s.EventCount != 0 || s.EventErrors != 0 || s.MaxFrame != 0 {
		t.Errorf("snapshot after Reset = %+v", s)
	}
	if s.AvgFrame != 0 || s.AvgEvent != 0 {
		t.Error("averages should be zero without samples")
	}
}

func TestMetricsSnapshot_LogValue(t *testing.T) {
	m := NewMetrics()
	m.RecordFrame(time.Millisecond)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("done", "metrics", m.Snapshot())

	out := buf.String()
	for _, want := range []string{"metrics.frames=1", "metrics.max_frame=1ms", "metrics.events=0"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestMetrics_RecordedByRun(t *testing.T) {
	app := newApp(t, Options{Sources: []Source{{Name: "main", Text: "cat"}}})
	run(t, app, typed("ab"))

	s := app.Metrics().Snapshot()
	// One frame before the loop and one per handled event.
	if s.FrameCount != 3 || s.EventCount != 2 {
		t.Errorf("frames = %d, events = %d, want 3, 2", s.FrameCount, s.EventCount)
	}
}
