package app

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics tracks event loop timing.
type Metrics struct {
	// Frame timing (render + paint)
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMaxNs   atomic.Int64
	lastFrameNs  atomic.Int64

	// Event processing
	eventCount   atomic.Uint64
	eventTotalNs atomic.Int64
	eventErrors  atomic.Uint64

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordFrame records frame timing.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	for {
		old := m.frameMaxNs.Load()
		if ns <= old {
			break
		}
		if m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordEvent records event processing timing. failed counts events whose
// handling returned an error.
func (m *Metrics) RecordEvent(duration time.Duration, failed bool) {
	m.eventCount.Add(1)
	m.eventTotalNs.Add(duration.Nanoseconds())
	if failed {
		m.eventErrors.Add(1)
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frames := m.frameCount.Load()
	events := m.eventCount.Load()

	s := MetricsSnapshot{
		FrameCount:  frames,
		LastFrame:   time.Duration(m.lastFrameNs.Load()),
		MaxFrame:    time.Duration(m.frameMaxNs.Load()),
		EventCount:  events,
		EventErrors: m.eventErrors.Load(),
		Uptime:      time.Since(m.startTime),
	}
	if frames > 0 {
		s.AvgFrame = time.Duration(m.frameTotalNs.Load() / int64(frames))
	}
	if events > 0 {
		s.AvgEvent = time.Duration(m.eventTotalNs.Load() / int64(events))
	}
	return s
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.frameCount.Store(0)
	m.frameTotalNs.Store(0)
	m.frameMaxNs.Store(0)
	m.lastFrameNs.Store(0)
	m.eventCount.Store(0)
	m.eventTotalNs.Store(0)
	m.eventErrors.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time copy of the metrics.
type MetricsSnapshot struct {
	FrameCount uint64
	AvgFrame   time.Duration
	LastFrame  time.Duration
	MaxFrame   time.Duration

	EventCount  uint64
	AvgEvent    time.Duration
	EventErrors uint64

	Uptime time.Duration
}

// LogValue groups the snapshot when it is logged.
func (s MetricsSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("frames", s.FrameCount),
		slog.Duration("avg_frame", s.AvgFrame),
		slog.Duration("max_frame", s.MaxFrame),
		slog.Uint64("events", s.EventCount),
		slog.Duration("avg_event", s.AvgEvent),
		slog.Uint64("event_errors", s.EventErrors),
		slog.Duration("uptime", s.Uptime),
	)
}
