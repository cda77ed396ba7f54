package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled at every level")
	}
}

func TestSetLoggerAndOrDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", &buf)
	SetLogger(l)
	defer SetLogger(nil)

	OrDefault(nil).Debug("scan finished", "records", 3)
	if !strings.Contains(buf.String(), "records=3") {
		t.Errorf("log output = %q", buf.String())
	}

	own := Nop()
	if OrDefault(own) != own {
		t.Error("OrDefault should return the explicit logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
