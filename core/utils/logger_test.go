package utils

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerWritesLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, slog.LevelInfo).With("component", "feed")
	l.Printf("loaded %d rows", 3)
	l.Errorf("source %s failed\n", "remote")
	l.Debugf("hidden")
	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, `msg="loaded 3 rows"`) {
		t.Fatalf("missing info line: %s", out)
	}
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "component=feed") {
		t.Fatalf("missing error line: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %s", out)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Printf("x")
	l.Errorf("y")
	if l.With("a", 1) != nil {
		t.Fatalf("expected nil child")
	}
}
