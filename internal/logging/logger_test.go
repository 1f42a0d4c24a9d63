package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerLiftsComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("stage started", String(FieldComponent, "transcriber"), String("video_id", "abc123"))

	line := buf.String()
	if !strings.Contains(line, " INFO transcriber: stage started") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "video_id=abc123") {
		t.Fatalf("expected attr in log line: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be lifted out of attrs: %q", line)
	}
}

func TestPrettyHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Warn("upload slow", String("detail", "needs quotes here"))

	if !strings.Contains(buf.String(), `detail="needs quotes here"`) {
		t.Fatalf("expected quoted attr value: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
