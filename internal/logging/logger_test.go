package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevelDefaultsToInfo(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" ERROR ": slog.LevelError,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("session muted", String(FieldEndpoint, "sink-1"), Int(FieldPID, 42))

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Errorf("expected level tag in output, got %q", line)
	}
	if !strings.Contains(line, "session muted") {
		t.Errorf("expected message in output, got %q", line)
	}
	if !strings.Contains(line, "endpoint_id=sink-1") {
		t.Errorf("expected endpoint attr in output, got %q", line)
	}
	if !strings.Contains(line, "pid=42") {
		t.Errorf("expected pid attr in output, got %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	logger.Info("renamed", String(FieldDevice, "USB Headphones"))

	if !strings.Contains(buf.String(), `device_name="USB Headphones"`) {
		t.Errorf("expected quoted value, got %q", buf.String())
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, new(slog.LevelVar)))

	logger.Warn("cycle skipped", String("reason", "provider unavailable"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if decoded["level"] != "warn" {
		t.Errorf("expected lowercase level, got %v", decoded["level"])
	}
	if decoded["msg"] != "cycle skipped" {
		t.Errorf("expected msg field, got %v", decoded["msg"])
	}
	if _, ok := decoded["ts"]; !ok {
		t.Error("expected ts field")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should never be enabled")
	}
}
