package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		if err := sonic.UnmarshalString(line, &entry); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestNew_JSONFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Output: &buf, Service: "matchday-api", Version: "v1"})

	logger.Debug("hidden")
	logger.Named("squad").With("match_id", "m1").Warn("built", "gap", 3, "error", errors.New("boom"))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected one entry, got %d", len(lines))
	}
	entry := lines[0]
	if entry["msg"] != "built" || entry["level"] != "WARN" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["logger"] != "squad" || entry["match_id"] != "m1" || entry["service"] != "matchday-api" {
		t.Fatalf("missing context fields: %v", entry)
	}
	if entry["error"] != "boom" {
		t.Fatalf("expected error field, got %v", entry["error"])
	}
	if caller, _ := entry["caller"].(string); !strings.HasPrefix(caller, "logging/logger_test.go") {
		t.Fatalf("expected caller to point at the test, got %q", caller)
	}
}

func TestLogContext_AddsTraceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Output: &buf})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.DebugContext(ctx, "with span")
	logger.InfoContext(context.Background(), "without span", "dangling")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected two entries, got %d", len(lines))
	}
	if lines[0]["trace_id"] != traceID.String() || lines[0]["span_id"] != spanID.String() {
		t.Fatalf("expected trace fields, got %v", lines[0])
	}
	if _, ok := lines[1]["trace_id"]; ok {
		t.Fatalf("unexpected trace field without span: %v", lines[1])
	}
	if v, ok := lines[1]["dangling"]; !ok || v != nil {
		t.Fatalf("expected dangling key with nil value, got %v", lines[1])
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Level
		err  bool
	}{
		{in: "DEBUG", want: LevelDebug},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: " error ", want: LevelError},
		{in: "trace", want: LevelInfo, err: true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.err || got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, %v", tc.in, got, err)
		}
	}

	if f, err := ParseFormat("Console"); err != nil || f != FormatConsole {
		t.Fatalf("ParseFormat(Console) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(Options{Output: &buf}))
	t.Cleanup(func() { SetDefault(prev) })

	var logger *Logger
	logger.Info("via default")

	if !strings.Contains(buf.String(), "via default") {
		t.Fatalf("expected nil logger to write through default, got %q", buf.String())
	}
	if err := logger.Sync(); err != nil {
		t.Fatalf("sync nil logger: %v", err)
	}
}
