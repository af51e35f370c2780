package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"kpi-service/internal/platform/logger"

	"github.com/rs/zerolog"
)

func TestNew_JSONWithServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(logger.Options{Level: "debug", Service: "kpi-service", Writer: &buf})

	ctx := logger.WithRequestID(context.Background(), "abc")
	log := logger.C(ctx, base)
	log.Debug().Str("metric", "sos").Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "kpi-service" || line["request_id"] != "abc" || line["metric"] != "sos" {
		t.Fatalf("unexpected fields: %v", line)
	}
	if line["level"] != "debug" || line["message"] != "hello" {
		t.Fatalf("unexpected level/message: %v", line)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: "warn", Writer: &buf})

	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	log.Warn().Msg("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Format: "console", Writer: &buf})

	log.Info().Msg("plain")
	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") || !strings.Contains(out, "plain") {
		t.Fatalf("expected console output, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := logger.ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestRequestID_AbsentAndEmpty(t *testing.T) {
	if got := logger.RequestID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
	ctx := logger.WithRequestID(context.Background(), "")
	if got := logger.RequestID(ctx); got != "" {
		t.Fatalf("expected empty id to be ignored, got %q", got)
	}
}
