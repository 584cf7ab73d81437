package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("warn") || ValidLevel("verbose") {
		t.Error("ValidLevel() mismatch")
	}
}

func TestSetOutput_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}, "info") })

	Chain.Info().Uint64("number", 3).Msg("block accepted")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "chain" {
		t.Errorf("component = %v, want chain", entry["component"])
	}
	if entry["message"] != "block accepted" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestConsoleOutput_NoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	if !consoleOutput(&buf).NoColor {
		t.Error("non-terminal writers should disable color")
	}
}

func TestBenchmark(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}, "info") })

	Benchmark("load chain")()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["operation"] != "load chain" || entry["level"] != "debug" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["duration"]; !ok {
		t.Error("benchmark entry has no duration")
	}
}

func TestBenchmark_SilentAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "info")
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}, "info") })

	Benchmark("load chain")()
	if buf.Len() != 0 {
		t.Errorf("benchmark logged at info: %q", buf.String())
	}
}
