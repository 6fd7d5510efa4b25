package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{"default", DefaultConfig(), false},
		{"verbose", VerboseConfig(), false},
		{"bad level", &Config{Level: "loud", Format: TextFormat, Output: StderrOutput}, true},
		{"bad format", &Config{Level: InfoLevel, Format: "xml", Output: StderrOutput}, true},
		{"file without path", &Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput}, true},
		{"bad output", &Config{Level: InfoLevel, Format: TextFormat, Output: "pigeon"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFieldsAccumulate(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&Config{Level: InfoLevel, Format: JSONFormat, Output: StderrOutput, Writer: &buf, DisableTimestamp: true})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	log.WithComponent("pruner").
		WithField("date_column", "Date").
		WithError(errors.New("boom")).
		Info("Removed rows")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "pruner" {
		t.Errorf("expected component field, got %v", entry["component"])
	}
	if entry["date_column"] != "Date" {
		t.Errorf("expected date_column field, got %v", entry["date_column"])
	}
	if entry["error"] != "boom" {
		t.Errorf("expected error field, got %v", entry["error"])
	}
	if entry["msg"] != "Removed rows" {
		t.Errorf("expected message, got %v", entry["msg"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&Config{Level: WarnLevel, Format: TextFormat, Output: StderrOutput, Writer: &buf})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn entry should be written")
	}
}

func TestStageTimer(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&Config{Level: DebugLevel, Format: TextFormat, Output: StderrOutput, Writer: &buf})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	timer := StartStage(log, "prune", 5)
	if d := timer.Complete(4); d < 0 {
		t.Errorf("expected non-negative duration, got %v", d)
	}

	out := buf.String()
	if !strings.Contains(out, "stage=prune") {
		t.Errorf("expected stage field in output, got %q", out)
	}
	if !strings.Contains(out, "rows_out=4") {
		t.Errorf("expected rows_out field in output, got %q", out)
	}
}
