package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Init(Config{Dir: dir}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	Debug("hidden at info level")
	Info("event created", "id", "abc123")

	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "event created") || !strings.Contains(out, "abc123") {
		t.Errorf("log missing info line: %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Errorf("debug line written at info level: %q", out)
	}
}

func TestInit_DebugLevel(t *testing.T) {
	dir := t.TempDir()
	if err := Init(Config{Dir: dir, Debug: true}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	With("component", "test").Debug("gesture", "mode", "select")
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, FileName))
	if !strings.Contains(string(data), "gesture") || !strings.Contains(string(data), "component=test") {
		t.Errorf("debug line missing: %q", data)
	}
}

func TestInit_NoOutputs(t *testing.T) {
	if err := Init(Config{}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// Must not panic with nothing to write to.
	Warn("nowhere")
	Error("nowhere")
	if err := Close(); err != nil {
		t.Errorf("Close without file: %v", err)
	}
}
