package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitialize_ProductionModeIsNoop(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, Options{DebugMode: false}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(CloseAll)

	if IsDebugMode() {
		t.Error("expected debug mode off")
	}
	if _, err := os.Stat(filepath.Join(dir, ".voxmate", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory should not be created in production mode")
	}

	// Logging must not panic with a no-op logger.
	Commands("ignored %d", 1)
	Get(CategoryReading).Error("ignored")
}

func TestInitialize_DebugModeWritesFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, Options{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() {
		CloseAll()
		logsDir = ""
	})

	Get(CategoryBroker).Info("request %s sent", "abc")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dir, ".voxmate", "logs"))
	if err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	var found bool
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_broker.log") {
			found = true
			data, err := os.ReadFile(filepath.Join(dir, ".voxmate", "logs", e.Name()))
			if err != nil {
				t.Fatalf("read log: %v", err)
			}
			if !strings.Contains(string(data), "request abc sent") {
				t.Errorf("log entry missing, got: %s", data)
			}
		}
	}
	if !found {
		t.Error("broker log file not created")
	}
}

func TestIsCategoryEnabled_Filter(t *testing.T) {
	dir := t.TempDir()
	err := Initialize(dir, Options{
		DebugMode:  true,
		Categories: map[string]bool{"voice": false},
		Level:      "info",
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() {
		CloseAll()
		logsDir = ""
	})

	if IsCategoryEnabled(CategoryVoice) {
		t.Error("voice category should be disabled")
	}
	if !IsCategoryEnabled(CategoryReading) {
		t.Error("unlisted category should default to enabled")
	}
}
