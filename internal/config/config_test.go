package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != "javascript-analyzer" {
		t.Errorf("Name = %q, want javascript-analyzer", cfg.Name)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("Batch.Workers = %d, want 4", cfg.Batch.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.DatabasePath != "data/analyses.db" {
		t.Errorf("DatabasePath = %q, want default", cfg.Store.DatabasePath)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
batch:
  workers: 8
  fail_fast: true
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Batch.Workers != 8 {
		t.Errorf("Batch.Workers = %d, want 8", cfg.Batch.Workers)
	}
	if !cfg.Batch.FailFast {
		t.Error("Batch.FailFast = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Watch.Debounce != "500ms" {
		t.Errorf("Watch.Debounce = %q, want default", cfg.Watch.Debounce)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("batch: [not a map"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ANALYZER_DB", "/tmp/override.db")
	t.Setenv("ANALYZER_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.DatabasePath != "/tmp/override.db" {
		t.Errorf("DatabasePath = %q, want env override", cfg.Store.DatabasePath)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Batch.Workers = 2
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Batch.Workers != 2 {
		t.Errorf("Batch.Workers = %d after round trip, want 2", loaded.Batch.Workers)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.GetAnalysisTimeout(); got != 30*time.Second {
		t.Errorf("GetAnalysisTimeout = %v, want 30s", got)
	}
	if got := cfg.GetDebounce(); got != 500*time.Millisecond {
		t.Errorf("GetDebounce = %v, want 500ms", got)
	}

	// Unparsable strings fall back to the defaults.
	cfg.Analysis.Timeout = "soon"
	cfg.Watch.Debounce = "a while"
	if got := cfg.GetAnalysisTimeout(); got != 30*time.Second {
		t.Errorf("GetAnalysisTimeout fallback = %v, want 30s", got)
	}
	if got := cfg.GetDebounce(); got != 500*time.Millisecond {
		t.Errorf("GetDebounce fallback = %v, want 500ms", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Batch.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero workers, got nil")
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad log level, got nil")
	}
}
