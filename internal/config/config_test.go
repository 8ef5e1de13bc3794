package config

import (
	"os"
	"path/filepath"
	"testing"
)

func tempDataDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "pathfinder-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestLoadCreatesDefaultConfigWhenMissing(t *testing.T) {
	dataDir := tempDataDir(t)

	cfg, err := Load(dataDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != DefaultConfig().ChunkSize {
		t.Errorf("expected default chunk size, got %d", cfg.ChunkSize)
	}

	path := filepath.Join(dataDir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be created at %s: %v", path, err)
	}
}

func TestLoadReadsExistingConfig(t *testing.T) {
	dataDir := tempDataDir(t)

	cfg := DefaultConfig()
	cfg.ChunkSize = 77
	cfg.Workers = 3
	cfg.Logging.Level = "debug"
	if err := cfg.Save(ConfigPath(dataDir)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(dataDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ChunkSize != 77 {
		t.Errorf("expected chunk size 77, got %d", loaded.ChunkSize)
	}
	if loaded.Workers != 3 {
		t.Errorf("expected workers 3, got %d", loaded.Workers)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("expected logging level debug, got %q", loaded.Logging.Level)
	}
	if loaded.Search != cfg.Search {
		t.Errorf("expected search settings to round-trip, got %+v want %+v", loaded.Search, cfg.Search)
	}
}

func TestSaveCreatesMissingDirectory(t *testing.T) {
	dataDir := tempDataDir(t)
	nested := filepath.Join(dataDir, "nested", "dir")

	cfg := DefaultConfig()
	path := filepath.Join(nested, ConfigFileName)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
}

func TestConfigPathExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}
	path := ConfigPath("~/.pathfinder")
	want := filepath.Join(home, ".pathfinder", ConfigFileName)
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
}
