// Package config holds the CLI-level run configuration for a generation:
// search-stop settings, worker/chunk sizing, data directory, and logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/marketloop/pathfinder/internal/stopper"
)

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	TimeFormat string `yaml:"time_format"`
}

// GenerationConfig is the run configuration for one "network generate"
// invocation: how deep/wide to search, how to chunk and parallelize
// targets, where to read/write data, and how to log.
type GenerationConfig struct {
	Search    stopper.Settings `yaml:"search"`
	ChunkSize int              `yaml:"chunk_size"`
	Workers   int              `yaml:"workers"`
	DataDir   string           `yaml:"data_dir"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// DefaultConfig returns a GenerationConfig with sensible defaults.
func DefaultConfig() *GenerationConfig {
	return &GenerationConfig{
		Search:    stopper.DefaultSettings(),
		ChunkSize: 500,
		Workers:   0,
		DataDir:   "~/.pathfinder",
		Logging: LoggingConfig{
			Level:      "info",
			TimeFormat: "15:04:05",
		},
	}
}

// ConfigFileName is the default config file name.
const ConfigFileName = "config.yaml"

// ConfigPath returns the full path to the config file for the given data
// directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(expandPath(dataDir), ConfigFileName)
}

// Load loads configuration from a YAML file under dataDir. If the file
// doesn't exist, it creates one with default values.
func Load(dataDir string) (*GenerationConfig, error) {
	expandedDir := expandPath(dataDir)
	configPath := filepath.Join(expandedDir, ConfigFileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.DataDir = dataDir
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("config: create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file at path.
func (c *GenerationConfig) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("config: create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal config: %w", err)
	}

	header := []byte("# pathfinder generation configuration\n# generated automatically on first run\n\n")
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write config file: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
