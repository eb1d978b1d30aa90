package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "devassist"
	// ConfigFile is the preferred config file name
	ConfigFile = "config.yaml"
	// LegacyConfigFile is read when ConfigFile does not exist
	LegacyConfigFile = "config.json"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads ~/.config/devassist/config.yaml (or config.json when the YAML
// file is absent) over the defaults and validates the result.
// Returns default config if neither file exists.
//
// NOTE: YAML is decoded directly over the default struct, so present keys
// overwrite defaults (even if zero) and missing keys keep them. JSON files
// decode the same way since JSON is valid YAML.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return cfg, nil // Use defaults if can't get home dir
	}

	dir := filepath.Join(homeDir, ".config", ConfigDir)
	if err := l.loadFile(cfg, filepath.Join(dir, ConfigFile), filepath.Join(dir, LegacyConfigFile)); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads path over the defaults and validates the result.
// Unlike Load, a missing file is an error.
func (l *Loader) LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decode(cfg, path, data); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes the first existing path over cfg.
func (l *Loader) loadFile(cfg *Config, paths ...string) error {
	for _, path := range paths {
		data, err := l.fs.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err // Return error for permission issues
		}
		return decode(cfg, path, data)
	}
	return nil
}

func decode(cfg *Config, path string, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Load is a convenience function using the default loader
func Load() (*Config, error) {
	return NewLoader().Load()
}
