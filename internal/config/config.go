// Package config provides configuration loading for the leo binary.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rickfelix/ehg-leo/internal/audit"
	"github.com/rickfelix/ehg-leo/internal/protocol"
	"github.com/rickfelix/ehg-leo/internal/store"
)

// DefaultFile is the config file Load looks for when no path is given.
const DefaultFile = "leo.toml"

// Environment overrides, applied after the file is read.
const (
	EnvDataDir   = "LEO_DATA_DIR"
	EnvOutputDir = "LEO_OUTPUT_DIR"
	EnvNATSURL   = "LEO_NATS_URL"
	EnvLogLevel  = "LEO_LOG_LEVEL"
)

// Config represents the leo configuration.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Generator GeneratorConfig `toml:"generator"`
	Audit     AuditConfig     `toml:"audit"`
	Log       LogConfig       `toml:"log"`
}

// StorageConfig contains database settings.
type StorageConfig struct {
	DataDir string `toml:"data_dir"` // Directory holding leo.db
}

// GeneratorConfig contains document generation settings.
type GeneratorConfig struct {
	OutputDir   string `toml:"output_dir"`   // Where generated CLAUDE*.md files are written
	FileMapping string `toml:"file_mapping"` // Optional YAML mapping; the embedded default when empty
}

// AuditConfig contains audit event settings.
type AuditConfig struct {
	EmitStarted bool   `toml:"emit_started"` // Write a STARTED event before the checks
	NATSURL     string `toml:"nats_url"`     // Also publish events to NATS when set
	NATSSubject string `toml:"nats_subject"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug|info|warn|error
	Format string `toml:"format"` // text|json
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: store.DefaultConfig().DataDir,
		},
		Generator: GeneratorConfig{
			OutputDir: ".",
		},
		Audit: AuditConfig{
			NATSSubject: audit.DefaultSubject,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Storage.DataDir = expandHome(cfg.Storage.DataDir)
	return cfg, nil
}

// Load reads path, or DefaultFile in the current directory when path is
// empty, and applies environment overrides. A missing DefaultFile is not an
// error; a missing explicit path is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg, err := LoadFile(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = New()
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides settings from LEO_* environment variables.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvDataDir); ok && v != "" {
		c.Storage.DataDir = expandHome(v)
	}
	if v, ok := os.LookupEnv(EnvOutputDir); ok && v != "" {
		c.Generator.OutputDir = v
	}
	if v, ok := os.LookupEnv(EnvNATSURL); ok {
		c.Audit.NATSURL = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// StoreConfig returns the store settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{DataDir: c.Storage.DataDir}
}

// FileMapping returns the configured mapping, or the embedded default.
func (c *Config) FileMapping() (protocol.FileMapping, error) {
	if c.Generator.FileMapping == "" {
		return protocol.DefaultFileMapping(), nil
	}
	return protocol.LoadFileMapping(c.Generator.FileMapping)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
