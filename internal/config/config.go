// Package config loads forgecore settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/forgecore/internal/logging"
)

// Config is the full forgecore configuration.
type Config struct {
	DataDir     string         `yaml:"data_dir"`
	JournalFile string         `yaml:"journal_file"`
	IndexFile   string         `yaml:"index_file"`
	SceneFile   string         `yaml:"scene_file"`
	ExportDir   string         `yaml:"export_dir"`
	Sandbox     SandboxConfig  `yaml:"sandbox"`
	Logging     logging.Config `yaml:"logging"`
	Server      ServerConfig   `yaml:"server"`
}

// SandboxConfig selects how actions are executed.
type SandboxConfig struct {
	Mode       string `yaml:"mode"` // direct or script
	TickBudget int    `yaml:"tick_budget"`
}

// ServerConfig configures the HTTP bridge.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultDataDir returns ~/.forgecore.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".forgecore"
	}
	return filepath.Join(home, ".forgecore")
}

// DefaultPath returns the config file used when none is given:
// $FORGECORE_CONFIG, or config.yaml in the default data dir.
func DefaultPath() string {
	if p := os.Getenv("FORGECORE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:     DefaultDataDir(),
		JournalFile: "journal.json",
		IndexFile:   "index.db",
		SceneFile:   "scene.json",
		ExportDir:   "exports",
		Sandbox:     SandboxConfig{Mode: "direct", TickBudget: 32},
		Logging:     logging.Config{Level: "info", Encoding: "console", Output: "stderr"},
		Server:      ServerConfig{Addr: "127.0.0.1:7878"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Sandbox.Mode {
	case "direct", "script":
	default:
		return fmt.Errorf("sandbox.mode must be direct or script, got %q", c.Sandbox.Mode)
	}
	if c.Sandbox.TickBudget < 1 {
		return fmt.Errorf("sandbox.tick_budget must be positive, got %d", c.Sandbox.TickBudget)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FORGECORE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FORGECORE_JOURNAL"); v != "" {
		c.JournalFile = v
	}
	if v := os.Getenv("FORGECORE_SCENE"); v != "" {
		c.SceneFile = v
	}
	if v := os.Getenv("FORGECORE_EXPORT_DIR"); v != "" {
		c.ExportDir = v
	}
	if v := os.Getenv("FORGECORE_SANDBOX_MODE"); v != "" {
		c.Sandbox.Mode = v
	}
	if v := os.Getenv("FORGECORE_TICK_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sandbox.TickBudget = n
		}
	}
	if v := os.Getenv("FORGECORE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FORGECORE_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// JournalPath resolves the journal file against the data dir.
func (c *Config) JournalPath() string { return c.resolve(c.JournalFile) }

// IndexPath resolves the index database against the data dir.
func (c *Config) IndexPath() string { return c.resolve(c.IndexFile) }

// ScenePath resolves the simulated scene file against the data dir.
func (c *Config) ScenePath() string { return c.resolve(c.SceneFile) }

// ExportPath resolves the export dir for unsaved scenes against the data dir.
func (c *Config) ExportPath() string { return c.resolve(c.ExportDir) }

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
