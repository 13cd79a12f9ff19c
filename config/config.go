// Package config loads the fleet configuration from YAML. The configuration
// is an explicit object constructed once at process start and passed by
// reference to the components that need it; there is no global singleton and
// no implicit environment loading beyond ${VAR} expansion in the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Fleet   FleetConfig   `yaml:"fleet"`
	Storage StorageConfig `yaml:"storage"`
	Logger  LoggerConfig  `yaml:"logger"`
	Model   ModelConfig   `yaml:"model"`
	Agents  []AgentConfig `yaml:"agents"`
}

// FleetConfig holds execution defaults.
type FleetConfig struct {
	Timeout    string `yaml:"timeout"`     // duration string, default "1h"
	Parallel   bool   `yaml:"parallel"`    // default mode for "run all"
	HistoryCap int    `yaml:"history_cap"` // retained records per agent, default 100
}

// StorageConfig holds artifact and journal locations.
type StorageConfig struct {
	OutputDir string `yaml:"output_dir"` // CSV/Markdown artifacts, default "./out"
	HistoryDB string `yaml:"history_db"` // sqlite path; empty keeps history in memory
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level     string `yaml:"level"`  // debug, info, warn, error
	Format    string `yaml:"format"` // json or text
	AddSource bool   `yaml:"add_source"`
}

// ModelConfig selects the optional narrative generator.
type ModelConfig struct {
	Provider string `yaml:"provider"` // "", "openai" or "anthropic"
	Name     string `yaml:"name"`     // provider model id, provider default when empty
	APIKey   string `yaml:"api_key"`  // usually "${OPENAI_API_KEY}" etc.
}

// AgentConfig is one agent block.
type AgentConfig struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Kind         string         `yaml:"kind"`     // factory kind, defaults to id
	Schedule     string         `yaml:"schedule"` // cron expression or @every duration
	Enabled      *bool          `yaml:"enabled"`  // default true
	CSVFile      string         `yaml:"csv_file"`
	MarkdownFile string         `yaml:"markdown_file"`
	Settings     map[string]any `yaml:"settings"`
}

// Default returns the built-in fleet configuration used when no file is
// supplied.
func Default() *Config {
	cfg := &Config{
		Agents: []AgentConfig{
			{ID: "linkedin", Name: "LinkedIn Pro", Schedule: "0 9 * * *"},
			{ID: "finance", Name: "Personal Finance", Schedule: "0 7 * * 1"},
			{ID: "strategy", Name: "Commercial Strategy", Schedule: "0 8 * * 1"},
			{ID: "selfimprove", Name: "Self Improvement", Schedule: "0 7 * * 1"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads, expands and validates the configuration at path. Environment
// references like ${HOME} are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Fleet.Timeout == "" {
		c.Fleet.Timeout = "1h"
	}
	if c.Fleet.HistoryCap <= 0 {
		c.Fleet.HistoryCap = 100
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "./out"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
}

// Validate rejects configurations the registry could not load.
func (c *Config) Validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Agents))
	for i, a := range c.Agents {
		if a.ID == "" {
			return fmt.Errorf("config: agent %d has no id", i)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("config: duplicate agent id %q", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

// Timeout parses the fleet-wide default execution deadline.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Fleet.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: invalid fleet timeout %q: %w", c.Fleet.Timeout, err)
	}
	return d, nil
}

// LogLevel maps the configured level onto the logging enum.
func (c *Config) LogLevel() logging.LogLevel {
	switch c.Logger.Level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

// Descriptors converts the agent blocks into registry descriptors. Output
// file names travel in the opaque config map under the keys BaseAgent reads.
func (c *Config) Descriptors() []core.AgentDescriptor {
	descs := make([]core.AgentDescriptor, 0, len(c.Agents))
	for _, a := range c.Agents {
		settings := make(map[string]any, len(a.Settings)+2)
		for k, v := range a.Settings {
			settings[k] = v
		}
		if a.CSVFile != "" {
			settings["csv_file"] = a.CSVFile
		}
		if a.MarkdownFile != "" {
			settings["markdown_file"] = a.MarkdownFile
		}

		enabled := true
		if a.Enabled != nil {
			enabled = *a.Enabled
		}

		descs = append(descs, core.AgentDescriptor{
			ID:          a.ID,
			DisplayName: a.Name,
			Kind:        a.Kind,
			Schedule:    a.Schedule,
			Config:      settings,
			Enabled:     enabled,
		})
	}
	return descs
}
