// Package config loads server configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "90s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Vercel   VercelConfig   `yaml:"vercel"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	EventQueueSize int    `yaml:"event_queue_size"`
}

// PipelineConfig configures phase execution.
type PipelineConfig struct {
	OutputDir    string   `yaml:"output_dir"`
	PhaseTimeout Duration `yaml:"phase_timeout"`
	MaxAttempts  int      `yaml:"max_attempts"`
	RetryDelay   Duration `yaml:"retry_delay"`
}

// VercelConfig configures the deployment collaborator. An empty token
// selects the mock deployer.
type VercelConfig struct {
	Token string `yaml:"token"`
	Team  string `yaml:"team"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			EventQueueSize: 64,
		},
		Pipeline: PipelineConfig{
			OutputDir:    "generated",
			PhaseTimeout: Duration(5 * time.Minute),
			MaxAttempts:  2,
			RetryDelay:   Duration(time.Second),
		},
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if cfg.Pipeline.MaxAttempts < 1 {
		return nil, fmt.Errorf("pipeline.max_attempts must be at least 1")
	}
	if cfg.Pipeline.PhaseTimeout <= 0 {
		return nil, fmt.Errorf("pipeline.phase_timeout must be positive")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SPECFORGE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SPECFORGE_OUTPUT_DIR"); v != "" {
		cfg.Pipeline.OutputDir = v
	}
	if v := os.Getenv("SPECFORGE_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.EventQueueSize = n
		}
	}
	if v := os.Getenv("SPECFORGE_PHASE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Pipeline.PhaseTimeout = Duration(d)
		}
	}
	if v := os.Getenv("VERCEL_TOKEN"); v != "" {
		cfg.Vercel.Token = v
	}
	if v := os.Getenv("VERCEL_TEAM"); v != "" {
		cfg.Vercel.Team = v
	}
}
