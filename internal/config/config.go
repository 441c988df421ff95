package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Model settings
	Model struct {
		Default string `yaml:"default"`
	} `yaml:"model"`

	// Session settings
	Session struct {
		LiveIntervalSeconds float64 `yaml:"live_interval_seconds"`
		OutputDir           string  `yaml:"output_dir"`
	} `yaml:"session"`

	// Output settings
	Output struct {
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"output"`

	// Audio settings
	Audio struct {
		Device string `yaml:"device"`
	} `yaml:"audio"`

	// TTS settings
	TTS struct {
		Engine     string  `yaml:"engine"` // "piper" or "daemon"
		ModelPath  string  `yaml:"model_path"`
		BinaryPath string  `yaml:"binary_path"`
		Voice      string  `yaml:"voice"`
		Speed      float32 `yaml:"speed"`
	} `yaml:"tts"`

	// Daemon settings for ttsd
	Daemon struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		IdleTimeoutSeconds int    `yaml:"idle_timeout_seconds"`
	} `yaml:"daemon"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Model defaults
	cfg.Model.Default = ""

	// Session defaults
	cfg.Session.LiveIntervalSeconds = 3.0
	cfg.Session.OutputDir = "recordings"

	// Output defaults
	cfg.Output.Format = "text"
	cfg.Output.File = ""

	// Audio defaults
	cfg.Audio.Device = ""

	// TTS defaults
	cfg.TTS.Engine = "piper"
	cfg.TTS.BinaryPath = "piper"
	cfg.TTS.Speed = 1.0

	// Daemon defaults
	cfg.Daemon.Host = "127.0.0.1"
	cfg.Daemon.Port = 7838
	cfg.Daemon.IdleTimeoutSeconds = 300

	return cfg
}

// DaemonURL returns the base URL of the configured ttsd instance.
func (c *Config) DaemonURL() string {
	return fmt.Sprintf("http://%s:%d", c.Daemon.Host, c.Daemon.Port)
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations
// Priority: explicit path > ~/.parleyrc > /etc/parley/config.yaml
func LoadWithFallback(explicitPath string) (*Config, error) {
	// If explicit path is provided, use it
	if explicitPath != "" {
		return Load(explicitPath)
	}

	// Try user config (~/.parleyrc)
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, ".parleyrc")
		if _, err := os.Stat(userConfigPath); err == nil {
			cfg, err := Load(userConfigPath)
			if err == nil {
				return cfg, nil
			}
		}
	}

	// Try system config (/etc/parley/config.yaml)
	systemConfigPath := "/etc/parley/config.yaml"
	if _, err := os.Stat(systemConfigPath); err == nil {
		cfg, err := Load(systemConfigPath)
		if err == nil {
			return cfg, nil
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
