// Package config loads and saves the smartcube YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all smartcube configuration.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Training TrainingConfig `yaml:"training"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DeviceConfig identifies the cube.
type DeviceConfig struct {
	MAC        string `yaml:"mac"`         // CC:A3:00:00:25:13 form, sent in the hello
	Key        string `yaml:"key"`         // AES-128 key, 32 hex digits
	NamePrefix string `yaml:"name_prefix"` // scan filter
	Address    string `yaml:"address"`     // platform address of the last cube
}

// TrainingConfig configures the training session.
type TrainingConfig struct {
	Mode                    string `yaml:"mode"` // cfop, f2l, oll
	AutoScramble            bool   `yaml:"auto_scramble"`
	AutoInspection          bool   `yaml:"auto_inspection"`
	StartTimerAutomatically bool   `yaml:"start_timer_automatically"`
	Inspection              string `yaml:"inspection"`
	ScrambleLength          int    `yaml:"scramble_length"`
}

// StorageConfig locates the solve history.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// Dir returns the smartcube home directory, ~/.smartcube.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smartcube"
	}
	return filepath.Join(home, ".smartcube")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Device: DeviceConfig{
			NamePrefix: "QY-",
		},
		Training: TrainingConfig{
			Mode:           "cfop",
			AutoScramble:   true,
			AutoInspection: true,
			Inspection:     "15s",
			ScrambleLength: 25,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(dir, "smartcube.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dir, "smartcube.log"),
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file holds the cube key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("SMARTCUBE_KEY"); key != "" {
		c.Device.Key = key
	}
	if mac := os.Getenv("SMARTCUBE_MAC"); mac != "" {
		c.Device.MAC = mac
	}
	if db := os.Getenv("SMARTCUBE_DB"); db != "" {
		c.Storage.DBPath = db
	}
	if level := os.Getenv("SMARTCUBE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Training.Mode {
	case "cfop", "f2l", "oll":
	default:
		return fmt.Errorf("invalid training mode %q", c.Training.Mode)
	}
	if _, err := c.InspectionDuration(); err != nil {
		return err
	}
	if c.Training.ScrambleLength < 0 {
		return fmt.Errorf("invalid scramble length %d", c.Training.ScrambleLength)
	}
	return nil
}

// InspectionDuration parses Training.Inspection. Empty means 15s.
func (c *Config) InspectionDuration() (time.Duration, error) {
	if c.Training.Inspection == "" {
		return 15 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Training.Inspection)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid inspection duration %q", c.Training.Inspection)
	}
	return d, nil
}
