// Package config provides unified configuration loading for potency.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvandessel/potency/internal/constants"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file inside ~/.potency.
const FileName = "config.yaml"

// PotencyConfig contains all potency configuration settings.
type PotencyConfig struct {
	// Model contains the default simulation parameters.
	Model ModelConfig `json:"model" yaml:"model"`

	// Runner contains settings for parallel scenario execution.
	Runner RunnerConfig `json:"runner" yaml:"runner"`

	// Logging contains settings for operational logging and the audit trail.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ModelConfig holds the defaults applied when a command does not override them.
type ModelConfig struct {
	// SmoothingAlpha is the exponential smoothing factor. Range: (0, 1]
	SmoothingAlpha float64 `json:"smoothing_alpha" yaml:"smoothing_alpha"`

	// ThermalK is the thermal response constant in 1/hour.
	ThermalK float64 `json:"thermal_k" yaml:"thermal_k"`

	// ForecastHours is the default forecast horizon. 0 disables forecasting.
	ForecastHours int `json:"forecast_hours" yaml:"forecast_hours"`

	// ForecastWindow limits the trend fit to the trailing N points. 0 uses all.
	ForecastWindow int `json:"forecast_window" yaml:"forecast_window"`

	// MaxRatePerHour clamps the degradation rate. 0 disables the ceiling.
	MaxRatePerHour float64 `json:"max_rate_per_hour" yaml:"max_rate_per_hour"`

	// DefaultProfile is the stability profile used when none is given.
	DefaultProfile string `json:"default_profile" yaml:"default_profile"`
}

// RunnerConfig configures the scenario worker pool.
type RunnerConfig struct {
	// Workers bounds the number of scenarios simulated concurrently.
	Workers int `json:"workers" yaml:"workers"`
}

// LoggingConfig configures potency's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the audit trail in .potency/audit.jsonl.
	// "trace" additionally logs every integration step.
	Level string `json:"level" yaml:"level"`
}

// Default returns a PotencyConfig with sensible defaults.
func Default() *PotencyConfig {
	return &PotencyConfig{
		Model: ModelConfig{
			SmoothingAlpha: constants.DefaultSmoothingAlpha,
			ThermalK:       constants.DefaultThermalK,
			ForecastHours:  constants.DefaultForecastHours,
			ForecastWindow: constants.DefaultForecastWindow,
			MaxRatePerHour: constants.DefaultMaxRatePerHour,
			DefaultProfile: constants.DefaultProfile,
		},
		Runner: RunnerConfig{
			Workers: constants.DefaultWorkers,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the location of the user configuration file.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.ConfigDirName, FileName), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.potency/config.yaml -> environment variables
func Load() (*PotencyConfig, error) {
	config := Default()

	// Try to load from default config file
	if configPath, err := Path(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Keys missing from the file keep their defaults.
func LoadFromFile(path string) (*PotencyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to path, creating the parent directory.
func Save(cfg *PotencyConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *PotencyConfig) Validate() error {
	if !(c.Model.SmoothingAlpha > 0 && c.Model.SmoothingAlpha <= 1) {
		return fmt.Errorf("smoothing_alpha must be in (0, 1], got %v", c.Model.SmoothingAlpha)
	}

	if !(c.Model.ThermalK >= 0) || math.IsInf(c.Model.ThermalK, 0) {
		return fmt.Errorf("thermal_k must be non-negative and finite, got %v", c.Model.ThermalK)
	}

	if c.Model.ForecastHours < 0 {
		return fmt.Errorf("forecast_hours must be non-negative, got %d", c.Model.ForecastHours)
	}

	if c.Model.ForecastWindow < 0 {
		return fmt.Errorf("forecast_window must be non-negative, got %d", c.Model.ForecastWindow)
	}

	if !(c.Model.MaxRatePerHour >= 0) {
		return fmt.Errorf("max_rate_per_hour must be non-negative, got %v", c.Model.MaxRatePerHour)
	}

	if c.Model.DefaultProfile == "" {
		return fmt.Errorf("default_profile must not be empty")
	}

	if c.Runner.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Runner.Workers)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Unparseable numeric values are ignored.
func applyEnvOverrides(config *PotencyConfig) {
	if v := os.Getenv("POTENCY_SMOOTHING_ALPHA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Model.SmoothingAlpha = f
		}
	}

	if v := os.Getenv("POTENCY_THERMAL_K"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Model.ThermalK = f
		}
	}

	if v := os.Getenv("POTENCY_FORECAST_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Model.ForecastHours = n
		}
	}

	if v := os.Getenv("POTENCY_FORECAST_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Model.ForecastWindow = n
		}
	}

	if v := os.Getenv("POTENCY_MAX_RATE_PER_HOUR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Model.MaxRatePerHour = f
		}
	}

	if v := os.Getenv("POTENCY_PROFILE"); v != "" {
		config.Model.DefaultProfile = v
	}

	if v := os.Getenv("POTENCY_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Runner.Workers = n
		}
	}

	if v := os.Getenv("POTENCY_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// Get retrieves a configuration value by dot-notation key.
func (c *PotencyConfig) Get(key string) (interface{}, bool) {
	switch key {
	case "model.smoothing_alpha":
		return c.Model.SmoothingAlpha, true
	case "model.thermal_k":
		return c.Model.ThermalK, true
	case "model.forecast_hours":
		return c.Model.ForecastHours, true
	case "model.forecast_window":
		return c.Model.ForecastWindow, true
	case "model.max_rate_per_hour":
		return c.Model.MaxRatePerHour, true
	case "model.default_profile":
		return c.Model.DefaultProfile, true
	case "runner.workers":
		return c.Runner.Workers, true
	case "logging.level":
		return c.Logging.Level, true
	default:
		return nil, false
	}
}

// Set sets a configuration value by dot-notation key. The value is parsed
// for the key's type and the resulting configuration must validate.
func (c *PotencyConfig) Set(key, value string) error {
	next := *c

	switch key {
	case "model.smoothing_alpha", "model.thermal_k", "model.max_rate_per_hour":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %s", key, value)
		}
		switch key {
		case "model.smoothing_alpha":
			next.Model.SmoothingAlpha = f
		case "model.thermal_k":
			next.Model.ThermalK = f
		default:
			next.Model.MaxRatePerHour = f
		}
	case "model.forecast_hours", "model.forecast_window", "runner.workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		switch key {
		case "model.forecast_hours":
			next.Model.ForecastHours = n
		case "model.forecast_window":
			next.Model.ForecastWindow = n
		default:
			next.Runner.Workers = n
		}
	case "model.default_profile":
		next.Model.DefaultProfile = value
	case "logging.level":
		next.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Keys lists every key accepted by Get and Set, in display order.
func Keys() []string {
	return []string{
		"model.smoothing_alpha",
		"model.thermal_k",
		"model.forecast_hours",
		"model.forecast_window",
		"model.max_rate_per_hour",
		"model.default_profile",
		"runner.workers",
		"logging.level",
	}
}
