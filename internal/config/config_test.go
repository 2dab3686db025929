package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	// Model defaults
	if config.Model.SmoothingAlpha != 0.1 {
		t.Errorf("expected SmoothingAlpha 0.1, got %f", config.Model.SmoothingAlpha)
	}
	if config.Model.ThermalK != 0.25 {
		t.Errorf("expected ThermalK 0.25, got %f", config.Model.ThermalK)
	}
	if config.Model.ForecastHours != 6 {
		t.Errorf("expected ForecastHours 6, got %d", config.Model.ForecastHours)
	}
	if config.Model.ForecastWindow != 0 {
		t.Errorf("expected ForecastWindow 0, got %d", config.Model.ForecastWindow)
	}
	if config.Model.DefaultProfile != "Refrigerated" {
		t.Errorf("expected DefaultProfile 'Refrigerated', got '%s'", config.Model.DefaultProfile)
	}

	// Runner defaults
	if config.Runner.Workers != 4 {
		t.Errorf("expected Workers 4, got %d", config.Runner.Workers)
	}

	// Logging defaults
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
model:
  smoothing_alpha: 0.3
  thermal_k: 0.5
  forecast_hours: 12
  default_profile: Frozen

runner:
  workers: 8
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Model.SmoothingAlpha != 0.3 {
		t.Errorf("expected SmoothingAlpha 0.3, got %f", config.Model.SmoothingAlpha)
	}
	if config.Model.ThermalK != 0.5 {
		t.Errorf("expected ThermalK 0.5, got %f", config.Model.ThermalK)
	}
	if config.Model.ForecastHours != 12 {
		t.Errorf("expected ForecastHours 12, got %d", config.Model.ForecastHours)
	}
	if config.Model.DefaultProfile != "Frozen" {
		t.Errorf("expected DefaultProfile 'Frozen', got '%s'", config.Model.DefaultProfile)
	}
	if config.Runner.Workers != 8 {
		t.Errorf("expected Workers 8, got %d", config.Runner.Workers)
	}

	// Unset keys keep their defaults
	if config.Model.MaxRatePerHour != 1e3 {
		t.Errorf("expected MaxRatePerHour default 1000, got %f", config.Model.MaxRatePerHour)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level default 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoad_UsesHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("POTENCY_THERMAL_K", "")

	dir := filepath.Join(home, ".potency")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("model:\n  thermal_k: 1.5\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Model.ThermalK != 1.5 {
		t.Errorf("expected ThermalK 1.5, got %f", config.Model.ThermalK)
	}
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("POTENCY_SMOOTHING_ALPHA", "0.5")
	t.Setenv("POTENCY_THERMAL_K", "0.75")
	t.Setenv("POTENCY_FORECAST_HOURS", "24")
	t.Setenv("POTENCY_FORECAST_WINDOW", "6")
	t.Setenv("POTENCY_MAX_RATE_PER_HOUR", "0")
	t.Setenv("POTENCY_PROFILE", "Room Temperature")
	t.Setenv("POTENCY_WORKERS", "2")
	t.Setenv("POTENCY_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	if config.Model.SmoothingAlpha != 0.5 {
		t.Errorf("expected SmoothingAlpha 0.5, got %f", config.Model.SmoothingAlpha)
	}
	if config.Model.ThermalK != 0.75 {
		t.Errorf("expected ThermalK 0.75, got %f", config.Model.ThermalK)
	}
	if config.Model.ForecastHours != 24 {
		t.Errorf("expected ForecastHours 24, got %d", config.Model.ForecastHours)
	}
	if config.Model.ForecastWindow != 6 {
		t.Errorf("expected ForecastWindow 6, got %d", config.Model.ForecastWindow)
	}
	if config.Model.MaxRatePerHour != 0 {
		t.Errorf("expected MaxRatePerHour 0, got %f", config.Model.MaxRatePerHour)
	}
	if config.Model.DefaultProfile != "Room Temperature" {
		t.Errorf("expected DefaultProfile 'Room Temperature', got '%s'", config.Model.DefaultProfile)
	}
	if config.Runner.Workers != 2 {
		t.Errorf("expected Workers 2, got %d", config.Runner.Workers)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestEnvOverrides_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("POTENCY_SMOOTHING_ALPHA", "lots")
	t.Setenv("POTENCY_WORKERS", "many")

	config := Default()
	applyEnvOverrides(config)

	if config.Model.SmoothingAlpha != 0.1 {
		t.Errorf("expected SmoothingAlpha to stay 0.1, got %f", config.Model.SmoothingAlpha)
	}
	if config.Runner.Workers != 4 {
		t.Errorf("expected Workers to stay 4, got %d", config.Runner.Workers)
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PotencyConfig)
	}{
		{"alpha zero", func(c *PotencyConfig) { c.Model.SmoothingAlpha = 0 }},
		{"alpha above one", func(c *PotencyConfig) { c.Model.SmoothingAlpha = 1.5 }},
		{"negative thermal k", func(c *PotencyConfig) { c.Model.ThermalK = -1 }},
		{"negative horizon", func(c *PotencyConfig) { c.Model.ForecastHours = -1 }},
		{"negative window", func(c *PotencyConfig) { c.Model.ForecastWindow = -3 }},
		{"negative rate ceiling", func(c *PotencyConfig) { c.Model.MaxRatePerHour = -1 }},
		{"empty profile", func(c *PotencyConfig) { c.Model.DefaultProfile = "" }},
		{"zero workers", func(c *PotencyConfig) { c.Runner.Workers = 0 }},
		{"unknown log level", func(c *PotencyConfig) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	validLevels := []string{"", "info", "debug", "trace"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			config := Default()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected log level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  interface{}
	}{
		{"model.smoothing_alpha", "0.4", 0.4},
		{"model.thermal_k", "0", 0.0},
		{"model.forecast_hours", "48", 48},
		{"model.forecast_window", "3", 3},
		{"model.max_rate_per_hour", "50", 50.0},
		{"model.default_profile", "Frozen", "Frozen"},
		{"runner.workers", "16", 16},
		{"logging.level", "trace", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			config := Default()
			if err := config.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%s, %s) failed: %v", tt.key, tt.value, err)
			}
			got, ok := config.Get(tt.key)
			if !ok {
				t.Fatalf("Get(%s) not found", tt.key)
			}
			if got != tt.want {
				t.Errorf("Get(%s) = %v (%T), want %v (%T)", tt.key, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestSet_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "llm.provider", "anthropic"},
		{"not a number", "model.thermal_k", "fast"},
		{"not an integer", "runner.workers", "2.5"},
		{"out of range", "model.smoothing_alpha", "2"},
		{"bad level", "logging.level", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			if err := config.Set(tt.key, tt.value); err == nil {
				t.Errorf("expected Set(%s, %s) to fail", tt.key, tt.value)
			}
			if *config != *Default() {
				t.Error("failed Set must leave the config unchanged")
			}
		})
	}
}

func TestKeysAreGettable(t *testing.T) {
	config := Default()
	for _, key := range Keys() {
		if _, ok := config.Get(key); !ok {
			t.Errorf("Keys() lists %s but Get does not know it", key)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := Default()
	config.Model.ForecastHours = 9
	config.Logging.Level = "debug"
	if err := Save(config, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected file mode 0600, got %o", perm)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if *loaded != *config {
		t.Errorf("loaded %+v, want %+v", loaded, config)
	}
}

func TestPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := Path()
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if want := filepath.Join(home, ".potency", "config.yaml"); got != want {
		t.Errorf("Path() = %s, want %s", got, want)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
model:
  smoothing_alpha: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
