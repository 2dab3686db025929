package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nvandessel/potency/internal/config"
	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/logging"
	"github.com/nvandessel/potency/internal/models"
	"github.com/nvandessel/potency/internal/simulation"
	"github.com/nvandessel/potency/internal/store"
	"github.com/spf13/cobra"
)

// session holds what every command resolves before doing work:
// global flags, the loaded configuration and a logger.
type session struct {
	root    string
	jsonOut bool
	cfg     *config.PotencyConfig
	logger  *slog.Logger
}

func newSession(cmd *cobra.Command) (*session, error) {
	root, _ := cmd.Flags().GetString("root")
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &session{
		root:    root,
		jsonOut: jsonOut,
		cfg:     cfg,
		logger:  logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
	}, nil
}

// auditLogger returns the audit trail for this project. It is only enabled
// at debug level and below; otherwise it is nil, which is safe to use.
func (s *session) auditLogger() *logging.AuditLogger {
	enabled := logging.ParseLevel(s.cfg.Logging.Level) <= slog.LevelDebug
	return logging.NewAuditLogger(store.DataPath(s.root), enabled)
}

func (s *session) newRunner(audit *logging.AuditLogger) *simulation.Runner {
	return simulation.NewRunner(s.logger, audit, s.cfg.Runner.Workers)
}

// openStore opens the project ledger, creating it if needed.
func (s *session) openStore() (*store.SQLiteStore, error) {
	ledger, err := store.NewSQLiteStore(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return ledger, nil
}

// openExistingStore opens the project ledger and fails if there is none.
func (s *session) openExistingStore() (*store.SQLiteStore, error) {
	if _, err := os.Stat(store.DBPath(s.root)); os.IsNotExist(err) {
		return nil, fmt.Errorf("no ledger in %s. Run 'potency simulate --save' first", store.DataPath(s.root))
	}
	return s.openStore()
}

// addModelFlags registers the simulation parameter flags shared by
// simulate and recalc. Unset flags leave the configured value alone.
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().String("profile", constants.DefaultProfile, "Stability profile (see 'potency profiles')")
	cmd.Flags().Float64("alpha", constants.DefaultSmoothingAlpha, "Exponential smoothing factor in (0, 1]")
	cmd.Flags().Int("horizon", constants.DefaultForecastHours, "Forecast horizon in hours (0 disables the forecast)")
	cmd.Flags().Int("window", constants.DefaultForecastWindow, "Trailing points used to fit the forecast trend (0 uses all)")
	cmd.Flags().Float64("thermal-k", constants.DefaultThermalK, "Thermal response constant in 1/hour")
	cmd.Flags().Float64("max-rate", constants.DefaultMaxRatePerHour, "Degradation rate ceiling per hour (0 disables)")
}

// applyModelFlags overrides profile and opts with every model flag given on
// the command line.
func applyModelFlags(cmd *cobra.Command, profile string, opts simulation.Options) (string, simulation.Options) {
	flags := cmd.Flags()
	if flags.Changed("profile") {
		profile, _ = flags.GetString("profile")
	}
	if flags.Changed("alpha") {
		opts.SmoothingAlpha, _ = flags.GetFloat64("alpha")
	}
	if flags.Changed("horizon") {
		opts.ForecastHours, _ = flags.GetInt("horizon")
	}
	if flags.Changed("window") {
		opts.ForecastWindow, _ = flags.GetInt("window")
	}
	if flags.Changed("thermal-k") {
		opts.ThermalK, _ = flags.GetFloat64("thermal-k")
	}
	if flags.Changed("max-rate") {
		opts.MaxRatePerHour, _ = flags.GetFloat64("max-rate")
	}
	return profile, opts
}

// optionsFromConfig returns the configured default profile and options.
func optionsFromConfig(cfg *config.PotencyConfig) (string, simulation.Options) {
	return cfg.Model.DefaultProfile, simulation.Options{
		SmoothingAlpha: cfg.Model.SmoothingAlpha,
		ForecastHours:  cfg.Model.ForecastHours,
		ForecastWindow: cfg.Model.ForecastWindow,
		ThermalK:       cfg.Model.ThermalK,
		MaxRatePerHour: cfg.Model.MaxRatePerHour,
	}
}

// optionsFromInputs returns the profile and options a stored calculation
// was run with.
func optionsFromInputs(in models.CalculationInputs) (string, simulation.Options) {
	return in.ProfileKey, simulation.Options{
		SmoothingAlpha: in.SmoothingAlpha,
		ForecastHours:  in.ForecastHours,
		ForecastWindow: in.ForecastWindow,
		ThermalK:       in.ThermalK,
		MaxRatePerHour: in.MaxRatePerHour,
	}
}
