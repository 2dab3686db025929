package simulation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/logging"
)

// Runner executes independent scenarios with a bounded worker pool and owns
// the logging around them. Simulate itself stays pure.
type Runner struct {
	logger  *slog.Logger
	audit   *logging.AuditLogger
	workers int
}

// NewRunner creates a runner. A nil logger discards output; a nil audit
// logger disables the audit trail; workers <= 0 uses the default.
func NewRunner(logger *slog.Logger, audit *logging.AuditLogger, workers int) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	if workers <= 0 {
		workers = constants.DefaultWorkers
	}
	return &Runner{logger: logger, audit: audit, workers: workers}
}

// Run executes one scenario. The fold is not interruptible: ctx is only
// checked before the run starts.
func (r *Runner) Run(ctx context.Context, sc Scenario) Outcome {
	out := Outcome{Name: sc.Name}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	start := time.Now()
	res, err := Simulate(sc.Series, sc.ProfileKey, sc.Options)
	out.Elapsed = time.Since(start)

	if err != nil {
		out.Err = err
		r.logFailure(ctx, sc, err)
		return out
	}
	out.Result = res

	m := res.Metrics
	r.logger.Debug("simulation completed",
		"scenario", sc.Name,
		"profile", sc.ProfileKey,
		"samples", len(sc.Series),
		"records", len(res.Records),
		"final_potency_percent", m.FinalPotencyPercent,
		"saturated_steps", m.SaturatedSteps,
		"elapsed", out.Elapsed)

	if r.logger.Enabled(ctx, logging.LevelTrace) {
		for i, rec := range res.Records {
			r.logger.Log(ctx, logging.LevelTrace, "step",
				"scenario", sc.Name,
				"index", i,
				"kind", rec.Kind,
				"timestamp", rec.Timestamp,
				"sensor_temp_c", rec.SensorTempC,
				"product_temp_c", rec.ProductTempC,
				"potency_percent", rec.PotencyPercent)
		}
	}

	if m.SaturatedSteps > 0 {
		r.logger.Warn("degradation rate hit the configured ceiling",
			"scenario", sc.Name,
			"saturated_steps", m.SaturatedSteps,
			"max_rate_per_hour", sc.Options.MaxRatePerHour)
	}

	r.audit.Log(logging.EventRunCompleted, map[string]any{
		"scenario":              sc.Name,
		"profile":               sc.ProfileKey,
		"samples":               len(sc.Series),
		"smoothing_alpha":       sc.Options.SmoothingAlpha,
		"thermal_k":             sc.Options.ThermalK,
		"forecast_hours":        sc.Options.ForecastHours,
		"final_potency_percent": m.FinalPotencyPercent,
		"saturated_steps":       m.SaturatedSteps,
	})
	return out
}

// RunAll executes scenarios in parallel. Outcomes are returned in input order.
// A failing scenario never cancels its siblings; the returned error is only
// non-nil when ctx was cancelled.
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) ([]Outcome, error) {
	outcomes := make([]Outcome, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			outcomes[i] = r.Run(gctx, sc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, ctx.Err()
}

// logFailure logs a failed run. Model violations are defects and are logged
// at error level with the offending step and parameters.
func (r *Runner) logFailure(ctx context.Context, sc Scenario, err error) {
	var violation *ModelViolationError
	if errors.As(err, &violation) {
		kv := violation.LogAttrs()
		attrs := append([]any{"scenario", sc.Name, "profile", sc.ProfileKey}, kv...)
		r.logger.ErrorContext(ctx, "model violation", attrs...)

		fields := map[string]any{"scenario": sc.Name, "profile": sc.ProfileKey}
		for i := 0; i+1 < len(kv); i += 2 {
			fields[kv[i].(string)] = kv[i+1]
		}
		r.audit.Log(logging.EventModelViolation, fields)
		return
	}

	r.logger.WarnContext(ctx, "simulation rejected", "scenario", sc.Name, "profile", sc.ProfileKey, "error", err)
	r.audit.Log(logging.EventRunRejected, map[string]any{
		"scenario": sc.Name,
		"profile":  sc.ProfileKey,
		"error":    err.Error(),
	})
}
