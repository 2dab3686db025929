package simulation

import (
	"fmt"
	"math"

	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/models"
)

// Options holds the tunable parameters of a run.
type Options struct {
	// SmoothingAlpha is the exponential smoothing factor in (0, 1].
	SmoothingAlpha float64 `json:"smoothing_alpha"`

	// ForecastHours is the number of hourly steps projected past the last
	// reading. Zero disables the forecast.
	ForecastHours int `json:"forecast_hours"`

	// ForecastWindow limits the trend fit to the trailing N smoothed points.
	// Zero fits the whole history.
	ForecastWindow int `json:"forecast_window"`

	// ThermalK is the thermal response constant in 1/hour.
	ThermalK float64 `json:"thermal_k"`

	// MaxRatePerHour clamps the degradation rate. Zero disables the ceiling.
	MaxRatePerHour float64 `json:"max_rate_per_hour"`
}

// DefaultOptions returns the default run parameters.
func DefaultOptions() Options {
	return Options{
		SmoothingAlpha: constants.DefaultSmoothingAlpha,
		ForecastHours:  constants.DefaultForecastHours,
		ForecastWindow: constants.DefaultForecastWindow,
		ThermalK:       constants.DefaultThermalK,
		MaxRatePerHour: constants.DefaultMaxRatePerHour,
	}
}

// Validate checks the options that Smooth, Step and Forecast would otherwise
// reject midway through a run.
func (o Options) Validate() error {
	if !(o.SmoothingAlpha > 0 && o.SmoothingAlpha <= 1) {
		return fmt.Errorf("%w: smoothing alpha must be in (0, 1], got %v", ErrInvalidParameter, o.SmoothingAlpha)
	}
	if o.ForecastHours < 0 {
		return fmt.Errorf("%w: forecast horizon must be non-negative, got %d", ErrInvalidParameter, o.ForecastHours)
	}
	if o.ForecastWindow < 0 {
		return fmt.Errorf("%w: forecast window must be non-negative, got %d", ErrInvalidParameter, o.ForecastWindow)
	}
	if !(o.ThermalK >= 0) || math.IsInf(o.ThermalK, 0) {
		return fmt.Errorf("%w: thermal constant must be non-negative and finite, got %v", ErrInvalidParameter, o.ThermalK)
	}
	if !(o.MaxRatePerHour >= 0) {
		return fmt.Errorf("%w: rate ceiling must be non-negative, got %v", ErrInvalidParameter, o.MaxRatePerHour)
	}
	return nil
}

// Result is the output of one run.
type Result struct {
	Profile models.StabilityProfile   `json:"profile"`
	Options Options                   `json:"options"`
	Records []models.SimulationRecord `json:"records"`
	Metrics models.Metrics            `json:"metrics"`

	// HistoryFinal is the state after the last measured sample, i.e. the seed
	// of the forecast.
	HistoryFinal State `json:"history_final"`

	// Final is the state after the last record.
	Final State `json:"final"`
}

// History returns the measured segment of the records.
func (r Result) History() []models.SimulationRecord {
	for i, rec := range r.Records {
		if rec.Kind != models.RecordKindHistory {
			return r.Records[:i]
		}
	}
	return r.Records
}

// Forecast returns the projected segment of the records.
func (r Result) Forecast() []models.SimulationRecord {
	return r.Records[len(r.History()):]
}

// Simulate runs the full pipeline for one investigation:
// smooth, integrate history, forecast, aggregate.
//
// It is a pure function of its inputs. Errors abort the run and no partial
// result is returned.
func Simulate(series []models.TemperatureSample, profileKey string, opts Options) (Result, error) {
	profile, err := LookupProfile(profileKey)
	if err != nil {
		return Result{}, err
	}
	return SimulateProfile(series, profile, opts)
}

// SimulateProfile is Simulate with an already resolved profile.
func SimulateProfile(series []models.TemperatureSample, profile models.StabilityProfile, opts Options) (Result, error) {
	if err := ValidateProfile(profile); err != nil {
		return Result{}, err
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if len(series) < 2 {
		return Result{}, fmt.Errorf("%w: at least two temperature samples are required, got %d",
			ErrInsufficientData, len(series))
	}

	smoothed, err := SmoothSamples(series, opts.SmoothingAlpha)
	if err != nil {
		return Result{}, err
	}

	model := Model{
		Kinetics: NewKinetics(profile, opts.MaxRatePerHour),
		ThermalK: opts.ThermalK,
	}

	history, err := model.Integrate(smoothed)
	if err != nil {
		return Result{}, err
	}

	forecast, err := model.Forecast(history.Final, smoothed, opts.ForecastHours, opts.ForecastWindow)
	if err != nil {
		return Result{}, err
	}

	records := make([]models.SimulationRecord, 0, len(history.Records)+len(forecast.Records))
	records = append(records, history.Records...)
	records = append(records, forecast.Records...)

	metrics, err := Aggregate(records)
	if err != nil {
		return Result{}, err
	}
	metrics.SaturatedSteps = history.SaturatedSteps + forecast.SaturatedSteps
	metrics.MinutesOutsideStorage = MinutesOutsideStorage(history.Records, profile)

	return Result{
		Profile:      profile,
		Options:      opts,
		Records:      records,
		Metrics:      metrics,
		HistoryFinal: history.Final,
		Final:        forecast.Final,
	}, nil
}
