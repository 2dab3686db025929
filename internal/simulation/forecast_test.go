package simulation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/nvandessel/potency/internal/models"
)

func TestTrendSlope(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single point", []float64{4}, 0},
		{"constant", []float64{5, 5, 5, 5}, 0},
		{"rising line", []float64{1, 3, 5, 7}, 2},
		{"falling line", []float64{10, 9.5, 9, 8.5, 8}, -0.5},
		{"noisy", []float64{1, 2, 2, 3}, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrendSlope(tt.values); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("TrendSlope(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestForecast_ZeroHorizon(t *testing.T) {
	m := refrigeratedModel(t, 0.25)
	seed := State{ProductTempC: 5, CumulativeDamage: 0.01, PotencyPercent: 100 * math.Exp(-0.01)}

	seg, err := m.Forecast(seed, smoothedIdentity(HourlySeries(testStart, 5, 6)), 0, 0)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(seg.Records) != 0 {
		t.Errorf("Forecast(0) produced %d records", len(seg.Records))
	}
	if seg.Final != seed {
		t.Errorf("Forecast(0) final = %+v, want seed %+v", seg.Final, seed)
	}
}

func TestForecast_NegativeArguments(t *testing.T) {
	m := refrigeratedModel(t, 0.25)
	history := smoothedIdentity(HourlySeries(testStart, 5, 6))
	if _, err := m.Forecast(InitialState(5), history, -1, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Forecast(hours=-1) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := m.Forecast(InitialState(5), history, 1, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Forecast(window=-1) error = %v, want ErrInvalidParameter", err)
	}
}

func TestForecast_ProjectsLinearTrend(t *testing.T) {
	m := refrigeratedModel(t, 0.25)
	history := smoothedIdentity(HourlySeries(testStart, 2, 3, 4, 5))

	seg, err := m.Forecast(InitialState(5), history, 3, 0)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(seg.Records) != 3 {
		t.Fatalf("Forecast() produced %d records, want 3", len(seg.Records))
	}

	last := history[len(history)-1].Timestamp
	for i, r := range seg.Records {
		h := i + 1
		if want := 5.0 + float64(h); math.Abs(r.SensorTempC-want) > 1e-12 {
			t.Errorf("step %d projected temp = %v, want %v", h, r.SensorTempC, want)
		}
		if want := last.Add(time.Duration(h) * time.Hour); !r.Timestamp.Equal(want) {
			t.Errorf("step %d timestamp = %v, want %v", h, r.Timestamp, want)
		}
		if r.Kind != models.RecordKindForecast {
			t.Errorf("step %d kind = %q, want forecast", h, r.Kind)
		}
		if r.SmoothedTempC != nil {
			t.Errorf("step %d has a smoothed temperature", h)
		}
	}
}

func TestForecast_Window(t *testing.T) {
	m := refrigeratedModel(t, 0.25)
	// Flat for a long time, then rising over the last three points.
	history := smoothedIdentity(HourlySeries(testStart, 5, 5, 5, 5, 5, 5, 6, 7))

	seg, err := m.Forecast(InitialState(7), history, 1, 3)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if got := seg.Records[0].SensorTempC; math.Abs(got-8) > 1e-12 {
		t.Errorf("windowed projection = %v, want 8", got)
	}

	full, err := m.Forecast(InitialState(7), history, 1, 0)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if full.Records[0].SensorTempC >= 8 {
		t.Errorf("full-history projection %v should be damped by the flat start", full.Records[0].SensorTempC)
	}
}

func TestForecast_ContinuesFromSeed(t *testing.T) {
	m := refrigeratedModel(t, 0.25)
	history := smoothedIdentity(HourlySeries(testStart, 5, 8, 12))
	hist, err := m.Integrate(history)
	if err != nil {
		t.Fatalf("Integrate() error = %v", err)
	}

	seg, err := m.Forecast(hist.Final, history, 2, 0)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	// The first forecast step must equal Step applied to the last history state.
	want, _, err := m.Step(hist.Final, StepInput{
		Index:       len(history),
		Phase:       models.RecordKindForecast,
		SensorTempC: seg.Records[0].SensorTempC,
		DeltaHours:  1,
	})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	first := seg.Records[0]
	if first.ProductTempC != want.ProductTempC || first.CumulativeDamage != want.CumulativeDamage {
		t.Errorf("first forecast record = %+v, want state %+v", first, want)
	}

	lastHistory := hist.Records[len(hist.Records)-1]
	if first.PotencyPercent > lastHistory.PotencyPercent {
		t.Errorf("potency jumped up at the boundary: %v -> %v", lastHistory.PotencyPercent, first.PotencyPercent)
	}
}

func TestForecast_EmptyHistory(t *testing.T) {
	m := refrigeratedModel(t, 0.25)
	if _, err := m.Forecast(InitialState(5), nil, 2, 0); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Forecast() error = %v, want ErrInsufficientData", err)
	}
}
