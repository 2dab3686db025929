package simulation

import (
	"time"

	"github.com/nvandessel/potency/internal/models"
)

// Scenario is one independent investigation to simulate.
type Scenario struct {
	// Name identifies the scenario in logs and outcomes (e.g. the CSV path).
	Name       string
	Series     []models.TemperatureSample
	ProfileKey string
	Options    Options
}

// Outcome captures the result of running a single scenario.
type Outcome struct {
	Name    string
	Result  Result
	Err     error
	Elapsed time.Duration
}

// OK reports whether the scenario completed.
func (o Outcome) OK() bool {
	return o.Err == nil
}
