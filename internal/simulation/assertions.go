package simulation

import (
	"math"
	"testing"

	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/models"
)

// AssertPotencyNonIncreasing asserts that potency never rises between
// consecutive records and stays within [0, 100].
func AssertPotencyNonIncreasing(t *testing.T, records []models.SimulationRecord) {
	t.Helper()
	for i, r := range records {
		if r.PotencyPercent < 0 || r.PotencyPercent > 100 {
			t.Errorf("AssertPotencyNonIncreasing: record %d: potency %.9f outside [0, 100]", i, r.PotencyPercent)
		}
		if i == 0 {
			continue
		}
		prev := records[i-1].PotencyPercent
		if r.PotencyPercent > prev+constants.PotencyEpsilon {
			t.Errorf("AssertPotencyNonIncreasing: record %d: potency %.12f > previous %.12f", i, r.PotencyPercent, prev)
		}
	}
}

// AssertDamageNonDecreasing asserts that cumulative damage is never negative
// and never decreases.
func AssertDamageNonDecreasing(t *testing.T, records []models.SimulationRecord) {
	t.Helper()
	for i, r := range records {
		if r.CumulativeDamage < 0 {
			t.Errorf("AssertDamageNonDecreasing: record %d: negative damage %g", i, r.CumulativeDamage)
		}
		if i > 0 && r.CumulativeDamage < records[i-1].CumulativeDamage {
			t.Errorf("AssertDamageNonDecreasing: record %d: damage %g < previous %g", i, r.CumulativeDamage, records[i-1].CumulativeDamage)
		}
	}
}

// AssertChronological asserts that history precedes forecast, timestamps never
// go backwards, and forecast timestamps are strictly increasing.
func AssertChronological(t *testing.T, records []models.SimulationRecord) {
	t.Helper()
	seenForecast := false
	for i, r := range records {
		if r.Kind == models.RecordKindForecast {
			seenForecast = true
		} else if seenForecast {
			t.Errorf("AssertChronological: record %d: history record after forecast", i)
		}
		if i == 0 {
			continue
		}
		prev := records[i-1]
		if r.Timestamp.Before(prev.Timestamp) {
			t.Errorf("AssertChronological: record %d: %s before %s", i, r.Timestamp, prev.Timestamp)
		}
		if r.Kind == models.RecordKindForecast && !r.Timestamp.After(prev.Timestamp) {
			t.Errorf("AssertChronological: record %d: duplicate forecast timestamp %s", i, r.Timestamp)
		}
	}
}

// AssertMetricsConsistent asserts that the metrics of a result agree with its
// records.
func AssertMetricsConsistent(t *testing.T, result Result) {
	t.Helper()
	if len(result.Records) == 0 {
		t.Fatal("AssertMetricsConsistent: result has no records")
	}
	m := result.Metrics
	last := result.Records[len(result.Records)-1]
	if m.FinalPotencyPercent != last.PotencyPercent {
		t.Errorf("AssertMetricsConsistent: final potency %.9f != last record %.9f", m.FinalPotencyPercent, last.PotencyPercent)
	}
	if m.FinalPotencyPercent < 0 || m.FinalPotencyPercent > 100 {
		t.Errorf("AssertMetricsConsistent: final potency %.9f outside [0, 100]", m.FinalPotencyPercent)
	}
	if math.Abs(m.PotencyLossPercent-(100-m.FinalPotencyPercent)) > 1e-12 {
		t.Errorf("AssertMetricsConsistent: loss %.9f != 100 - final", m.PotencyLossPercent)
	}
	if m.PeakProductTempC < m.MinProductTempC {
		t.Errorf("AssertMetricsConsistent: product peak %.4f < min %.4f", m.PeakProductTempC, m.MinProductTempC)
	}
	if m.PeakSensorTempC < m.MinSensorTempC {
		t.Errorf("AssertMetricsConsistent: sensor peak %.4f < min %.4f", m.PeakSensorTempC, m.MinSensorTempC)
	}
}
