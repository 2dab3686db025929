// Package report renders the QA deviation report prompt for a stored
// calculation.
//
// The prompt carries only values taken from the calculation. Anything missing
// is printed as NotAvailable so the reader is never left to infer it.
package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/nvandessel/potency/internal/models"
	"github.com/nvandessel/potency/internal/sanitize"
)

// NotAvailable replaces any value the calculation does not provide.
const NotAvailable = "Data not available for assessment."

// Disclaimer closes every report.
const Disclaimer = "This report provides quantitative scientific analysis to support quality review activities. " +
	"Final disposition decisions must be made by authorized quality personnel in accordance with approved procedures."

// ErrNoCalculation is returned when Render is called without a calculation.
var ErrNoCalculation = errors.New("report requires a calculation")

// Input is everything a report is rendered from.
type Input struct {
	// InvestigationID defaults to Calculation.InvestigationID when empty.
	InvestigationID string

	// Label is the investigation label. It is sanitized before rendering.
	Label       string
	Calculation *models.Calculation
}

type view struct {
	InvestigationID string
	Label           string
	CalculationID   string
	Inputs          models.CalculationInputs
	Metrics         models.Metrics
	ThermalModel    string
	ChemistryModel  string
	Disclaimer      string
}

var funcs = template.FuncMap{
	"num":  formatNumber,
	"pct":  formatPercent,
	"text": formatText,
	"loss": func(final float64) string { return formatPercent(100 - final) },
}

var prompt = template.Must(template.New("report").Funcs(funcs).Parse(promptText))

// Render fills the report prompt for in.
func Render(in Input) (string, error) {
	if in.Calculation == nil {
		return "", ErrNoCalculation
	}
	calc := in.Calculation

	id := in.InvestigationID
	if id == "" {
		id = calc.InvestigationID
	}

	v := view{
		InvestigationID: id,
		Label:           sanitize.Label(in.Label),
		CalculationID:   calc.ID,
		Inputs:          calc.Inputs,
		Metrics:         calc.Metrics,
		ThermalModel:    calc.ThermalModel,
		ChemistryModel:  calc.ChemistryModel,
		Disclaimer:      Disclaimer,
	}

	var b strings.Builder
	if err := prompt.Execute(&b, v); err != nil {
		return "", fmt.Errorf("rendering report for %s: %w", calc.ID, err)
	}
	return b.String(), nil
}

func formatText(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

const promptText = `SYSTEM ROLE:
You are a Senior Quality Assurance (QA) Manager preparing a scientific, decision-support document.
You do NOT approve, reject, or release product.

DOCUMENT TYPE:
Temperature Deviation Investigation Report

REGULATORY CONTEXT (INFORMATIONAL ALIGNMENT ONLY):
- FDA 21 CFR Part 11 (Data Integrity)
- ICH Q1A(R2) (Stability)
- ICH Q9 (Quality Risk Management)
- GxP Documentation Principles

BOUNDARY CONDITIONS (STRICT):
- Use ONLY the data explicitly provided below.
- Do NOT invent, infer, or estimate missing values.
- Do NOT make release, rejection, or disposition decisions.
- Do NOT recommend discard, rework, or market action.
- Maintain neutral, evidence-based language.
- If data is unavailable, state exactly: "` + NotAvailable + `"

INVESTIGATION METADATA:
- Investigation ID: {{text .InvestigationID}}
{{- if .Label}}
- Investigation Label: {{.Label}}
{{- end}}
- Calculation ID: {{text .CalculationID}}
- Stability Profile Applied: {{text .Inputs.ProfileKey}}
- Activation Energy (Ea): {{num .Inputs.ActivationEnergy}} J/mol
- Frequency Factor (A): {{num .Inputs.FrequencyFactor}}
- Kinetic Model: {{text .ChemistryModel}}
- Thermal Model: {{text .ThermalModel}}
- Temperature Smoothing Method: Exponential
- Smoothing Parameter (alpha): {{num .Inputs.SmoothingAlpha}}
- Thermal Response Constant (k): {{num .Inputs.ThermalK}} per hour
- Forecast Horizon: {{.Inputs.ForecastHours}} hours

ANALYTICAL RESULTS (SOURCE DATA):
- Worst-Case Air Temperature: {{num .Metrics.PeakSensorTempC}} °C
- Worst-Case Estimated Product Temperature: {{num .Metrics.PeakProductTempC}} °C
- Lowest Air Temperature: {{num .Metrics.MinSensorTempC}} °C
- Lowest Estimated Product Temperature: {{num .Metrics.MinProductTempC}} °C
- Time Outside Labeled Storage Range: {{num .Metrics.MinutesOutsideStorage}} minutes
- Calculated Final Potency: {{pct .Metrics.FinalPotencyPercent}} %
- Calculated Total Potency Loss: {{loss .Metrics.FinalPotencyPercent}} %
{{- if gt .Metrics.SaturatedSteps 0}}
- Steps At Degradation Rate Ceiling: {{.Metrics.SaturatedSteps}}
{{- end}}

MANDATORY OUTPUT FORMAT:
The generated report MUST follow the exact structure below, including headings and order.
Do NOT add sections or conclusions beyond numerical interpretation.

TEMPERATURE DEVIATION INVESTIGATION REPORT

Investigation ID: {{text .InvestigationID}}
Stability Profile: {{text .Inputs.ProfileKey}}

1. PURPOSE AND SCOPE
- State the purpose of this temperature deviation assessment
- Define the scope as a quantitative evaluation of temperature-driven degradation
- Explicitly state that kinetic modeling outputs are provided to support, but not replace, QA decision-making
- State that labeled storage conditions are referenced for context only

---

2. DEVIATION OVERVIEW
- Describe the observed temperature excursion using recorded sensor data
- Identify the primary monitoring reference (air temperature vs estimated product temperature)
- Report worst-case observed air and product temperatures
- Define the temporal and analytical boundaries of the assessed event

---

3. SCIENTIFIC ANALYSIS AND RESULTS
- Describe the Arrhenius-based degradation model applied
- Explicitly list kinetic parameters used (Activation Energy and Frequency Factor)
- Describe how temperature-time data was processed, including smoothing methodology
- Compare observed air temperature to estimated product temperature profiles
- Present calculated potency outcomes derived from modeled degradation kinetics
- If applicable, compare observed temperatures to the labeled stability range for contextual reference only

---

4. DATA INTEGRITY AND METHODOLOGY
- Describe source and handling of raw temperature time-series data
- Confirm exponential smoothing methodology and parameter values
- Confirm that calculations were performed using validated algorithms
- Confirm alignment with 21 CFR Part 11 data integrity principles
- State explicitly that no external data, assumptions, or stability extrapolations were introduced

---

5. INTERPRETIVE GUIDANCE (NON-BINDING)
- Explain what the calculated potency and temperature data indicate in quantitative terms
- Clarify that degradation estimates are driven by observed temperature exposure and kinetic parameters
- Describe known limitations of model-based estimation, including sensitivity to parameter selection
- Reiterate that final quality disposition decisions require authorized QA review and approved procedures

---

DISCLAIMER:
"{{.Disclaimer}}"
`
