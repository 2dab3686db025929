// Package constants provides named constants used throughout the potency codebase.
// This centralizes model parameters and defaults for better maintainability and documentation.
package constants

// Physical constants
const (
	// GasConstant is the universal gas constant R in J/(mol*K).
	GasConstant = 8.314

	// KelvinOffset converts degrees Celsius to Kelvin.
	KelvinOffset = 273.15
)

// Model defaults
const (
	// DefaultSmoothingAlpha is the exponential smoothing factor applied to raw sensor readings.
	// Low values favor noise rejection over reactivity.
	DefaultSmoothingAlpha = 0.1

	// DefaultThermalK is the thermal response constant (1/hour) of the packaging.
	// Larger values equilibrate faster with ambient.
	DefaultThermalK = 0.25

	// DefaultForecastHours is the number of hourly steps projected past the last reading.
	DefaultForecastHours = 6

	// DefaultForecastWindow is the number of trailing smoothed points used to fit the
	// forecast trend. Zero fits the whole history.
	DefaultForecastWindow = 0

	// DefaultMaxRatePerHour caps the Arrhenius rate. Rates above the ceiling are clamped
	// and counted as saturated steps. Zero disables the ceiling.
	DefaultMaxRatePerHour = 1e3

	// DefaultProfile is the stability profile used when none is given.
	DefaultProfile = "Refrigerated"
)

// Integration constants
const (
	// PotencyEpsilon absorbs floating-point noise in the potency monotonicity check.
	PotencyEpsilon = 1e-9

	// InitialPotencyPercent is the potency at the start of every run.
	InitialPotencyPercent = 100.0

	// ForecastStepHours is the fixed step used for projected samples.
	ForecastStepHours = 1.0
)

// Model identifiers recorded with every calculation.
const (
	ThermalModelID   = "first_order_lag_v1"
	ChemistryModelID = "arrhenius_v1"
)

// Runner constants
const (
	// DefaultWorkers bounds how many scenarios run in parallel.
	DefaultWorkers = 4
)

// Persistence constants
const (
	// DataDirName is the per-project directory holding the database and audit log.
	DataDirName = ".potency"

	// ConfigDirName is the per-user directory holding config.yaml.
	ConfigDirName = ".potency"

	// RecordSchemaVersion is stamped on investigations and calculations.
	RecordSchemaVersion = "1.0"
)

// Ingestion constants
const (
	// DefaultTimeColumn is the CSV header holding reading timestamps.
	DefaultTimeColumn = "timestamp"

	// DefaultTempColumn is the CSV header holding sensor temperatures.
	DefaultTempColumn = "air_temp"

	// DefaultUnit is the unit assumed for the temperature column.
	DefaultUnit = UnitCelsius
)
