package constants

import "strings"

// Unit is the temperature unit of an ingested column.
type Unit string

const (
	// UnitCelsius is degrees Celsius; values pass through unchanged.
	UnitCelsius Unit = "C"

	// UnitFahrenheit is degrees Fahrenheit.
	UnitFahrenheit Unit = "F"

	// UnitKelvin is Kelvin.
	UnitKelvin Unit = "K"
)

// ParseUnit normalizes a user-supplied unit name ("c", "F", " k ").
func ParseUnit(s string) Unit {
	return Unit(strings.ToUpper(strings.TrimSpace(s)))
}

// Valid returns true if the unit is a recognized value.
func (u Unit) Valid() bool {
	switch u {
	case UnitCelsius, UnitFahrenheit, UnitKelvin:
		return true
	}
	return false
}

// ToCelsius converts v expressed in u to degrees Celsius.
// Unknown units return v unchanged; call Valid first.
func (u Unit) ToCelsius(v float64) float64 {
	switch u {
	case UnitFahrenheit:
		return (v - 32.0) * (5.0 / 9.0)
	case UnitKelvin:
		return v - KelvinOffset
	default:
		return v
	}
}

// String returns the string representation of the unit.
func (u Unit) String() string {
	return string(u)
}
