// Package ids generates the identifiers used for investigations and
// calculations.
package ids

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	InvestigationPrefix = "INV"
	CalculationPrefix   = "CALC"

	suffixLen = 6
)

// NewInvestigationID returns an ID of the form INV-YYYYMMDD-xxxxxx using the
// UTC date of now.
func NewInvestigationID(now time.Time) string {
	return InvestigationPrefix + "-" + now.UTC().Format("20060102") + "-" + suffix()
}

// NewCalculationID returns an ID of the form CALC-xxxxxx.
func NewCalculationID() string {
	return CalculationPrefix + "-" + suffix()
}

// suffix is the first six hex digits of a random UUID.
func suffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
}
