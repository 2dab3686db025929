// Package ingest reads temperature time series from CSV exports.
//
// Readings are returned in file order with temperatures normalized to
// degrees Celsius. Timestamps without a zone are interpreted as UTC.
// Ordering is not checked here; the simulation engine rejects series whose
// timestamps go backwards.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/potency/internal/constants"
	"github.com/nvandessel/potency/internal/models"
)

var (
	// ErrSchema indicates missing columns, an unknown unit, or a value that
	// cannot be parsed as a timestamp or temperature.
	ErrSchema = errors.New("ingest: csv schema error")

	// ErrRead indicates the input could not be read as CSV at all.
	ErrRead = errors.New("ingest: csv read error")
)

// timeLayouts are tried in order for every timestamp cell.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Mapping names the columns to read and the unit of the temperature column.
type Mapping struct {
	TimeColumn string
	TempColumn string
	Unit       constants.Unit
}

// DefaultMapping returns the mapping used when no column flags are given.
func DefaultMapping() Mapping {
	return Mapping{
		TimeColumn: constants.DefaultTimeColumn,
		TempColumn: constants.DefaultTempColumn,
		Unit:       constants.DefaultUnit,
	}
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string, m Mapping) ([]models.TemperatureSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	samples, err := ReadCSV(f, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// ReadCSV parses a headed CSV stream into temperature samples.
// Header names are matched case-insensitively. Any bad row fails the whole
// read; there is no partial result.
func ReadCSV(r io.Reader, m Mapping) ([]models.TemperatureSample, error) {
	unit := constants.ParseUnit(m.Unit.String())
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: unsupported temperature unit %q (valid: C, F, K)", ErrSchema, m.Unit)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file, a header row is required", ErrSchema)
		}
		return nil, fmt.Errorf("%w: reading header: %v", ErrRead, err)
	}

	headerMap := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimPrefix(h, "\ufeff")
		headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}

	timeIdx, timeOK := headerMap[strings.ToLower(m.TimeColumn)]
	tempIdx, tempOK := headerMap[strings.ToLower(m.TempColumn)]
	var missing []string
	if !timeOK {
		missing = append(missing, m.TimeColumn)
	}
	if !tempOK {
		missing = append(missing, m.TempColumn)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrSchema, strings.Join(missing, ", "))
	}

	var samples []models.TemperatureSample
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRead, err)
		}

		line, _ := reader.FieldPos(0)
		sample, err := parseRecord(record, timeIdx, tempIdx, unit)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSchema, line, err)
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

func parseRecord(record []string, timeIdx, tempIdx int, unit constants.Unit) (models.TemperatureSample, error) {
	get := func(idx int) string {
		if idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	ts, err := ParseTimestamp(get(timeIdx))
	if err != nil {
		return models.TemperatureSample{}, err
	}

	raw := get(tempIdx)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.TemperatureSample{}, fmt.Errorf("invalid temperature %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.TemperatureSample{}, fmt.Errorf("temperature %q is not a finite number", raw)
	}

	return models.TemperatureSample{
		Timestamp:   ts,
		SensorTempC: unit.ToCelsius(v),
	}, nil
}

// ParseTimestamp parses s with the first matching supported layout.
// Values without a zone offset are returned in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp format %q", s)
}
