package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nvandessel/potency/internal/models"
	_ "modernc.org/sqlite" // SQLite driver
)

// timeLayout is used for every timestamp column. Fixed-width UTC sorts
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store using SQLite for persistence.
type SQLiteStore struct {
	mu      sync.RWMutex
	db      *sql.DB
	dataDir string
	dbPath  string
}

// NewSQLiteStore creates a new SQLiteStore rooted at projectRoot.
// It creates the database at .potency/potency.db.
func NewSQLiteStore(projectRoot string) (*SQLiteStore, error) {
	dataDir := DataPath(projectRoot)

	// Ensure .potency directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .potency directory: %w", err)
	}

	dbPath := DBPath(projectRoot)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{
		db:      db,
		dataDir: dataDir,
		dbPath:  dbPath,
	}, nil
}

// DataDir returns the .potency directory the store lives in.
func (s *SQLiteStore) DataDir() string {
	return s.dataDir
}

// CreateInvestigation inserts a new investigation.
func (s *SQLiteStore) CreateInvestigation(ctx context.Context, inv models.Investigation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertInvestigation(ctx, s.db, inv)
}

// GetInvestigation retrieves an investigation by ID.
func (s *SQLiteStore) GetInvestigation(ctx context.Context, id string) (*models.Investigation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, label, source, status, schema_version, created_at
		FROM investigations WHERE id = ?
	`, id)

	inv, err := scanInvestigation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("investigation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investigation %s: %w", id, err)
	}
	return inv, nil
}

// ListInvestigations returns all investigations, newest first.
func (s *SQLiteStore) ListInvestigations(ctx context.Context) ([]models.Investigation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, source, status, schema_version, created_at
		FROM investigations ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query investigations: %w", err)
	}
	defer rows.Close()

	var out []models.Investigation
	for rows.Next() {
		inv, err := scanInvestigation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investigation: %w", err)
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// SaveReadings replaces the readings of an investigation.
func (s *SQLiteStore) SaveReadings(ctx context.Context, investigationID string, readings []models.TemperatureSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireInvestigation(ctx, tx, investigationID); err != nil {
		return err
	}
	if err := replaceReadings(ctx, tx, investigationID, readings); err != nil {
		return err
	}
	return tx.Commit()
}

// GetReadings returns the readings of an investigation in saved order.
func (s *SQLiteStore) GetReadings(ctx context.Context, investigationID string) ([]models.TemperatureSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, temp_c FROM readings WHERE investigation_id = ? ORDER BY seq
	`, investigationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var out []models.TemperatureSample
	for rows.Next() {
		var ts string
		var temp float64
		if err := rows.Scan(&ts, &temp); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, err
		}
		out = append(out, models.TemperatureSample{Timestamp: t, SensorTempC: temp})
	}
	return out, rows.Err()
}

// SaveCalculation appends calc to the ledger. The supersedes link and the
// investigation status are updated in the same transaction.
func (s *SQLiteStore) SaveCalculation(ctx context.Context, calc *models.Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireInvestigation(ctx, tx, calc.InvestigationID); err != nil {
		return err
	}
	supersedes, err := appendCalculation(ctx, tx, calc)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit calculation: %w", err)
	}
	calc.Supersedes = supersedes
	return nil
}

// SaveInvestigation creates inv with its readings and first calculation in a
// single transaction. Nothing is stored if any part fails.
func (s *SQLiteStore) SaveInvestigation(ctx context.Context, inv models.Investigation, readings []models.TemperatureSample, calc *models.Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if calc.InvestigationID != inv.ID {
		return fmt.Errorf("calculation %s belongs to investigation %q, not %s", calc.ID, calc.InvestigationID, inv.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertInvestigation(ctx, tx, inv); err != nil {
		return err
	}
	if err := replaceReadings(ctx, tx, inv.ID, readings); err != nil {
		return err
	}
	supersedes, err := appendCalculation(ctx, tx, calc)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit investigation %s: %w", inv.ID, err)
	}
	calc.Supersedes = supersedes
	return nil
}

// GetCalculation retrieves a calculation, including its records, by ID.
func (s *SQLiteStore) GetCalculation(ctx context.Context, id string) (*models.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+calculationColumns+`, records FROM calculations WHERE id = ?
	`, id)

	calc, err := scanCalculation(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("calculation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calculation %s: %w", id, err)
	}
	return calc, nil
}

// LatestCalculation returns the newest calculation of an investigation.
func (s *SQLiteStore) LatestCalculation(ctx context.Context, investigationID string) (*models.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+calculationColumns+`, records FROM calculations WHERE investigation_id = ?
		ORDER BY computed_at DESC, rowid DESC LIMIT 1
	`, investigationID)

	calc, err := scanCalculation(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no calculation for investigation %s: %w", investigationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest calculation: %w", err)
	}
	return calc, nil
}

// ListCalculations returns the calculations of an investigation, newest first,
// without records.
func (s *SQLiteStore) ListCalculations(ctx context.Context, investigationID string) ([]models.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+calculationColumns+` FROM calculations WHERE investigation_id = ?
		ORDER BY computed_at DESC, rowid DESC
	`, investigationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations: %w", err)
	}
	defer rows.Close()

	var out []models.Calculation
	for rows.Next() {
		calc, err := scanCalculation(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		out = append(out, *calc)
	}
	return out, rows.Err()
}

// Verify runs the SQLite integrity checks on the open database.
func (s *SQLiteStore) Verify(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ValidateIntegrity(ctx, s.db)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Helper functions

const calculationColumns = `id, investigation_id, schema_version, thermal_model, chemistry_model,
	inputs, results, computed_at, supersedes`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInvestigation(row scanner) (*models.Investigation, error) {
	var inv models.Investigation
	var label sql.NullString
	var source, status, createdAt string

	if err := row.Scan(&inv.ID, &label, &source, &status, &inv.SchemaVersion, &createdAt); err != nil {
		return nil, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	inv.Label = label.String
	inv.Source = models.InvestigationSource(source)
	inv.Status = models.InvestigationStatus(status)
	inv.CreatedAt = t
	return &inv, nil
}

func scanCalculation(row scanner, withRecords bool) (*models.Calculation, error) {
	var calc models.Calculation
	var inputsJSON, resultsJSON, computedAt string
	var supersedes, recordsJSON sql.NullString

	dest := []any{
		&calc.ID, &calc.InvestigationID, &calc.SchemaVersion, &calc.ThermalModel, &calc.ChemistryModel,
		&inputsJSON, &resultsJSON, &computedAt, &supersedes,
	}
	if withRecords {
		dest = append(dest, &recordsJSON)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(inputsJSON), &calc.Inputs); err != nil {
		return nil, fmt.Errorf("unmarshal inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &calc.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	if recordsJSON.Valid {
		if err := json.Unmarshal([]byte(recordsJSON.String), &calc.Records); err != nil {
			return nil, fmt.Errorf("unmarshal records: %w", err)
		}
	}

	t, err := parseTime(computedAt)
	if err != nil {
		return nil, err
	}
	calc.ComputedAt = t
	calc.Supersedes = supersedes.String
	return &calc, nil
}

// requireInvestigation returns ErrNotFound unless the investigation exists.
// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertInvestigation(ctx context.Context, db execer, inv models.Investigation) error {
	if inv.ID == "" {
		return fmt.Errorf("investigation ID is required")
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO investigations (id, label, source, status, schema_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.ID, nullString(inv.Label), string(inv.Source), string(inv.Status), inv.SchemaVersion, formatTime(inv.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert investigation %s: %w", inv.ID, err)
	}
	return nil
}

func replaceReadings(ctx context.Context, tx *sql.Tx, investigationID string, readings []models.TemperatureSample) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM readings WHERE investigation_id = ?`, investigationID); err != nil {
		return fmt.Errorf("failed to clear readings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO readings (investigation_id, seq, timestamp, temp_c) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare reading insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range readings {
		if _, err := stmt.ExecContext(ctx, investigationID, i, formatTime(r.Timestamp), r.SensorTempC); err != nil {
			return fmt.Errorf("failed to insert reading %d: %w", i, err)
		}
	}
	return nil
}

// appendCalculation inserts calc after the current latest calculation of its
// investigation and marks the investigation computed. It returns the ID calc
// supersedes, which is empty for the first calculation.
func appendCalculation(ctx context.Context, tx *sql.Tx, calc *models.Calculation) (string, error) {
	if calc.ID == "" {
		return "", fmt.Errorf("calculation ID is required")
	}

	inputsJSON, err := json.Marshal(calc.Inputs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal inputs: %w", err)
	}
	resultsJSON, err := json.Marshal(calc.Metrics)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	var recordsJSON []byte
	if len(calc.Records) > 0 {
		recordsJSON, err = json.Marshal(calc.Records)
		if err != nil {
			return "", fmt.Errorf("failed to marshal records: %w", err)
		}
	}

	var previous sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM calculations WHERE investigation_id = ?
		ORDER BY computed_at DESC, rowid DESC LIMIT 1
	`, calc.InvestigationID).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to find previous calculation: %w", err)
	}
	supersedes := previous.String

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calculations (
			id, investigation_id, schema_version, thermal_model, chemistry_model,
			inputs, results, records, computed_at, supersedes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, calc.ID, calc.InvestigationID, calc.SchemaVersion, calc.ThermalModel, calc.ChemistryModel,
		string(inputsJSON), string(resultsJSON), nullBytes(recordsJSON), formatTime(calc.ComputedAt),
		nullString(supersedes))
	if err != nil {
		return "", fmt.Errorf("failed to insert calculation %s: %w", calc.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE investigations SET status = ? WHERE id = ?`,
		string(models.StatusComputed), calc.InvestigationID); err != nil {
		return "", fmt.Errorf("failed to update investigation status: %w", err)
	}
	return supersedes, nil
}

func requireInvestigation(ctx context.Context, tx *sql.Tx, id string) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM investigations WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("investigation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up investigation %s: %w", id, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
