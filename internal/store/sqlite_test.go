package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewSQLiteStore(tmpDir)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	// Verify .potency directory was created
	dataDir := filepath.Join(tmpDir, ".potency")
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Error(".potency directory was not created")
	}
	if store.DataDir() != dataDir {
		t.Errorf("DataDir() = %s, want %s", store.DataDir(), dataDir)
	}

	// Verify database file was created
	dbPath := filepath.Join(dataDir, "potency.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("potency.db was not created")
	}

	if err := store.Verify(context.Background()); err != nil {
		t.Errorf("Verify() on fresh database error = %v", err)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	store, err := NewSQLiteStore(tmpDir)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	inv := testInvestigation("INV-persist", baseTime)
	if err := store.CreateInvestigation(ctx, inv); err != nil {
		t.Fatalf("CreateInvestigation() error = %v", err)
	}
	calc := testCalculation("CALC-persist", inv.ID, baseTime)
	if err := store.SaveCalculation(ctx, calc); err != nil {
		t.Fatalf("SaveCalculation() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(tmpDir)
	if err != nil {
		t.Fatalf("NewSQLiteStore() on existing database error = %v", err)
	}
	defer reopened.Close()

	latest, err := reopened.LatestCalculation(ctx, inv.ID)
	if err != nil {
		t.Fatalf("LatestCalculation() error = %v", err)
	}
	if latest.ID != calc.ID {
		t.Errorf("LatestCalculation() = %s, want %s", latest.ID, calc.ID)
	}

	next := testCalculation("CALC-after-reopen", inv.ID, baseTime.Add(1))
	if err := reopened.SaveCalculation(ctx, next); err != nil {
		t.Fatalf("SaveCalculation() error = %v", err)
	}
	if next.Supersedes != calc.ID {
		t.Errorf("Supersedes = %q, want %q", next.Supersedes, calc.ID)
	}
}

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitSchema_Fresh(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	for _, table := range []string{"investigations", "readings", "calculations", "schema_version"} {
		if len(getColumns(t, db, table)) == 0 {
			t.Errorf("table %s was not created", table)
		}
	}

	version, err := getSchemaVersion(ctx, db)
	if err != nil {
		t.Fatalf("get schema version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}

	// Idempotent on an existing database
	if err := InitSchema(ctx, db); err != nil {
		t.Errorf("second InitSchema failed: %v", err)
	}
}

func TestInitSchema_RepairsEmptyVersionTable(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `CREATE TABLE schema_version (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		t.Fatalf("create schema_version: %v", err)
	}

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	if !getColumns(t, db, "calculations")["supersedes"] {
		t.Error("calculations table was not created")
	}
}

func TestInitSchema_RejectsNewerVersion(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version, applied_at) VALUES (99, '2030-01-01')`); err != nil {
		t.Fatalf("insert version: %v", err)
	}

	err := InitSchema(ctx, db)
	if err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("InitSchema() error = %v, want newer-version error", err)
	}
}

func TestInitSchema_IntegrityFailure(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	// foreign_keys is off on this connection, so an orphan row can be written
	if _, err := db.ExecContext(ctx, `
		INSERT INTO readings (investigation_id, seq, timestamp, temp_c)
		VALUES ('INV-missing', 0, '2025-12-29T00:00:00.000000000Z', 5)
	`); err != nil {
		t.Fatalf("insert orphan: %v", err)
	}

	if err := ValidateIntegrity(ctx, db); err == nil {
		t.Fatal("expected ValidateIntegrity to fail due to FK violation")
	}
	if err := InitSchema(ctx, db); err == nil {
		t.Error("expected InitSchema to refuse a database with FK violations")
	}
}

func TestResetSchema(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO investigations (id, source, status, schema_version, created_at)
		VALUES ('INV-1', 'csv_upload', 'INGESTED', '1.0', '2025-12-29T00:00:00.000000000Z')
	`); err != nil {
		t.Fatalf("insert investigation: %v", err)
	}

	if err := ResetSchema(ctx, db); err != nil {
		t.Fatalf("ResetSchema failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM investigations`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("investigations after reset = %d, want 0", count)
	}
}

// getColumns returns a map of column names for the given table.
func getColumns(t *testing.T, db *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("PRAGMA table_info(%s): %v", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols[name] = true
	}
	return cols
}
