package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/potency/internal/models"
	"github.com/nvandessel/potency/internal/report"
	"github.com/spf13/cobra"
)

// saveRun simulates path with --save and returns the stored IDs.
func saveRun(t *testing.T, root, path string, extra ...string) runSummary {
	t.Helper()
	args := append([]string{"simulate", path, "--save", "--horizon", "0", "--json", "--root", root}, extra...)
	out, err := runCommand(t, newSimulateCmd(), args...)
	if err != nil {
		t.Fatalf("simulate --save failed: %v", err)
	}
	var got simulateOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("failed to parse output %q: %v", out, err)
	}
	res := got.Results[0]
	if !strings.HasPrefix(res.InvestigationID, "INV-") || !strings.HasPrefix(res.CalculationID, "CALC-") {
		t.Fatalf("unexpected IDs: %+v", res)
	}
	return res
}

func TestLedgerWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	path := writeCSV(t, tmpDir, "fridge.csv", refrigeratedRows...)

	first := saveRun(t, tmpDir, path, "--label", "Freezer 3")

	if _, err := os.Stat(filepath.Join(tmpDir, ".potency", "potency.db")); err != nil {
		t.Fatalf("ledger not created: %v", err)
	}

	// Recalculate with a different smoothing factor.
	out, err := runCommand(t, newRecalcCmd(), "recalc", first.InvestigationID, "--alpha", "1", "--json", "--root", tmpDir)
	if err != nil {
		t.Fatalf("recalc failed: %v", err)
	}
	var second runSummary
	if err := json.Unmarshal([]byte(out), &second); err != nil {
		t.Fatalf("failed to parse recalc output %q: %v", out, err)
	}
	if second.Supersedes != first.CalculationID {
		t.Errorf("recalc supersedes %q, want %q", second.Supersedes, first.CalculationID)
	}
	if second.Name != "Freezer 3" {
		t.Errorf("recalc name = %q, want the investigation label", second.Name)
	}

	// Investigation list
	out, err = runCommand(t, newHistoryCmd(), "history", "--root", tmpDir)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, first.InvestigationID) || !strings.Contains(out, "Freezer 3") {
		t.Errorf("history output = %q", out)
	}

	// Calculation chain, newest first
	out, err = runCommand(t, newHistoryCmd(), "history", first.InvestigationID, "--json", "--root", tmpDir)
	if err != nil {
		t.Fatalf("history <id> failed: %v", err)
	}
	var chain struct {
		Investigation models.Investigation `json:"investigation"`
		Calculations  []models.Calculation `json:"calculations"`
		Count         int                  `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &chain); err != nil {
		t.Fatalf("failed to parse history output: %v", err)
	}
	if chain.Count != 2 || chain.Calculations[0].ID != second.CalculationID {
		t.Errorf("chain = %+v", chain.Calculations)
	}
	if chain.Investigation.Status != models.StatusComputed {
		t.Errorf("status = %s, want COMPUTED", chain.Investigation.Status)
	}

	// Show keeps the inputs each calculation ran with.
	out, err = runCommand(t, newShowCmd(), "show", first.CalculationID, "--records", "--json", "--root", tmpDir)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	var calc models.Calculation
	if err := json.Unmarshal([]byte(out), &calc); err != nil {
		t.Fatalf("failed to parse show output: %v", err)
	}
	if calc.Inputs.SmoothingAlpha != 0.1 || calc.Inputs.ProfileKey != "Refrigerated" {
		t.Errorf("inputs = %+v", calc.Inputs)
	}
	if len(calc.Records) != 3 {
		t.Errorf("got %d records, want 3", len(calc.Records))
	}

	out, err = runCommand(t, newShowCmd(), "show", second.CalculationID, "--root", tmpDir)
	if err != nil {
		t.Fatalf("show text failed: %v", err)
	}
	for _, s := range []string{"Supersedes:            " + first.CalculationID, "Smoothing alpha:       1"} {
		if !strings.Contains(out, s) {
			t.Errorf("show output missing %q:\n%s", s, out)
		}
	}

	// Report by investigation uses the latest calculation.
	out, err = runCommand(t, newReportCmd(), "report", first.InvestigationID, "--root", tmpDir)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !strings.Contains(out, "Calculation ID: "+second.CalculationID) {
		t.Errorf("report did not use the latest calculation:\n%s", out)
	}
	if !strings.Contains(out, report.Disclaimer) {
		t.Error("report missing disclaimer")
	}

	out, err = runCommand(t, newReportCmd(), "report", first.CalculationID, "--json", "--root", tmpDir)
	if err != nil {
		t.Fatalf("report --json failed: %v", err)
	}
	if !strings.Contains(out, `"calculation_id":"`+first.CalculationID+`"`) {
		t.Errorf("report json = %q", out)
	}

	// Validate
	out, err = runCommand(t, newValidateCmd(), "validate", "--root", tmpDir)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "Ledger is valid") {
		t.Errorf("validate output = %q", out)
	}
}

func TestExportImportCmd(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	srcRoot := filepath.Join(tmpDir, "src")
	dstRoot := filepath.Join(tmpDir, "dst")
	path := writeCSV(t, tmpDir, "fridge.csv", refrigeratedRows...)

	first := saveRun(t, srcRoot, path)
	exportPath := filepath.Join(tmpDir, "ledger.jsonl")

	out, err := runCommand(t, newExportCmd(), "export", "-o", exportPath, "--root", srcRoot)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, "Exported 1 investigation(s)") {
		t.Errorf("export output = %q", out)
	}

	// Without --output the JSONL goes to stdout.
	out, err = runCommand(t, newExportCmd(), "export", first.InvestigationID, "--root", srcRoot)
	if err != nil {
		t.Fatalf("export to stdout failed: %v", err)
	}
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, first.CalculationID) {
		t.Errorf("stdout export = %q", out)
	}

	out, err = runCommand(t, newImportCmd(), "import", exportPath, "--json", "--root", dstRoot)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, `"imported":1`) {
		t.Errorf("import output = %q", out)
	}

	out, err = runCommand(t, newHistoryCmd(), "history", first.InvestigationID, "--json", "--root", dstRoot)
	if err != nil {
		t.Fatalf("history after import failed: %v", err)
	}
	if !strings.Contains(out, `"source":"imported"`) || !strings.Contains(out, first.CalculationID) {
		t.Errorf("imported history = %q", out)
	}

	// Importing the same file twice conflicts on the investigation ID.
	if _, err := runCommand(t, newImportCmd(), "import", exportPath, "--root", dstRoot); err == nil {
		t.Error("expected error on duplicate import")
	}
}

func TestLedgerCommands_NoLedger(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	tests := []struct {
		name string
		cmd  *cobra.Command
		args []string
	}{
		{"history", newHistoryCmd(), []string{"history"}},
		{"show", newShowCmd(), []string{"show", "CALC-000000"}},
		{"report", newReportCmd(), []string{"report", "CALC-000000"}},
		{"recalc", newRecalcCmd(), []string{"recalc", "INV-20251229-000000"}},
		{"export", newExportCmd(), []string{"export"}},
		{"validate", newValidateCmd(), []string{"validate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, tt.cmd, append(tt.args, "--root", tmpDir)...)
			if err == nil || !strings.Contains(err.Error(), "no ledger") {
				t.Errorf("error = %v, want no ledger error", err)
			}
			if _, statErr := os.Stat(filepath.Join(tmpDir, ".potency")); !os.IsNotExist(statErr) {
				t.Error("read-only command created the data directory")
			}
		})
	}
}

func TestLedgerCommands_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	path := writeCSV(t, tmpDir, "fridge.csv", refrigeratedRows...)
	saveRun(t, tmpDir, path)

	tests := []struct {
		name string
		cmd  *cobra.Command
		args []string
	}{
		{"history", newHistoryCmd(), []string{"history", "INV-missing"}},
		{"show", newShowCmd(), []string{"show", "CALC-missing"}},
		{"report calculation", newReportCmd(), []string{"report", "CALC-missing"}},
		{"report investigation", newReportCmd(), []string{"report", "INV-missing"}},
		{"recalc", newRecalcCmd(), []string{"recalc", "INV-missing"}},
		{"export", newExportCmd(), []string{"export", "INV-missing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, tt.cmd, append(tt.args, "--root", tmpDir)...)
			if err == nil || !strings.Contains(err.Error(), "not found") {
				t.Errorf("error = %v, want not found", err)
			}
		})
	}
}

func TestAuditTrailAtDebugLevel(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	t.Setenv("POTENCY_LOG_LEVEL", "debug")
	path := writeCSV(t, tmpDir, "fridge.csv", refrigeratedRows...)

	if _, err := runCommand(t, newSimulateCmd(), "simulate", path, "--root", tmpDir); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ".potency", "audit.jsonl"))
	if err != nil {
		t.Fatalf("audit trail not written: %v", err)
	}
	if !strings.Contains(string(data), `"event":"run_completed"`) {
		t.Errorf("audit trail = %q", data)
	}
}
