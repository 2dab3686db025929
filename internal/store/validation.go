package store

import (
	"context"
	"fmt"

	"github.com/nvandessel/potency/internal/models"
)

// ValidationError describes a ledger consistency issue.
type ValidationError struct {
	InvestigationID string `json:"investigation_id"`
	CalculationID   string `json:"calculation_id,omitempty"`
	RefID           string `json:"ref_id,omitempty"` // The problematic reference
	Issue           string `json:"issue"`            // See the Issue* constants
}

// Ledger issues reported by ValidateLedger.
const (
	IssueSelfReference = "self-reference" // calculation supersedes itself
	IssueDangling      = "dangling"       // supersedes an ID outside the investigation
	IssueFork          = "fork"           // two calculations supersede the same one
	IssueMultipleRoots = "multiple-roots" // more than one calculation supersedes nothing
	IssueStatus        = "status"         // status disagrees with the calculation count
	IssueNoReadings    = "no-readings"    // investigation has no stored readings
)

// String returns a human-readable description of the validation error.
func (e ValidationError) String() string {
	switch {
	case e.CalculationID != "" && e.RefID != "":
		return fmt.Sprintf("%s: %s in %s references %s", e.Issue, e.CalculationID, e.InvestigationID, e.RefID)
	case e.CalculationID != "":
		return fmt.Sprintf("%s: %s in %s", e.Issue, e.CalculationID, e.InvestigationID)
	default:
		return fmt.Sprintf("%s: %s", e.Issue, e.InvestigationID)
	}
}

// ValidateLedger checks every investigation in s for consistency.
// Returns validation errors for:
// - Supersedes links that point at themselves or outside the investigation
// - Chains that fork or have more than one root
// - A status that disagrees with whether calculations exist
// - Investigations without readings
func ValidateLedger(ctx context.Context, s Store) ([]ValidationError, error) {
	invs, err := s.ListInvestigations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list investigations: %w", err)
	}

	var errs []ValidationError
	for _, inv := range invs {
		found, err := validateInvestigation(ctx, s, inv)
		if err != nil {
			return nil, err
		}
		errs = append(errs, found...)
	}
	return errs, nil
}

func validateInvestigation(ctx context.Context, s Store, inv models.Investigation) ([]ValidationError, error) {
	var errs []ValidationError

	readings, err := s.GetReadings(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get readings for %s: %w", inv.ID, err)
	}
	if len(readings) == 0 {
		errs = append(errs, ValidationError{InvestigationID: inv.ID, Issue: IssueNoReadings})
	}

	calcs, err := s.ListCalculations(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations for %s: %w", inv.ID, err)
	}

	wantStatus := models.StatusIngested
	if len(calcs) > 0 {
		wantStatus = models.StatusComputed
	}
	if inv.Status != wantStatus {
		errs = append(errs, ValidationError{InvestigationID: inv.ID, RefID: string(inv.Status), Issue: IssueStatus})
	}

	ids := make(map[string]bool, len(calcs))
	for _, c := range calcs {
		ids[c.ID] = true
	}

	supersededBy := make(map[string]string)
	var roots []string
	for _, c := range calcs {
		switch {
		case c.Supersedes == "":
			roots = append(roots, c.ID)
		case c.Supersedes == c.ID:
			errs = append(errs, ValidationError{InvestigationID: inv.ID, CalculationID: c.ID, RefID: c.ID, Issue: IssueSelfReference})
		case !ids[c.Supersedes]:
			errs = append(errs, ValidationError{InvestigationID: inv.ID, CalculationID: c.ID, RefID: c.Supersedes, Issue: IssueDangling})
		default:
			if other, taken := supersededBy[c.Supersedes]; taken {
				errs = append(errs, ValidationError{InvestigationID: inv.ID, CalculationID: c.ID, RefID: other, Issue: IssueFork})
			} else {
				supersededBy[c.Supersedes] = c.ID
			}
		}
	}

	if len(roots) > 1 {
		for _, id := range roots[:len(roots)-1] {
			errs = append(errs, ValidationError{InvestigationID: inv.ID, CalculationID: id, Issue: IssueMultipleRoots})
		}
	}

	return errs, nil
}
