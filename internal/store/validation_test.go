package store

import (
	"context"
	"testing"
)

func issues(errs []ValidationError) map[string]int {
	out := make(map[string]int)
	for _, e := range errs {
		out[e.Issue]++
	}
	return out
}

func TestValidateLedger_Clean(t *testing.T) {
	s := NewInMemoryStore()
	seedLedger(t, s)

	errs, err := ValidateLedger(context.Background(), s)
	if err != nil {
		t.Fatalf("ValidateLedger() error = %v", err)
	}
	if len(errs) != 0 {
		t.Errorf("ValidateLedger() = %v, want no issues", errs)
	}
}

func TestValidateLedger_Issues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *InMemoryStore)
		want   string
	}{
		{
			name: "self reference",
			mutate: func(s *InMemoryStore) {
				c := s.calculations["CALC-one002"]
				c.Supersedes = c.ID
				s.calculations[c.ID] = c
			},
			want: IssueSelfReference,
		},
		{
			name: "dangling",
			mutate: func(s *InMemoryStore) {
				c := s.calculations["CALC-one002"]
				c.Supersedes = "CALC-gone"
				s.calculations[c.ID] = c
			},
			want: IssueDangling,
		},
		{
			name: "multiple roots",
			mutate: func(s *InMemoryStore) {
				c := s.calculations["CALC-one002"]
				c.Supersedes = ""
				s.calculations[c.ID] = c
			},
			want: IssueMultipleRoots,
		},
		{
			name: "fork",
			mutate: func(s *InMemoryStore) {
				c := testCalculation("CALC-one003", "INV-one", baseTime)
				c.Supersedes = "CALC-one001"
				s.calculations[c.ID] = *c
				s.chains["INV-one"] = append(s.chains["INV-one"], c.ID)
			},
			want: IssueFork,
		},
		{
			name: "status",
			mutate: func(s *InMemoryStore) {
				inv := s.investigations["INV-one"]
				inv.Status = "INGESTED"
				s.investigations[inv.ID] = inv
			},
			want: IssueStatus,
		},
		{
			name: "no readings",
			mutate: func(s *InMemoryStore) {
				delete(s.readings, "INV-two")
			},
			want: IssueNoReadings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewInMemoryStore()
			seedLedger(t, s)
			tt.mutate(s)

			errs, err := ValidateLedger(context.Background(), s)
			if err != nil {
				t.Fatalf("ValidateLedger() error = %v", err)
			}
			if got := issues(errs); got[tt.want] != 1 {
				t.Errorf("ValidateLedger() = %v, want exactly one %s", errs, tt.want)
			}
		})
	}
}

func TestValidationError_String(t *testing.T) {
	tests := []struct {
		err  ValidationError
		want string
	}{
		{ValidationError{InvestigationID: "INV-1", CalculationID: "CALC-2", RefID: "CALC-9", Issue: IssueDangling}, "dangling: CALC-2 in INV-1 references CALC-9"},
		{ValidationError{InvestigationID: "INV-1", CalculationID: "CALC-2", Issue: IssueMultipleRoots}, "multiple-roots: CALC-2 in INV-1"},
		{ValidationError{InvestigationID: "INV-1", Issue: IssueNoReadings}, "no-readings: INV-1"},
	}
	for _, tt := range tests {
		if got := tt.err.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
