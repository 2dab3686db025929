package store

import (
	"path/filepath"
	"testing"
)

func TestDataPath(t *testing.T) {
	tests := []struct {
		name        string
		projectRoot string
		want        string
	}{
		{
			name:        "unix path",
			projectRoot: "/home/user/project",
			want:        "/home/user/project/.potency",
		},
		{
			name:        "relative path",
			projectRoot: ".",
			want:        ".potency",
		},
		{
			name:        "nested project",
			projectRoot: "/var/qa/deep/nested/path",
			want:        "/var/qa/deep/nested/path/.potency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DataPath(tt.projectRoot)
			// Use filepath.ToSlash for cross-platform comparison
			gotNorm := filepath.ToSlash(got)
			wantNorm := filepath.ToSlash(tt.want)
			if gotNorm != wantNorm {
				t.Errorf("DataPath() = %v, want %v", gotNorm, wantNorm)
			}
		})
	}
}

func TestDBPath(t *testing.T) {
	got := filepath.ToSlash(DBPath("/srv/qa"))
	if got != "/srv/qa/.potency/potency.db" {
		t.Errorf("DBPath() = %v, want /srv/qa/.potency/potency.db", got)
	}
}
