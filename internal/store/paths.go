package store

import (
	"path/filepath"

	"github.com/nvandessel/potency/internal/constants"
)

// DBFileName is the name of the SQLite ledger inside the data directory.
const DBFileName = "potency.db"

// DataPath returns the path to the .potency data directory for the given
// project root.
func DataPath(projectRoot string) string {
	return filepath.Join(projectRoot, constants.DataDirName)
}

// DBPath returns the path to the SQLite ledger for the given project root.
func DBPath(projectRoot string) string {
	return filepath.Join(DataPath(projectRoot), DBFileName)
}
