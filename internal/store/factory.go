package store

import (
	"fmt"
	"os"
	"strings"
)

// Backend represents the store backend type.
type Backend string

const (
	// BackendSQLite uses SQLite FTS5 (default).
	// WAL mode keeps the database usable by concurrent readers.
	BackendSQLite Backend = "sqlite"

	// BackendBleve uses Bleve v2.
	// BoltDB takes an exclusive file lock - single process only.
	BackendBleve Backend = "bleve"
)

// Open creates a Gateway using the specified backend.
// For SQLite the path is the database file; for Bleve it is the index
// directory (a ".bleve" suffix is added when missing so the two backends
// never collide on the same path).
//
// If path is empty, creates an in-memory store for testing.
func Open(path string, backend string) (Gateway, error) {
	switch backend {
	case string(BackendSQLite), "":
		return NewSQLiteStore(path)

	case string(BackendBleve):
		if path != "" && !strings.HasSuffix(path, ".bleve") {
			path += ".bleve"
		}
		return NewBleveStore(path)

	default:
		return nil, fmt.Errorf("unknown store backend: %s (valid options: sqlite, bleve)", backend)
	}
}

// DetectBackend detects which backend an existing store uses based on what
// exists at path. Returns an empty string if no store exists.
func DetectBackend(path string) Backend {
	if fileExists(path) {
		return BackendSQLite
	}

	blevePath := path
	if !strings.HasSuffix(blevePath, ".bleve") {
		blevePath += ".bleve"
	}
	if dirExists(blevePath) {
		return BackendBleve
	}

	return ""
}

// fileExists checks if a file exists at the given path.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// dirExists checks if a directory exists at the given path.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
