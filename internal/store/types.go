// Package store persists extracted PDF lines and answers substring queries.
//
// Two backends implement the Gateway interface: SQLite FTS5 (default, WAL
// mode, pure Go driver) and Bleve v2 (single-process). All writes for a run
// flow through a single goroutine; reads may happen concurrently.
package store

import "context"

// LineRecord is one non-blank line of extracted text.
// Page and Line are 1-based. Line counts only non-blank lines within a page.
type LineRecord struct {
	FilePath string
	Page     int
	Line     int
	Content  string
}

// Match is a search hit. It carries the same coordinates as the record that
// produced it.
type Match struct {
	FilePath string `json:"file_path"`
	Page     int    `json:"page"`
	Line     int    `json:"line"`
	Content  string `json:"content"`
}

// Stats describes the current contents of a store.
type Stats struct {
	// Documents is the number of distinct file paths present.
	Documents int
	// Records is the total number of line records.
	Records int
}

// Gateway is the storage abstraction for the indexing pipeline and search.
//
// Implementations must make CommitBatch atomic: either every record in the
// batch becomes visible or none do. DistinctPaths is read once at the start
// of a run to seed deduplication.
type Gateway interface {
	// EnsureSchema creates the schema if it does not exist. Idempotent.
	EnsureSchema(ctx context.Context) error

	// DistinctPaths returns the set of file paths that have at least one
	// record in the store.
	DistinctPaths(ctx context.Context) (map[string]struct{}, error)

	// CommitBatch writes all records in a single transaction.
	CommitBatch(ctx context.Context, records []LineRecord) error

	// SearchSubstring returns records whose content contains term as a
	// case-sensitive substring. limit caps the result count; 0 means
	// unlimited.
	SearchSubstring(ctx context.Context, term string, limit int) ([]Match, error)

	// Stats reports document and record counts.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the underlying resources. Idempotent.
	Close() error
}
