package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// SQLiteStore implements Gateway using SQLite FTS5.
// WAL mode keeps readers unblocked while the single writer commits batches.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Verify interface implementation at compile time
var _ Gateway = (*SQLiteStore)(nil)

// validateSQLiteIntegrity checks if a SQLite database is valid before opening.
// Returns nil if valid, error describing corruption if not.
func validateSQLiteIntegrity(path string) error {
	// Check if database file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Database doesn't exist, will be created
	}

	// Try to open read-only for validation
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	// Quick integrity check
	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	// Verify FTS5 table exists
	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
                       WHERE type='table' AND name='pdf_lines'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("cannot query schema: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("FTS5 table 'pdf_lines' missing")
	}

	return nil
}

// NewSQLiteStore opens or creates a SQLite-backed store at path.
// If path is empty, creates an in-memory store for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	var dsn string
	if path == "" {
		// In-memory store for testing
		dsn = ":memory:"
	} else {
		// Create directory if needed
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		// Validate integrity before opening
		if validErr := validateSQLiteIntegrity(path); validErr != nil {
			slog.Warn("store_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))

			// Auto-clear corrupted store
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, fmt.Errorf("store corrupted at %s and cannot remove: %w (original error: %v)", path, removeErr, validErr)
			}
			// Also remove WAL and SHM files
			_ = os.Remove(path + "-wal")
			_ = os.Remove(path + "-shm")

			slog.Info("store_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, please reindex"))
		}

		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection: all writes already funnel through one goroutine,
	// and a second connection would see a fresh empty :memory: database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Set pragmas via statements (DSN params may be ignored by modernc.org/sqlite)
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536", // 64MB cache (negative = KB)
		"PRAGMA temp_store = MEMORY",
		"PRAGMA case_sensitive_like = ON", // Substring search is case-sensitive
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{
		db:   db,
		path: path,
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the FTS5 virtual table and supporting tables.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Schema version tracking
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	-- FTS5 virtual table holding one row per extracted line.
	-- Coordinates are UNINDEXED (stored but not tokenized).
	CREATE VIRTUAL TABLE IF NOT EXISTS pdf_lines USING fts5(
		file_path UNINDEXED,
		page_number UNINDEXED,
		line_number UNINDEXED,
		content,
		tokenize='unicode61'
	);

	-- Auxiliary table of indexed documents. FTS5 cannot answer
	-- DISTINCT file_path without a full scan.
	CREATE TABLE IF NOT EXISTS documents (
		file_path TEXT PRIMARY KEY
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// EnsureSchema creates the schema if missing. Safe to call repeatedly.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	return s.initSchema()
}

// DistinctPaths returns the set of file paths present in the store.
func (s *SQLiteStore) DistinctPaths(ctx context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT file_path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths[p] = struct{}{}
	}

	return paths, rows.Err()
}

// CommitBatch writes all records in a single transaction.
func (s *SQLiteStore) CommitBatch(ctx context.Context, records []LineRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lineStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pdf_lines(file_path, page_number, line_number, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare line statement: %w", err)
	}
	defer lineStmt.Close()

	docStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO documents(file_path) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare document statement: %w", err)
	}
	defer docStmt.Close()

	for _, rec := range records {
		if _, err := lineStmt.ExecContext(ctx, rec.FilePath, rec.Page, rec.Line, rec.Content); err != nil {
			return fmt.Errorf("failed to insert record for %s: %w", rec.FilePath, err)
		}
		if _, err := docStmt.ExecContext(ctx, rec.FilePath); err != nil {
			return fmt.Errorf("failed to track document %s: %w", rec.FilePath, err)
		}
	}

	return tx.Commit()
}

// SearchSubstring returns records whose content contains term, case-sensitively.
func (s *SQLiteStore) SearchSubstring(ctx context.Context, term string, limit int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	if strings.TrimSpace(term) == "" {
		return []Match{}, nil
	}

	// LIKE with an escape character so %, _ and \ in the term match
	// literally. case_sensitive_like is set at open.
	pattern := "%" + escapeLike(term) + "%"
	query := `
		SELECT file_path, page_number, line_number, content
		FROM pdf_lines
		WHERE content LIKE ? ESCAPE '\'
		ORDER BY file_path, page_number, line_number
	`
	args := []any{pattern}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.FilePath, &m.Page, &m.Line, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// Stats reports document and record counts.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Stats{}, fmt.Errorf("store is closed")
	}

	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&st.Documents); err != nil {
		return Stats{}, fmt.Errorf("failed to count documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pdf_lines`).Scan(&st.Records); err != nil {
		return Stats{}, fmt.Errorf("failed to count records: %w", err)
	}

	return st, nil
}

// Close closes the store.
// Forces a WAL checkpoint before closing.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil // Idempotent
	}

	s.closed = true
	if s.db != nil {
		// Checkpoint before close to ensure durability
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

// escapeLike escapes LIKE wildcards so the term matches literally.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
