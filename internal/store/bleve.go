package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
)

// BleveStore implements Gateway using Bleve v2.
// BoltDB holds an exclusive file lock, so this backend is single-process.
type BleveStore struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// Verify interface implementation at compile time
var _ Gateway = (*BleveStore)(nil)

// bleveLine is the document structure for Bleve indexing.
type bleveLine struct {
	FilePath string  `json:"file_path"`
	Page     float64 `json:"page_number"`
	Line     float64 `json:"line_number"`
	Content  string  `json:"content"`
}

// validateBleveIntegrity checks if a Bleve index is valid before opening.
// Returns nil if valid, error describing corruption if not.
func validateBleveIntegrity(path string) error {
	// Check if index directory exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Index doesn't exist, will be created
	}

	// Check 1: index_meta.json exists and is non-empty
	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing (corrupted index)")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty (corrupted)")
	}

	// Check 2: Validate JSON is parseable
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}

	return nil
}

// isCorruptionError checks if an error indicates Bleve index corruption.
func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unexpected end of JSON") ||
		strings.Contains(errStr, "error parsing mapping JSON") ||
		strings.Contains(errStr, "failed to load segment") ||
		strings.Contains(errStr, "error opening bolt") ||
		strings.Contains(errStr, "no such file or directory") ||
		err == bleve.ErrorIndexMetaCorrupt
}

// NewBleveStore opens or creates a Bleve-backed store at path.
// If path is empty, creates an in-memory store for testing.
// Validates index integrity before opening and auto-recovers from corruption.
func NewBleveStore(path string) (*BleveStore, error) {
	indexMapping := createLineMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		// In-memory store for testing
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		// Create directory if needed
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		// Validate integrity before opening
		if validErr := validateBleveIntegrity(path); validErr != nil {
			slog.Warn("store_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))

			// Auto-clear corrupted index
			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, fmt.Errorf("store corrupted at %s and cannot remove: %w (original error: %v)", path, removeErr, validErr)
			}
			slog.Info("store_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, please reindex"))
		}

		// Try to open existing index first
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		} else if err != nil && isCorruptionError(err) {
			slog.Warn("store_open_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))

			// Clear and recreate
			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, fmt.Errorf("store corrupted, cannot clear: %w (original: %v)", removeErr, err)
			}
			slog.Info("store_cleared",
				slog.String("path", path),
				slog.String("reason", "open failed with corruption, please reindex"))

			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	return &BleveStore{
		index: idx,
		path:  path,
	}, nil
}

// createLineMapping builds the index mapping for line records.
// The keyword analyzer stores each line as a single case-preserving term,
// which makes wildcard substring queries exact and case-sensitive.
func createLineMapping() *mapping.IndexMappingImpl {
	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = keyword.Name
	contentField.Store = true

	pathField := bleve.NewTextFieldMapping()
	pathField.Analyzer = keyword.Name
	pathField.Store = true

	pageField := bleve.NewNumericFieldMapping()
	pageField.Store = true

	lineField := bleve.NewNumericFieldMapping()
	lineField.Store = true

	lineDoc := bleve.NewDocumentMapping()
	lineDoc.AddFieldMappingsAt("content", contentField)
	lineDoc.AddFieldMappingsAt("file_path", pathField)
	lineDoc.AddFieldMappingsAt("page_number", pageField)
	lineDoc.AddFieldMappingsAt("line_number", lineField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = lineDoc
	indexMapping.DefaultAnalyzer = keyword.Name

	return indexMapping
}

// EnsureSchema is a no-op for Bleve: the mapping is fixed at creation.
func (b *BleveStore) EnsureSchema(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

// DistinctPaths returns the set of file paths present in the store.
func (b *BleveStore) DistinctPaths(ctx context.Context) (map[string]struct{}, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	docCount, err := b.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	paths := make(map[string]struct{})
	if docCount == 0 {
		return paths, nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(docCount)
	req.Fields = []string{"file_path"}

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list paths: %w", err)
	}

	for _, hit := range result.Hits {
		if p, ok := hit.Fields["file_path"].(string); ok {
			paths[p] = struct{}{}
		}
	}

	return paths, nil
}

// CommitBatch writes all records in a single Bleve batch.
func (b *BleveStore) CommitBatch(ctx context.Context, records []LineRecord) error {
	if len(records) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("store is closed")
	}

	batch := b.index.NewBatch()
	for _, rec := range records {
		doc := bleveLine{
			FilePath: rec.FilePath,
			Page:     float64(rec.Page),
			Line:     float64(rec.Line),
			Content:  rec.Content,
		}
		if err := batch.Index(uuid.NewString(), doc); err != nil {
			return fmt.Errorf("failed to index record for %s: %w", rec.FilePath, err)
		}
	}

	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	return nil
}

// SearchSubstring returns records whose content contains term, case-sensitively.
func (b *BleveStore) SearchSubstring(ctx context.Context, term string, limit int) ([]Match, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	if strings.TrimSpace(term) == "" {
		return []Match{}, nil
	}

	// Wildcard queries are not analyzed, so case is preserved on both
	// sides. Wildcard metacharacters in the term are escaped to match
	// literally.
	query := bleve.NewWildcardQuery("*" + escapeWildcard(term) + "*")
	query.SetField("content")

	size := limit
	if size <= 0 {
		docCount, err := b.index.DocCount()
		if err != nil {
			return nil, fmt.Errorf("failed to count documents: %w", err)
		}
		size = int(docCount)
	}
	if size == 0 {
		return []Match{}, nil
	}

	req := bleve.NewSearchRequest(query)
	req.Size = size
	req.Fields = []string{"file_path", "page_number", "line_number", "content"}
	req.SortBy([]string{"file_path", "page_number", "line_number"})

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]Match, 0, len(result.Hits))
	for _, hit := range result.Hits {
		m := Match{}
		if p, ok := hit.Fields["file_path"].(string); ok {
			m.FilePath = p
		}
		if n, ok := hit.Fields["page_number"].(float64); ok {
			m.Page = int(n)
		}
		if n, ok := hit.Fields["line_number"].(float64); ok {
			m.Line = int(n)
		}
		if c, ok := hit.Fields["content"].(string); ok {
			m.Content = c
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// Stats reports document and record counts.
func (b *BleveStore) Stats(ctx context.Context) (Stats, error) {
	paths, err := b.DistinctPaths(ctx)
	if err != nil {
		return Stats{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return Stats{}, fmt.Errorf("store is closed")
	}

	docCount, err := b.index.DocCount()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count documents: %w", err)
	}

	return Stats{
		Documents: len(paths),
		Records:   int(docCount),
	}, nil
}

// Close closes the store.
func (b *BleveStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil // Idempotent
	}

	b.closed = true
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

// escapeWildcard escapes wildcard metacharacters so the term matches literally.
func escapeWildcard(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(term)
}
