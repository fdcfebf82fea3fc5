package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecords() []LineRecord {
	return []LineRecord{
		{FilePath: "/docs/a.pdf", Page: 1, Line: 1, Content: "alpha bravo"},
		{FilePath: "/docs/a.pdf", Page: 1, Line: 2, Content: "charlie delta"},
		{FilePath: "/docs/a.pdf", Page: 2, Line: 1, Content: "echo alpha"},
		{FilePath: "/docs/b.pdf", Page: 1, Line: 1, Content: "Alpha uppercase"},
	}
}

func TestSQLiteStore_CommitBatchAndSearch(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CommitBatch(ctx, sampleRecords()))

	matches, err := s.SearchSubstring(ctx, "alpha", 0)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, Match{FilePath: "/docs/a.pdf", Page: 1, Line: 1, Content: "alpha bravo"}, matches[0])
	assert.Equal(t, Match{FilePath: "/docs/a.pdf", Page: 2, Line: 1, Content: "echo alpha"}, matches[1])
}

func TestSQLiteStore_SearchIsCaseSensitive(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CommitBatch(ctx, sampleRecords()))

	matches, err := s.SearchSubstring(ctx, "Alpha", 0)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "/docs/b.pdf", matches[0].FilePath)
}

func TestSQLiteStore_SearchEscapesWildcards(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	records := []LineRecord{
		{FilePath: "/docs/c.pdf", Page: 1, Line: 1, Content: "discount of 100% today"},
		{FilePath: "/docs/c.pdf", Page: 1, Line: 2, Content: "value 1009 listed"},
		{FilePath: "/docs/c.pdf", Page: 1, Line: 3, Content: "snake_case identifier"},
		{FilePath: "/docs/c.pdf", Page: 1, Line: 4, Content: "snakeXcase identifier"},
	}
	require.NoError(t, s.CommitBatch(ctx, records))

	// "%" must match literally, not as a wildcard
	matches, err := s.SearchSubstring(ctx, "100%", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "discount of 100% today", matches[0].Content)

	// "_" must match literally, not any single character
	matches, err = s.SearchSubstring(ctx, "snake_case", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "snake_case identifier", matches[0].Content)
}

func TestSQLiteStore_SearchLimit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CommitBatch(ctx, sampleRecords()))

	matches, err := s.SearchSubstring(ctx, "alpha", 1)
	require.NoError(t, err)

	assert.Len(t, matches, 1)
}

func TestSQLiteStore_EmptyTermReturnsNoMatches(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CommitBatch(ctx, sampleRecords()))

	for _, term := range []string{"", "   "} {
		matches, err := s.SearchSubstring(ctx, term, 0)
		require.NoError(t, err)
		assert.Empty(t, matches)
	}
}

func TestSQLiteStore_DistinctPaths(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	paths, err := s.DistinctPaths(ctx)
	require.NoError(t, err)
	assert.Empty(t, paths)

	require.NoError(t, s.CommitBatch(ctx, sampleRecords()))

	paths, err = s.DistinctPaths(ctx)
	require.NoError(t, err)

	assert.Len(t, paths, 2)
	assert.Contains(t, paths, "/docs/a.pdf")
	assert.Contains(t, paths, "/docs/b.pdf")
}

func TestSQLiteStore_Stats(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CommitBatch(ctx, sampleRecords()))

	st, err := s.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, st.Documents)
	assert.Equal(t, 4, st.Records)
}

func TestSQLiteStore_EmptyBatchIsNoop(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CommitBatch(ctx, nil))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Records)
}

func TestSQLiteStore_EnsureSchemaIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))
}

func TestSQLiteStore_CloseIsIdempotent(t *testing.T) {
	s, err := NewSQLiteStore("")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestSQLiteStore_ClosedStoreRejectsOperations(t *testing.T) {
	s, err := NewSQLiteStore("")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.Error(t, s.CommitBatch(ctx, sampleRecords()))
	_, err = s.SearchSubstring(ctx, "alpha", 0)
	assert.Error(t, err)
	_, err = s.DistinctPaths(ctx)
	assert.Error(t, err)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdf_search.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CommitBatch(ctx, sampleRecords()))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	paths, err := reopened.DistinctPaths(ctx)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	matches, err := reopened.SearchSubstring(ctx, "charlie", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "charlie delta", matches[0].Content)
}

func TestSQLiteStore_CorruptedFileIsCleared(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdf_search.db")

	// Not a SQLite database at all
	require.NoError(t, os.WriteFile(path, []byte("this is not a database"), 0o644))

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	// Fresh, usable store after auto-clear
	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, st.Records)
}
