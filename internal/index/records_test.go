package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfsift/pdfsift/internal/store"
)

func TestDocumentRecords(t *testing.T) {
	doc := &fakeDocument{pages: []string{
		"alpha line\nbravo line",
		"charlie line",
	}}

	records, err := DocumentRecords("/docs/a.pdf", doc)
	require.NoError(t, err)

	want := []store.LineRecord{
		{FilePath: "/docs/a.pdf", Page: 1, Line: 1, Content: "alpha line"},
		{FilePath: "/docs/a.pdf", Page: 1, Line: 2, Content: "bravo line"},
		{FilePath: "/docs/a.pdf", Page: 2, Line: 1, Content: "charlie line"},
	}
	assert.Equal(t, want, records)
}

func TestDocumentRecords_BlankLinesDropped(t *testing.T) {
	doc := &fakeDocument{pages: []string{
		"first\n\n   \n\tsecond\t\n\n",
	}}

	records, err := DocumentRecords("/docs/a.pdf", doc)
	require.NoError(t, err)

	// Blank lines never consume a line number: content is trimmed and
	// survivors are renumbered contiguously.
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Content)
	assert.Equal(t, 1, records[0].Line)
	assert.Equal(t, "second", records[1].Content)
	assert.Equal(t, 2, records[1].Line)
}

func TestDocumentRecords_LineNumbersResetPerPage(t *testing.T) {
	doc := &fakeDocument{pages: []string{
		"p1l1\np1l2\np1l3",
		"p2l1",
	}}

	records, err := DocumentRecords("/docs/a.pdf", doc)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, 2, records[3].Page)
	assert.Equal(t, 1, records[3].Line)
}

func TestDocumentRecords_EmptyDocument(t *testing.T) {
	records, err := DocumentRecords("/docs/empty.pdf", &fakeDocument{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDocumentRecords_PageFailureFailsDocument(t *testing.T) {
	pageErr := errors.New("content stream is corrupt")
	doc := &fakeDocument{
		pages:   []string{"fine text", "never read"},
		pageErr: map[int]error{2: pageErr},
	}

	records, err := DocumentRecords("/docs/bad.pdf", doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, pageErr)
	assert.Nil(t, records, "a failed document contributes no records at all")
}
