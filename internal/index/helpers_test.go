package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdfsift/pdfsift/internal/extract"
	"github.com/pdfsift/pdfsift/internal/store"
)

// fakeDocument is an in-memory extract.Document. Each element of pages is
// the raw text of one page.
type fakeDocument struct {
	pages   []string
	pageErr map[int]error
	closed  bool
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) PageText(page int) (string, error) {
	if err := d.pageErr[page]; err != nil {
		return "", err
	}
	if page < 1 || page > len(d.pages) {
		return "", fmt.Errorf("page %d out of range", page)
	}
	return d.pages[page-1], nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

// fakeOpener serves fakeDocuments keyed by the base name of the path.
type fakeOpener struct {
	docs    map[string]*fakeDocument
	openErr map[string]error
}

func (o *fakeOpener) Open(path string) (extract.Document, error) {
	key := baseName(path)
	if err := o.openErr[key]; err != nil {
		return nil, err
	}
	doc, ok := o.docs[key]
	if !ok {
		return nil, fmt.Errorf("no fake document for %s", path)
	}
	return doc, nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

// fakeGateway is an in-memory store.Gateway recording committed batches.
type fakeGateway struct {
	mu        sync.Mutex
	batches   [][]store.LineRecord
	paths     map[string]struct{}
	commitErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{paths: make(map[string]struct{})}
}

func (g *fakeGateway) EnsureSchema(ctx context.Context) error { return nil }

func (g *fakeGateway) DistinctPaths(ctx context.Context) (map[string]struct{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]struct{}, len(g.paths))
	for p := range g.paths {
		out[p] = struct{}{}
	}
	return out, nil
}

func (g *fakeGateway) CommitBatch(ctx context.Context, records []store.LineRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.commitErr != nil {
		return g.commitErr
	}
	batch := make([]store.LineRecord, len(records))
	copy(batch, records)
	g.batches = append(g.batches, batch)
	for _, r := range records {
		g.paths[r.FilePath] = struct{}{}
	}
	return nil
}

func (g *fakeGateway) SearchSubstring(ctx context.Context, term string, limit int) ([]store.Match, error) {
	return nil, nil
}

func (g *fakeGateway) Stats(ctx context.Context) (store.Stats, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return store.Stats{Documents: len(g.paths), Records: g.recordCountLocked()}, nil
}

func (g *fakeGateway) Close() error { return nil }

func (g *fakeGateway) recordCountLocked() int {
	n := 0
	for _, b := range g.batches {
		n += len(b)
	}
	return n
}

func (g *fakeGateway) allRecords() []store.LineRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []store.LineRecord
	for _, b := range g.batches {
		out = append(out, b...)
	}
	return out
}

func (g *fakeGateway) batchCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.batches)
}
