// Package index implements the concurrent indexing pipeline: scan,
// dedup against prior runs, a bounded pool of extraction workers, and a
// single batching writer.
package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	sifterr "github.com/pdfsift/pdfsift/internal/errors"
	"github.com/pdfsift/pdfsift/internal/extract"
	"github.com/pdfsift/pdfsift/internal/output"
	"github.com/pdfsift/pdfsift/internal/scanner"
	"github.com/pdfsift/pdfsift/internal/store"
)

// RunnerConfig configures an indexing run.
type RunnerConfig struct {
	// RootDir is the directory tree to index.
	RootDir string

	// Suffix is the document filename suffix (default ".pdf").
	Suffix string

	// Workers is the number of concurrent extraction workers (default 6).
	Workers int

	// QueueSize is the write queue capacity (default 1024).
	QueueSize int

	// BatchSize is the maximum records per committed transaction (default 500).
	BatchSize int

	// FollowSymlinks enables following symbolic links during the scan.
	FollowSymlinks bool
}

// RunnerResult contains the outcome of an indexing run.
type RunnerResult struct {
	// Found is the number of candidate documents discovered.
	Found int

	// AlreadyIndexed is the number of candidates skipped by deduplication.
	AlreadyIndexed int

	// Indexed is the number of documents fully extracted this run.
	Indexed int

	// Failed is the number of documents dropped by extraction failures.
	Failed int

	// Records is the number of line records committed.
	Records int

	// Dropped is the number of records lost to failed commits.
	Dropped int

	// Duration is the total run time.
	Duration time.Duration

	// ScanErr is the traversal error, if any. A failed scan yields an
	// empty (or partial) candidate set; the run itself still completes.
	ScanErr error
}

// RunnerDependencies contains the injected dependencies for Runner.
type RunnerDependencies struct {
	// Scanner discovers candidate documents (required).
	Scanner *scanner.Scanner

	// Opener opens documents for extraction (required).
	Opener extract.Opener

	// Gateway receives committed records (required).
	Gateway store.Gateway

	// Output receives per-file progress lines (optional; discarded when nil).
	Output *output.Writer
}

// Runner executes indexing runs.
// It accepts injected dependencies for testability.
type Runner struct {
	scanner *scanner.Scanner
	opener  extract.Opener
	gateway store.Gateway
	out     *output.Writer
}

// NewRunner creates a Runner with injected dependencies.
func NewRunner(deps RunnerDependencies) (*Runner, error) {
	if deps.Scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	if deps.Opener == nil {
		return nil, fmt.Errorf("opener is required")
	}
	if deps.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	out := deps.Output
	if out == nil {
		out = output.NewPlain(io.Discard)
	}
	return &Runner{
		scanner: deps.Scanner,
		opener:  deps.Opener,
		gateway: deps.Gateway,
		out:     out,
	}, nil
}

// Run indexes every new document under cfg.RootDir.
//
// Completion protocol: the write queue is closed only after every worker
// has been joined, and the writer flushes its final batch when it observes
// the close. Cancellation drains the same way, so partially received
// batches are still committed.
func (r *Runner) Run(ctx context.Context, cfg RunnerConfig) (*RunnerResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 6
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}

	slog.Info("index_started",
		slog.String("run_id", runID),
		slog.String("path", cfg.RootDir),
		slog.Int("workers", workers))

	result := &RunnerResult{}

	if err := r.gateway.EnsureSchema(ctx); err != nil {
		return nil, sifterr.Wrap(sifterr.ErrCodeStoreSchema, err)
	}

	// Stage 1: discover candidates. A scan failure degrades to an empty
	// candidate set rather than aborting the run.
	candidates := r.scanCandidates(ctx, cfg, runID, result)
	result.Found = len(candidates)

	// Stage 2: dedup against prior runs. The indexed set is read once;
	// documents indexed mid-run are intentionally not revisited.
	indexed, err := r.gateway.DistinctPaths(ctx)
	if err != nil {
		return nil, sifterr.Wrap(sifterr.ErrCodeStoreQuery, err)
	}
	toProcess, alreadyIndexed := Partition(candidates, indexed)
	result.AlreadyIndexed = len(alreadyIndexed)

	for _, p := range alreadyIndexed {
		r.out.Plainf("Skipping (already indexed): %s", p)
	}

	slog.Info("index_dedup_complete",
		slog.String("run_id", runID),
		slog.Int("found", result.Found),
		slog.Int("to_process", len(toProcess)),
		slog.Int("already_indexed", result.AlreadyIndexed))

	// Stage 3: extraction pool feeding the bounded write queue, with the
	// single writer committing batches on the other side.
	queue := make(chan store.LineRecord, queueSize)
	writer := NewBatchWriter(r.gateway, cfg.BatchSize)

	writerDone := make(chan WriterStats, 1)
	go func() {
		writerDone <- writer.Run(ctx, queue)
	}()

	paths := make(chan string, len(toProcess))
	for _, p := range toProcess {
		paths <- p
	}
	close(paths)

	var indexedCount, failedCount atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for path := range paths {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				r.out.Plainf("Indexing: %s", path)

				records, err := r.extractDocument(path)
				if err != nil {
					failedCount.Add(1)
					wrapped := sifterr.Wrap(sifterr.ErrCodeExtractOpen, err)
					r.out.Warningf("Skipping (extraction failed): %s", path)
					slog.Warn("document_skipped",
						slog.String("run_id", runID),
						slog.String("path", path),
						slog.String("error_code", sifterr.GetCode(wrapped)),
						slog.String("error", err.Error()))
					continue
				}

				// The whole document is buffered before anything is
				// enqueued, so a store never holds a partial document.
				for _, rec := range records {
					select {
					case queue <- rec:
					case <-gctx.Done():
						return gctx.Err()
					}
				}

				indexedCount.Add(1)
				slog.Debug("document_indexed",
					slog.String("run_id", runID),
					slog.String("path", path),
					slog.Int("records", len(records)))
			}
			return nil
		})
	}

	runErr := g.Wait()

	// All producers joined: closing the queue is the completion signal.
	close(queue)
	ws := <-writerDone

	result.Indexed = int(indexedCount.Load())
	result.Failed = int(failedCount.Load())
	result.Records = ws.Written
	result.Dropped = ws.Dropped
	result.Duration = time.Since(start)

	slog.Info("index_complete",
		slog.String("run_id", runID),
		slog.Int("found", result.Found),
		slog.Int("already_indexed", result.AlreadyIndexed),
		slog.Int("indexed", result.Indexed),
		slog.Int("failed", result.Failed),
		slog.Int("records", result.Records),
		slog.Int("records_dropped", result.Dropped),
		slog.Int("batches", ws.Batches),
		slog.Int64("duration_ms", result.Duration.Milliseconds()))

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return result, runErr
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, nil
}

// scanCandidates walks the tree and collects candidate paths.
func (r *Runner) scanCandidates(ctx context.Context, cfg RunnerConfig, runID string, result *RunnerResult) []string {
	results, err := r.scanner.Scan(ctx, &scanner.ScanOptions{
		RootDir:        cfg.RootDir,
		Suffix:         cfg.Suffix,
		FollowSymlinks: cfg.FollowSymlinks,
	})
	if err != nil {
		se := sifterr.Wrap(sifterr.ErrCodeScanRoot, err)
		slog.Warn("scan_failed",
			slog.String("run_id", runID),
			slog.String("path", cfg.RootDir),
			slog.String("error_code", sifterr.GetCode(se)),
			slog.String("error", err.Error()))
		result.ScanErr = se
		return nil
	}

	paths, walkErr := scanner.CollectPaths(results)
	if walkErr != nil {
		se := sifterr.Wrap(sifterr.ErrCodeScanRoot, walkErr)
		slog.Warn("scan_incomplete",
			slog.String("run_id", runID),
			slog.String("path", cfg.RootDir),
			slog.String("error_code", sifterr.GetCode(se)),
			slog.String("error", walkErr.Error()))
		result.ScanErr = se
	}
	return paths
}

// extractDocument opens one document and builds its records.
func (r *Runner) extractDocument(path string) ([]store.LineRecord, error) {
	doc, err := r.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return DocumentRecords(path, doc)
}
