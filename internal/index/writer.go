package index

import (
	"context"
	"log/slog"

	sifterr "github.com/pdfsift/pdfsift/internal/errors"
	"github.com/pdfsift/pdfsift/internal/store"
)

// WriterStats summarizes a BatchWriter run.
type WriterStats struct {
	// Written is the number of records committed.
	Written int
	// Batches is the number of committed transactions.
	Batches int
	// Dropped is the number of records lost to failed commits.
	Dropped int
}

// BatchWriter is the single consumer of the write queue. It accumulates
// records and commits them in batches: when the batch reaches maxBatch,
// when the queue is observed empty, and finally when the queue closes.
//
// A commit failure drops only that batch; the writer logs it and keeps
// consuming.
type BatchWriter struct {
	gateway  store.Gateway
	maxBatch int
}

// NewBatchWriter creates a BatchWriter committing to gateway.
func NewBatchWriter(gateway store.Gateway, maxBatch int) *BatchWriter {
	if maxBatch <= 0 {
		maxBatch = 500
	}
	return &BatchWriter{gateway: gateway, maxBatch: maxBatch}
}

// Run consumes records until the channel closes or ctx is cancelled.
// The pending batch is flushed in both cases, so every received record is
// either committed or counted as dropped.
func (w *BatchWriter) Run(ctx context.Context, records <-chan store.LineRecord) WriterStats {
	var stats WriterStats
	batch := make([]store.LineRecord, 0, w.maxBatch)

	// Commits survive cancellation: records already received are flushed
	// even when the run is being torn down.
	commitCtx := context.WithoutCancel(ctx)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.gateway.CommitBatch(commitCtx, batch); err != nil {
			se := sifterr.Wrap(sifterr.ErrCodeStoreWrite, err)
			slog.Warn("batch_commit_failed",
				slog.String("error_code", sifterr.GetCode(se)),
				slog.Int("records_dropped", len(batch)),
				slog.String("error", err.Error()))
			stats.Dropped += len(batch)
		} else {
			stats.Written += len(batch)
			stats.Batches++
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec, ok := <-records:
			if !ok {
				// Queue closed: every producer is done
				flush()
				return stats
			}
			batch = append(batch, rec)

			// Flush when the queue drains so readers see progress during
			// slow extraction, or when the batch is full.
			if len(records) == 0 || len(batch) >= w.maxBatch {
				flush()
			}

		case <-ctx.Done():
			flush()
			return stats
		}
	}
}
