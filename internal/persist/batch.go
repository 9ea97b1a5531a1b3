package persist

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// BatchWriter assigns ids to measured rows and writes them in batches.
// It is safe for concurrent use.
type BatchWriter struct {
	store contract.MetricsStore
	size  int

	nextID  atomic.Int64
	mu      sync.Mutex
	pending []schema.MetricRow
	flushes int
	written int64
}

// NewBatchWriter creates a writer that flushes every size rows and assigns
// ids starting at firstID.
func NewBatchWriter(store contract.MetricsStore, size int, firstID int64) *BatchWriter {
	if size < 1 {
		size = contract.DefaultBatchSize
	}
	w := &BatchWriter{store: store, size: size, pending: make([]schema.MetricRow, 0, size)}
	w.nextID.Store(firstID)
	return w
}

// Add queues a row for the pair and flushes when the batch is full.
// It returns the id assigned to the row.
func (w *BatchWriter) Add(ctx context.Context, fileID, commitID int64, m schema.Measures) (int64, error) {
	id := w.nextID.Add(1) - 1

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, schema.MetricRow{ID: id, FileID: fileID, CommitID: commitID, Measures: m})
	if len(w.pending) >= w.size {
		return id, w.flushLocked(ctx)
	}
	return id, nil
}

// Flush writes every pending row.
func (w *BatchWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked(ctx)
}

func (w *BatchWriter) flushLocked(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	if err := w.store.InsertMetrics(ctx, w.pending); err != nil {
		return err
	}
	w.flushes++
	w.written += int64(len(w.pending))
	w.pending = make([]schema.MetricRow, 0, w.size)
	return nil
}

// Pending returns the number of rows waiting for a flush.
func (w *BatchWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Flushes returns the number of successful flushes.
func (w *BatchWriter) Flushes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushes
}

// Written returns the number of rows committed so far.
func (w *BatchWriter) Written() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}
