package persist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/revmetrics/schema"
)

func TestBatchWriter_FlushBoundary(t *testing.T) {
	ctx := context.Background()
	store := &MockMetricsStore{}
	var sizes []int
	store.On("InsertMetrics", ctx, mock.Anything).Run(func(args mock.Arguments) {
		sizes = append(sizes, len(args.Get(1).([]schema.MetricRow)))
	}).Return(nil)

	w := NewBatchWriter(store, 100, 1)
	for i := range 250 {
		id, err := w.Add(ctx, int64(i), 1, schema.Measures{})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}
	assert.Equal(t, []int{100, 100}, sizes)
	assert.Equal(t, 50, w.Pending())

	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, []int{100, 100, 50}, sizes)
	assert.Equal(t, 3, w.Flushes())
	assert.Equal(t, int64(250), w.Written())
	assert.Equal(t, 0, w.Pending())

	// Nothing pending: no extra flush
	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, 3, w.Flushes())
}

func TestBatchWriter_ExactBatch(t *testing.T) {
	ctx := context.Background()
	store := &MockMetricsStore{}
	store.On("InsertMetrics", ctx, mock.Anything).Return(nil)

	w := NewBatchWriter(store, 100, 1)
	for i := range 100 {
		_, err := w.Add(ctx, int64(i), 1, schema.Measures{})
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush(ctx))
	store.AssertNumberOfCalls(t, "InsertMetrics", 1)
}

func TestBatchWriter_IDsContinueFromSeed(t *testing.T) {
	ctx := context.Background()
	store := &MockMetricsStore{}
	store.On("InsertMetrics", ctx, mock.Anything).Return(nil)

	w := NewBatchWriter(store, 10, 42)
	_, err := w.Add(ctx, 3, 1, schema.Measures{})
	require.NoError(t, err)
	_, err = w.Add(ctx, 3, 2, schema.Measures{})
	require.NoError(t, err)
	require.NoError(t, w.Flush(ctx))

	rows := store.Calls[0].Arguments.Get(1).([]schema.MetricRow)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(42), rows[0].ID)
	assert.Equal(t, int64(43), rows[1].ID)
	assert.Equal(t, int64(2), rows[1].CommitID)
}

func TestBatchWriter_FlushErrorKeepsRows(t *testing.T) {
	ctx := context.Background()
	store := &MockMetricsStore{}
	store.On("InsertMetrics", ctx, mock.Anything).Return(errors.New("connection reset")).Once()
	store.On("InsertMetrics", ctx, mock.Anything).Return(nil).Once()

	w := NewBatchWriter(store, 10, 1)
	_, err := w.Add(ctx, 1, 1, schema.Measures{})
	require.NoError(t, err)

	assert.Error(t, w.Flush(ctx))
	assert.Equal(t, 1, w.Pending())
	assert.NoError(t, w.Flush(ctx))
	assert.Equal(t, 0, w.Pending())
}

func TestBatchWriter_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := &MockMetricsStore{}
	store.On("InsertMetrics", ctx, mock.Anything).Return(nil)

	w := NewBatchWriter(store, 7, 1)
	var wg sync.WaitGroup
	for worker := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				_, _ = w.Add(ctx, int64(worker), int64(i), schema.Measures{})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Flush(ctx))

	seen := make(map[int64]struct{})
	for _, call := range store.Calls {
		for _, row := range call.Arguments.Get(1).([]schema.MetricRow) {
			seen[row.ID] = struct{}{}
		}
	}
	assert.Len(t, seen, 100)
	assert.Equal(t, int64(100), w.Written())
}
