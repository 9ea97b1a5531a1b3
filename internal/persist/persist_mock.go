package persist

import (
	"context"
	"time"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
	"github.com/stretchr/testify/mock"
)

// MockMetricsStore is a mock implementation of MetricsStore for testing.
type MockMetricsStore struct {
	mock.Mock
}

var _ contract.MetricsStore = &MockMetricsStore{} // Compile-time check

// CreateTable implements the MetricsStore interface.
func (m *MockMetricsStore) CreateTable(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// NextID implements the MetricsStore interface.
func (m *MockMetricsStore) NextID(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

// MeasuredPairs implements the MetricsStore interface.
func (m *MockMetricsStore) MeasuredPairs(ctx context.Context) (map[schema.MeasuredKey]struct{}, error) {
	ret := m.Called(ctx)
	pairs, _ := ret.Get(0).(map[schema.MeasuredKey]struct{})
	return pairs, ret.Error(1)
}

// InsertMetrics implements the MetricsStore interface.
func (m *MockMetricsStore) InsertMetrics(ctx context.Context, rows []schema.MetricRow) error {
	// Copy so later batches do not alias recorded arguments
	batch := make([]schema.MetricRow, len(rows))
	copy(batch, rows)
	return m.Called(ctx, batch).Error(0)
}

// ListMetrics implements the MetricsStore interface.
func (m *MockMetricsStore) ListMetrics(ctx context.Context, fileID int64, limit int) ([]schema.MetricRow, error) {
	ret := m.Called(ctx, fileID, limit)
	rows, _ := ret.Get(0).([]schema.MetricRow)
	return rows, ret.Error(1)
}

// GetStatus implements the MetricsStore interface.
func (m *MockMetricsStore) GetStatus(ctx context.Context) (schema.MetricsStatus, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(schema.MetricsStatus), ret.Error(1)
}

// Close implements the MetricsStore interface.
func (m *MockMetricsStore) Close() error {
	return m.Called().Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(ctx context.Context, repositoryURI string, startedAt time.Time) (int64, error) {
	ret := m.Called(ctx, repositoryURI, startedAt)
	return ret.Get(0).(int64), ret.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(ctx context.Context, runID int64, endedAt time.Time, summary schema.RunSummary, status schema.RunStatus) error {
	return m.Called(ctx, runID, endedAt, summary, status).Error(0)
}

// ListRuns implements the RunStore interface.
func (m *MockRunStore) ListRuns(ctx context.Context, limit int) ([]schema.RunRecord, error) {
	ret := m.Called(ctx, limit)
	runs, _ := ret.Get(0).([]schema.RunRecord)
	return runs, ret.Error(1)
}
