package contract

import (
	"context"

	"github.com/huangsam/revmetrics/schema"
	"github.com/stretchr/testify/mock"
)

// MockToolRunner is a mock implementation of ToolRunner for testing.
type MockToolRunner struct {
	mock.Mock
}

var _ ToolRunner = &MockToolRunner{} // Compile-time check

// LookPath implements the ToolRunner interface.
func (m *MockToolRunner) LookPath(name string) (string, error) {
	ret := m.Called(name)
	return ret.String(0), ret.Error(1)
}

// Run implements the ToolRunner interface.
func (m *MockToolRunner) Run(ctx context.Context, path string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, path}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// MockRepository is a mock implementation of Repository for testing.
type MockRepository struct {
	mock.Mock
}

var _ Repository = &MockRepository{} // Compile-time check

// Type implements the Repository interface.
func (m *MockRepository) Type() schema.VCSType {
	ret := m.Called()
	return ret.Get(0).(schema.VCSType)
}

// URI implements the Repository interface.
func (m *MockRepository) URI() string {
	return m.Called().String(0)
}

// Checkout implements the Repository interface.
func (m *MockRepository) Checkout(ctx context.Context, path, dest, rev string) error {
	return m.Called(ctx, path, dest, rev).Error(0)
}

// Update implements the Repository interface.
func (m *MockRepository) Update(ctx context.Context, dest, rev string) error {
	return m.Called(ctx, dest, rev).Error(0)
}

// LastRevision implements the Repository interface.
func (m *MockRepository) LastRevision(ctx context.Context, dest string) (string, error) {
	ret := m.Called(ctx, dest)
	return ret.String(0), ret.Error(1)
}

// MockHistory is a mock implementation of History for testing.
type MockHistory struct {
	mock.Mock
}

var _ History = &MockHistory{} // Compile-time check

// RepositoryID implements the History interface.
func (m *MockHistory) RepositoryID(ctx context.Context, uri string) (int64, error) {
	ret := m.Called(ctx, uri)
	return ret.Get(0).(int64), ret.Error(1)
}

// TopLevelDirs implements the History interface.
func (m *MockHistory) TopLevelDirs(ctx context.Context, repoID int64, all bool) ([]schema.TopLevelDir, error) {
	ret := m.Called(ctx, repoID, all)
	dirs, _ := ret.Get(0).([]schema.TopLevelDir)
	return dirs, ret.Error(1)
}

// WorkItems implements the History interface.
func (m *MockHistory) WorkItems(ctx context.Context, repoID int64, all bool) ([]schema.WorkItem, error) {
	ret := m.Called(ctx, repoID, all)
	items, _ := ret.Get(0).([]schema.WorkItem)
	return items, ret.Error(1)
}

// PathForRevision implements the History interface.
func (m *MockHistory) PathForRevision(ctx context.Context, repoID int64, path string, fileID int64, rev string) (string, error) {
	ret := m.Called(ctx, repoID, path, fileID, rev)
	return ret.String(0), ret.Error(1)
}

// PathIsDeleted implements the History interface.
func (m *MockHistory) PathIsDeleted(ctx context.Context, repoID int64, path string, fileID int64, rev string) (bool, error) {
	ret := m.Called(ctx, repoID, path, fileID, rev)
	return ret.Bool(0), ret.Error(1)
}
