package materialize

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockRepo(vcs schema.VCSType) *contract.MockRepository {
	repo := &contract.MockRepository{}
	repo.On("Type").Return(vcs)
	return repo
}

func TestPath(t *testing.T) {
	m := New(newMockRepo(schema.Git), "/ws", 1, nil)
	assert.Equal(t, filepath.Join("/ws", "src", "a.py"), m.Path("/src/a.py"))
	assert.Equal(t, filepath.Join("/ws", "src", "a.py"), m.Path("src/a.py"))
	assert.Equal(t, "/ws", m.Workspace())
}

func TestOwns(t *testing.T) {
	assert.True(t, owns("trunk", "trunk"))
	assert.True(t, owns("trunk", "trunk/a.c"))
	assert.False(t, owns("trunk", "trunkfoo/a.c"))
	assert.False(t, owns("trunk", "branches/a.c"))
}

func TestAdvancePerFile(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo(schema.Git)
	dest := filepath.Join("/ws", "a.py")
	repo.On("Checkout", ctx, "a.py", dest, "r2").Return(nil).Once()
	repo.On("LastRevision", ctx, dest).Return("r2", nil).Once()

	m := New(repo, "/ws", 1, nil)
	require.NoError(t, m.Advance(ctx, "/a.py", "r2"))
	repo.AssertExpectations(t)
}

func TestAdvanceRetryBound(t *testing.T) {
	ctx := context.Background()

	for _, retries := range []int{0, 1, 3} {
		repo := newMockRepo(schema.Git)
		dest := filepath.Join("/ws", "a.py")
		repo.On("Checkout", ctx, "a.py", dest, "r2").Return(nil)
		repo.On("LastRevision", ctx, dest).Return("r1", nil)

		m := New(repo, "/ws", retries, nil)
		err := m.Advance(ctx, "a.py", "r2")

		require.ErrorIs(t, err, ErrMaterialization)
		var matErr *MaterializationError
		require.ErrorAs(t, err, &matErr)
		assert.Equal(t, retries+1, matErr.Attempts)
		assert.Equal(t, "r1", matErr.Observed)
		assert.Equal(t, "r2", matErr.Rev)
		repo.AssertNumberOfCalls(t, "Checkout", retries+1)
	}
}

func TestAdvanceBackendErrorIsPermanent(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo(schema.Git)
	boom := errors.New("fatal: path 'a.py' does not exist in 'r2'")
	repo.On("Checkout", ctx, "a.py", mock.Anything, "r2").Return(boom)

	m := New(repo, "/ws", 3, nil)
	err := m.Advance(ctx, "a.py", "r2")

	assert.ErrorIs(t, err, ErrMaterialization)
	assert.ErrorIs(t, err, boom)
	repo.AssertNumberOfCalls(t, "Checkout", 1)
	repo.AssertNotCalled(t, "LastRevision", mock.Anything, mock.Anything)
}

func TestAdvanceSucceedsOnRetry(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo(schema.Git)
	dest := filepath.Join("/ws", "a.py")
	repo.On("Checkout", ctx, "a.py", dest, "r2").Return(nil)
	repo.On("LastRevision", ctx, dest).Return("r1", nil).Once()
	repo.On("LastRevision", ctx, dest).Return("r2", nil).Once()

	m := New(repo, "/ws", 1, nil)
	assert.NoError(t, m.Advance(ctx, "a.py", "r2"))
	repo.AssertNumberOfCalls(t, "Checkout", 2)
}

func TestCheckoutTopLevelAndAdvanceHierarchical(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo(schema.SVN)
	trunk := filepath.Join("/ws", "trunk")
	tags := filepath.Join("/ws", "tags")

	repo.On("Checkout", ctx, "trunk", trunk, "3").Return(nil)
	repo.On("LastRevision", ctx, trunk).Return("3", nil).Once()
	repo.On("Checkout", ctx, "tags", tags, "7").Return(nil)
	repo.On("LastRevision", ctx, tags).Return("7", nil).Once()

	m := New(repo, "/ws", 1, nil)
	require.NoError(t, m.CheckoutTopLevel(ctx, "/trunk", "", "3"))
	require.NoError(t, m.CheckoutTopLevel(ctx, "tags", "tags/", "7"))

	// Already at the requested revision: no update.
	require.NoError(t, m.Advance(ctx, "trunk/a.c", "3"))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)

	repo.On("Update", ctx, trunk, "5").Return(nil).Once()
	repo.On("LastRevision", ctx, trunk).Return("5", nil).Once()
	require.NoError(t, m.Advance(ctx, "trunk/a.c", "5"))

	subtrees := m.Subtrees()
	require.Len(t, subtrees, 2)
	assert.Equal(t, Subtree{Name: "trunk", FirstRevision: "3", CurrentRevision: "5"}, subtrees[0])
	assert.Equal(t, Subtree{Name: "tags", FirstRevision: "7", CurrentRevision: "7"}, subtrees[1])
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestAdvanceHierarchicalFailureKeepsRevision(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo(schema.SVN)
	trunk := filepath.Join("/ws", "trunk")

	repo.On("Checkout", ctx, "trunk", trunk, "1").Return(nil)
	repo.On("LastRevision", ctx, trunk).Return("1", nil)
	repo.On("Update", ctx, trunk, "2").Return(nil)

	m := New(repo, "/ws", 1, nil)
	require.NoError(t, m.CheckoutTopLevel(ctx, "trunk", "trunk", "1"))

	err := m.Advance(ctx, "trunk/a.c", "2")
	assert.ErrorIs(t, err, ErrMaterialization)
	assert.Equal(t, "1", m.Subtrees()[0].CurrentRevision)
	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestCheckoutTopLevelFailure(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo(schema.SVN)
	repo.On("Checkout", ctx, "trunk", mock.Anything, "1").Return(errors.New("svn: E170013: unable to connect"))

	m := New(repo, "/ws", 1, nil)
	assert.ErrorIs(t, m.CheckoutTopLevel(ctx, "trunk", "trunk", "1"), ErrMaterialization)
	assert.Empty(t, m.Subtrees())
}

func TestCheckoutTopLevelRenamed(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo(schema.SVN)
	dest := filepath.Join("/ws", "src")
	repo.On("Checkout", ctx, "source", dest, "1").Return(nil)
	repo.On("LastRevision", ctx, dest).Return("1", nil)

	m := New(repo, "/ws", 1, nil)
	require.NoError(t, m.CheckoutTopLevel(ctx, "src", "/source/", "1"))
	assert.Equal(t, "src", m.Subtrees()[0].Name)
	repo.AssertExpectations(t)
}
