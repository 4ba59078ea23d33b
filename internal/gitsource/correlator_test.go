package gitsource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/relativity/pkg/types"
)

type stubSource struct {
	label   string
	commits []types.CommitRecord
	err     error
}

func (s *stubSource) Label() string { return s.label }

func (s *stubSource) CommitsBetween(ctx context.Context, start, end time.Time) ([]types.CommitRecord, error) {
	return s.commits, s.err
}

func testWindow() (time.Time, time.Time) {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
}

func TestCorrelateMatchesByIdentifierSubstring(t *testing.T) {
	source := &stubSource{
		label: "api",
		commits: []types.CommitRecord{
			{Hash: "abc123", Message: "PROJ-5 fix bug", Repository: "api"},
			{Hash: "def456", Message: "unrelated", Repository: "api"},
		},
	}

	c := NewCorrelator([]Source{source}, zap.NewNop())
	start, end := testWindow()
	set, err := c.Load(context.Background(), start, end)
	require.NoError(t, err)

	task := &types.TaskRecord{ID: "PROJ-5"}
	set.Correlate(task)

	require.Len(t, task.Commits, 1)
	assert.Equal(t, "abc123", task.Commits[0].Hash)
	assert.Equal(t, map[string]int{"api": 1}, task.RepoCommits)
}

func TestCorrelateConcatenatesInSourceOrder(t *testing.T) {
	first := &stubSource{
		label: "backend",
		commits: []types.CommitRecord{
			{Hash: "b1", Message: "PROJ-9 service wiring", Repository: "backend"},
		},
	}
	second := &stubSource{
		label: "frontend",
		commits: []types.CommitRecord{
			{Hash: "f1", Message: "PROJ-9 form layout", Repository: "frontend"},
			{Hash: "f2", Message: "PROJ-9 validation messages", Repository: "frontend"},
		},
	}

	c := NewCorrelator([]Source{first, second}, zap.NewNop())
	start, end := testWindow()
	set, err := c.Load(context.Background(), start, end)
	require.NoError(t, err)

	task := &types.TaskRecord{ID: "PROJ-9"}
	set.Correlate(task)

	require.Len(t, task.Commits, 3)
	assert.Equal(t, "b1", task.Commits[0].Hash)
	assert.Equal(t, "f1", task.Commits[1].Hash)
	assert.Equal(t, "f2", task.Commits[2].Hash)
	assert.Equal(t, map[string]int{"backend": 1, "frontend": 2}, task.RepoCommits)
}

func TestLoadSkipsFailingSource(t *testing.T) {
	broken := &stubSource{label: "missing", err: errors.New("repository does not exist")}
	working := &stubSource{
		label: "api",
		commits: []types.CommitRecord{
			{Hash: "a1", Message: "PROJ-1 initial", Repository: "api"},
		},
	}

	c := NewCorrelator([]Source{broken, working}, zap.NewNop())
	start, end := testWindow()
	set, err := c.Load(context.Background(), start, end)
	require.NoError(t, err)

	task := &types.TaskRecord{ID: "PROJ-1"}
	set.Correlate(task)
	assert.Len(t, task.Commits, 1)
}

func TestLoadFailsWhenNoSourceIsValid(t *testing.T) {
	broken := &stubSource{label: "missing", err: errors.New("repository does not exist")}

	c := NewCorrelator([]Source{broken}, zap.NewNop())
	start, end := testWindow()
	_, err := c.Load(context.Background(), start, end)
	assert.Error(t, err)
}

func TestCorrelateTaskWithoutIdentifier(t *testing.T) {
	source := &stubSource{
		label: "api",
		commits: []types.CommitRecord{
			{Hash: "a1", Message: "PROJ-1 initial", Repository: "api"},
		},
	}

	c := NewCorrelator([]Source{source}, zap.NewNop())
	start, end := testWindow()
	set, err := c.Load(context.Background(), start, end)
	require.NoError(t, err)

	task := &types.TaskRecord{}
	set.Correlate(task)
	assert.Empty(t, task.Commits)
	assert.Empty(t, task.RepoCommits)
}

func TestConcurrentLoadsAreIndependent(t *testing.T) {
	source := &stubSource{
		label: "api",
		commits: []types.CommitRecord{
			{Hash: "a1", Message: "PROJ-1 initial", Repository: "api"},
		},
	}
	c := NewCorrelator([]Source{source}, zap.NewNop())
	start, end := testWindow()

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				set, err := c.Load(context.Background(), start, end)
				if err != nil {
					done <- err
					return
				}
				task := &types.TaskRecord{ID: "PROJ-1"}
				set.Correlate(task)
				if len(task.Commits) != 1 {
					done <- errors.New("unexpected correlation result")
					return
				}
			}
			done <- nil
		}()
	}

	for i := 0; i < 2; i++ {
		assert.NoError(t, <-done)
	}
}
