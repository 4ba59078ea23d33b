package gitsource

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/clintrovert/relativity/pkg/types"
)

// LocalRepository reads commit history from a git repository on disk.
type LocalRepository struct {
	repo   *git.Repository
	label  string
	logger *zap.Logger
}

// OpenLocal opens a local git repository. An unreadable or non-git path
// fails here so the caller can skip the source up front.
func OpenLocal(path string, logger *zap.Logger) (*LocalRepository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}

	return &LocalRepository{
		repo:   repo,
		label:  filepath.Base(path),
		logger: logger,
	}, nil
}

// Label returns the repository directory name.
func (r *LocalRepository) Label() string {
	return r.label
}

// CommitsBetween walks the log and returns commits authored in the
// inclusive [start, end] window.
func (r *LocalRepository) CommitsBetween(ctx context.Context, start, end time.Time) ([]types.CommitRecord, error) {
	iter, err := r.repo.Log(&git.LogOptions{Since: &start, Until: &end, All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read log for %s: %w", r.label, err)
	}
	defer iter.Close()

	var commits []types.CommitRecord
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Log since/until filter on commit time; re-check the authored
		// time so the window is inclusive on both ends.
		if !withinWindow(c.Author.When, start, end) {
			return nil
		}
		commits = append(commits, types.CommitRecord{
			Hash:       c.Hash.String(),
			Message:    c.Message,
			AuthoredAt: c.Author.When,
			Repository: r.label,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk commits for %s: %w", r.label, err)
	}

	r.logger.Debug("scanned local repository",
		zap.String("repository", r.label),
		zap.Int("commits", len(commits)),
	)

	return commits, nil
}
