package gitsource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/relativity/pkg/types"
)

// Correlator matches fetched commits to tasks by literal substring
// match of the task identifier in the commit message. The correlator
// itself is stateless; Load returns a per-run snapshot so concurrent
// runs never share mutable state.
type Correlator struct {
	sources []Source
	logger  *zap.Logger
}

// NewCorrelator creates a correlator over the given repository sources.
func NewCorrelator(sources []Source, logger *zap.Logger) *Correlator {
	return &Correlator{
		sources: sources,
		logger:  logger,
	}
}

// CommitSet holds the commits loaded for one run's window. Commits are
// fetched once per source and reused for every task in the run.
type CommitSet struct {
	// labels preserves source enumeration order so correlated commits
	// concatenate deterministically across repositories.
	labels  []string
	commits map[string][]types.CommitRecord
}

// Load fetches commits from every source for the inclusive [start, end]
// window. A source that fails is skipped with a warning; the load fails
// only when no source could be read at all.
func (c *Correlator) Load(ctx context.Context, start, end time.Time) (*CommitSet, error) {
	set := &CommitSet{
		commits: make(map[string][]types.CommitRecord),
	}
	total := 0

	for _, source := range c.sources {
		commits, err := source.CommitsBetween(ctx, start, end)
		if err != nil {
			c.logger.Warn("skipping repository",
				zap.String("repository", source.Label()),
				zap.Error(err),
			)
			continue
		}
		set.labels = append(set.labels, source.Label())
		set.commits[source.Label()] = commits
		total += len(commits)
	}

	if len(set.labels) == 0 {
		return nil, fmt.Errorf("no valid repositories out of %d configured", len(c.sources))
	}

	c.logger.Info("loaded commit history",
		zap.Int("repositories", len(set.labels)),
		zap.Int("commits", total),
	)

	return set, nil
}

// Correlate annotates the task with every loaded commit whose message
// contains the task identifier, concatenated in repository enumeration
// order, and records a per-repository commit count for provenance.
func (s *CommitSet) Correlate(task *types.TaskRecord) {
	task.Commits = nil
	task.RepoCommits = make(map[string]int)

	if task.ID == "" {
		return
	}

	for _, label := range s.labels {
		matched := 0
		for _, commit := range s.commits[label] {
			if strings.Contains(commit.Message, task.ID) {
				task.Commits = append(task.Commits, commit)
				matched++
			}
		}
		if matched > 0 {
			task.RepoCommits[label] = matched
		}
	}
}
