package gitsource

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/clintrovert/relativity/pkg/types"
)

// GitHubRepository reads commit history from a remote GitHub repository
// through the REST API, for repositories not checked out locally.
type GitHubRepository struct {
	apiClient *github.Client
	owner     string
	name      string
	logger    *zap.Logger
}

// NewGitHubRepository creates a GitHub-backed commit source.
func NewGitHubRepository(accessToken, owner, name string, logger *zap.Logger) *GitHubRepository {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &GitHubRepository{
		apiClient: github.NewClient(tc),
		owner:     owner,
		name:      name,
		logger:    logger,
	}
}

// Label returns "owner/name".
func (r *GitHubRepository) Label() string {
	return r.owner + "/" + r.name
}

// CommitsBetween pages through the repository's commit list restricted
// to the inclusive [start, end] window.
func (r *GitHubRepository) CommitsBetween(ctx context.Context, start, end time.Time) ([]types.CommitRecord, error) {
	opts := &github.CommitsListOptions{
		Since:       start,
		Until:       end,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var commits []types.CommitRecord
	for {
		page, resp, err := r.apiClient.Repositories.ListCommits(ctx, r.owner, r.name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for %s: %w", r.Label(), err)
		}

		for _, rc := range page {
			commit := rc.GetCommit()
			if commit == nil {
				continue
			}
			authored := commit.GetAuthor().GetDate().Time
			if !withinWindow(authored, start, end) {
				continue
			}
			commits = append(commits, types.CommitRecord{
				Hash:       rc.GetSHA(),
				Message:    commit.GetMessage(),
				AuthoredAt: authored,
				Repository: r.Label(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	r.logger.Debug("scanned github repository",
		zap.String("repository", r.Label()),
		zap.Int("commits", len(commits)),
	)

	return commits, nil
}
