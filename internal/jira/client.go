package jira

import (
	"fmt"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"

	"github.com/clintrovert/relativity/pkg/types"
)

const defaultPriority = "Medium"

// Client wraps Jira API client functionality and normalizes issues
// into TaskRecords.
type Client struct {
	client      *jira.Client
	logger      *zap.Logger
	sprintField string
}

// NewClient creates a new Jira client.
func NewClient(baseURL, username, apiToken, sprintField string, logger *zap.Logger) (*Client, error) {
	tp := jira.BasicAuthTransport{
		Username: username,
		Password: apiToken,
	}

	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	if sprintField == "" {
		sprintField = "sprint"
	}

	return &Client{
		client:      client,
		logger:      logger,
		sprintField: sprintField,
	}, nil
}

// QueryTasks retrieves tasks assigned to the given user that were
// updated within the inclusive date range.
func (c *Client) QueryTasks(assignee string, start, end time.Time) ([]*types.TaskRecord, error) {
	jql := fmt.Sprintf("assignee = %q AND updated >= %q AND updated <= %q ORDER BY updated ASC",
		assignee, start.Format("2006-01-02"), end.Format("2006-01-02"))

	issues, _, err := c.client.Issue.Search(jql, &jira.SearchOptions{MaxResults: 200})
	if err != nil {
		// Some Jira deployments reject the ranged query. Degrade to a
		// narrower one and filter the range client-side.
		c.logger.Warn("task search failed, retrying with narrower query", zap.Error(err))
		narrower := fmt.Sprintf("assignee = %q AND updated >= %q", assignee, start.Format("2006-01-02"))
		issues, _, err = c.client.Issue.Search(narrower, &jira.SearchOptions{MaxResults: 200})
		if err != nil {
			return nil, fmt.Errorf("failed to search issues: %w", err)
		}
	}

	tasks := make([]*types.TaskRecord, 0, len(issues))
	for i := range issues {
		task := c.issueToTask(&issues[i])
		// A task with an unparseable updated timestamp stays in range.
		if task.Updated != nil && task.Updated.After(end) {
			continue
		}
		tasks = append(tasks, task)
	}

	c.logger.Info("fetched tasks from jira",
		zap.String("assignee", assignee),
		zap.Int("count", len(tasks)),
	)

	return tasks, nil
}

// issueToTask normalizes a Jira issue into a TaskRecord. Malformed or
// missing fields are replaced by safe defaults rather than failing the
// conversion.
func (c *Client) issueToTask(issue *jira.Issue) *types.TaskRecord {
	task := &types.TaskRecord{
		ID:             issue.Key,
		Title:          issue.Fields.Summary,
		Type:           issue.Fields.Type.Name,
		Priority:       defaultPriority,
		Sprint:         types.SprintInfo{Status: types.SprintUnknown},
		LoggedHours:    secondsToHours(issue.Fields.TimeSpent),
		AggregateHours: secondsToHours(issue.Fields.AggregateTimeSpent),
		EstimateHours:  secondsToHours(issue.Fields.TimeOriginalEstimate),
	}

	if task.Type == "" {
		task.Type = "Other"
	}
	if issue.Fields.Priority != nil && issue.Fields.Priority.Name != "" {
		task.Priority = issue.Fields.Priority.Name
	}
	if issue.Fields.Status != nil {
		task.Status = issue.Fields.Status.Name
	}
	if issue.Fields.Assignee != nil {
		task.Assignee = issue.Fields.Assignee.DisplayName
	}

	task.Created = jiraTime(issue.Fields.Created)
	task.Updated = jiraTime(issue.Fields.Updated)
	task.Resolved = jiraTime(issue.Fields.Resolutiondate)

	if raw, ok := c.rawSprintField(issue); ok {
		task.Sprint = ParseSprintField(raw)
	}

	return task
}

// rawSprintField locates the sprint custom field among the issue's
// unknown fields by substring match on the configured field name.
func (c *Client) rawSprintField(issue *jira.Issue) (interface{}, bool) {
	for key, value := range issue.Fields.Unknowns {
		if strings.Contains(strings.ToLower(key), strings.ToLower(c.sprintField)) {
			return value, true
		}
	}
	return nil, false
}

func secondsToHours(seconds int) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(seconds) / 3600.0
}

func jiraTime(t jira.Time) *time.Time {
	converted := time.Time(t)
	if converted.IsZero() {
		return nil
	}
	return &converted
}
