package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/relativity/internal/business"
	"github.com/clintrovert/relativity/internal/estimator"
	"github.com/clintrovert/relativity/internal/gitsource"
	"github.com/clintrovert/relativity/internal/narrative"
	"github.com/clintrovert/relativity/pkg/types"
)

// ErrNoTasks indicates the tracker returned zero tasks for the
// requested assignee and window.
var ErrNoTasks = errors.New("no tasks found")

// IssueSource supplies normalized tasks for an assignee and date range.
type IssueSource interface {
	QueryTasks(assignee string, start, end time.Time) ([]*types.TaskRecord, error)
}

// Params describe one report run.
type Params struct {
	Assignee string
	Start    time.Time
	End      time.Time
	Audience narrative.Audience
}

// Pipeline runs the report stages in order: fetch tasks, correlate
// commits, estimate time, classify business impact, generate narrative.
// Each stage consumes only the previous stage's output records. All
// per-run state (commit snapshot, classifier buckets) is created inside
// Run, so concurrent runs on one Pipeline are safe.
type Pipeline struct {
	issues     IssueSource
	correlator *gitsource.Correlator
	estimator  *estimator.Estimator
	generator  *narrative.Generator
	logger     *zap.Logger
}

// New creates a pipeline.
func New(
	issues IssueSource,
	correlator *gitsource.Correlator,
	est *estimator.Estimator,
	generator *narrative.Generator,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		issues:     issues,
		correlator: correlator,
		estimator:  est,
		generator:  generator,
		logger:     logger,
	}
}

// Run executes one synchronous pipeline pass. Zero tasks or zero valid
// repositories are fatal; anything else degrades and continues.
func (p *Pipeline) Run(ctx context.Context, params Params) (*types.Report, error) {
	tasks, err := p.issues.QueryTasks(params.Assignee, params.Start, params.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w for %s between %s and %s", ErrNoTasks,
			params.Assignee, params.Start.Format("2006-01-02"), params.End.Format("2006-01-02"))
	}

	commits, err := p.correlator.Load(ctx, params.Start, params.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit history: %w", err)
	}

	classifier := business.NewClassifier(p.logger)
	for _, task := range tasks {
		commits.Correlate(task)
		task.EstimatedHours = p.estimator.Estimate(task)
		classifier.Classify(task)
	}

	metrics := business.ComputeMetrics(tasks)

	audience := params.Audience
	if audience == "" {
		audience = narrative.AudienceTechnical
	}

	sections := p.generator.Generate(ctx, narrative.Input{
		Assignee:      params.Assignee,
		Start:         params.Start,
		End:           params.End,
		Tasks:         tasks,
		Categories:    classifier.Categories(),
		Uncategorized: classifier.Uncategorized(),
		Metrics:       metrics,
	}, audience)

	p.logger.Info("pipeline run complete",
		zap.String("assignee", params.Assignee),
		zap.Int("tasks", len(tasks)),
		zap.Float64("total_hours", metrics.TotalHours),
	)

	return &types.Report{
		Assignee:    params.Assignee,
		Start:       params.Start,
		End:         params.End,
		GeneratedAt: time.Now(),
		Tasks:       tasks,
		Metrics:     metrics,
		Sections:    sections,
	}, nil
}
