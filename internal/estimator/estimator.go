package estimator

import (
	"strings"

	"go.uber.org/zap"

	"github.com/clintrovert/relativity/pkg/types"
)

// Signal resolution constants. Tracker figures always outrank
// commit-derived guesses; a bare estimate with no commits earns
// planning-only partial credit.
const (
	plannedOnlyCredit = 0.2
	noCommitDiscount  = 0.3
	baseEffort        = 2.5
	singleCommitHours = 1.0
)

// Hour floors applied to commit-derived estimates per task type.
const (
	epicMinimumHours    = 8.0
	storyMinimumHours   = 4.0
	bugMinimumHours     = 3.0
	defaultMinimumHours = 2.0
)

var researchKeywords = []string{"research", "analysis", "planning", "design"}

// Complexity tiers checked in priority order; the first tier with a
// keyword match in the title wins.
var (
	highComplexityKeywords = []string{
		"integration", "migration", "refactor", "architecture", "security",
		"performance", "optimization", "algorithm", "complex", "system",
	}
	mediumComplexityKeywords = []string{
		"feature", "implementation", "enhancement", "workflow", "process",
		"validation", "authentication", "database", "api",
	}
	lowComplexityKeywords = []string{
		"fix", "update", "minor", "text", "styling", "copy", "simple",
	}
)

// Estimator produces a single hours figure per task by fusing tracker
// time signals with commit-derived heuristics. Given identical inputs
// the output is exactly reproducible.
type Estimator struct {
	logger *zap.Logger
}

// New creates an estimator.
func New(logger *zap.Logger) *Estimator {
	return &Estimator{logger: logger}
}

// Estimate returns the hours figure for the task. The resolution order
// is strict: the first applicable signal wins and no blending occurs.
//  1. Tracker-logged time.
//  2. Tracker aggregate time (includes subtasks).
//  3. Tracker original estimate, discounted when no commits exist.
//  4. Commit-derived realistic estimate.
func (e *Estimator) Estimate(task *types.TaskRecord) float64 {
	switch {
	case task.LoggedHours > 0:
		return task.LoggedHours
	case task.AggregateHours > 0:
		return task.AggregateHours
	case task.EstimateHours > 0:
		if len(task.Commits) > 0 {
			return task.EstimateHours
		}
		return task.EstimateHours * plannedOnlyCredit
	}

	hours := e.commitDerived(task)

	e.logger.Debug("commit-derived estimate",
		zap.String("task", task.ID),
		zap.Int("commits", len(task.Commits)),
		zap.Float64("hours", hours),
	)

	return hours
}

// commitDerived estimates hours from commit activity alone: a raw
// git-time figure from the commit span, inflated by complexity and
// priority multipliers, floored by the type minimum.
func (e *Estimator) commitDerived(task *types.TaskRecord) float64 {
	if len(task.Commits) == 0 {
		return baseTime(task.Title, task.Type) * noCommitDiscount
	}

	gitTime := singleCommitHours
	if len(task.Commits) >= 2 {
		gitTime = spanTime(task.Commits)
	}

	realistic := gitTime * realisticMultiplier(task.Title, task.Type, task.Priority)

	if minimum := minimumHours(task.Type); realistic < minimum {
		return minimum
	}
	return realistic
}

// spanTime derives git-time from the spread of authored timestamps.
func spanTime(commits []types.CommitRecord) float64 {
	first, last := commits[0].AuthoredAt, commits[0].AuthoredAt
	for _, c := range commits[1:] {
		if c.AuthoredAt.Before(first) {
			first = c.AuthoredAt
		}
		if c.AuthoredAt.After(last) {
			last = c.AuthoredAt
		}
	}
	span := last.Sub(first).Hours()
	count := float64(len(commits))

	switch {
	case span < 0.5:
		// Burst of commits in under half an hour.
		return max(count*0.5, 1.0)
	case span < 2:
		return max(span*1.2, 1.5)
	case span > 24:
		// Multi-day work: throttle by commits per day.
		return min(count/(span/24)*2.0, 8.0)
	default:
		return min(max(span*1.3, 2.0), 8.0)
	}
}

// baseTime is the assumed effort for a task with no commit evidence.
func baseTime(title, taskType string) float64 {
	lower := strings.ToLower(title)
	for _, kw := range researchKeywords {
		if strings.Contains(lower, kw) {
			return 4.0
		}
	}
	switch {
	case strings.EqualFold(taskType, "Epic"):
		return 6.0
	case strings.EqualFold(taskType, "Story"):
		return 3.0
	default:
		return 1.5
	}
}

// realisticMultiplier inflates raw commit-authoring time towards total
// effort. Multiplier stacking can exceed intuitive bounds for rare
// keyword combinations; that is accepted behavior.
func realisticMultiplier(title, taskType, priority string) float64 {
	complexity := complexityMultiplier(title, taskType)
	prio := priorityMultiplier(priority)
	return baseEffort + (complexity - 1.0) + (prio - 1.0)
}

func complexityMultiplier(title, taskType string) float64 {
	lower := strings.ToLower(title)
	for _, kw := range highComplexityKeywords {
		if strings.Contains(lower, kw) {
			return 1.8
		}
	}
	for _, kw := range mediumComplexityKeywords {
		if strings.Contains(lower, kw) {
			return 1.4
		}
	}
	for _, kw := range lowComplexityKeywords {
		if strings.Contains(lower, kw) {
			return 1.0
		}
	}

	lowerType := strings.ToLower(taskType)
	if strings.Contains(lowerType, "story") || strings.Contains(lowerType, "epic") {
		return 1.6
	}
	return 1.2
}

func priorityMultiplier(priority string) float64 {
	switch strings.ToLower(priority) {
	case "highest", "critical":
		return 1.3
	case "high":
		return 1.1
	default:
		return 1.0
	}
}

func minimumHours(taskType string) float64 {
	switch strings.ToLower(taskType) {
	case "epic":
		return epicMinimumHours
	case "story":
		return storyMinimumHours
	case "bug":
		return bugMinimumHours
	default:
		return defaultMinimumHours
	}
}
