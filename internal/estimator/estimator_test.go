package estimator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/clintrovert/relativity/pkg/types"
)

func commitsAt(times ...time.Time) []types.CommitRecord {
	commits := make([]types.CommitRecord, len(times))
	for i, at := range times {
		commits[i] = types.CommitRecord{Hash: "c", AuthoredAt: at}
	}
	return commits
}

func TestLoggedTimeShortCircuits(t *testing.T) {
	e := New(zap.NewNop())
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	task := &types.TaskRecord{
		Title:       "Integration of payments platform",
		Type:        "Epic",
		Priority:    "Highest",
		LoggedHours: 6.5,
		Commits:     commitsAt(base, base.Add(30*time.Hour)),
	}

	assert.Equal(t, 6.5, e.Estimate(task))
}

func TestAggregateTimeUsedWhenNoLoggedTime(t *testing.T) {
	e := New(zap.NewNop())

	task := &types.TaskRecord{
		Title:          "Update onboarding copy",
		Type:           "Task",
		AggregateHours: 3.25,
	}

	assert.Equal(t, 3.25, e.Estimate(task))
}

func TestOriginalEstimate(t *testing.T) {
	e := New(zap.NewNop())
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	t.Run("with commits the estimate is returned unmodified", func(t *testing.T) {
		task := &types.TaskRecord{
			Title:         "Implement audit export",
			Type:          "Story",
			EstimateHours: 10,
			Commits:       commitsAt(base),
		}
		assert.Equal(t, 10.0, e.Estimate(task))
	})

	t.Run("without commits only planning credit is granted", func(t *testing.T) {
		task := &types.TaskRecord{
			Title:         "Implement audit export",
			Type:          "Story",
			EstimateHours: 10,
		}
		assert.Equal(t, 2.0, e.Estimate(task))
	})
}

func TestSingleCommitEstimate(t *testing.T) {
	e := New(zap.NewNop())
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	// multiplier = 2.5 + (1.2-1.0) + (1.0-1.0) = 2.7, above the 2.0h
	// Task minimum.
	task := &types.TaskRecord{
		Title:    "Adjust report footer",
		Type:     "Task",
		Priority: "Medium",
		Commits:  commitsAt(base),
	}

	assert.InDelta(t, 2.7, e.Estimate(task), 1e-9)
}

func TestNoSignalsNoCommits(t *testing.T) {
	e := New(zap.NewNop())

	tests := []struct {
		name     string
		title    string
		taskType string
		expected float64
	}{
		{"research keyword", "Research caching options", "Task", 4.0 * 0.3},
		{"epic type", "Billing overhaul", "Epic", 6.0 * 0.3},
		{"story type", "Export as CSV", "Story", 3.0 * 0.3},
		{"default", "Tweak padding", "Task", 1.5 * 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &types.TaskRecord{Title: tt.title, Type: tt.taskType}
			assert.InDelta(t, tt.expected, e.Estimate(task), 1e-9)
		})
	}
}

func TestSpanTime(t *testing.T) {
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		times    []time.Time
		expected float64
	}{
		{
			name:     "burst under half an hour uses commit count",
			times:    []time.Time{base, base.Add(10 * time.Minute), base.Add(20 * time.Minute)},
			expected: 1.5, // 3 commits * 0.5
		},
		{
			name:     "short span scaled up",
			times:    []time.Time{base, base.Add(90 * time.Minute)},
			expected: 1.8, // 1.5h * 1.2
		},
		{
			name:     "short span floored at 1.5",
			times:    []time.Time{base, base.Add(40 * time.Minute)},
			expected: 1.5,
		},
		{
			name:     "multi-day throttled by commits per day",
			times:    []time.Time{base, base.Add(24 * time.Hour), base.Add(48 * time.Hour)},
			expected: 3.0, // 3/(48/24)*2.0
		},
		{
			name:     "mid-range span capped at 8",
			times:    []time.Time{base, base.Add(10 * time.Hour)},
			expected: 8.0, // min(10*1.3, 8.0)
		},
		{
			name:     "mid-range span scaled",
			times:    []time.Time{base, base.Add(3 * time.Hour)},
			expected: 3.9, // 3*1.3
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, spanTime(commitsAt(tt.times...)), 1e-9)
		})
	}
}

func TestTypeMinimumFloors(t *testing.T) {
	e := New(zap.NewNop())
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	// Single commit, low-complexity title: git-time 1.0 * 2.5 = 2.5,
	// below the 8.0h Epic floor.
	task := &types.TaskRecord{
		Title:    "Fix typo in epic description",
		Type:     "Epic",
		Priority: "Low",
		Commits:  commitsAt(base),
	}

	assert.Equal(t, 8.0, e.Estimate(task))
}

func TestRealisticMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		taskType string
		priority string
		expected float64
	}{
		{"high complexity critical", "Database migration for billing", "Task", "Critical", 2.5 + 0.8 + 0.3},
		{"medium complexity high", "Add validation to signup", "Task", "High", 2.5 + 0.4 + 0.1},
		{"low complexity", "Fix button styling", "Task", "Medium", 2.5 + 0.0 + 0.0},
		{"story fallback", "Reader mode", "Story", "Low", 2.5 + 0.6 + 0.0},
		{"default", "Sort the backlog", "Task", "Low", 2.5 + 0.2 + 0.0},
		{"high beats medium when both match", "Refactor API feature", "Task", "Medium", 2.5 + 0.8 + 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, realisticMultiplier(tt.title, tt.taskType, tt.priority), 1e-9)
		})
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	e := New(zap.NewNop())
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	task := &types.TaskRecord{
		Title:    "Performance tuning for search index",
		Type:     "Story",
		Priority: "High",
		Commits:  commitsAt(base, base.Add(5*time.Hour), base.Add(26*time.Hour)),
	}

	first := e.Estimate(task)
	second := e.Estimate(task)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, 0.0)
}
