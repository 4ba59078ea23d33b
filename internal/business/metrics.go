package business

import (
	"strings"

	"github.com/clintrovert/relativity/pkg/types"
)

// ComputeMetrics derives the aggregate metrics from the full task set.
// The aggregate is recomputed fresh each run and never stored on tasks.
func ComputeMetrics(tasks []*types.TaskRecord) types.Metrics {
	m := types.Metrics{TotalTasks: len(tasks)}

	for _, task := range tasks {
		if task.Completed() {
			m.CompletedTasks++
		}
		m.TotalHours += task.EstimatedHours
		if isHighPriority(task.Priority) {
			m.HighPriorityTasks++
		}
	}

	if m.TotalTasks > 0 {
		m.CompletionRate = float64(m.CompletedTasks) / float64(m.TotalTasks) * 100
	}

	return m
}

func isHighPriority(priority string) bool {
	switch strings.ToLower(priority) {
	case "highest", "high", "critical":
		return true
	}
	return false
}
