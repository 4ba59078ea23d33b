package business

import (
	"strings"

	"go.uber.org/zap"

	"github.com/clintrovert/relativity/pkg/types"
)

// Classifier buckets tasks into business-impact categories by keyword
// rules. Every task lands in exactly one bucket: the first matching
// category in declaration order, or the uncategorized list.
type Classifier struct {
	categories    []*Category
	uncategorized []*types.TaskRecord
	logger        *zap.Logger
}

// NewClassifier creates a classifier with a fresh rule table. State is
// per run; using one classifier across runs would double-count tasks.
func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{
		categories: ruleTable(),
		logger:     logger,
	}
}

// Classify assigns the task to the first category whose keyword set has
// a substring match against the lowercased "title type" search text and
// annotates the task with the category label. Returns nil when no
// category matches; the task is then retained in the uncategorized
// bucket, never dropped.
func (c *Classifier) Classify(task *types.TaskRecord) *Category {
	searchText := strings.ToLower(task.Title + " " + task.Type)

	for _, category := range c.categories {
		for _, keyword := range category.Keywords {
			if strings.Contains(searchText, keyword) {
				category.Tasks = append(category.Tasks, task)
				task.BusinessCategory = category.Label
				return category
			}
		}
	}

	c.uncategorized = append(c.uncategorized, task)
	c.logger.Debug("task matched no business category", zap.String("task", task.ID))
	return nil
}

// Categories returns the rule table in declaration order, including
// categories that claimed no tasks.
func (c *Classifier) Categories() []*Category {
	return c.categories
}

// Uncategorized returns the tasks no category claimed.
func (c *Classifier) Uncategorized() []*types.TaskRecord {
	return c.uncategorized
}
