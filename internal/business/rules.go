package business

import "github.com/clintrovert/relativity/pkg/types"

// Category is one business-impact bucket: its keyword triggers, the
// sentence template the narrative generator splices action phrases
// into, and the tasks claimed during classification. The same rule
// table backs both the classifier and the narrative generator so the
// two can never drift apart.
type Category struct {
	Key      string
	Label    string
	Keywords []string
	Template string
	Tasks    []*types.TaskRecord
}

// Hours sums the estimated hours of the category's member tasks.
func (c *Category) Hours() float64 {
	var total float64
	for _, task := range c.Tasks {
		total += task.EstimatedHours
	}
	return total
}

// CompletedTasks counts the category's delivered members.
func (c *Category) CompletedTasks() int {
	count := 0
	for _, task := range c.Tasks {
		if task.Completed() {
			count++
		}
	}
	return count
}

// ruleTable returns a fresh category table in declaration order.
// Classification is first-match-wins, so the order here is the category
// priority order.
func ruleTable() []*Category {
	return []*Category{
		{
			Key:   "revenue_generation",
			Label: "Revenue & Sales",
			Keywords: []string{
				"payment", "billing", "subscription", "checkout", "pricing",
				"revenue", "sales", "invoice", "monetization", "conversion",
			},
			Template: "Took time to %s, directly supporting revenue and sales goals.",
		},
		{
			Key:   "user_experience",
			Label: "User Experience",
			Keywords: []string{
				"user", "login", "session", "interface", "design", "navigation",
				"onboarding", "dashboard", "frontend", "layout", "usability",
				"accessibility", "mobile",
			},
			Template: "Worked to %s, improving the day-to-day user experience.",
		},
		{
			Key:   "security_compliance",
			Label: "Security & Compliance",
			Keywords: []string{
				"security", "auth", "vulnerability", "encryption", "compliance",
				"permission", "gdpr", "audit", "token",
			},
			Template: "Invested effort to %s, strengthening the security and compliance posture.",
		},
		{
			Key:   "operational_efficiency",
			Label: "Operational Efficiency",
			Keywords: []string{
				"automation", "pipeline", "deploy", "tooling", "workflow",
				"process", "refactor", "migration", "cleanup", "infrastructure",
			},
			Template: "Spent time to %s, streamlining how the team operates.",
		},
		{
			Key:   "platform_stability",
			Label: "Platform Stability",
			Keywords: []string{
				"bug", "fix", "crash", "error", "stability", "performance",
				"memory", "leak", "timeout", "monitoring", "outage",
			},
			Template: "Worked to %s, keeping the platform stable and reliable.",
		},
		{
			Key:   "feature_expansion",
			Label: "Feature Expansion",
			Keywords: []string{
				"feature", "implement", "add", "integration", "api",
				"endpoint", "enhancement", "capability",
			},
			Template: "Worked to %s, expanding what the product can do.",
		},
	}
}
