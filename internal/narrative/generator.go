package narrative

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/relativity/internal/business"
	"github.com/clintrovert/relativity/pkg/types"
)

// Audience selects the narrative orientation of the generated sections.
type Audience string

const (
	AudienceTechnical   Audience = "technical"
	AudienceStakeholder Audience = "stakeholder"
)

// Input carries everything the generator needs; it never reaches back
// into the collaborators that produced it.
type Input struct {
	Assignee      string
	Start         time.Time
	End           time.Time
	Tasks         []*types.TaskRecord
	Categories    []*business.Category
	Uncategorized []*types.TaskRecord
	Metrics       types.Metrics
}

// Generator turns task, category and metric data into ordered report
// sections. The template path always produces valid output; an optional
// Completer substitutes richer AI prose for the summary section when
// present.
type Generator struct {
	completer Completer
	logger    *zap.Logger
}

// NewGenerator creates a generator. A nil completer means template-only
// mode.
func NewGenerator(completer Completer, logger *zap.Logger) *Generator {
	return &Generator{
		completer: completer,
		logger:    logger,
	}
}

type sectionBuilder struct {
	name  string
	title string
	build func(ctx context.Context, in Input) string
}

// Generate produces the report sections for the audience, in order.
func (g *Generator) Generate(ctx context.Context, in Input, audience Audience) []types.Section {
	builders := []sectionBuilder{
		{name: "summary", title: "Summary", build: g.summarySection},
	}

	if audience == AudienceStakeholder {
		builders = append(builders,
			sectionBuilder{name: "business_impact", title: "Business Impact", build: g.businessImpactSection},
		)
	} else {
		builders = append(builders,
			sectionBuilder{name: "work_breakdown", title: "Work Breakdown", build: g.workBreakdownSection},
		)
	}

	builders = append(builders,
		sectionBuilder{name: "metrics", title: "Delivery Metrics", build: g.metricsSection},
	)

	sections := make([]types.Section, 0, len(builders))
	for _, b := range builders {
		sections = append(sections, types.Section{
			Name:  b.name,
			Title: b.title,
			Body:  b.build(ctx, in),
		})
	}
	return sections
}

// summarySection prefers AI prose and falls back to the template
// summary when the completer is absent or fails.
func (g *Generator) summarySection(ctx context.Context, in Input) string {
	if g.completer != nil {
		text, err := g.completer.Complete(ctx, summaryPrompt(in))
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			g.logger.Warn("ai summary failed, using template summary", zap.Error(err))
		}
	}
	return templateSummary(in)
}

func summaryPrompt(in Input) string {
	var sb strings.Builder
	sb.WriteString("Generate a concise, professional summary of the following work:\n")
	for _, task := range in.Tasks {
		timeStr := "no time estimated"
		if task.EstimatedHours > 0 {
			timeStr = fmt.Sprintf("%.1f hours", task.EstimatedHours)
		}
		sb.WriteString(fmt.Sprintf("- Task %s: %s (%s, %s priority), estimated time: %s\n",
			task.ID, task.Title, task.Type, task.Priority, timeStr))
	}
	return sb.String()
}

func templateSummary(in Input) string {
	m := in.Metrics
	summary := fmt.Sprintf(
		"Over this period %s worked %d tasks, completing %d (%.1f%%) with an estimated %.1f hours invested.",
		in.Assignee, m.TotalTasks, m.CompletedTasks, m.CompletionRate, m.TotalHours)

	if top := topCategory(in.Categories); top != nil {
		summary += fmt.Sprintf(" The largest share of effort went to %s (%.1f hours across %d tasks).",
			top.Label, top.Hours(), len(top.Tasks))
	}
	if m.HighPriorityTasks > 0 {
		summary += fmt.Sprintf(" %d of these carried high priority.", m.HighPriorityTasks)
	}
	return summary
}

func topCategory(categories []*business.Category) *business.Category {
	var top *business.Category
	for _, category := range categories {
		if len(category.Tasks) == 0 {
			continue
		}
		if top == nil || category.Hours() > top.Hours() {
			top = category
		}
	}
	return top
}

// businessImpactSection renders one block per non-empty category with a
// value statement per completed member task.
func (g *Generator) businessImpactSection(_ context.Context, in Input) string {
	var sb strings.Builder

	for _, category := range in.Categories {
		if len(category.Tasks) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "**%s**: %d tasks, %.1f hours\n", category.Label, len(category.Tasks), category.Hours())
		for _, task := range category.Tasks {
			if !task.Completed() {
				continue
			}
			fmt.Fprintf(&sb, "- %s\n", ValueStatement(category, task))
		}
		sb.WriteString("\n")
	}

	if len(in.Uncategorized) > 0 {
		fmt.Fprintf(&sb, "**Other Work**: %d tasks\n", len(in.Uncategorized))
		for _, task := range in.Uncategorized {
			fmt.Fprintf(&sb, "- %s\n", fallbackStatement(task))
		}
	}

	if sb.Len() == 0 {
		return "No categorized work in this period."
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (g *Generator) workBreakdownSection(_ context.Context, in Input) string {
	var sb strings.Builder

	for _, task := range in.Tasks {
		fmt.Fprintf(&sb, "%s - %s\n", task.ID, task.Title)
		fmt.Fprintf(&sb, "  Type: %s, Priority: %s, Estimated: %.1f hours\n",
			task.Type, task.Priority, task.EstimatedHours)
		if len(task.Commits) == 0 {
			sb.WriteString("  No commits found for this task.\n")
			continue
		}
		for _, commit := range task.Commits {
			fmt.Fprintf(&sb, "  - %s: %s (%s, %s)\n",
				commit.ShortHash(),
				strings.TrimSpace(firstLine(commit.Message)),
				commit.Repository,
				commit.AuthoredAt.Format("2006-01-02 15:04"))
		}
	}

	if sb.Len() == 0 {
		return "No tasks in this period."
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (g *Generator) metricsSection(_ context.Context, in Input) string {
	m := in.Metrics
	return fmt.Sprintf(
		"Total tasks: %d\nCompleted tasks: %d\nCompletion rate: %.1f%%\nTotal estimated hours: %.1f\nHigh-priority tasks: %d",
		m.TotalTasks, m.CompletedTasks, m.CompletionRate, m.TotalHours, m.HighPriorityTasks)
}

// Action verbs scanned when extracting a value phrase from a task
// title. The phrase is the verb plus up to three following words.
var actionVerbs = []string{
	"add", "create", "implement", "build", "develop",
	"fix", "update", "improve", "enhance", "optimize",
}

var identifierPrefix = regexp.MustCompile(`^\[?[A-Za-z][A-Za-z0-9]*-\d+\]?[:\-\s]*`)

// ValueStatement splices the task's action phrase into the category's
// sentence template, falling back to a generic delivery sentence when
// the title contains no recognized action verb.
func ValueStatement(category *business.Category, task *types.TaskRecord) string {
	if phrase, ok := actionPhrase(task.Title); ok {
		return fmt.Sprintf(category.Template, phrase)
	}
	return fallbackStatement(task)
}

func fallbackStatement(task *types.TaskRecord) string {
	return fmt.Sprintf("Delivered %s.", cleanTitle(task.Title))
}

// actionPhrase scans the title for the first action verb and returns it
// with up to three trailing words, lowercased for mid-sentence use.
func actionPhrase(title string) (string, bool) {
	words := strings.Fields(title)
	for i, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ":,.!?"))
		for _, verb := range actionVerbs {
			if cleaned != verb {
				continue
			}
			end := i + 4
			if end > len(words) {
				end = len(words)
			}
			phrase := append([]string{cleaned}, words[i+1:end]...)
			return strings.ToLower(strings.Join(phrase, " ")), true
		}
	}
	return "", false
}

// cleanTitle strips a leading tracker identifier ("PROJ-12:" or
// "[PROJ-12]") from the title.
func cleanTitle(title string) string {
	cleaned := identifierPrefix.ReplaceAllString(strings.TrimSpace(title), "")
	if cleaned == "" {
		return strings.TrimSpace(title)
	}
	return cleaned
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		return s[:idx]
	}
	return s
}
