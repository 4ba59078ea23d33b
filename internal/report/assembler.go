package report

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/clintrovert/relativity/pkg/types"
)

// RenderMarkdown renders the finalized report as a markdown document:
// header, the generated sections in order, a task detail table and the
// total-hours footer.
func RenderMarkdown(r *types.Report) string {
	var sb strings.Builder

	sb.WriteString("# Work Report\n\n")
	fmt.Fprintf(&sb, "Generated on: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Assignee: %s\n", r.Assignee)
	fmt.Fprintf(&sb, "Period: %s to %s\n\n",
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))

	for _, section := range r.Sections {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", section.Title, section.Body)
	}

	sb.WriteString("## Task Details\n\n")
	writeTaskTable(&sb, r.Tasks)

	fmt.Fprintf(&sb, "\nTotal Estimated Time: %.1f hours\n", r.Metrics.TotalHours)

	return sb.String()
}

func writeTaskTable(sb *strings.Builder, tasks []*types.TaskRecord) {
	table := tablewriter.NewTable(sb,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header([]string{"ID", "Title", "Type", "Priority", "Category", "Hours", "Commits"})

	for _, task := range tasks {
		category := task.BusinessCategory
		if category == "" {
			category = "-"
		}
		_ = table.Append([]string{
			task.ID,
			task.Title,
			task.Type,
			task.Priority,
			category,
			fmt.Sprintf("%.1f", task.EstimatedHours),
			fmt.Sprintf("%d", len(task.Commits)),
		})
	}

	_ = table.Render()
}
