package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/clintrovert/relativity/internal/narrative"
	"github.com/clintrovert/relativity/internal/pipeline"
	"github.com/clintrovert/relativity/internal/report"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the pipeline once and print or save the report",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().String("assignee", "", "Jira assignee username")
	generateCmd.Flags().String("start-date", "", "Start date (YYYY-MM-DD)")
	generateCmd.Flags().String("end-date", "", "End date (YYYY-MM-DD)")
	generateCmd.Flags().StringSlice("repo", nil, "Path to a local git repository (repeatable)")
	generateCmd.Flags().StringSlice("github-repo", nil, "GitHub repository as owner/name (repeatable)")
	generateCmd.Flags().String("audience", "technical", "Report audience: technical or stakeholder")
	generateCmd.Flags().StringP("output", "o", "", "Output file path (default stdout)")

	generateCmd.MarkFlagRequired("assignee")
	generateCmd.MarkFlagRequired("start-date")
	generateCmd.MarkFlagRequired("end-date")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	assignee, _ := cmd.Flags().GetString("assignee")
	startDate, _ := cmd.Flags().GetString("start-date")
	endDate, _ := cmd.Flags().GetString("end-date")
	localRepos, _ := cmd.Flags().GetStringSlice("repo")
	githubRepos, _ := cmd.Flags().GetStringSlice("github-repo")
	audienceFlag, _ := cmd.Flags().GetString("audience")
	output, _ := cmd.Flags().GetString("output")

	start, end, err := parseWindow(startDate, endDate)
	if err != nil {
		return err
	}

	audience := narrative.Audience(audienceFlag)
	if audience != narrative.AudienceStakeholder && audience != narrative.AudienceTechnical {
		return fmt.Errorf("unknown audience %q, expected technical or stakeholder", audienceFlag)
	}

	p, err := buildPipeline(localRepos, githubRepos)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	result, err := p.Run(ctx, pipeline.Params{
		Assignee: assignee,
		Start:    start,
		End:      end,
		Audience: audience,
	})
	if err != nil {
		return err
	}

	rendered := report.RenderMarkdown(result)

	if output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	}

	if err := os.WriteFile(output, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	color.Green("Report saved to %s", output)
	return nil
}
