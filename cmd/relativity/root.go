package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/clintrovert/relativity/internal/estimator"
	"github.com/clintrovert/relativity/internal/gitsource"
	"github.com/clintrovert/relativity/internal/jira"
	"github.com/clintrovert/relativity/internal/narrative"
	"github.com/clintrovert/relativity/internal/pipeline"
)

var (
	logger  *zap.Logger
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "relativity",
	Short: "Generate developer work reports from Jira and git history",
	Long: `relativity fuses Jira task data with git commit history to estimate
time invested per task, classify tasks by business impact, and render
a narrative work report for a developer over a date range.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./relativity.yaml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	}
}

func initConfig() {
	// Credentials may live in a .env file next to the binary, as well
	// as the environment and an optional YAML config.
	_ = godotenv.Load()

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("relativity")
		viper.SetConfigType("yaml")
	}
	_ = viper.ReadInConfig()

	viper.SetEnvPrefix("RELATIVITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The well-known collaborator variables keep their historical names.
	_ = viper.BindEnv("jira.url", "JIRA_URL")
	_ = viper.BindEnv("jira.username", "JIRA_USERNAME")
	_ = viper.BindEnv("jira.token", "JIRA_API_TOKEN")
	_ = viper.BindEnv("github.token", "GITHUB_TOKEN")
	_ = viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("openai.model", "OPENAI_MODEL")

	viper.SetDefault("jira.sprint_field", "sprint")
	viper.SetDefault("serve.port", "8080")
	viper.SetDefault("serve.refresh_interval", "1h")
}

// buildPipeline wires the collaborators for one run: Jira issue source,
// repository commit sources, estimator and narrative generator.
func buildPipeline(localRepos, githubRepos []string) (*pipeline.Pipeline, error) {
	var missing []string
	for _, key := range []string{"jira.url", "jira.username", "jira.token"} {
		if viper.GetString(key) == "" {
			missing = append(missing, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	jiraClient, err := jira.NewClient(
		viper.GetString("jira.url"),
		viper.GetString("jira.username"),
		viper.GetString("jira.token"),
		viper.GetString("jira.sprint_field"),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	sources, err := buildSources(localRepos, githubRepos)
	if err != nil {
		return nil, err
	}

	var completer narrative.Completer
	if apiKey := viper.GetString("openai.api_key"); apiKey != "" {
		completer = narrative.NewOpenAICompleter(apiKey, viper.GetString("openai.model"), logger)
	} else {
		logger.Info("no openai api key configured, using template narrative")
	}

	return pipeline.New(
		jiraClient,
		gitsource.NewCorrelator(sources, logger),
		estimator.New(logger),
		narrative.NewGenerator(completer, logger),
		logger,
	), nil
}

// buildSources opens the configured repositories. An unusable local
// path is skipped with a warning; the build fails only when nothing
// remains.
func buildSources(localRepos, githubRepos []string) ([]gitsource.Source, error) {
	if len(localRepos) == 0 {
		localRepos = viper.GetStringSlice("repositories.local")
	}
	if len(githubRepos) == 0 {
		githubRepos = viper.GetStringSlice("repositories.github")
	}

	var sources []gitsource.Source
	for _, path := range localRepos {
		repo, err := gitsource.OpenLocal(path, logger)
		if err != nil {
			logger.Warn("skipping unusable repository", zap.String("path", path), zap.Error(err))
			continue
		}
		sources = append(sources, repo)
	}

	githubToken := viper.GetString("github.token")
	for _, fullName := range githubRepos {
		owner, name, found := strings.Cut(fullName, "/")
		if !found {
			logger.Warn("skipping malformed github repository, expected owner/name",
				zap.String("repository", fullName))
			continue
		}
		sources = append(sources, gitsource.NewGitHubRepository(githubToken, owner, name, logger))
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid repositories configured")
	}
	return sources, nil
}

// parseWindow converts the flag dates into an inclusive window covering
// the whole end day.
func parseWindow(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	end = end.Add(24*time.Hour - time.Second)
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s precedes start date %s", endDate, startDate)
	}
	return start, end, nil
}
