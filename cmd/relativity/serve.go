package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/clintrovert/relativity/internal/api/rest"
	"github.com/clintrovert/relativity/internal/narrative"
	"github.com/clintrovert/relativity/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports over HTTP with periodic regeneration",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("assignee", "", "Assignee for the scheduled report")
	serveCmd.Flags().Int("window-days", 30, "Rolling window size for the scheduled report")
	serveCmd.Flags().StringSlice("repo", nil, "Path to a local git repository (repeatable)")
	serveCmd.Flags().StringSlice("github-repo", nil, "GitHub repository as owner/name (repeatable)")
	serveCmd.Flags().String("port", "", "HTTP port (default 8080)")

	serveCmd.MarkFlagRequired("assignee")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	assignee, _ := cmd.Flags().GetString("assignee")
	windowDays, _ := cmd.Flags().GetInt("window-days")
	localRepos, _ := cmd.Flags().GetStringSlice("repo")
	githubRepos, _ := cmd.Flags().GetStringSlice("github-repo")

	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = viper.GetString("serve.port")
	}

	refreshInterval, err := time.ParseDuration(viper.GetString("serve.refresh_interval"))
	if err != nil {
		logger.Warn("invalid refresh interval, using default", zap.Error(err))
		refreshInterval = time.Hour
	}

	p, err := buildPipeline(localRepos, githubRepos)
	if err != nil {
		return err
	}

	scheduler := pipeline.NewScheduler(p, pipeline.Params{
		Assignee: assignee,
		Start:    time.Now().AddDate(0, 0, -windowDays),
		End:      time.Now(),
		Audience: narrative.AudienceStakeholder,
	}, refreshInterval, logger)

	handler := rest.NewHandler(p, scheduler, logger)

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := fmt.Sprintf(":%s", port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go scheduler.Start(ctx)

	go func() {
		logger.Info("starting REST API server", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start REST server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}
