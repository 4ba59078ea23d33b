package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clintrovert/relativity/internal/narrative"
	"github.com/clintrovert/relativity/internal/pipeline"
	"github.com/clintrovert/relativity/internal/report"
	"github.com/clintrovert/relativity/pkg/types"
)

// Handler handles REST API requests in serve mode.
type Handler struct {
	pipeline  *pipeline.Pipeline
	scheduler *pipeline.Scheduler
	logger    *zap.Logger
}

// NewHandler creates a new REST handler.
func NewHandler(p *pipeline.Pipeline, scheduler *pipeline.Scheduler, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline:  p,
		scheduler: scheduler,
		logger:    logger,
	}
}

// RegisterRoutes registers the report routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/reports", h.GenerateReport)
	r.Get("/reports/latest", h.LatestReport)
}

// GenerateReportRequest represents a request to run the pipeline.
type GenerateReportRequest struct {
	Assignee  string `json:"assignee"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Audience  string `json:"audience,omitempty"`
}

// ReportResponse is the JSON projection of a finished report.
type ReportResponse struct {
	Assignee    string            `json:"assignee"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	GeneratedAt time.Time         `json:"generated_at"`
	Metrics     MetricsResponse   `json:"metrics"`
	Sections    []SectionResponse `json:"sections"`
	Tasks       []TaskResponse    `json:"tasks"`
	Markdown    string            `json:"markdown"`
}

// MetricsResponse carries the derived aggregate.
type MetricsResponse struct {
	TotalTasks        int     `json:"total_tasks"`
	CompletedTasks    int     `json:"completed_tasks"`
	CompletionRate    float64 `json:"completion_rate"`
	TotalHours        float64 `json:"total_hours"`
	HighPriorityTasks int     `json:"high_priority_tasks"`
}

// SectionResponse is one narrative block.
type SectionResponse struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// TaskResponse summarizes one annotated task.
type TaskResponse struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Type           string         `json:"type"`
	Priority       string         `json:"priority"`
	Status         string         `json:"status,omitempty"`
	Category       string         `json:"business_category,omitempty"`
	EstimatedHours float64        `json:"estimated_hours"`
	CommitCount    int            `json:"commit_count"`
	RepoCommits    map[string]int `json:"repo_commits,omitempty"`
}

// GenerateReport handles POST /reports.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if req.Assignee == "" {
		http.Error(w, "assignee is required", http.StatusBadRequest)
		return
	}

	audience := narrative.Audience(req.Audience)
	if audience != narrative.AudienceStakeholder {
		audience = narrative.AudienceTechnical
	}

	result, err := h.pipeline.Run(r.Context(), pipeline.Params{
		Assignee: req.Assignee,
		Start:    start,
		End:      end.Add(24*time.Hour - time.Second),
		Audience: audience,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrNoTasks) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("report run failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.writeReport(w, result)
}

// LatestReport handles GET /reports/latest.
func (h *Handler) LatestReport(w http.ResponseWriter, r *http.Request) {
	latest := h.scheduler.Latest()
	if latest == nil {
		http.Error(w, "no report generated yet", http.StatusNotFound)
		return
	}
	h.writeReport(w, latest)
}

func (h *Handler) writeReport(w http.ResponseWriter, result *types.Report) {
	resp := ReportResponse{
		Assignee:    result.Assignee,
		StartDate:   result.Start.Format("2006-01-02"),
		EndDate:     result.End.Format("2006-01-02"),
		GeneratedAt: result.GeneratedAt,
		Metrics: MetricsResponse{
			TotalTasks:        result.Metrics.TotalTasks,
			CompletedTasks:    result.Metrics.CompletedTasks,
			CompletionRate:    result.Metrics.CompletionRate,
			TotalHours:        result.Metrics.TotalHours,
			HighPriorityTasks: result.Metrics.HighPriorityTasks,
		},
		Markdown: report.RenderMarkdown(result),
	}

	for _, section := range result.Sections {
		resp.Sections = append(resp.Sections, SectionResponse{
			Name:  section.Name,
			Title: section.Title,
			Body:  section.Body,
		})
	}
	for _, task := range result.Tasks {
		resp.Tasks = append(resp.Tasks, TaskResponse{
			ID:             task.ID,
			Title:          task.Title,
			Type:           task.Type,
			Priority:       task.Priority,
			Status:         task.Status,
			Category:       task.BusinessCategory,
			EstimatedHours: task.EstimatedHours,
			CommitCount:    len(task.Commits),
			RepoCommits:    task.RepoCommits,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
