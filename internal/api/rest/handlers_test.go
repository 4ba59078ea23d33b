package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/relativity/internal/estimator"
	"github.com/clintrovert/relativity/internal/gitsource"
	"github.com/clintrovert/relativity/internal/narrative"
	"github.com/clintrovert/relativity/internal/pipeline"
	"github.com/clintrovert/relativity/pkg/types"
)

type stubIssues struct {
	tasks []*types.TaskRecord
}

func (s *stubIssues) QueryTasks(assignee string, start, end time.Time) ([]*types.TaskRecord, error) {
	return s.tasks, nil
}

type stubRepo struct {
	commits []types.CommitRecord
}

func (s *stubRepo) Label() string { return "api" }

func (s *stubRepo) CommitsBetween(ctx context.Context, start, end time.Time) ([]types.CommitRecord, error) {
	return s.commits, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	issues := &stubIssues{tasks: []*types.TaskRecord{
		{ID: "PROJ-1", Title: "Implement payment retries", Type: "Story", Priority: "High"},
	}}
	repo := &stubRepo{commits: []types.CommitRecord{
		{Hash: "a1", Message: "PROJ-1 initial", Repository: "api",
			AuthoredAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
	}}
	return routerWith(t, issues, repo)
}

func routerWith(t *testing.T, issues *stubIssues, repo *stubRepo) http.Handler {
	t.Helper()
	logger := zap.NewNop()

	p := pipeline.New(
		issues,
		gitsource.NewCorrelator([]gitsource.Source{repo}, logger),
		estimator.New(logger),
		narrative.NewGenerator(nil, logger),
		logger,
	)
	scheduler := pipeline.NewScheduler(p, pipeline.Params{
		Assignee: "dana",
		Start:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}, time.Hour, logger)

	handler := NewHandler(p, scheduler, logger)
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return router
}

func TestGenerateReport(t *testing.T) {
	router := testRouter(t)

	body := `{"assignee":"dana","start_date":"2024-03-01","end_date":"2024-03-31","audience":"stakeholder"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "dana", resp.Assignee)
	assert.Equal(t, 1, resp.Metrics.TotalTasks)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "Revenue & Sales", resp.Tasks[0].Category)
	assert.Equal(t, 1, resp.Tasks[0].CommitCount)
	assert.NotEmpty(t, resp.Sections)
	assert.Contains(t, resp.Markdown, "# Work Report")
}

func TestGenerateReportNoTasks(t *testing.T) {
	router := routerWith(t, &stubIssues{}, &stubRepo{})

	body := `{"assignee":"dana","start_date":"2024-03-01","end_date":"2024-03-31"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no tasks found")
}

func TestGenerateReportBadDates(t *testing.T) {
	router := testRouter(t)

	body := `{"assignee":"dana","start_date":"March 1","end_date":"2024-03-31"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLatestReportBeforeFirstRun(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
