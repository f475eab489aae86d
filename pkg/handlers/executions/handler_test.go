package executions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ops-tools/costpilot/pkg/models/api"
	"github.com/ops-tools/costpilot/pkg/models/domain"
	storemodels "github.com/ops-tools/costpilot/pkg/models/store"
)

type stubStateStore struct {
	latest    map[string]*domain.Execution
	summaries map[string]*domain.ExecutionSummary
	err       error
}

func (s *stubStateStore) CreateExecution(
	context.Context,
	string,
	[]domain.CollectorDef,
	map[string]string,
) (*domain.Execution, error) {
	return nil, errors.New("not implemented")
}

func (s *stubStateStore) GetLatestExecution(_ context.Context, accountID string) (*domain.Execution, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.latest[accountID], nil
}

func (s *stubStateStore) GetExecution(context.Context, string) (*domain.Execution, error) {
	return nil, errors.New("not implemented")
}

func (s *stubStateStore) StartTask(context.Context, string, string) error {
	return errors.New("not implemented")
}

func (s *stubStateStore) CompleteTask(context.Context, string, string, map[string]any) error {
	return errors.New("not implemented")
}

func (s *stubStateStore) FailTask(context.Context, string, string, string) error {
	return errors.New("not implemented")
}

func (s *stubStateStore) CompleteExecution(context.Context, string) error {
	return errors.New("not implemented")
}

func (s *stubStateStore) Summary(_ context.Context, executionID string) (*domain.ExecutionSummary, error) {
	summary, ok := s.summaries[executionID]
	if !ok {
		return nil, errors.New("no such execution")
	}
	return summary, nil
}

type stubReportStore struct {
	latest *storemodels.Report
	err    error
}

func (s *stubReportStore) SaveReport(context.Context, *storemodels.Report) error {
	return errors.New("not implemented")
}

func (s *stubReportStore) SaveSummary(context.Context, *storemodels.Summary) error {
	return errors.New("not implemented")
}

func (s *stubReportStore) GetLatestReport(context.Context) (*storemodels.Report, error) {
	return s.latest, s.err
}

func newRouter(states *stubStateStore, reports *stubReportStore) http.Handler {
	handler := NewHandler(states, reports)
	logger := zerolog.Nop()

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
		})
	})
	router.Get("/api/v1/accounts/{account}/execution", handler.GetLatestExecution)
	router.Get("/api/v1/accounts/{account}/summary", handler.GetExecutionSummary)
	router.Get("/api/v1/reports/latest", handler.GetLatestReport)
	return router
}

func sampleExecution() *domain.Execution {
	started := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Execution{
		ID:        "exec-1",
		AccountID: "111122223333",
		Status:    domain.ExecutionStatusRunning,
		StartedAt: started,
		Tasks: []domain.Task{
			{ID: "task-ec2-instances", Type: "ec2-instances", Status: domain.TaskStatusCompleted},
			{ID: "task-s3-buckets", Type: "s3-buckets", Status: domain.TaskStatusFailed, ErrorMessage: "access denied"},
		},
	}
}

func TestGetLatestExecution_ReturnsExecutionDocument(t *testing.T) {
	// Given
	states := &stubStateStore{latest: map[string]*domain.Execution{
		"111122223333": sampleExecution(),
	}}
	router := newRouter(states, &stubReportStore{})

	// When
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/111122223333/execution", nil))

	// Then
	require.Equal(t, http.StatusOK, rec.Code)
	var got api.Execution
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "exec-1", got.ExecutionID)
	assert.Equal(t, "RUNNING", got.Status)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, "access denied", got.Tasks[1].ErrorMessage)
}

func TestGetLatestExecution_UnknownAccountReturns404(t *testing.T) {
	// Given
	router := newRouter(&stubStateStore{}, &stubReportStore{})

	// When
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/999988887777/execution", nil))

	// Then
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestExecution_StoreFailureReturns500(t *testing.T) {
	// Given
	router := newRouter(&stubStateStore{err: errors.New("bucket unreachable")}, &stubReportStore{})

	// When
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/111122223333/execution", nil))

	// Then
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetExecutionSummary_ReturnsProgressCounts(t *testing.T) {
	// Given
	states := &stubStateStore{
		latest: map[string]*domain.Execution{"111122223333": sampleExecution()},
		summaries: map[string]*domain.ExecutionSummary{
			"exec-1": {
				ExecutionID:     "exec-1",
				AccountID:       "111122223333",
				Status:          domain.ExecutionStatusRunning,
				TotalTasks:      2,
				CompletedTasks:  1,
				FailedTasks:     1,
				PercentComplete: 100,
			},
		},
	}
	router := newRouter(states, &stubReportStore{})

	// When
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/111122223333/summary", nil))

	// Then
	require.Equal(t, http.StatusOK, rec.Code)
	var got api.ExecutionSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 2, got.TotalTasks)
	assert.Equal(t, 1, got.CompletedTasks)
	assert.Equal(t, 1, got.FailedTasks)
	assert.InDelta(t, 100.0, got.PercentComplete, 0.001)
}

func TestGetExecutionSummary_UnknownAccountReturns404(t *testing.T) {
	// Given
	router := newRouter(&stubStateStore{}, &stubReportStore{})

	// When
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/999988887777/summary", nil))

	// Then
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestReport_ReturnsStoredReport(t *testing.T) {
	// Given
	reports := &stubReportStore{latest: &storemodels.Report{
		ExecutionID: "exec-1",
		AccountID:   "111122223333",
		Status:      "SUCCESS",
		TotalCost:   150,
	}}
	router := newRouter(&stubStateStore{}, reports)

	// When
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/latest", nil))

	// Then
	require.Equal(t, http.StatusOK, rec.Code)
	var got storemodels.Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "exec-1", got.ExecutionID)
	assert.InDelta(t, 150.0, got.TotalCost, 0.001)
}

func TestGetLatestReport_NoReportsReturns404(t *testing.T) {
	// Given
	router := newRouter(&stubStateStore{}, &stubReportStore{})

	// When
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/latest", nil))

	// Then
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
