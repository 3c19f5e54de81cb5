package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartoszrychlicki/invoice-finder/internal/api/dto"
	"github.com/bartoszrychlicki/invoice-finder/internal/application/reconcile"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/storage"
)

// stubReconciler returns a canned result for on-demand runs.
type stubReconciler struct {
	lastOpts reconcile.Options
	result   *reconcile.Result
	err      error
}

func (s *stubReconciler) Run(_ context.Context, opts reconcile.Options) (*reconcile.Result, error) {
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testServer(repo storage.Repository, reconciler *stubReconciler) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if reconciler == nil {
		return NewServer(DefaultConfig(), repo, nil, logger)
	}
	return NewServer(DefaultConfig(), repo, reconciler, logger)
}

func seedRun(t *testing.T, repo *storage.MockRepository, id string) {
	t.Helper()
	require.NoError(t, repo.SaveRun(&storage.ReconciliationRun{
		ID:               id,
		StatementFile:    "statement.csv",
		Dialect:          "delimited",
		StartedAt:        time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC),
		FinishedAt:       time.Date(2025, 11, 20, 10, 0, 2, 0, time.UTC),
		Status:           storage.RunStatusCompleted,
		TransactionCount: 4,
		MatchedCount:     2,
		MissingCount:     1,
		ExemptCount:      1,
	}))
}

func TestHealthEndpoint(t *testing.T) {
	server := testServer(storage.NewMockRepository(), nil)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
}

func TestListRuns(t *testing.T) {
	repo := storage.NewMockRepository()
	seedRun(t, repo, "run-1")
	seedRun(t, repo, "run-2")
	server := testServer(repo, nil)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.RunListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.TotalCount)
	assert.Len(t, list.Runs, 2)
	assert.Equal(t, 10, list.Limit)
}

func TestListRuns_StorageError(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.ListRunsErr = errors.New("db closed")
	server := testServer(repo, nil)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetRun(t *testing.T) {
	repo := storage.NewMockRepository()
	seedRun(t, repo, "run-1")
	server := testServer(repo, nil)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var run dto.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "delimited", run.Dialect)
	assert.Equal(t, 2, run.MatchedCount)
}

func TestGetRun_NotFound(t *testing.T) {
	server := testServer(storage.NewMockRepository(), nil)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/absent", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRunResults(t *testing.T) {
	repo := storage.NewMockRepository()
	seedRun(t, repo, "run-1")
	require.NoError(t, repo.SaveResults("run-1", []*storage.RunResult{
		{
			Classification:  storage.ClassificationMatched,
			Strategy:        "exact",
			Score:           100,
			TransactionDate: time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC),
			Amount:          -1204.63,
			Currency:        "PLN",
			InvoiceNumber:   "FV/1/2025",
		},
		{
			Classification: storage.ClassificationExempt,
			Amount:         -3.50,
			Category:       "FEES",
		},
	}))
	server := testServer(repo, nil)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run-1/results", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.ResultListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "run-1", list.RunID)
	require.Len(t, list.Results, 2)
	assert.Equal(t, "FV/1/2025", list.Results[0].InvoiceNumber)
	assert.Equal(t, "2025-11-20", list.Results[0].TransactionDate)
	assert.Equal(t, "FEES", list.Results[1].Category)
}

func TestGetRunResults_UnknownRun(t *testing.T) {
	server := testServer(storage.NewMockRepository(), nil)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/absent/results", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	repo := storage.NewMockRepository()
	seedRun(t, repo, "run-1")
	server := testServer(repo, nil)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 4, stats.TotalTransactions)
	assert.InDelta(t, 0.5, stats.MatchRate, 0.0001)
}

func TestReconcileEndpoint(t *testing.T) {
	reconciler := &stubReconciler{
		result: &reconcile.Result{
			RunID:   "run-new",
			Matched: make([]reconcile.MatchedResult, 3),
			Missing: make([]reconcile.MissingResult, 1),
		},
	}
	server := testServer(storage.NewMockRepository(), reconciler)

	body := strings.NewReader(`{"file": "statement.csv", "skip_search": true}`)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reconcile", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-new", resp.RunID)
	assert.Equal(t, 3, resp.MatchedCount)
	assert.Equal(t, 1, resp.MissingCount)

	assert.Equal(t, "statement.csv", reconciler.lastOpts.StatementPath)
	assert.True(t, reconciler.lastOpts.SkipSearch)
}

func TestReconcileEndpoint_Validation(t *testing.T) {
	server := testServer(storage.NewMockRepository(), &stubReconciler{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcileEndpoint_RunFailure(t *testing.T) {
	reconciler := &stubReconciler{err: errors.New("failed to parse statement")}
	server := testServer(storage.NewMockRepository(), reconciler)

	body := strings.NewReader(`{"file": "broken.csv"}`)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reconcile", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcileEndpoint_NotRegisteredWithoutReconciler(t *testing.T) {
	server := testServer(storage.NewMockRepository(), nil)

	body := strings.NewReader(`{"file": "statement.csv"}`)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reconcile", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
