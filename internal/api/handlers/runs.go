package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bartoszrychlicki/invoice-finder/internal/api/dto"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/storage"
)

// RunsHandler serves reconciliation run history.
type RunsHandler struct {
	*Base
	repo storage.Repository
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{Base: &Base{}, repo: repo}
}

// List handles GET /api/runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 50)
	offset := ParseIntParam(r, "offset", 0)

	runs, total, err := h.repo.ListRuns(limit, offset)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:       make([]dto.RunResponse, 0, len(runs)),
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}
	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id}.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.repo.GetRun(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}
	h.WriteJSON(w, http.StatusOK, toRunResponse(run))
}

// Results handles GET /api/runs/{id}/results.
func (h *RunsHandler) Results(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.repo.GetRun(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}

	results, err := h.repo.GetResults(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ResultListResponse{
		RunID:   id,
		Results: make([]dto.ResultResponse, 0, len(results)),
	}
	for _, res := range results {
		response.Results = append(response.Results, dto.ResultResponse{
			Classification:    res.Classification,
			Strategy:          res.Strategy,
			Score:             res.Score,
			TransactionDate:   res.TransactionDate.Format("2006-01-02"),
			Amount:            res.Amount,
			Currency:          res.Currency,
			Counterparty:      res.Counterparty,
			Description:       res.Description,
			InvoiceNumber:     res.InvoiceNumber,
			Category:          res.Category,
			Partial:           res.Partial,
			Note:              res.Note,
			RecoveryFound:     res.RecoveryFound,
			RecoveryReference: res.RecoveryReference,
		})
	}
	h.WriteJSON(w, http.StatusOK, response)
}

// Stats handles GET /api/stats.
func (h *RunsHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.StatsResponse{
		TotalRuns:         stats.TotalRuns,
		TotalTransactions: stats.TotalTransactions,
		TotalMatched:      stats.TotalMatched,
		TotalMissing:      stats.TotalMissing,
		TotalExempt:       stats.TotalExempt,
		MatchRate:         stats.MatchRate,
		LastRunAt:         stats.LastRunAt,
	})
}

func toRunResponse(run *storage.ReconciliationRun) dto.RunResponse {
	return dto.RunResponse{
		ID:               run.ID,
		StatementFile:    run.StatementFile,
		Dialect:          run.Dialect,
		StartedAt:        run.StartedAt.Format(time.RFC3339),
		FinishedAt:       run.FinishedAt.Format(time.RFC3339),
		Status:           run.Status,
		ErrorMessage:     run.ErrorMessage,
		TransactionCount: run.TransactionCount,
		InvoiceCount:     run.InvoiceCount,
		MatchedCount:     run.MatchedCount,
		MissingCount:     run.MissingCount,
		ExemptCount:      run.ExemptCount,
	}
}
