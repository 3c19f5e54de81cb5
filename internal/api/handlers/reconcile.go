package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bartoszrychlicki/invoice-finder/internal/api/dto"
	"github.com/bartoszrychlicki/invoice-finder/internal/application/reconcile"
)

// Reconciler runs a reconciliation on demand.
type Reconciler interface {
	Run(ctx context.Context, opts reconcile.Options) (*reconcile.Result, error)
}

// ReconcileHandler triggers reconciliation runs over HTTP.
type ReconcileHandler struct {
	*Base
	reconciler Reconciler
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(reconciler Reconciler) *ReconcileHandler {
	return &ReconcileHandler{Base: &Base{}, reconciler: reconciler}
}

// Start handles POST /api/reconcile. The run executes synchronously; a
// statement of a few hundred transactions reconciles in well under a second
// unless recovery search is enabled.
func (h *ReconcileHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.File == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("file is required"))
		return
	}

	result, err := h.reconciler.Run(r.Context(), reconcile.Options{
		StatementPath: req.File,
		SkipSearch:    req.SkipSearch,
	})
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.ReconcileResponse{
		RunID:        result.RunID,
		MatchedCount: len(result.Matched),
		MissingCount: len(result.Missing),
		ExemptCount:  len(result.Exempt),
	})
}
