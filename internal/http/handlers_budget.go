package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"finsight/internal/core"
)

// budgetRequest sets a tenant's category limits.
type budgetRequest struct {
	Period         string             `json:"period"`
	CategoryLimits map[string]float64 `json:"category_limits"`
}

// handleBudget stores the tenant's budget (POST).
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	budget := core.Budget{
		Tenant:         parseTenant(r.URL.Query()),
		Period:         req.Period,
		CategoryLimits: req.CategoryLimits,
	}

	if err := s.store.UpsertBudget(ctx, budget); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	slog.InfoContext(ctx, "Budget updated",
		"tenant", budget.Tenant,
		"categories", len(budget.CategoryLimits))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Budget updated"})
}

// handleBudgetStatus returns limit/spent/remaining per budgeted category.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	tenant := parseTenant(r.URL.Query())
	year, month, err := parsePeriodQuery(r.URL.Query())
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	status, err := s.service.BudgetStatus(ctx, tenant, year, month)
	if err != nil {
		slog.ErrorContext(ctx, "Budget status failed", "tenant", tenant, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, status)
}
