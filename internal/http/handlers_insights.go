package http

import (
	"context"
	"log/slog"
	"net/http"
)

// handleSummary returns the PeriodSummary for tenant/year/month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
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

	summary, err := s.service.PeriodSummary(ctx, tenant, year, month)
	if err != nil {
		slog.ErrorContext(ctx, "Summary failed", "tenant", tenant, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleBenchmarks returns the BenchmarkReport for tenant/year/month.
func (s *Server) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
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

	report, err := s.service.BenchmarkReport(ctx, tenant, year, month)
	if err != nil {
		slog.ErrorContext(ctx, "Benchmark report failed", "tenant", tenant, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleInsights returns the cached advisor payload; a stale or missing
// entry triggers a single shared recomputation.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
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

	result, err := s.service.Insights(ctx, tenant, year, month)
	if err != nil {
		slog.ErrorContext(ctx, "Insights failed", "tenant", tenant, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
