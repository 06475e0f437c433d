// Package http exposes the JSON API: period summaries, benchmark reports,
// budget status, cached insights and transaction/budget writes.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"finsight/internal/core"
	"finsight/internal/event"
	"finsight/internal/importer"
	"finsight/internal/insights"
)

// handlerTimeout bounds each request's downstream work.
const handlerTimeout = 20 * time.Second

// Store is the storage surface the handlers write through. The read side
// goes through the insights service.
type Store interface {
	AddTransaction(ctx context.Context, tenant string, tx core.Transaction) (core.Transaction, error)
	ListTransactions(ctx context.Context, tenant string, p core.Period) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, tenant, id string) error
	UpsertBudget(ctx context.Context, budget core.Budget) error
}

type Server struct {
	http.Server
	service  *insights.Service
	store    Store
	importer *importer.Importer
	events   *event.Client
}

// NewServer wires routes. events may be nil; writes then skip publishing.
func NewServer(addr string, service *insights.Service, store Store, events *event.Client) *Server {
	s := &Server{
		service:  service,
		store:    store,
		importer: importer.New(store),
		events:   events,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/", s.handleTransactionByID)
	mux.HandleFunc("/api/transactions/import", s.handleImport)
	mux.HandleFunc("/api/transactions/summary", s.handleSummary)
	mux.HandleFunc("/api/insights", s.handleInsights)
	mux.HandleFunc("/api/insights/benchmarks", s.handleBenchmarks)
	mux.HandleFunc("/api/budget", s.handleBudget)
	mux.HandleFunc("/api/budget/status", s.handleBudgetStatus)

	s.Server = http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "active",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// notifyTransactionChanged invalidates the local cache entry and publishes
// the change for the worker. Publish failures are logged, never surfaced:
// the write itself already succeeded.
func (s *Server) notifyTransactionChanged(ctx context.Context, tenant string, p core.Period) {
	s.service.Invalidate(tenant, p)

	if err := s.events.PublishTransactionChanged(ctx, tenant, p.Year, p.Month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"tenant", tenant,
			"period", p.String(),
			"error", err)
	}
}
