package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finsight/internal/core"
)

// transactionRequest is the write payload for a single transaction.
type transactionRequest struct {
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	IsIncome      bool    `json:"is_income"`
	Category      string  `json:"category"`
	Date          string  `json:"date"` // YYYY-MM-DD, defaults to today
	PaymentMethod string  `json:"payment_method"`
	Recurring     bool    `json:"recurring"`
}

// handleTransactions creates (POST) or lists (GET) transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTransaction(w, r)
	case http.MethodGet:
		s.listTransactions(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	tenant := parseTenant(r.URL.Query())
	tx := core.Transaction{
		Description:   req.Description,
		Amount:        req.Amount,
		IsIncome:      req.IsIncome,
		Category:      core.NormalizeCategory(req.Category),
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Recurring:     req.Recurring,
	}

	saved, err := s.store.AddTransaction(ctx, tenant, tx)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.notifyTransactionChanged(ctx, tenant, core.Period{Year: date.Year(), Month: int(date.Month())})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Transaction added",
		"transaction": saved,
	})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	tenant := parseTenant(r.URL.Query())
	year, month, err := parsePeriodQuery(r.URL.Query())
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	p, err := core.NewPeriod(year, month)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	txs, err := s.store.ListTransactions(ctx, tenant, p)
	if err != nil {
		slog.ErrorContext(ctx, "List transactions failed", "tenant", tenant, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	writeJSON(w, http.StatusOK, txs)
}

// handleTransactionByID deletes a transaction (DELETE /api/transactions/{id}).
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	tenant := parseTenant(r.URL.Query())
	if err := s.store.DeleteTransaction(ctx, tenant, id); err != nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	// Without the record we no longer know its period; drop the current one,
	// the worker sweep covers older months.
	s.notifyTransactionChanged(ctx, tenant, core.CurrentPeriod())

	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}

// handleImport bulk-loads transactions from a CSV request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	tenant := parseTenant(r.URL.Query())
	stored, err := s.importer.Import(ctx, tenant, r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Imported rows may span several months; invalidate each touched period.
	periods := make(map[core.Period]struct{})
	for _, tx := range stored {
		periods[core.Period{Year: tx.Date.Year(), Month: int(tx.Date.Month())}] = struct{}{}
	}
	for p := range periods {
		s.notifyTransactionChanged(ctx, tenant, p)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Transactions imported",
		"imported": len(stored),
	})
}
