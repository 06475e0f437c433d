// Package importer bulk-loads transactions from CSV exports.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// TransactionWriter is the storage port the importer writes through.
type TransactionWriter interface {
	AddTransaction(ctx context.Context, tenant string, tx core.Transaction) (core.Transaction, error)
}

// row mirrors one CSV record. Amounts come in as strings so decimal parsing
// controls rounding instead of encoding/csv's float handling.
type row struct {
	Date          string `csv:"date"`
	Description   string `csv:"description"`
	Amount        string `csv:"amount"`
	IsIncome      bool   `csv:"is_income"`
	Category      string `csv:"category"`
	PaymentMethod string `csv:"payment_method"`
	Recurring     bool   `csv:"recurring"`
}

// Parse reads CSV records into transactions. The whole file is rejected on
// the first bad row so a partial import never goes unnoticed.
func Parse(r io.Reader) ([]core.Transaction, error) {
	var rows []row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal csv: %w", err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for i, rec := range rows {
		tx, err := rec.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r row) toTransaction() (core.Transaction, error) {
	date, err := time.ParseInLocation("2006-01-02", r.Date, time.UTC)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", r.Date, err)
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", r.Amount, err)
	}
	if amount.IsNegative() {
		return core.Transaction{}, fmt.Errorf("%w: amount %s is negative", core.ErrInvalidAmount, r.Amount)
	}

	tx := core.Transaction{
		Description:   r.Description,
		Amount:        amount.InexactFloat64(),
		IsIncome:      r.IsIncome,
		Category:      core.NormalizeCategory(r.Category),
		Date:          date,
		PaymentMethod: r.PaymentMethod,
		Recurring:     r.Recurring,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// Importer parses and stores CSV transactions for a tenant.
type Importer struct {
	store TransactionWriter
}

func New(store TransactionWriter) *Importer {
	return &Importer{store: store}
}

// Import parses and stores the CSV, returning the stored transactions.
// Parsing failures abort before anything is written; a storage failure
// mid-way returns the rows that made it in alongside the error.
func (imp *Importer) Import(ctx context.Context, tenant string, r io.Reader) ([]core.Transaction, error) {
	txs, err := Parse(r)
	if err != nil {
		return nil, err
	}

	stored := make([]core.Transaction, 0, len(txs))
	for i, tx := range txs {
		saved, err := imp.store.AddTransaction(ctx, tenant, tx)
		if err != nil {
			return stored, fmt.Errorf("store row %d: %w", i+1, err)
		}
		stored = append(stored, saved)
	}

	slog.InfoContext(ctx, "Imported transactions", "tenant", tenant, "count", len(stored))
	return stored, nil
}
