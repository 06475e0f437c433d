package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"finsight/internal/core"
)

const dateLayout = "2006-01-02"

// SQLiteRepository persists transactions and budgets. It implements the
// insights TransactionFeed and BudgetStore ports.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AddTransaction validates and stores a transaction for the tenant,
// assigning a UUID when the record has no ID yet.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, tenant string, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.Category = core.NormalizeCategory(tx.Category)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, tenant, description, amount, is_income, category, tx_date, payment_method, recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tenant, tx.Description, tx.Amount, tx.IsIncome, tx.Category,
		tx.Date.UTC().Format(dateLayout), tx.PaymentMethod, tx.Recurring)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"tenant", tenant,
		"amount", tx.Amount,
		"is_income", tx.IsIncome,
		"category", tx.Category)

	return tx, nil
}

// ListTransactions returns the tenant's transactions whose date falls in
// [first day of period, first day of next period), newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, tenant string, p core.Period) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount, is_income, category, tx_date, payment_method, recurring
		FROM transactions
		WHERE tenant = ? AND tx_date >= ? AND tx_date < ?
		ORDER BY tx_date DESC, id`,
		tenant, p.Start().Format(dateLayout), p.Next().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// DeleteTransaction removes a transaction by ID, scoped to the tenant.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, tenant, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE tenant = ? AND id = ?`, tenant, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertBudget stores or replaces the tenant's budget. Category limits are
// stored as a JSON column.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, budget core.Budget) error {
	if err := budget.Validate(); err != nil {
		return err
	}
	if budget.Period == "" {
		budget.Period = "monthly"
	}

	limits, err := json.Marshal(budget.CategoryLimits)
	if err != nil {
		return fmt.Errorf("marshal category limits: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO budgets (tenant, period, category_limits, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant) DO UPDATE SET
			period = excluded.period,
			category_limits = excluded.category_limits,
			updated_at = excluded.updated_at`,
		budget.Tenant, budget.Period, string(limits), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	return nil
}

// GetBudget returns the tenant's budget or core.ErrNoBudget.
func (r *SQLiteRepository) GetBudget(ctx context.Context, tenant string) (core.Budget, error) {
	var (
		budget = core.Budget{Tenant: tenant}
		limits string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT period, category_limits FROM budgets WHERE tenant = ?`, tenant).
		Scan(&budget.Period, &limits)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNoBudget
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("query budget: %w", err)
	}

	if err := json.Unmarshal([]byte(limits), &budget.CategoryLimits); err != nil {
		return core.Budget{}, fmt.Errorf("unmarshal category limits: %w", err)
	}

	return budget, nil
}

// Tenants lists all tenants that have at least one transaction. Used by the
// worker to sweep current-month insights.
func (r *SQLiteRepository) Tenants(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT tenant FROM transactions ORDER BY tenant`)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		var (
			tx      core.Transaction
			rawDate string
		)
		if err := rows.Scan(&tx.ID, &tx.Description, &tx.Amount, &tx.IsIncome,
			&tx.Category, &rawDate, &tx.PaymentMethod, &tx.Recurring); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		date, err := time.ParseInLocation(dateLayout, rawDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", rawDate, err)
		}
		tx.Date = date
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
