package storage

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"finsight/internal/core"
)

// MemoryStore is an in-memory implementation of the same ports as
// SQLiteRepository, used in tests and as a throwaway local backend.
type MemoryStore struct {
	mu      sync.RWMutex
	txs     map[string][]core.Transaction // tenant -> transactions
	budgets map[string]core.Budget
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		txs:     make(map[string][]core.Transaction),
		budgets: make(map[string]core.Budget),
	}
}

func (m *MemoryStore) AddTransaction(_ context.Context, tenant string, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.Category = core.NormalizeCategory(tx.Category)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[tenant] = append(m.txs[tenant], tx)
	return tx, nil
}

func (m *MemoryStore) ListTransactions(_ context.Context, tenant string, p core.Period) ([]core.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range m.txs[tenant] {
		if p.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) DeleteTransaction(_ context.Context, tenant, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txs := m.txs[tenant]
	for i, tx := range txs {
		if tx.ID == id {
			m.txs[tenant] = append(txs[:i], txs[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *MemoryStore) UpsertBudget(_ context.Context, budget core.Budget) error {
	if err := budget.Validate(); err != nil {
		return err
	}
	if budget.Period == "" {
		budget.Period = "monthly"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[budget.Tenant] = budget
	return nil
}

func (m *MemoryStore) GetBudget(_ context.Context, tenant string) (core.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, ok := m.budgets[tenant]
	if !ok {
		return core.Budget{}, core.ErrNoBudget
	}
	return budget, nil
}

func (m *MemoryStore) Tenants(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tenants := make([]string, 0, len(m.txs))
	for tenant := range m.txs {
		tenants = append(tenants, tenant)
	}
	sort.Strings(tenants)
	return tenants, nil
}
