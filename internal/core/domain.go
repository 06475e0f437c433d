package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultCategory is assigned to transactions with a missing category.
	DefaultCategory = "other"

	// MinYear is the earliest year accepted for a reporting period.
	MinYear = 2000
)

type (
	// Transaction is a single income or expense record. Amounts are always
	// non-negative; IsIncome decides which side of the ledger it lands on.
	Transaction struct {
		ID            string    `json:"id"`
		Description   string    `json:"description"`
		Amount        float64   `json:"amount"`
		IsIncome      bool      `json:"is_income"`
		Category      string    `json:"category"`
		Date          time.Time `json:"date"`
		PaymentMethod string    `json:"payment_method,omitempty"`
		Recurring     bool      `json:"recurring"`
	}

	// Period is a calendar year+month bucket used to scope aggregation.
	Period struct {
		Year  int `json:"year"`
		Month int `json:"month"` // 1-12
	}

	// Budget holds per-category spending limits for a tenant.
	Budget struct {
		Tenant         string             `json:"tenant"`
		Period         string             `json:"period"` // e.g. "monthly"
		CategoryLimits map[string]float64 `json:"category_limits"`
	}
)

var (
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrIncompletePeriod   = errors.New("incomplete period: both month and year are required")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrNoBudget           = errors.New("no budget configured")
	ErrComputationTimeout = errors.New("insight computation timed out")
)

// NewPeriod validates year and month and returns a Period.
// A zero value for exactly one of the two yields ErrIncompletePeriod so a
// caller can distinguish a half-supplied period from an out-of-range one.
func NewPeriod(year, month int) (Period, error) {
	if (year == 0) != (month == 0) {
		return Period{}, ErrIncompletePeriod
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d not in [1,12]", ErrInvalidPeriod, month)
	}
	if year < MinYear || year > time.Now().Year() {
		return Period{}, fmt.Errorf("%w: year %d not in [%d,%d]", ErrInvalidPeriod, year, MinYear, time.Now().Year())
	}
	return Period{Year: year, Month: month}, nil
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod() Period {
	now := time.Now()
	return Period{Year: now.Year(), Month: int(now.Month())}
}

// Start returns the first instant of the period (UTC).
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the first instant of the following month.
func (p Period) Next() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether t falls within [Start, Next). Date arithmetic,
// never string matching, so a year embedded in another field can't leak in.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start()) && t.Before(p.Next())
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// NormalizeCategory maps blank categories to DefaultCategory.
func NormalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultCategory
	}
	return c
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if t.Amount < 0 {
		return fmt.Errorf("%w: must be non-negative", ErrInvalidAmount)
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (b Budget) Validate() error {
	if len(b.CategoryLimits) == 0 {
		return errors.New("budget has no category limits")
	}
	for category, limit := range b.CategoryLimits {
		if strings.TrimSpace(category) == "" {
			return errors.New("budget category cannot be empty")
		}
		if limit < 0 {
			return fmt.Errorf("%w: limit for %q must be non-negative", ErrInvalidAmount, category)
		}
	}
	return nil
}
