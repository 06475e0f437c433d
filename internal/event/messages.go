package event

import (
	"encoding/json"
	"time"
)

// TransactionChanged signals that a tenant's transactions changed for a
// period. Carries only the key; consumers re-read from storage.
type TransactionChanged struct {
	Tenant    string    `json:"tenant"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionChanged(tenant string, year, month int) *TransactionChanged {
	return &TransactionChanged{
		Tenant:    tenant,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *TransactionChanged) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionChangedFromJSON(data []byte) (*TransactionChanged, error) {
	var msg TransactionChanged
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
