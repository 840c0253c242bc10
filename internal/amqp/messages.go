package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind names the ledger mutation that produced a LedgerEvent.
type EventKind string

const (
	DebtCreated     EventKind = "debt.created"
	DebtUpdated     EventKind = "debt.updated"
	DebtDeleted     EventKind = "debt.deleted"
	IncomeCreated   EventKind = "income.created"
	IncomeDeleted   EventKind = "income.deleted"
	ExpenseCreated  EventKind = "expense.created"
	ExpenseDeleted  EventKind = "expense.deleted"
	PaymentRecorded EventKind = "payment.recorded"
)

// LedgerEvent tells the worker that the household snapshot changed.
// It carries only identifiers; the worker reloads the snapshot itself.
type LedgerEvent struct {
	Kind       EventKind `json:"kind"`
	EntityID   string    `json:"entity_id"`
	Amount     float64   `json:"amount,omitempty"`
	RecordedBy string    `json:"recorded_by,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind EventKind, entityID string) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes a message and rejects events without a kind.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, fmt.Errorf("ledger event without kind")
	}
	return &msg, nil
}
