package services

import (
	"context"
	"fmt"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/store"
)

// EventPublisher announces ledger mutations. *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEvent) error
}

// LedgerService validates ledger mutations, applies them to the backend and
// publishes a change event for the worker.
type LedgerService struct {
	ledger    store.Ledger
	publisher EventPublisher
	now       func() time.Time
}

// NewLedgerService wires the service. publisher may be nil, in which case no
// events are sent.
func NewLedgerService(ledger store.Ledger, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		ledger:    ledger,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *LedgerService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	return s.ledger.Snapshot(ctx)
}

func (s *LedgerService) GetDebt(ctx context.Context, id string) (core.Debt, error) {
	return s.ledger.GetDebt(ctx, id)
}

// CreateDebt stores a new debt. A missing initial amount defaults to the
// current balance.
func (s *LedgerService) CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	d.ID = ""
	if d.InitialAmount <= 0 {
		d.InitialAmount = d.CurrentAmount
	}
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	created, err := s.ledger.CreateDebt(ctx, d)
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.DebtCreated, created.ID))
	return created, nil
}

func (s *LedgerService) UpdateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if d.InitialAmount <= 0 {
		d.InitialAmount = d.CurrentAmount
	}
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	updated, err := s.ledger.UpdateDebt(ctx, d)
	if err != nil {
		return core.Debt{}, fmt.Errorf("update debt: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.DebtUpdated, updated.ID))
	return updated, nil
}

func (s *LedgerService) DeleteDebt(ctx context.Context, id string) error {
	if err := s.ledger.DeleteDebt(ctx, id); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.DebtDeleted, id))
	return nil
}

func (s *LedgerService) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in.ID = ""
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	created, err := s.ledger.CreateIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.IncomeCreated, created.ID))
	return created, nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id string) error {
	if err := s.ledger.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.IncomeDeleted, id))
	return nil
}

func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = ""
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	created, err := s.ledger.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.ExpenseCreated, created.ID))
	return created, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.ledger.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.ExpenseDeleted, id))
	return nil
}

// RecordPayment applies a payment to its debt. An undated payment is dated today.
func (s *LedgerService) RecordPayment(ctx context.Context, p core.Payment) (core.Debt, error) {
	p.ID = ""
	if p.Date.IsZero() {
		now := s.now()
		p.Date = core.NewDate(now.Year(), int(now.Month()), now.Day())
	}
	if err := p.Validate(); err != nil {
		return core.Debt{}, err
	}
	debt, err := s.ledger.RecordPayment(ctx, p)
	if err != nil {
		return core.Debt{}, fmt.Errorf("record payment: %w", err)
	}

	msg := amqp.NewLedgerEvent(amqp.PaymentRecorded, p.DebtID)
	msg.Amount = p.Amount
	msg.RecordedBy = p.RecordedBy
	s.publish(ctx, msg)
	return debt, nil
}

// ListPayments returns the payment log, filtered to one debt unless debtID is empty.
func (s *LedgerService) ListPayments(ctx context.Context, debtID string) ([]core.Payment, error) {
	if debtID != "" {
		if _, err := s.ledger.GetDebt(ctx, debtID); err != nil {
			return nil, err
		}
	}
	return s.ledger.ListPayments(ctx, debtID)
}

func (s *LedgerService) History(ctx context.Context) ([]core.HistoryPoint, error) {
	return s.ledger.History(ctx)
}

// publish never fails the caller; the mutation is already stored.
func (s *LedgerService) publish(ctx context.Context, msg *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, msg); err != nil {
		fields := log.NewFields().WithErrorType(log.ErrorTypeNetwork)
		fields[log.FieldEventKind] = string(msg.Kind)
		fields[log.FieldEntityID] = msg.EntityID
		log.NewStructuredLogger(log.FromContext(ctx)).
			LogError(ctx, "Failed to publish ledger event", err, log.ComponentAMQP, log.OpPublish, fields)
	}
}
