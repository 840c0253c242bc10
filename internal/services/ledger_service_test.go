package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/store/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (f *fakePublisher) PublishLedgerEvent(_ context.Context, msg *amqp.LedgerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return f.err
}

func (f *fakePublisher) kinds() []amqp.EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]amqp.EventKind, len(f.events))
	for i, e := range f.events {
		out[i] = e.Kind
	}
	return out
}

func newLedger(t *testing.T) (*LedgerService, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	svc := NewLedgerService(memory.New(memory.Seed{}), pub)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }
	return svc, pub
}

func TestLedgerServiceCreateDebt(t *testing.T) {
	svc, pub := newLedger(t)
	ctx := context.Background()

	d, err := svc.CreateDebt(ctx, core.Debt{ID: "ignored", Name: "Card", CurrentAmount: 500, MinPayment: 50})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	if d.ID == "" || d.ID == "ignored" {
		t.Errorf("id = %q, want a fresh one", d.ID)
	}
	if d.InitialAmount != 500 {
		t.Errorf("initial amount = %v, want current balance", d.InitialAmount)
	}
	if kinds := pub.kinds(); len(kinds) != 1 || kinds[0] != amqp.DebtCreated {
		t.Errorf("events = %v", kinds)
	}

	if _, err := svc.CreateDebt(ctx, core.Debt{Name: " ", CurrentAmount: 1}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName", err)
	}
	if len(pub.kinds()) != 1 {
		t.Error("a rejected debt must not publish")
	}
}

func TestLedgerServiceRecordPayment(t *testing.T) {
	svc, pub := newLedger(t)
	ctx := context.Background()
	d, err := svc.CreateDebt(ctx, core.Debt{Name: "Card", CurrentAmount: 500, MinPayment: 50})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.RecordPayment(ctx, core.Payment{DebtID: d.ID, Amount: 800, RecordedBy: "Alex"})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if updated.CurrentAmount != 0 {
		t.Errorf("balance = %v, want floored at 0", updated.CurrentAmount)
	}

	payments, err := svc.ListPayments(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 || payments[0].Date.String() != "2026-10-19" || payments[0].RecordedBy != "Alex" {
		t.Errorf("payments = %+v", payments)
	}

	history, err := svc.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Period != "2026-10" || history[0].TotalDebt != 0 {
		t.Errorf("history = %+v", history)
	}

	last := pub.events[len(pub.events)-1]
	if last.Kind != amqp.PaymentRecorded || last.Amount != 800 || last.RecordedBy != "Alex" {
		t.Errorf("event = %+v", last)
	}
}

func TestLedgerServiceNotFound(t *testing.T) {
	svc, pub := newLedger(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"delete debt", func() error { return svc.DeleteDebt(ctx, "missing") }},
		{"delete income", func() error { return svc.DeleteIncome(ctx, "missing") }},
		{"delete expense", func() error { return svc.DeleteExpense(ctx, "missing") }},
		{"update debt", func() error {
			_, err := svc.UpdateDebt(ctx, core.Debt{ID: "missing", Name: "X", CurrentAmount: 1})
			return err
		}},
		{"payment", func() error {
			_, err := svc.RecordPayment(ctx, core.Payment{DebtID: "missing", Amount: 10})
			return err
		}},
		{"list payments", func() error {
			_, err := svc.ListPayments(ctx, "missing")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, core.ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
	if len(pub.kinds()) != 0 {
		t.Errorf("failed mutations published %v", pub.kinds())
	}
}

func TestLedgerServiceBudget(t *testing.T) {
	svc, pub := newLedger(t)
	ctx := context.Background()

	in, err := svc.CreateIncome(ctx, core.Income{Source: "Salary", Amount: 3000})
	if err != nil {
		t.Fatal(err)
	}
	e, err := svc.CreateExpense(ctx, core.Expense{Name: "Rent", Amount: 1000, Category: core.Services})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateExpense(ctx, core.Expense{Name: "Bad", Amount: 10, Category: "Travel"}); !errors.Is(err, core.ErrInvalidCategory) {
		t.Errorf("err = %v, want ErrInvalidCategory", err)
	}

	if err := svc.DeleteIncome(ctx, in.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatal(err)
	}

	want := []amqp.EventKind{amqp.IncomeCreated, amqp.ExpenseCreated, amqp.IncomeDeleted, amqp.ExpenseDeleted}
	got := pub.kinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLedgerServicePublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("circuit breaker is open")}
	svc := NewLedgerService(memory.New(memory.Seed{}), pub)

	if _, err := svc.CreateIncome(context.Background(), core.Income{Source: "Salary", Amount: 10}); err != nil {
		t.Fatalf("publish failure leaked: %v", err)
	}
}

func TestLedgerServiceWithoutPublisher(t *testing.T) {
	svc := NewLedgerService(memory.New(memory.Seed{}), nil)
	if _, err := svc.CreateIncome(context.Background(), core.Income{Source: "Salary", Amount: 10}); err != nil {
		t.Fatal(err)
	}
}
