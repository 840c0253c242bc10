package store

import (
	"context"

	"finanzas/internal/core"
)

// Ports for the ledger backends.
type (
	// SnapshotReader returns the current debts, incomes and expenses in
	// insertion order. Order matters: minimum payments are made in it.
	SnapshotReader interface {
		Snapshot(ctx context.Context) (core.Snapshot, error)
	}

	DebtStore interface {
		GetDebt(ctx context.Context, id string) (core.Debt, error)
		// CreateDebt assigns an ID when the debt has none.
		CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error)
		UpdateDebt(ctx context.Context, d core.Debt) (core.Debt, error)
		DeleteDebt(ctx context.Context, id string) error
	}

	BudgetStore interface {
		CreateIncome(ctx context.Context, in core.Income) (core.Income, error)
		DeleteIncome(ctx context.Context, id string) error
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	PaymentStore interface {
		// RecordPayment lowers the debt balance (never below zero), logs the
		// payment and stores the resulting total debt as the history point of
		// the payment's month. It returns the updated debt.
		RecordPayment(ctx context.Context, p core.Payment) (core.Debt, error)
		ListPayments(ctx context.Context, debtID string) ([]core.Payment, error)
	}

	HistoryStore interface {
		// History returns the monthly points in chronological order.
		History(ctx context.Context) ([]core.HistoryPoint, error)
		// RecordHistory inserts or replaces the point for its period.
		RecordHistory(ctx context.Context, p core.HistoryPoint) error
	}

	// Ledger is everything a backend provides.
	Ledger interface {
		SnapshotReader
		DebtStore
		BudgetStore
		PaymentStore
		HistoryStore
	}
)
