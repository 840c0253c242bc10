package planner

import (
	"math"
	"testing"

	"finanzas/internal/core"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestComputeCapacity(t *testing.T) {
	snap := core.Snapshot{
		Incomes: []core.Income{{Source: "salary", Amount: 3000}, {Source: "side", Amount: 1000}},
		Expenses: []core.Expense{
			{Name: "rent", Amount: 500, Category: core.Services},
			{Name: "groceries", Amount: 100, Category: core.Food, Frequency: core.FrequencyPtr(core.Weekly)},
			{Name: "nanny", Amount: 200, Category: core.Nanny, Frequency: core.FrequencyPtr(core.BiWeekly)},
		},
		Debts: []core.Debt{
			{ID: "a", Name: "A", InitialAmount: 1000, CurrentAmount: 800, MinPayment: 100},
			{ID: "b", Name: "B", InitialAmount: 500, CurrentAmount: 0, MinPayment: 50},
		},
	}

	c := ComputeCapacity(snap)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"income", c.TotalIncome, 4000},
		{"fixed expenses", c.TotalFixedExpenses, 1300},
		{"min payments skip paid debts", c.TotalMinPayments, 100},
		{"free cash flow", c.FreeCashFlow, 2600},
		{"payment capacity", c.PaymentCapacity, 2700},
		{"daily cost", c.DailyCost, 90},
		{"total debt", c.TotalDebt, 800},
		{"initial debt", c.InitialTotalDebt, 1500},
		{"paid off", c.TotalPaidOff, 700},
		{"percent paid", c.PercentPaid, 700.0 / 1500 * 100},
		{"percent remaining", c.PercentRemaining, 800.0 / 1500 * 100},
	}
	for _, ch := range checks {
		if !approx(ch.got, ch.want) {
			t.Errorf("%s: got %v want %v", ch.name, ch.got, ch.want)
		}
	}
}

func TestComputeCapacityNegativeCashFlow(t *testing.T) {
	snap := core.Snapshot{
		Incomes: []core.Income{{Source: "job", Amount: 100}},
		Debts:   []core.Debt{{Name: "card", CurrentAmount: 1000, MinPayment: 300}},
	}
	c := ComputeCapacity(snap)
	if c.FreeCashFlow != -200 {
		t.Fatalf("free cash flow = %v, want -200", c.FreeCashFlow)
	}
	if c.PaymentCapacity != 100 {
		t.Fatalf("payment capacity = %v, want 100", c.PaymentCapacity)
	}
}

func TestComputeCapacityEdgeInputs(t *testing.T) {
	t.Run("non-finite income counts as zero", func(t *testing.T) {
		c := ComputeCapacity(core.Snapshot{Incomes: []core.Income{{Source: "x", Amount: math.NaN()}, {Source: "y", Amount: 10}}})
		if c.TotalIncome != 10 {
			t.Fatalf("income = %v", c.TotalIncome)
		}
	})
	t.Run("empty snapshot", func(t *testing.T) {
		c := ComputeCapacity(core.Snapshot{})
		if c != (Capacity{}) {
			t.Fatalf("expected zero capacity, got %+v", c)
		}
	})
	t.Run("balance above principal gives negative progress", func(t *testing.T) {
		c := ComputeCapacity(core.Snapshot{Debts: []core.Debt{{Name: "a", InitialAmount: 1000, CurrentAmount: 1200}}})
		if !approx(c.PercentPaid, -20) || !approx(c.PercentRemaining, 120) {
			t.Fatalf("progress = %v / %v", c.PercentPaid, c.PercentRemaining)
		}
	})
}
