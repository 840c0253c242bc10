package planner

import (
	"testing"

	"finanzas/internal/core"
)

func TestAnalyze(t *testing.T) {
	snap := twoDebtSnapshot()
	snap.Incomes = []core.Income{{Source: "salary", Amount: 1000}}
	snap.Expenses = []core.Expense{{Name: "rent", Amount: 600, Category: core.Services}}

	r := Analyze(snap, "", Options{})

	if r.Capacity.PaymentCapacity != 400 {
		t.Fatalf("capacity = %v", r.Capacity.PaymentCapacity)
	}
	if r.Recommendation.Rationale != RationaleHighInterest || r.Recommendation.DebtID != "a" {
		t.Fatalf("recommendation = %+v", r.Recommendation)
	}
	if r.Schedule.Strategy != Avalanche || r.Schedule.Outcome != OutcomePaidOff {
		t.Fatalf("schedule %s/%s", r.Schedule.Strategy, r.Schedule.Outcome)
	}
	if r.Priority == nil || r.Priority.Debt.ID != "a" {
		t.Fatalf("priority = %+v", r.Priority)
	}
	if r.Priority.SuggestedPayment != 200 {
		t.Fatalf("suggested payment = %v, want min 100 + free 100", r.Priority.SuggestedPayment)
	}
	if len(r.Estimates) != 2 {
		t.Fatalf("estimates = %d", len(r.Estimates))
	}

	explicit := Analyze(snap, Snowball, Options{})
	if explicit.Schedule.Strategy != Snowball || explicit.Recommendation.Rationale != RationaleExplicit {
		t.Fatalf("explicit strategy not honoured: %+v", explicit.Recommendation)
	}
}

func TestAnalyzeSuggestedPaymentWithNegativeCashFlow(t *testing.T) {
	snap := core.Snapshot{
		Incomes: []core.Income{{Source: "job", Amount: 100}},
		Debts:   []core.Debt{{ID: "d", CurrentAmount: 1000, MinPayment: 300}},
	}
	r := Analyze(snap, Avalanche, Options{Horizon: 6})
	if r.Priority.SuggestedPayment != 300 {
		t.Fatalf("suggested payment = %v, want the minimum", r.Priority.SuggestedPayment)
	}
	if !r.Schedule.Indeterminate() {
		t.Fatal("expected indeterminate schedule")
	}
}

func TestCompare(t *testing.T) {
	snap := twoDebtSnapshot()
	av := Simulate(snap, 400, Avalanche, Options{})
	sb := Simulate(snap, 400, Snowball, Options{})

	c := Compare(av, sb)
	if c.Avalanche.Strategy != Avalanche || c.Snowball.Strategy != Snowball {
		t.Fatalf("summaries swapped: %+v", c)
	}
	if !approx(c.InterestSaved, sb.TotalInterest-av.TotalInterest) {
		t.Fatalf("interest saved = %v", c.InterestSaved)
	}
	if c.PeriodsSaved != sb.PayoffPeriod-av.PayoffPeriod {
		t.Fatalf("periods saved = %d", c.PeriodsSaved)
	}

	stuck := Simulate(snap, 0, Avalanche, Options{Horizon: 3})
	if got := Compare(stuck, sb); got.PeriodsSaved != 0 {
		t.Fatalf("periods saved with an unfinished run = %d", got.PeriodsSaved)
	}
}

func TestScheduleSeries(t *testing.T) {
	snap := core.Snapshot{Debts: []core.Debt{{ID: "d", CurrentAmount: 1000, MinPayment: 500}}}
	s := Simulate(snap, 600, Avalanche, ProjectionOptions())

	pts := s.Series()
	if len(pts) != len(s.Rows)+1 {
		t.Fatalf("points = %d", len(pts))
	}
	if pts[0].Period != 0 || pts[0].Debt != 1000 || pts[0].Wealth != 0 {
		t.Fatalf("first point = %+v", pts[0])
	}
	last := pts[len(pts)-1]
	if last.Debt != 0 || last.Wealth != s.Wealth {
		t.Fatalf("last point = %+v", last)
	}

	if len((Schedule{}).Series()) != 0 {
		t.Fatal("empty schedule should have no series")
	}
}
