package http

// Presentation rounding. The planner keeps full precision; responses carry
// money rounded to cents and percentages to one decimal.

import (
	"slices"

	"finanzas/internal/core"
	"finanzas/internal/planner"
	"finanzas/internal/services"
)

var money = core.RoundCurrency

func presentDebt(d core.Debt) core.Debt {
	d.InitialAmount = money(d.InitialAmount)
	d.CurrentAmount = money(d.CurrentAmount)
	d.MinPayment = money(d.MinPayment)
	return d
}

func presentSnapshot(s core.Snapshot) core.Snapshot {
	s = s.Sanitized()
	for i := range s.Debts {
		s.Debts[i] = presentDebt(s.Debts[i])
	}
	for i := range s.Incomes {
		s.Incomes[i].Amount = money(s.Incomes[i].Amount)
	}
	for i := range s.Expenses {
		s.Expenses[i].Amount = money(s.Expenses[i].Amount)
	}
	return s
}

func presentCapacity(c planner.Capacity) planner.Capacity {
	c.TotalIncome = money(c.TotalIncome)
	c.TotalFixedExpenses = money(c.TotalFixedExpenses)
	c.TotalMinPayments = money(c.TotalMinPayments)
	c.FreeCashFlow = money(c.FreeCashFlow)
	c.PaymentCapacity = money(c.PaymentCapacity)
	c.DailyCost = money(c.DailyCost)
	c.TotalDebt = money(c.TotalDebt)
	c.InitialTotalDebt = money(c.InitialTotalDebt)
	c.TotalPaidOff = money(c.TotalPaidOff)
	c.PercentPaid = core.RoundPercent(c.PercentPaid)
	c.PercentRemaining = core.RoundPercent(c.PercentRemaining)
	return c
}

func presentPriority(p *planner.Priority) *planner.Priority {
	if p == nil {
		return nil
	}
	out := *p
	out.Debt = presentDebt(out.Debt)
	out.SuggestedPayment = money(out.SuggestedPayment)
	return &out
}

func presentSummary(s planner.Summary) planner.Summary {
	s.TotalInterest = money(s.TotalInterest)
	s.TotalPaid = money(s.TotalPaid)
	s.Wealth = money(s.Wealth)
	return s
}

// presentSchedule copies the rows so a cached report is never mutated.
func presentSchedule(s planner.Schedule) planner.Schedule {
	rows := make([]planner.Row, len(s.Rows))
	for i, r := range s.Rows {
		r.OpeningBalance = money(r.OpeningBalance)
		r.Interest = money(r.Interest)
		r.Paid = money(r.Paid)
		r.ClosingBalance = money(r.ClosingBalance)
		r.Wealth = money(r.Wealth)
		rows[i] = r
	}
	s.Rows = rows
	s.Payoffs = slices.Clone(s.Payoffs)
	s.Capacity = money(s.Capacity)
	s.TotalInterest = money(s.TotalInterest)
	s.TotalPaid = money(s.TotalPaid)
	s.Wealth = money(s.Wealth)
	return s
}

func presentSeries(points []planner.Point) []planner.Point {
	out := make([]planner.Point, len(points))
	for i, p := range points {
		p.Debt = money(p.Debt)
		p.Wealth = money(p.Wealth)
		out[i] = p
	}
	return out
}

func presentPlan(p services.Plan) services.Plan {
	p.Capacity = presentCapacity(p.Capacity)
	p.Priority = presentPriority(p.Priority)
	p.Schedule = presentSchedule(p.Schedule)
	return p
}

func presentProjection(p services.Projection) services.Projection {
	p.Summary = presentSummary(p.Summary)
	p.Series = presentSeries(p.Series)
	return p
}

func presentComparison(c planner.Comparison) planner.Comparison {
	c.Avalanche = presentSummary(c.Avalanche)
	c.Snowball = presentSummary(c.Snowball)
	c.InterestSaved = money(c.InterestSaved)
	return c
}

func presentOverview(o services.Overview) services.Overview {
	o.Capacity = presentCapacity(o.Capacity)
	o.Priority = presentPriority(o.Priority)
	o.Plan = presentSummary(o.Plan)
	return o
}

func presentHistory(points []core.HistoryPoint) []core.HistoryPoint {
	out := make([]core.HistoryPoint, len(points))
	for i, p := range points {
		p.TotalDebt = money(p.TotalDebt)
		out[i] = p
	}
	return out
}

func presentPayments(payments []core.Payment) []core.Payment {
	out := make([]core.Payment, len(payments))
	for i, p := range payments {
		p.Amount = money(p.Amount)
		out[i] = p
	}
	return out
}
