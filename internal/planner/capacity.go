// Package planner is the debt payoff engine: monthly capacity, strategy
// selection, the amortization schedule and closed-form payoff estimates.
//
// Everything here is a pure function of a core.Snapshot. Nothing performs I/O,
// reads the clock or mutates its input, so concurrent runs are independent.
package planner

import "finanzas/internal/core"

// daysPerMonth is the divisor used for the daily cost figure.
const daysPerMonth = 30

// Capacity summarises the monthly money available for debt service.
type Capacity struct {
	TotalIncome        float64 `json:"total_income"`
	TotalFixedExpenses float64 `json:"total_fixed_expenses"`
	TotalMinPayments   float64 `json:"total_min_payments"`
	// FreeCashFlow is what remains after expenses and minimums. It may be negative.
	FreeCashFlow float64 `json:"free_cash_flow"`
	// PaymentCapacity is the monthly budget handed to the engine: minimums plus extra.
	PaymentCapacity float64 `json:"payment_capacity"`
	DailyCost       float64 `json:"daily_cost"`

	TotalDebt        float64 `json:"total_debt"`
	InitialTotalDebt float64 `json:"initial_total_debt"`
	TotalPaidOff     float64 `json:"total_paid_off"`
	PercentPaid      float64 `json:"percent_paid"`
	PercentRemaining float64 `json:"percent_remaining"`
}

// ComputeCapacity derives the capacity figures from a snapshot. It never fails;
// missing or non-finite numbers count as zero.
func ComputeCapacity(snap core.Snapshot) Capacity {
	s := snap.Sanitized()

	var c Capacity
	for _, inc := range s.Incomes {
		c.TotalIncome += inc.Amount
	}
	for _, e := range s.Expenses {
		c.TotalFixedExpenses += e.MonthlyAmount()
	}
	for _, d := range s.Debts {
		if d.Active() {
			c.TotalMinPayments += d.MinPayment
		}
	}
	c.FreeCashFlow = c.TotalIncome - c.TotalFixedExpenses - c.TotalMinPayments
	c.PaymentCapacity = c.FreeCashFlow + c.TotalMinPayments
	c.DailyCost = c.PaymentCapacity / daysPerMonth

	c.TotalDebt = s.TotalDebt()
	c.InitialTotalDebt = s.InitialDebt()
	c.TotalPaidOff = c.InitialTotalDebt - c.TotalDebt
	if c.InitialTotalDebt > 0 {
		c.PercentPaid = c.TotalPaidOff / c.InitialTotalDebt * 100
		c.PercentRemaining = c.TotalDebt / c.InitialTotalDebt * 100
	}
	return c
}
