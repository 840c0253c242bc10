package planner

import (
	"fmt"
	"math"
	"time"

	"finanzas/internal/core"
)

const (
	// DefaultHorizon bounds a full plan to ten years.
	DefaultHorizon = 120
	// ProjectionHorizon and ProjectionMinPeriods shape the short-range forecast.
	ProjectionHorizon    = 60
	ProjectionMinPeriods = 12
	// BalanceTolerance is the balance below which a debt counts as paid.
	BalanceTolerance = 1e-6
)

const (
	OutcomeNoDebt        Outcome = "no_debt"
	OutcomePaidOff       Outcome = "paid_off"
	OutcomeIndeterminate Outcome = "indeterminate"
)

type (
	// Outcome tags how a simulation ended.
	Outcome string

	// Options bound a simulation run.
	Options struct {
		// Horizon caps the number of periods. Zero or negative selects DefaultHorizon.
		Horizon int
		// MinPeriods keeps the run going after payoff so wealth accumulation shows.
		MinPeriods int
		// Start labels periods with calendar months after it. Zero labels them "Month N".
		Start time.Time
	}

	Row struct {
		Period         int     `json:"period"`
		Label          string  `json:"label"`
		OpeningBalance float64 `json:"opening_balance"`
		Interest       float64 `json:"interest"`
		Paid           float64 `json:"paid"`
		ClosingBalance float64 `json:"closing_balance"`
		Wealth         float64 `json:"wealth"`
	}

	// DebtPayoff records the period in which a debt first reached zero.
	// Period is 0 when it did not happen within the horizon.
	DebtPayoff struct {
		DebtID string `json:"debt_id"`
		Name   string `json:"name"`
		Period int    `json:"period"`
	}

	Schedule struct {
		Strategy Strategy `json:"strategy"`
		Capacity float64  `json:"capacity"`
		Rows     []Row    `json:"rows"`
		// PayoffPeriod is the first period with a zero aggregate balance, 0 if none.
		PayoffPeriod  int          `json:"payoff_period"`
		Outcome       Outcome      `json:"outcome"`
		TotalInterest float64      `json:"total_interest"`
		TotalPaid     float64      `json:"total_paid"`
		Wealth        float64      `json:"wealth"`
		Payoffs       []DebtPayoff `json:"payoffs"`
	}
)

// ProjectionOptions is the short-range forecast: five years at most, and at
// least one year even when the debt is cleared sooner.
func ProjectionOptions() Options {
	return Options{Horizon: ProjectionHorizon, MinPeriods: ProjectionMinPeriods}
}

func (o Options) horizon() int {
	if o.Horizon <= 0 {
		return DefaultHorizon
	}
	return o.Horizon
}

func (o Options) label(period int) string {
	if o.Start.IsZero() {
		return fmt.Sprintf("Month %d", period)
	}
	first := time.Date(o.Start.Year(), o.Start.Month(), 1, 0, 0, 0, 0, o.Start.Location())
	return first.AddDate(0, period, 0).Format("Jan 2006")
}

// Periods is the number of simulated periods.
func (s Schedule) Periods() int {
	return len(s.Rows)
}

// Indeterminate reports that the horizon ran out before the debt reached zero.
func (s Schedule) Indeterminate() bool {
	return s.Outcome == OutcomeIndeterminate
}

// Simulate runs the month-by-month amortization.
//
// Each period accrues monthly interest, pays minimums in snapshot order out of
// capacity, then pours what is left into the debt the strategy ranks first,
// re-ranking whenever a debt is cleared. Once every balance is zero the unspent
// budget accumulates as wealth. The run stops when the debt is gone and
// MinPeriods have elapsed, or at the horizon.
//
// The snapshot is not modified. Identical inputs yield identical schedules.
func Simulate(snap core.Snapshot, capacity float64, strategy Strategy, opts Options) Schedule {
	s := snap.Sanitized()
	capacity = core.Finite(capacity)
	if !strategy.IsValid() {
		strategy = Avalanche
	}

	sched := Schedule{
		Strategy: strategy,
		Capacity: capacity,
		Rows:     []Row{},
		Payoffs:  []DebtPayoff{},
		Outcome:  OutcomeNoDebt,
	}
	if s.TotalDebt() <= BalanceTolerance {
		return sched
	}

	sim := candidates(s.Debts)
	payoffAt := make([]int, len(sim))
	var wealth float64

	horizon := opts.horizon()
	for period := 1; period <= horizon; period++ {
		row := Row{Period: period, Label: opts.label(period), OpeningBalance: balanceOf(sim)}

		var budget float64
		row.Interest, row.Paid, budget = advance(sim, s.Debts, capacity, strategy)

		for i := range sim {
			if sim[i].balance <= BalanceTolerance {
				sim[i].balance = 0
				if payoffAt[i] == 0 && s.Debts[i].Active() {
					payoffAt[i] = period
				}
			}
		}

		closing := balanceOf(sim)
		if closing == 0 && budget > 0 {
			wealth += budget
		}
		row.ClosingBalance = math.Max(closing, 0)
		row.Wealth = wealth
		sched.Rows = append(sched.Rows, row)
		sched.TotalInterest += row.Interest
		sched.TotalPaid += row.Paid

		if closing == 0 && sched.PayoffPeriod == 0 {
			sched.PayoffPeriod = period
		}
		if sched.PayoffPeriod > 0 && period >= opts.MinPeriods {
			break
		}
	}

	sched.Wealth = wealth
	if sched.PayoffPeriod > 0 {
		sched.Outcome = OutcomePaidOff
	} else {
		sched.Outcome = OutcomeIndeterminate
	}
	for i, d := range s.Debts {
		if d.Active() {
			sched.Payoffs = append(sched.Payoffs, DebtPayoff{DebtID: d.ID, Name: d.Name, Period: payoffAt[i]})
		}
	}
	return sched
}

func balanceOf(sim []candidate) float64 {
	var total float64
	for _, d := range sim {
		total += d.balance
	}
	return total
}

// advance runs one period over sim in place. Minimums are paid in snapshot
// order before strategy picks where the rest of the capacity goes. It
// returns the interest accrued, the amount paid and the unspent budget.
func advance(sim []candidate, debts []core.Debt, capacity float64, strategy Strategy) (interest, paid, left float64) {
	for i := range sim {
		d := &sim[i]
		if d.balance > 0 && d.rate > 0 {
			accrued := d.balance * d.rate / 100 / 12
			d.balance += accrued
			interest += accrued
		}
	}

	left = math.Max(capacity, 0)
	for i := range sim {
		d := &sim[i]
		if d.balance <= 0 {
			continue
		}
		pay := math.Min(d.balance, math.Min(debts[i].MinPayment, left))
		d.balance -= pay
		left -= pay
		paid += pay
	}
	for left > 0 {
		i := strategy.first(sim)
		if i < 0 {
			break
		}
		pay := math.Min(sim[i].balance, left)
		sim[i].balance -= pay
		left -= pay
		paid += pay
	}
	return interest, paid, left
}
