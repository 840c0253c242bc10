package planner

import (
	"math"

	"finanzas/internal/core"
)

type (
	// Priority is the debt to attack now and how much to send it this month.
	Priority struct {
		Debt             core.Debt `json:"debt"`
		SuggestedPayment float64   `json:"suggested_payment"`
	}

	// Report bundles everything derived from one snapshot.
	Report struct {
		Capacity       Capacity       `json:"capacity"`
		Recommendation Recommendation `json:"recommendation"`
		Priority       *Priority      `json:"priority,omitempty"`
		Schedule       Schedule       `json:"schedule"`
		Estimates      []Estimate     `json:"estimates"`
	}

	Summary struct {
		Strategy      Strategy `json:"strategy"`
		Outcome       Outcome  `json:"outcome"`
		PayoffPeriod  int      `json:"payoff_period"`
		Periods       int      `json:"periods"`
		TotalInterest float64  `json:"total_interest"`
		TotalPaid     float64  `json:"total_paid"`
		Wealth        float64  `json:"wealth"`
	}

	// Comparison contrasts both strategies on the same snapshot.
	Comparison struct {
		Avalanche Summary `json:"avalanche"`
		Snowball  Summary `json:"snowball"`
		// InterestSaved is how much less interest avalanche pays than snowball.
		InterestSaved float64 `json:"interest_saved"`
		// PeriodsSaved is how many periods sooner avalanche finishes. Only set
		// when both strategies reach zero.
		PeriodsSaved int `json:"periods_saved"`
	}

	// Point is one sample of the debt versus wealth series; period 0 is today.
	Point struct {
		Period int     `json:"period"`
		Label  string  `json:"label"`
		Debt   float64 `json:"debt"`
		Wealth float64 `json:"wealth"`
	}
)

// Analyze computes capacity, resolves the strategy (an explicit one wins over
// the recommendation), runs the engine and estimates each debt.
func Analyze(snap core.Snapshot, requested Strategy, opts Options) Report {
	s := snap.Sanitized()
	capacity := ComputeCapacity(s)
	rec := Resolve(requested, s.Debts)

	report := Report{
		Capacity:       capacity,
		Recommendation: rec,
		Schedule:       Simulate(s, capacity.PaymentCapacity, rec.Strategy, opts),
		Estimates:      EstimateAll(s.Debts),
	}
	if d, ok := PriorityDebt(s.Debts, rec.Strategy); ok {
		report.Priority = &Priority{
			Debt:             d,
			SuggestedPayment: d.MinPayment + math.Max(capacity.FreeCashFlow, 0),
		}
	}
	return report
}

func (s Schedule) Summary() Summary {
	return Summary{
		Strategy:      s.Strategy,
		Outcome:       s.Outcome,
		PayoffPeriod:  s.PayoffPeriod,
		Periods:       s.Periods(),
		TotalInterest: s.TotalInterest,
		TotalPaid:     s.TotalPaid,
		Wealth:        s.Wealth,
	}
}

// Compare combines an avalanche and a snowball run of the same snapshot.
func Compare(avalanche, snowball Schedule) Comparison {
	c := Comparison{
		Avalanche:     avalanche.Summary(),
		Snowball:      snowball.Summary(),
		InterestSaved: snowball.TotalInterest - avalanche.TotalInterest,
	}
	if avalanche.PayoffPeriod > 0 && snowball.PayoffPeriod > 0 {
		c.PeriodsSaved = snowball.PayoffPeriod - avalanche.PayoffPeriod
	}
	return c
}

// Series is the debt and wealth trajectory, starting with today's balance.
func (s Schedule) Series() []Point {
	if len(s.Rows) == 0 {
		return []Point{}
	}
	points := make([]Point, 0, len(s.Rows)+1)
	points = append(points, Point{Period: 0, Label: "Today", Debt: s.Rows[0].OpeningBalance})
	for _, r := range s.Rows {
		points = append(points, Point{Period: r.Period, Label: r.Label, Debt: r.ClosingBalance, Wealth: r.Wealth})
	}
	return points
}
