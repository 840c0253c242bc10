package google

import (
	"math"

	"finanzas/internal/core"
	"finanzas/internal/planner"
)

var scheduleHeader = []any{"Period", "Month", "Opening", "Interest", "Paid", "Closing", "Wealth"}

// planValues lays out a report as sheet rows: the chosen strategy, the
// period-by-period schedule, then the per-debt minimum-payment estimates.
func planValues(report planner.Report) [][]any {
	s := report.Schedule
	values := [][]any{
		{"Strategy", string(s.Strategy), report.Recommendation.Reason},
		{"Outcome", string(s.Outcome)},
		{"Total interest", core.RoundCurrency(s.TotalInterest)},
		{"Total paid", core.RoundCurrency(s.TotalPaid)},
		{},
		scheduleHeader,
	}
	for _, r := range s.Rows {
		values = append(values, []any{
			r.Period,
			r.Label,
			core.RoundCurrency(r.OpeningBalance),
			core.RoundCurrency(r.Interest),
			core.RoundCurrency(r.Paid),
			core.RoundCurrency(r.ClosingBalance),
			core.RoundCurrency(r.Wealth),
		})
	}

	if len(report.Estimates) == 0 {
		return values
	}
	values = append(values, []any{}, []any{"Debt", "Months on minimum", "Estimate"})
	for _, e := range report.Estimates {
		// Sheets cannot hold an infinite number.
		var months any = ""
		if !math.IsInf(e.Months, 1) {
			months = math.Round(e.Months*10) / 10
		}
		values = append(values, []any{e.Name, months, e.String()})
	}
	return values
}

func historyValues(points []core.HistoryPoint) [][]any {
	values := make([][]any, 0, len(points)+1)
	values = append(values, []any{"Period", "Total debt"})
	for _, p := range points {
		values = append(values, []any{p.Period, core.RoundCurrency(p.TotalDebt)})
	}
	return values
}
