package planner

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"finanzas/internal/core"
)

const (
	StatusPaid   EstimateStatus = "paid"
	StatusFinite EstimateStatus = "finite"
	// StatusNever means interest meets or exceeds the minimum payment.
	StatusNever EstimateStatus = "never"
	// StatusNoPayment means the debt has a balance but no minimum payment.
	StatusNoPayment EstimateStatus = "no_payment"
)

type (
	EstimateStatus string

	// Estimate is how long one debt takes to clear on its minimum payment alone.
	// It ignores the rest of the plan and may disagree with the engine.
	Estimate struct {
		DebtID string
		Name   string
		Months float64 // +Inf when the debt never clears
		Status EstimateStatus
	}
)

// EstimateMonths is the number of months to amortize balance with a fixed
// monthly payment at the given annual percent rate.
func EstimateMonths(balance, payment, annualRate float64) float64 {
	p := core.Finite(balance)
	a := core.Finite(payment)
	r := core.Finite(annualRate) / 100 / 12

	switch {
	case p <= 0:
		return 0
	case a <= 0:
		return math.Inf(1)
	case r == 0:
		return p / a
	case a <= p*r:
		return math.Inf(1)
	}
	return math.Log(a/(a-p*r)) / math.Log(1+r)
}

func EstimateDebt(d core.Debt) Estimate {
	m := EstimateMonths(d.CurrentAmount, d.MinPayment, d.Rate())
	status := StatusFinite
	switch {
	case m == 0:
		status = StatusPaid
	case math.IsInf(m, 1) && core.Finite(d.MinPayment) <= 0:
		status = StatusNoPayment
	case math.IsInf(m, 1):
		status = StatusNever
	}
	return Estimate{DebtID: d.ID, Name: d.Name, Months: m, Status: status}
}

// EstimateAll estimates every debt, fastest first and never-ending last.
func EstimateAll(debts []core.Debt) []Estimate {
	out := make([]Estimate, 0, len(debts))
	for _, d := range debts {
		out = append(out, EstimateDebt(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Months < out[j].Months
	})
	return out
}

func (e Estimate) Infinite() bool {
	return math.IsInf(e.Months, 1)
}

// Duration splits the estimate into whole years and the remaining months,
// rounding the months up.
func (e Estimate) Duration() (years, months int) {
	if e.Infinite() || e.Months <= 0 {
		return 0, 0
	}
	years = int(math.Floor(e.Months / 12))
	months = int(math.Ceil(math.Mod(e.Months, 12)))
	if months == 12 {
		years++
		months = 0
	}
	return years, months
}

// String renders the estimate for people, e.g. "1 year 8 months".
func (e Estimate) String() string {
	switch e.Status {
	case StatusPaid:
		return "paid"
	case StatusNever:
		return "never (interest exceeds payment)"
	case StatusNoPayment:
		return "never (no minimum payment)"
	}
	y, m := e.Duration()
	if y == 0 {
		return plural(m, "month")
	}
	return plural(y, "year") + " " + plural(m, "month")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// MarshalJSON writes infinite months as null.
func (e Estimate) MarshalJSON() ([]byte, error) {
	y, m := e.Duration()
	out := struct {
		DebtID string         `json:"debt_id"`
		Name   string         `json:"name"`
		Months *float64       `json:"months"`
		Years  int            `json:"years"`
		Rest   int            `json:"remaining_months"`
		Status EstimateStatus `json:"status"`
		Text   string         `json:"text"`
	}{DebtID: e.DebtID, Name: e.Name, Years: y, Rest: m, Status: e.Status, Text: e.String()}
	if !e.Infinite() {
		months := e.Months
		out.Months = &months
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads what MarshalJSON writes, so cached reports survive a
// round trip.
func (e *Estimate) UnmarshalJSON(b []byte) error {
	var in struct {
		DebtID string         `json:"debt_id"`
		Name   string         `json:"name"`
		Months *float64       `json:"months"`
		Status EstimateStatus `json:"status"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*e = Estimate{DebtID: in.DebtID, Name: in.Name, Months: math.Inf(1), Status: in.Status}
	if in.Months != nil {
		e.Months = *in.Months
	}
	return nil
}
