package planner

import (
	"fmt"
	"strings"

	"finanzas/internal/core"
)

const (
	Avalanche Strategy = "avalanche"
	Snowball  Strategy = "snowball"
)

// Recommendation thresholds.
const (
	HighInterestThreshold    = 40.0   // annual percent
	QuickWinBalanceThreshold = 5000.0 // currency units
)

const (
	RationaleExplicit         Rationale = "explicit"
	RationaleHighInterest     Rationale = "high_interest"
	RationaleQuickWin         Rationale = "quick_win"
	RationaleMinimizeInterest Rationale = "minimize_interest"
	RationaleNoActiveDebt     Rationale = "no_active_debt"
)

type (
	// Strategy selects which active debt receives the extra payment.
	Strategy string

	Rationale string

	// Recommendation is the resolved strategy together with why it was chosen.
	Recommendation struct {
		Strategy  Strategy  `json:"strategy"`
		Rationale Rationale `json:"rationale"`
		Reason    string    `json:"reason"`
		// DebtID names the debt the rationale cites, if any.
		DebtID string `json:"debt_id,omitempty"`
	}

	// candidate is the comparable view of one debt.
	candidate struct {
		balance float64
		rate    float64
		index   int
	}

	// precedes reports whether a should be paid before b.
	precedes func(a, b candidate) bool
)

var orderings = map[Strategy]precedes{
	Avalanche: func(a, b candidate) bool {
		if a.rate != b.rate {
			return a.rate > b.rate
		}
		if a.balance != b.balance {
			return a.balance > b.balance
		}
		return a.index < b.index
	},
	Snowball: func(a, b candidate) bool {
		if a.balance != b.balance {
			return a.balance < b.balance
		}
		if a.rate != b.rate {
			return a.rate > b.rate
		}
		return a.index < b.index
	},
}

// ParseStrategy accepts "avalanche" or "snowball" in any case. The empty string
// yields "" with no error, meaning the caller wants a recommendation.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return "", nil
	}
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidStrategy, s)
	}
	return st, nil
}

func (s Strategy) IsValid() bool {
	_, ok := orderings[s]
	return ok
}

// first returns the position in cands of the debt to pay first, or -1 when
// no candidate has a positive balance.
func (s Strategy) first(cands []candidate) int {
	less, ok := orderings[s]
	if !ok {
		less = orderings[Avalanche]
	}
	best := -1
	for i, c := range cands {
		if c.balance <= 0 {
			continue
		}
		if best < 0 || less(c, cands[best]) {
			best = i
		}
	}
	return best
}

func candidates(debts []core.Debt) []candidate {
	out := make([]candidate, len(debts))
	for i, d := range debts {
		out[i] = candidate{balance: core.Finite(d.CurrentAmount), rate: d.Rate(), index: i}
	}
	return out
}

// PriorityDebt returns the debt that should receive extra payments first.
func PriorityDebt(debts []core.Debt, s Strategy) (core.Debt, bool) {
	i := s.first(candidates(debts))
	if i < 0 {
		return core.Debt{}, false
	}
	return debts[i], true
}

// Recommend picks a strategy from the shape of the active debts:
// a very expensive debt favours avalanche, a small one favours snowball.
func Recommend(debts []core.Debt) Recommendation {
	var highest, smallest *core.Debt
	for i := range debts {
		d := &debts[i]
		if !d.Active() {
			continue
		}
		if highest == nil || d.Rate() > highest.Rate() {
			highest = d
		}
		if smallest == nil || d.CurrentAmount < smallest.CurrentAmount {
			smallest = d
		}
	}

	switch {
	case highest == nil:
		return Recommendation{
			Strategy:  Avalanche,
			Rationale: RationaleNoActiveDebt,
			Reason:    "There are no active debts.",
		}
	case highest.Rate() > HighInterestThreshold:
		return Recommendation{
			Strategy:  Avalanche,
			Rationale: RationaleHighInterest,
			Reason: fmt.Sprintf("%q carries a very high interest rate (%g%%). Paying it first saves the most money.",
				highest.Name, highest.Rate()),
			DebtID: highest.ID,
		}
	case smallest.CurrentAmount < QuickWinBalanceThreshold:
		return Recommendation{
			Strategy:  Snowball,
			Rationale: RationaleQuickWin,
			Reason: fmt.Sprintf("%q is small (%s). Clearing it quickly gives an early win.",
				smallest.Name, formatAmount(smallest.CurrentAmount)),
			DebtID: smallest.ID,
		}
	default:
		return Recommendation{
			Strategy:  Avalanche,
			Rationale: RationaleMinimizeInterest,
			Reason:    "Paying the highest interest rate first minimizes total interest.",
		}
	}
}

// Resolve honours an explicit strategy and falls back to Recommend otherwise.
func Resolve(requested Strategy, debts []core.Debt) Recommendation {
	if requested.IsValid() {
		return Recommendation{
			Strategy:  requested,
			Rationale: RationaleExplicit,
			Reason:    "Strategy chosen by the user.",
		}
	}
	return Recommend(debts)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", core.RoundCurrency(v))
}
