package planner

import (
	"errors"
	"testing"

	"finanzas/internal/core"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"avalanche", Avalanche, false},
		{" Snowball ", Snowball, false},
		{"", "", false},
		{"random", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidStrategy) {
					t.Fatalf("expected ErrInvalidStrategy, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestPriorityDebt(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		debts    []core.Debt
		wantID   string
	}{
		{
			name:     "avalanche highest rate",
			strategy: Avalanche,
			debts: []core.Debt{
				{ID: "low", CurrentAmount: 100, InterestRate: core.FloatPtr(5)},
				{ID: "high", CurrentAmount: 900, InterestRate: core.FloatPtr(30)},
			},
			wantID: "high",
		},
		{
			name:     "avalanche tie on rate prefers larger balance then input order",
			strategy: Avalanche,
			debts: []core.Debt{
				{ID: "a", CurrentAmount: 100, InterestRate: core.FloatPtr(10)},
				{ID: "b", CurrentAmount: 200, InterestRate: core.FloatPtr(10)},
				{ID: "c", CurrentAmount: 200, InterestRate: core.FloatPtr(10)},
			},
			wantID: "b",
		},
		{
			name:     "avalanche treats missing rate as zero",
			strategy: Avalanche,
			debts: []core.Debt{
				{ID: "norate", CurrentAmount: 5000},
				{ID: "some", CurrentAmount: 10, InterestRate: core.FloatPtr(1)},
			},
			wantID: "some",
		},
		{
			name:     "snowball smallest balance",
			strategy: Snowball,
			debts: []core.Debt{
				{ID: "big", CurrentAmount: 900, InterestRate: core.FloatPtr(30)},
				{ID: "small", CurrentAmount: 100},
			},
			wantID: "small",
		},
		{
			name:     "snowball tie prefers higher rate and skips paid debts",
			strategy: Snowball,
			debts: []core.Debt{
				{ID: "paid", CurrentAmount: 0, InterestRate: core.FloatPtr(99)},
				{ID: "a", CurrentAmount: 100, InterestRate: core.FloatPtr(5)},
				{ID: "b", CurrentAmount: 100, InterestRate: core.FloatPtr(9)},
			},
			wantID: "b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PriorityDebt(tt.debts, tt.strategy)
			if !ok {
				t.Fatal("expected a priority debt")
			}
			if got.ID != tt.wantID {
				t.Fatalf("got %s, want %s", got.ID, tt.wantID)
			}
		})
	}

	if _, ok := PriorityDebt([]core.Debt{{ID: "done"}}, Avalanche); ok {
		t.Fatal("no active debt should yield no priority")
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name          string
		debts         []core.Debt
		wantStrategy  Strategy
		wantRationale Rationale
		wantDebt      string
	}{
		{
			name: "very high interest favours avalanche",
			debts: []core.Debt{
				{ID: "small", Name: "Store", CurrentAmount: 300, InterestRate: core.FloatPtr(20)},
				{ID: "card", Name: "Card", CurrentAmount: 9000, InterestRate: core.FloatPtr(65)},
			},
			wantStrategy:  Avalanche,
			wantRationale: RationaleHighInterest,
			wantDebt:      "card",
		},
		{
			name: "exactly forty percent is not high",
			debts: []core.Debt{
				{ID: "card", Name: "Card", CurrentAmount: 4000, InterestRate: core.FloatPtr(40)},
			},
			wantStrategy:  Snowball,
			wantRationale: RationaleQuickWin,
			wantDebt:      "card",
		},
		{
			name: "small balance favours snowball",
			debts: []core.Debt{
				{ID: "loan", Name: "Loan", CurrentAmount: 20000, InterestRate: core.FloatPtr(12)},
				{ID: "store", Name: "Store", CurrentAmount: 1500, InterestRate: core.FloatPtr(30)},
			},
			wantStrategy:  Snowball,
			wantRationale: RationaleQuickWin,
			wantDebt:      "store",
		},
		{
			name: "large moderate debts favour avalanche",
			debts: []core.Debt{
				{ID: "car", Name: "Car", CurrentAmount: 15000, InterestRate: core.FloatPtr(9)},
				{ID: "loan", Name: "Loan", CurrentAmount: 8000, InterestRate: core.FloatPtr(14)},
				{ID: "paid", Name: "Paid", CurrentAmount: 0, InterestRate: core.FloatPtr(90)},
			},
			wantStrategy:  Avalanche,
			wantRationale: RationaleMinimizeInterest,
		},
		{
			name:          "no active debts",
			debts:         []core.Debt{{ID: "paid", CurrentAmount: 0}},
			wantStrategy:  Avalanche,
			wantRationale: RationaleNoActiveDebt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend(tt.debts)
			if rec.Strategy != tt.wantStrategy || rec.Rationale != tt.wantRationale {
				t.Fatalf("got %s/%s, want %s/%s", rec.Strategy, rec.Rationale, tt.wantStrategy, tt.wantRationale)
			}
			if rec.DebtID != tt.wantDebt {
				t.Fatalf("cited debt %q, want %q", rec.DebtID, tt.wantDebt)
			}
			if rec.Reason == "" {
				t.Fatal("reason should not be empty")
			}
		})
	}
}

func TestResolveNeverOverridesExplicitChoice(t *testing.T) {
	debts := []core.Debt{{ID: "card", CurrentAmount: 100, InterestRate: core.FloatPtr(90)}}

	if rec := Resolve(Snowball, debts); rec.Strategy != Snowball || rec.Rationale != RationaleExplicit {
		t.Fatalf("explicit snowball was replaced: %+v", rec)
	}
	if rec := Resolve("", debts); rec.Strategy != Avalanche || rec.Rationale != RationaleHighInterest {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
}
