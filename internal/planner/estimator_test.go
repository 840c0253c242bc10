package planner

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"finanzas/internal/core"
)

func TestEstimateMonths(t *testing.T) {
	tests := []struct {
		name             string
		balance, payment float64
		rate             float64
		want             float64
	}{
		{"paid", 0, 100, 10, 0},
		{"negative balance", -5, 100, 10, 0},
		{"no payment", 1000, 0, 10, math.Inf(1)},
		{"zero rate", 1000, 250, 0, 4},
		{"payment equals interest", 1200, 12, 12, math.Inf(1)},
		{"payment below interest", 1200, 10, 12, math.Inf(1)},
		{"non-finite payment", 1000, math.NaN(), 0, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateMonths(tt.balance, tt.payment, tt.rate); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}

	got := EstimateMonths(1000, 100, 12)
	if got < 10.5 || got > 10.7 {
		t.Fatalf("annuity estimate %v out of range", got)
	}
}

func TestEstimateAllOrdering(t *testing.T) {
	debts := []core.Debt{
		{ID: "never", CurrentAmount: 100, MinPayment: 1, InterestRate: core.FloatPtr(600)},
		{ID: "five", CurrentAmount: 500, MinPayment: 100},
		{ID: "paid", CurrentAmount: 0, MinPayment: 100},
		{ID: "twenty", CurrentAmount: 2000, MinPayment: 100},
		{ID: "nopay", CurrentAmount: 50},
	}
	got := EstimateAll(debts)

	want := []string{"paid", "five", "twenty", "never", "nopay"}
	for i, id := range want {
		if got[i].DebtID != id {
			t.Fatalf("position %d: got %s want %s", i, got[i].DebtID, id)
		}
	}
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		months       float64
		years, rest  int
		text         string
	}{
		{20, 1, 8, "1 year 8 months"},
		{24, 2, 0, "2 years 0 months"},
		{11.5, 1, 0, "1 year 0 months"},
		{3.2, 0, 4, "4 months"},
		{1, 0, 1, "1 month"},
	}
	for _, tt := range tests {
		e := Estimate{Months: tt.months, Status: StatusFinite}
		y, m := e.Duration()
		if y != tt.years || m != tt.rest {
			t.Errorf("%v months: got %dy %dm, want %dy %dm", tt.months, y, m, tt.years, tt.rest)
		}
		if e.String() != tt.text {
			t.Errorf("%v months: text %q, want %q", tt.months, e.String(), tt.text)
		}
	}
}

func TestEstimateJSON(t *testing.T) {
	never := EstimateDebt(core.Debt{ID: "d", CurrentAmount: 100, MinPayment: 1, InterestRate: core.FloatPtr(600)})
	b, err := json.Marshal(never)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"months":null`) || !strings.Contains(string(b), `"status":"never"`) {
		t.Fatalf("unexpected json %s", b)
	}

	finite := EstimateDebt(core.Debt{ID: "d", CurrentAmount: 1000, MinPayment: 100})
	b, err = json.Marshal(finite)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"months":10`) {
		t.Fatalf("unexpected json %s", b)
	}

	var back Estimate
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back != finite {
		t.Fatalf("round trip = %+v, want %+v", back, finite)
	}

	b, _ = json.Marshal(never)
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Infinite() || back.Status != StatusNever {
		t.Fatalf("round trip of never = %+v", back)
	}
}

func TestEstimateDebtStatus(t *testing.T) {
	tests := []struct {
		name   string
		debt   core.Debt
		status EstimateStatus
		text   string
	}{
		{"paid", core.Debt{CurrentAmount: 0, MinPayment: 100}, StatusPaid, "paid"},
		{"finite", core.Debt{CurrentAmount: 500, MinPayment: 100}, StatusFinite, "5 months"},
		{"interest exceeds payment", core.Debt{CurrentAmount: 100, MinPayment: 5, InterestRate: core.FloatPtr(600)}, StatusNever, "never (interest exceeds payment)"},
		{"no minimum at zero rate", core.Debt{CurrentAmount: 100}, StatusNoPayment, "never (no minimum payment)"},
		{"sanitized minimum", core.Debt{CurrentAmount: 100, MinPayment: math.NaN()}, StatusNoPayment, "never (no minimum payment)"},
		{"no minimum with interest", core.Debt{CurrentAmount: 100, InterestRate: core.FloatPtr(20)}, StatusNoPayment, "never (no minimum payment)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := EstimateDebt(tt.debt)
			if e.Status != tt.status {
				t.Fatalf("status = %s, want %s", e.Status, tt.status)
			}
			if e.String() != tt.text {
				t.Fatalf("text = %q, want %q", e.String(), tt.text)
			}
		})
	}
}
