package google

import (
	"context"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/planner"
)

func TestPlanValues(t *testing.T) {
	snap := core.Snapshot{
		Debts: []core.Debt{
			{ID: "a", Name: "Card", InitialAmount: 300, CurrentAmount: 300, MinPayment: 100},
			{ID: "b", Name: "Loan", InitialAmount: 1000, CurrentAmount: 1000, MinPayment: 10, InterestRate: core.FloatPtr(240)},
		},
		Incomes: []core.Income{{ID: "i", Source: "Job", Amount: 500}},
	}
	report := planner.Analyze(snap, planner.Avalanche, planner.Options{Horizon: 3})
	values := planValues(report)

	if got := values[0][1]; got != "avalanche" {
		t.Errorf("strategy cell = %v", got)
	}
	if len(values[5]) != len(scheduleHeader) {
		t.Fatalf("header row = %v", values[5])
	}
	first := values[6]
	if first[0] != 1 || first[1] != "Month 1" {
		t.Errorf("first schedule row = %v", first)
	}

	// Three schedule rows, a blank line, the estimate header and two estimates.
	if want := 6 + 3 + 2 + 2; len(values) != want {
		t.Fatalf("rows = %d, want %d", len(values), want)
	}
	last := values[len(values)-1]
	if last[0] != "Loan" || last[1] != "" {
		t.Errorf("never-ending estimate row = %v", last)
	}
}

func TestHistoryValues(t *testing.T) {
	values := historyValues([]core.HistoryPoint{
		{Period: "2026-09", TotalDebt: 1234.567},
		{Period: "2026-10", TotalDebt: 1000},
	})
	if len(values) != 3 {
		t.Fatalf("rows = %d", len(values))
	}
	if values[1][0] != "2026-09" || values[1][1] != 1234.57 {
		t.Errorf("row = %v", values[1])
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Plan", "2026 Plan"},
		{"2025 Plan", "2025 Plan"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, 2026); got != tt.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestExportWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test", planSheet: "2026 Plan"}
	if err := c.ExportHistory(context.Background(), nil); err == nil {
		t.Fatal("export without a service should fail")
	}
}
