package reminders

import (
	"errors"
	"testing"
	"time"

	"finanzas/internal/core"
)

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name   string
		dueDay int
		now    time.Time
		want   bool
	}{
		{"same day", 10, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), true},
		{"other day", 10, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), false},
		{"day 31 in february falls on the 28th", 31, time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC), true},
		{"day 31 in march", 31, time.Date(2026, 3, 30, 9, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.dueDay, tt.now); got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker_IsDue(t *testing.T) {
	checker := WeeklyChecker{}
	monday := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	if !checker.IsDue(1, monday) {
		t.Error("expected Monday (1) to be due")
	}
	if checker.IsDue(0, monday) {
		t.Error("Sunday should not be due on Monday")
	}
	if !checker.IsDue(0, monday.AddDate(0, 0, 6)) {
		t.Error("expected Sunday (0) to be due")
	}
}

func TestBiWeeklyChecker_IsDue(t *testing.T) {
	checker := BiWeeklyChecker{}

	tests := []struct {
		name   string
		dueDay int
		day    int
		want   bool
	}{
		{"first half", 1, 1, true},
		{"second half", 1, 16, true},
		{"between", 1, 8, false},
		{"late due day wraps to month end", 20, 31, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2026, 10, tt.day, 8, 0, 0, 0, time.UTC)
			if got := checker.IsDue(tt.dueDay, now); got != tt.want {
				t.Errorf("BiWeeklyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDueChecker(t *testing.T) {
	for _, f := range []core.Frequency{core.Monthly, core.Weekly, core.BiWeekly} {
		if _, err := GetDueChecker(f); err != nil {
			t.Errorf("GetDueChecker(%s) error = %v", f, err)
		}
	}
	if _, err := GetDueChecker("Daily"); !errors.Is(err, core.ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency, got %v", err)
	}
}

func TestDue(t *testing.T) {
	snap := core.Snapshot{
		Debts: []core.Debt{
			{ID: "today", Name: "Card", CurrentAmount: 100, DueDay: core.IntPtr(2)},
			{ID: "soon", Name: "Loan", CurrentAmount: 100, DueDay: core.IntPtr(5)},
			{ID: "later", Name: "Car", CurrentAmount: 100, DueDay: core.IntPtr(6)},
			{ID: "paid", Name: "Old", CurrentAmount: 0, DueDay: core.IntPtr(2)},
			{ID: "nodate", Name: "Family", CurrentAmount: 100},
		},
		Expenses: []core.Expense{
			{ID: "internet", Name: "Internet", Amount: 600, Category: core.Services, DueDay: core.IntPtr(2)},
			{ID: "food", Name: "Groceries", Amount: 1000, Category: core.Food, Frequency: core.FrequencyPtr(core.Weekly), DueDay: core.IntPtr(5)},
			{ID: "nanny", Name: "Nanny", Amount: 1500, Category: core.Nanny, Frequency: core.FrequencyPtr(core.BiWeekly), DueDay: core.IntPtr(17)},
			{ID: "undated", Name: "Misc", Amount: 10, Category: core.Other},
		},
	}
	// Friday 2 October 2026.
	now := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)

	got := Due(snap, now)

	want := map[string]Level{
		"monthly-checkin":             Info,
		"debt-due-today":              Warning,
		"debt-upcoming-soon":          Info,
		"expense-internet-2026-10-02": Info,
		"expense-food-2026-10-02":     Info,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d reminders: %+v", len(got), got)
	}
	for _, r := range got {
		level, ok := want[r.ID]
		if !ok {
			t.Fatalf("unexpected reminder %s", r.ID)
		}
		if r.Level != level {
			t.Errorf("%s level = %s, want %s", r.ID, r.Level, level)
		}
	}
}

func TestDueMidMonthHasNoCheckIn(t *testing.T) {
	got := Due(core.Snapshot{}, time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	if len(got) != 0 {
		t.Fatalf("expected no reminders, got %+v", got)
	}
}
