// Package reminders derives the due-date reminders for a day.
//
// Debts and fixed expenses carry a due day; each expense frequency has its own
// DueChecker that decides whether the expense falls on a given date.
package reminders

import (
	"fmt"
	"time"

	"finanzas/internal/core"
)

const (
	Info    Level = "info"
	Warning Level = "warning"
)

const (
	// CheckInLastDay is the last day of the month that shows the check-in reminder.
	CheckInLastDay = 3
	// UpcomingWindow is how many days ahead a debt due date is announced.
	UpcomingWindow = 3
)

type (
	Level string

	Reminder struct {
		ID        string `json:"id"`
		Level     Level  `json:"level"`
		Title     string `json:"title"`
		Message   string `json:"message"`
		DebtID    string `json:"debt_id,omitempty"`
		ExpenseID string `json:"expense_id,omitempty"`
	}

	// DueChecker is the strategy interface for one expense frequency.
	DueChecker interface {
		// IsDue reports whether an expense with dueDay falls on now.
		IsDue(dueDay int, now time.Time) bool
	}

	// MonthlyChecker matches the day of the month, clamped to the month's last day.
	MonthlyChecker struct{}

	// WeeklyChecker matches the weekday, 0 being Sunday.
	WeeklyChecker struct{}

	// BiWeeklyChecker matches the due day and the day fifteen days later.
	BiWeeklyChecker struct{}
)

func (MonthlyChecker) IsDue(dueDay int, now time.Time) bool {
	return now.Day() == clampDay(dueDay, now)
}

func (WeeklyChecker) IsDue(dueDay int, now time.Time) bool {
	return int(now.Weekday()) == dueDay
}

func (BiWeeklyChecker) IsDue(dueDay int, now time.Time) bool {
	day := now.Day()
	return day == clampDay(dueDay, now) || day == clampDay(dueDay+15, now)
}

var dueCheckers = map[core.Frequency]DueChecker{
	core.Monthly:  MonthlyChecker{},
	core.Weekly:   WeeklyChecker{},
	core.BiWeekly: BiWeeklyChecker{},
}

// GetDueChecker returns the checker registered for a frequency.
func GetDueChecker(f core.Frequency) (DueChecker, error) {
	checker, ok := dueCheckers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidFrequency, f)
	}
	return checker, nil
}

// RegisterDueChecker installs or replaces the checker for a frequency.
func RegisterDueChecker(f core.Frequency, checker DueChecker) {
	dueCheckers[f] = checker
}

// Due lists the reminders for now: the monthly check-in, debts due today or
// within UpcomingWindow days of the same month, and expenses due today.
func Due(snap core.Snapshot, now time.Time) []Reminder {
	out := []Reminder{}
	day := now.Day()

	if day <= CheckInLastDay {
		out = append(out, Reminder{
			ID:      "monthly-checkin",
			Level:   Info,
			Title:   "Start of the month",
			Message: "Record this month's income to keep the budget up to date.",
		})
	}

	for _, d := range snap.Debts {
		if !d.Active() || d.DueDay == nil {
			continue
		}
		due := clampDay(*d.DueDay, now)
		switch {
		case due == day:
			out = append(out, Reminder{
				ID:      "debt-due-" + d.ID,
				Level:   Warning,
				Title:   "Due today",
				Message: fmt.Sprintf("The minimum payment for %s is due today.", d.Name),
				DebtID:  d.ID,
			})
		case due > day && due <= day+UpcomingWindow:
			out = append(out, Reminder{
				ID:      "debt-upcoming-" + d.ID,
				Level:   Info,
				Title:   "Payment coming up",
				Message: fmt.Sprintf("The payment for %s is due in %d days.", d.Name, due-day),
				DebtID:  d.ID,
			})
		}
	}

	for _, e := range snap.Expenses {
		if e.DueDay == nil {
			continue
		}
		checker, err := GetDueChecker(e.Freq())
		if err != nil || !checker.IsDue(*e.DueDay, now) {
			continue
		}
		out = append(out, Reminder{
			ID:        fmt.Sprintf("expense-%s-%s", e.ID, now.Format("2006-01-02")),
			Level:     Info,
			Title:     "Fixed expense",
			Message:   fmt.Sprintf("%s (%s) is due today.", e.Name, e.Freq()),
			ExpenseID: e.ID,
		})
	}
	return out
}

// clampDay caps a day of the month to the last day of now's month.
func clampDay(day int, now time.Time) int {
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
