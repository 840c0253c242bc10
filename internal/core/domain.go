package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Monthly  Frequency = "Monthly"
	BiWeekly Frequency = "Bi-weekly"
	Weekly   Frequency = "Weekly"
)

const (
	Services Category = "Services"
	Food     Category = "Food"
	Nanny    Category = "Nanny"
	Other    Category = "Other"
)

type (
	Frequency string

	Category string

	Date struct {
		time.Time
	}

	Debt struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		InitialAmount float64  `json:"initial_amount"`
		CurrentAmount float64  `json:"current_amount"`
		MinPayment    float64  `json:"min_payment"`
		InterestRate  *float64 `json:"interest_rate,omitempty"` // annual percent, absent means 0%
		DueDay        *int     `json:"due_day,omitempty"`       // day of month, informational
		Color         string   `json:"color,omitempty"`
	}

	Income struct {
		ID     string  `json:"id"`
		Source string  `json:"source"`
		Amount float64 `json:"amount"`
	}

	Expense struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		Amount    float64    `json:"amount"`
		Category  Category   `json:"category"`
		Frequency *Frequency `json:"frequency,omitempty"` // absent means Monthly
		DueDay    *int       `json:"due_day,omitempty"`   // day of month, or weekday 0-6 for Weekly
	}

	// Snapshot is the read-only view of the household finances a plan is computed from.
	Snapshot struct {
		Debts    []Debt    `json:"debts"`
		Incomes  []Income  `json:"incomes"`
		Expenses []Expense `json:"expenses"`
	}

	Payment struct {
		ID         string  `json:"id"`
		DebtID     string  `json:"debt_id"`
		Amount     float64 `json:"amount"`
		Date       Date    `json:"date"`
		RecordedBy string  `json:"recorded_by,omitempty"`
	}

	// HistoryPoint is the aggregate debt observed in a calendar month ("2006-01").
	HistoryPoint struct {
		Period    string  `json:"period"`
		TotalDebt float64 `json:"total_debt"`
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidRate      = errors.New("invalid interest rate")
	ErrEmptyName        = errors.New("empty name")
	ErrNameTooLong      = errors.New("name too long (max 100 characters)")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidDueDay    = errors.New("invalid due day")
	ErrInvalidStrategy  = errors.New("invalid strategy")
	ErrInvalidHorizon   = errors.New("invalid horizon")
	ErrNotFound         = errors.New("not found")
)

const dateLayout = "2006-01-02"

// NewID returns a fresh identifier for a ledger entity.
func NewID() string {
	return uuid.NewString()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDay
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MonthKey returns the history period key for the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (f Frequency) IsValid() bool {
	switch f {
	case Monthly, BiWeekly, Weekly:
		return true
	}
	return false
}

// Multiplier converts one occurrence into its monthly equivalent.
func (f Frequency) Multiplier() float64 {
	switch f {
	case Weekly:
		return 4
	case BiWeekly:
		return 2
	default:
		return 1
	}
}

func (c Category) IsValid() bool {
	switch c {
	case Services, Food, Nanny, Other:
		return true
	}
	return false
}

// Rate returns the annual interest rate in percent, 0 when absent.
func (d Debt) Rate() float64 {
	if d.InterestRate == nil {
		return 0
	}
	return Finite(*d.InterestRate)
}

// Active reports whether the debt still carries a balance.
func (d Debt) Active() bool {
	return Finite(d.CurrentAmount) > 0
}

func (d Debt) Validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 100 {
		return ErrNameTooLong
	}
	for _, v := range []float64{d.InitialAmount, d.CurrentAmount, d.MinPayment} {
		if !IsFinite(v) || v < 0 {
			return ErrInvalidAmount
		}
	}
	if d.InterestRate != nil && (!IsFinite(*d.InterestRate) || *d.InterestRate < 0) {
		return ErrInvalidRate
	}
	if d.DueDay != nil && (*d.DueDay < 1 || *d.DueDay > 31) {
		return ErrInvalidDueDay
	}
	return nil
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptyName
	}
	if !IsFinite(i.Amount) || i.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Freq returns the expense frequency, Monthly when absent.
func (e Expense) Freq() Frequency {
	if e.Frequency == nil || *e.Frequency == "" {
		return Monthly
	}
	return *e.Frequency
}

// MonthlyAmount is the expense normalised to one month.
func (e Expense) MonthlyAmount() float64 {
	return Finite(e.Amount) * e.Freq().Multiplier()
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !IsFinite(e.Amount) || e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	freq := e.Freq()
	if !freq.IsValid() {
		return ErrInvalidFrequency
	}
	if e.DueDay != nil {
		day := *e.DueDay
		if freq == Weekly && (day < 0 || day > 6) {
			return ErrInvalidDueDay
		}
		if freq != Weekly && (day < 1 || day > 31) {
			return ErrInvalidDueDay
		}
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.DebtID) == "" {
		return ErrNotFound
	}
	if !IsFinite(p.Amount) || p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return ErrInvalidDay
	}
	return nil
}

// TotalDebt sums the current balances.
func (s Snapshot) TotalDebt() float64 {
	var total float64
	for _, d := range s.Debts {
		total += Finite(d.CurrentAmount)
	}
	return total
}

// InitialDebt sums the original principals.
func (s Snapshot) InitialDebt() float64 {
	var total float64
	for _, d := range s.Debts {
		total += Finite(d.InitialAmount)
	}
	return total
}

// Sanitized returns a deep copy where every non-finite number becomes 0 and
// balances, minimums and rates are floored at 0. The receiver is left untouched.
func (s Snapshot) Sanitized() Snapshot {
	out := Snapshot{
		Debts:    make([]Debt, len(s.Debts)),
		Incomes:  make([]Income, len(s.Incomes)),
		Expenses: make([]Expense, len(s.Expenses)),
	}
	for i, d := range s.Debts {
		d.InitialAmount = nonNegative(d.InitialAmount)
		d.CurrentAmount = nonNegative(d.CurrentAmount)
		d.MinPayment = nonNegative(d.MinPayment)
		if d.InterestRate != nil {
			rate := nonNegative(*d.InterestRate)
			d.InterestRate = &rate
		}
		if d.DueDay != nil {
			day := *d.DueDay
			d.DueDay = &day
		}
		out.Debts[i] = d
	}
	for i, inc := range s.Incomes {
		inc.Amount = Finite(inc.Amount)
		out.Incomes[i] = inc
	}
	for i, e := range s.Expenses {
		e.Amount = Finite(e.Amount)
		if e.Frequency != nil {
			f := *e.Frequency
			e.Frequency = &f
		}
		if e.DueDay != nil {
			day := *e.DueDay
			e.DueDay = &day
		}
		out.Expenses[i] = e
	}
	return out
}

func nonNegative(v float64) float64 {
	v = Finite(v)
	if v < 0 {
		return 0
	}
	return v
}

// FloatPtr and IntPtr help build optional fields.
func FloatPtr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }

func FrequencyPtr(f Frequency) *Frequency { return &f }
