package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"
	"sort"
	"sync"

	"finanzas/internal/core"
)

// Seed is the on-disk shape of a memory store.
type Seed struct {
	Debts    []core.Debt         `json:"debts"`
	Incomes  []core.Income       `json:"incomes"`
	Expenses []core.Expense      `json:"expenses"`
	Payments []core.Payment      `json:"payments"`
	History  []core.HistoryPoint `json:"history"`
}

type Store struct {
	mu       sync.RWMutex
	debts    []core.Debt
	incomes  []core.Income
	expenses []core.Expense
	payments []core.Payment
	history  map[string]float64
}

func New(seed Seed) *Store {
	s := &Store{
		debts:    slices.Clone(seed.Debts),
		incomes:  slices.Clone(seed.Incomes),
		expenses: slices.Clone(seed.Expenses),
		payments: slices.Clone(seed.Payments),
		history:  make(map[string]float64, len(seed.History)),
	}
	for _, h := range seed.History {
		s.history[h.Period] = h.TotalDebt
	}
	return s
}

// NewFromFile loads a JSON seed. A missing or unreadable file falls back to
// DefaultSeed so a fresh checkout has something to plan with.
func NewFromFile(path string) *Store {
	b, err := os.ReadFile(path)
	if err != nil {
		return New(DefaultSeed())
	}
	var seed Seed
	if err := json.Unmarshal(b, &seed); err != nil {
		return New(DefaultSeed())
	}
	return New(seed)
}

// DefaultSeed is a small household: two credit cards, a mortgage, two incomes.
func DefaultSeed() Seed {
	return Seed{
		Debts: []core.Debt{
			{ID: "1", Name: "BBVA", InitialAmount: 50000, CurrentAmount: 45000, MinPayment: 2500, Color: "#1e40af", DueDay: core.IntPtr(15), InterestRate: core.FloatPtr(45)},
			{ID: "2", Name: "Plata Card", InitialAmount: 15000, CurrentAmount: 12000, MinPayment: 1000, Color: "#ec4899", DueDay: core.IntPtr(5), InterestRate: core.FloatPtr(65)},
			{ID: "3", Name: "Fovissste", InitialAmount: 800000, CurrentAmount: 750000, MinPayment: 5000, Color: "#f59e0b", DueDay: core.IntPtr(28), InterestRate: core.FloatPtr(11)},
		},
		Expenses: []core.Expense{
			{ID: "1", Name: "Electricity", Amount: 500, Category: core.Services, Frequency: core.FrequencyPtr(core.Monthly), DueDay: core.IntPtr(10)},
			{ID: "2", Name: "Internet", Amount: 600, Category: core.Services, Frequency: core.FrequencyPtr(core.Monthly), DueDay: core.IntPtr(5)},
			{ID: "3", Name: "Weekly groceries", Amount: 1000, Category: core.Food, Frequency: core.FrequencyPtr(core.Weekly), DueDay: core.IntPtr(1)},
			{ID: "4", Name: "Nanny", Amount: 1500, Category: core.Nanny, Frequency: core.FrequencyPtr(core.BiWeekly), DueDay: core.IntPtr(15)},
		},
		Incomes: []core.Income{
			{ID: "1", Source: "Edna", Amount: 18000},
			{ID: "2", Source: "Ronaldo", Amount: 20000},
		},
	}
}

func (s *Store) Snapshot(_ context.Context) (core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := core.Snapshot{Debts: s.debts, Incomes: s.incomes, Expenses: s.expenses}
	// Sanitized deep-copies, so callers never share state with the store.
	return snap.Sanitized(), nil
}

func (s *Store) GetDebt(_ context.Context, id string) (core.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.debtIndex(id)
	if i < 0 {
		return core.Debt{}, fmt.Errorf("debt %s: %w", id, core.ErrNotFound)
	}
	return s.debts[i], nil
}

func (s *Store) CreateDebt(_ context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	if d.ID == "" {
		d.ID = core.NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts = append(s.debts, d)
	return d, nil
}

func (s *Store) UpdateDebt(_ context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.debtIndex(d.ID)
	if i < 0 {
		return core.Debt{}, fmt.Errorf("debt %s: %w", d.ID, core.ErrNotFound)
	}
	s.debts[i] = d
	return d, nil
}

func (s *Store) DeleteDebt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.debtIndex(id)
	if i < 0 {
		return fmt.Errorf("debt %s: %w", id, core.ErrNotFound)
	}
	s.debts = slices.Delete(s.debts, i, i+1)
	return nil
}

func (s *Store) CreateIncome(_ context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	if in.ID == "" {
		in.ID = core.NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes = append(s.incomes, in)
	return in, nil
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.incomes, func(in core.Income) bool { return in.ID == id })
	if i < 0 {
		return fmt.Errorf("income %s: %w", id, core.ErrNotFound)
	}
	s.incomes = slices.Delete(s.incomes, i, i+1)
	return nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.ID == "" {
		e.ID = core.NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.expenses, func(e core.Expense) bool { return e.ID == id })
	if i < 0 {
		return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	s.expenses = slices.Delete(s.expenses, i, i+1)
	return nil
}

func (s *Store) RecordPayment(_ context.Context, p core.Payment) (core.Debt, error) {
	if err := p.Validate(); err != nil {
		return core.Debt{}, err
	}
	if p.ID == "" {
		p.ID = core.NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.debtIndex(p.DebtID)
	if i < 0 {
		return core.Debt{}, fmt.Errorf("debt %s: %w", p.DebtID, core.ErrNotFound)
	}
	s.debts[i].CurrentAmount = math.Max(0, s.debts[i].CurrentAmount-p.Amount)
	s.payments = append(s.payments, p)

	var total float64
	for _, d := range s.debts {
		total += d.CurrentAmount
	}
	s.history[p.Date.MonthKey()] = total
	return s.debts[i], nil
}

func (s *Store) ListPayments(_ context.Context, debtID string) ([]core.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Payment{}
	for _, p := range s.payments {
		if debtID == "" || p.DebtID == debtID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) History(_ context.Context) ([]core.HistoryPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.HistoryPoint, 0, len(s.history))
	for period, total := range s.history {
		out = append(out, core.HistoryPoint{Period: period, TotalDebt: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (s *Store) RecordHistory(_ context.Context, p core.HistoryPoint) error {
	if p.Period == "" {
		return fmt.Errorf("history period: %w", core.ErrInvalidDay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[p.Period] = core.Finite(p.TotalDebt)
	return nil
}

func (s *Store) debtIndex(id string) int {
	return slices.IndexFunc(s.debts, func(d core.Debt) bool { return d.ID == id })
}
