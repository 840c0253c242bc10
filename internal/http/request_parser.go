package http

// This file decodes request bodies and query parameters into domain values.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/planner"
)

const maxBodyBytes = 1 << 20

// requestError marks malformed input that never reached the domain.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

// decodeJSON reads one JSON object into dst, rejecting unknown fields,
// trailing data and bodies over maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return badRequest("read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return badRequest("empty request body")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidDay) {
			return err
		}
		return badRequest("invalid JSON: %w", err)
	}
	if dec.More() {
		return badRequest("request body must hold a single JSON object")
	}
	return nil
}

// Amount accepts a JSON number or a decimal string using either a dot or a
// comma as separator ("1250.50", "1250,50"). Negative values are rejected.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return fmt.Errorf("%w: %s", core.ErrInvalidAmount, string(b))
	}
	*a = Amount(d.InexactFloat64())
	return nil
}

func (a *Amount) ptr() *float64 {
	if a == nil {
		return nil
	}
	v := float64(*a)
	return &v
}

type (
	debtRequest struct {
		Name          string  `json:"name"`
		InitialAmount Amount  `json:"initial_amount"`
		CurrentAmount Amount  `json:"current_amount"`
		MinPayment    Amount  `json:"min_payment"`
		InterestRate  *Amount `json:"interest_rate"`
		DueDay        *int    `json:"due_day"`
		Color         string  `json:"color"`
	}

	incomeRequest struct {
		Source string `json:"source"`
		Amount Amount `json:"amount"`
	}

	expenseRequest struct {
		Name      string          `json:"name"`
		Amount    Amount          `json:"amount"`
		Category  core.Category   `json:"category"`
		Frequency *core.Frequency `json:"frequency"`
		DueDay    *int            `json:"due_day"`
	}

	paymentRequest struct {
		Amount     Amount    `json:"amount"`
		Date       core.Date `json:"date"`
		RecordedBy string    `json:"recorded_by"`
	}
)

func (r debtRequest) toDebt(id string) core.Debt {
	return core.Debt{
		ID:            id,
		Name:          sanitizeInput(r.Name),
		InitialAmount: float64(r.InitialAmount),
		CurrentAmount: float64(r.CurrentAmount),
		MinPayment:    float64(r.MinPayment),
		InterestRate:  r.InterestRate.ptr(),
		DueDay:        r.DueDay,
		Color:         strings.TrimSpace(r.Color),
	}
}

func (r incomeRequest) toIncome() core.Income {
	return core.Income{Source: sanitizeInput(r.Source), Amount: float64(r.Amount)}
}

func (r expenseRequest) toExpense() core.Expense {
	return core.Expense{
		Name:      sanitizeInput(r.Name),
		Amount:    float64(r.Amount),
		Category:  r.Category,
		Frequency: r.Frequency,
		DueDay:    r.DueDay,
	}
}

func (r paymentRequest) toPayment(debtID string) core.Payment {
	return core.Payment{
		DebtID:     debtID,
		Amount:     float64(r.Amount),
		Date:       r.Date,
		RecordedBy: sanitizeInput(r.RecordedBy),
	}
}

// sanitizeInput trims and drops control characters.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s))
}

// parseStrategy reads ?strategy=; empty means let the planner recommend.
func parseStrategy(r *http.Request) (planner.Strategy, error) {
	s, err := planner.ParseStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		return "", badRequest("%w", err)
	}
	return s, nil
}

// parseHorizon reads ?horizon= in months; empty means the configured default.
func parseHorizon(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("horizon"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, badRequest("%w: %q", core.ErrInvalidHorizon, v)
	}
	return n, nil
}
