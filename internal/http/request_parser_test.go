package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/planner"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{`12.34`, 12.34, false},
		{`"12.34"`, 12.34, false},
		{`"12,34"`, 12.34, false},
		{`" 1000 "`, 1000, false},
		{`0`, 0, false},
		{`"-1"`, 0, true},
		{`-0.01`, 0, true},
		{`"abc"`, 0, true},
		{`""`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.in), &a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, core.ErrInvalidAmount) {
				t.Fatalf("err = %v, want ErrInvalidAmount", err)
			}
			if float64(a) != tt.want {
				t.Errorf("amount = %v, want %v", float64(a), tt.want)
			}
		})
	}
}

func TestAmountNullKeepsValue(t *testing.T) {
	var req struct {
		Rate *Amount `json:"rate"`
		Min  Amount  `json:"min"`
	}
	if err := json.Unmarshal([]byte(`{"rate":null,"min":null}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.Rate != nil || req.Min != 0 {
		t.Fatalf("req = %+v", req)
	}
	if req.Rate.ptr() != nil {
		t.Fatal("nil amount should map to a nil rate")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  Card  ":        "Card",
		"Car\x00d\n":      "Card",
		"Tarjeta Plata ": "Tarjeta Plata",
		"":                "",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		target   string
		strategy planner.Strategy
		horizon  int
		wantErr  bool
	}{
		{"/api/plan", "", 0, false},
		{"/api/plan?strategy=Avalanche&horizon=36", planner.Avalanche, 36, false},
		{"/api/plan?strategy=snowball", planner.Snowball, 0, false},
		{"/api/plan?strategy=fastest", "", 0, true},
		{"/api/plan?horizon=-3", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			s, errS := parseStrategy(r)
			h, errH := parseHorizon(r)
			if gotErr := errS != nil || errH != nil; gotErr != tt.wantErr {
				t.Fatalf("errors = %v, %v", errS, errH)
			}
			if tt.wantErr {
				var reqErr *requestError
				if !errors.As(errS, &reqErr) && !errors.As(errH, &reqErr) {
					t.Fatal("query errors should be request errors")
				}
				return
			}
			if s != tt.strategy || h != tt.horizon {
				t.Errorf("strategy = %q horizon = %d", s, h)
			}
		})
	}
}

func TestRequestConversions(t *testing.T) {
	rate := Amount(18)
	debt := debtRequest{Name: " Card ", CurrentAmount: 900, MinPayment: 50, InterestRate: &rate}.toDebt("d1")
	if debt.ID != "d1" || debt.Name != "Card" || debt.Rate() != 18 {
		t.Fatalf("debt = %+v", debt)
	}

	payment := paymentRequest{Amount: 10, RecordedBy: "Sam\t"}.toPayment("d1")
	if payment.DebtID != "d1" || payment.RecordedBy != "Sam" || !payment.Date.IsZero() {
		t.Fatalf("payment = %+v", payment)
	}
}
