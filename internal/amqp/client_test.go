package amqp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{-1, 1 * time.Second},
	}

	for _, tt := range tests {
		if got := exponentialBackoff(tt.attempt); got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"closed", errors.New("connection closed"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"pipe", errors.New("write: broken pipe"), true},
		{"closed network", errors.New("use of closed network connection"), true},
		{"other", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCircuitBreaker(t *testing.T) {
	c := &Client{url: "amqp://localhost"}

	if c.isCircuitOpen() {
		t.Fatal("new client should start closed")
	}

	for i := 0; i < maxFailures-1; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatal("circuit opened before maxFailures")
	}

	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatal("circuit should open after maxFailures")
	}

	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if c.isCircuitOpen() {
		t.Fatal("circuit should go half-open after openTimeout")
	}
	if c.state != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", c.state)
	}

	// A single failure while half-open reopens immediately.
	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatal("failure while half-open should reopen")
	}

	c.recordSuccess()
	if c.isCircuitOpen() || c.failureCount != 0 {
		t.Fatal("success should close and reset the breaker")
	}
}

func TestPublishFailsFastWhenCircuitOpen(t *testing.T) {
	c := &Client{url: "amqp://localhost", state: StateOpen, lastFailure: time.Now()}

	err := c.PublishLedgerEvent(context.Background(), NewLedgerEvent(DebtCreated, "d1"))
	if err == nil || !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Fatalf("err = %v, want circuit breaker error", err)
	}
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	c := &Client{url: "amqp://localhost"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.PublishLedgerEvent(ctx, NewLedgerEvent(DebtCreated, "d1")); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLedgerEventJSON(t *testing.T) {
	msg := NewLedgerEvent(PaymentRecorded, "d1")
	msg.Amount = 250
	msg.RecordedBy = "Alex"

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Kind != PaymentRecorded || got.EntityID != "d1" || got.Amount != 250 || got.RecordedBy != "Alex" {
		t.Fatalf("decoded %+v", got)
	}

	if _, err := LedgerEventFromJSON([]byte(`{"entity_id":"x"}`)); err == nil {
		t.Fatal("event without kind should be rejected")
	}
	if _, err := LedgerEventFromJSON([]byte(`not json`)); err == nil {
		t.Fatal("invalid JSON should be rejected")
	}
}
