package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/middleware/trace"
)

const readyTimeout = 5 * time.Second

// validationErrors are domain rejections of well formed input.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidRate,
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrInvalidCategory,
	core.ErrInvalidFrequency,
	core.ErrInvalidDueDay,
	core.ErrInvalidDay,
}

// writeError maps an error to its status: malformed requests and bad query
// values are 400, unknown IDs 404, domain validation 422, anything else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	requestID := trace.GetRequestID(ctx)
	var reqErr *requestError

	switch {
	case errors.As(err, &reqErr),
		errors.Is(err, core.ErrInvalidStrategy),
		errors.Is(err, core.ErrInvalidHorizon):
		BadRequestError(err.Error(), requestID).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(err.Error(), requestID).Write(w)
	case isValidation(err):
		UnprocessableEntityError(err.Error(), requestID).Write(w)
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads the body.
		w.WriteHeader(499)
	default:
		fields := log.NewFields().WithErrorType(log.ErrorTypeInternal)
		fields[log.FieldMethod] = r.Method
		fields[log.FieldPath] = r.URL.Path
		log.NewStructuredLogger(log.FromContext(ctx)).
			LogError(ctx, "Request failed", err, log.ComponentHTTP, operationFor(r.Method), fields)
		InternalServerError(requestID).Write(w)
	}
}

func operationFor(method string) string {
	switch method {
	case http.MethodPost:
		return log.OpCreate
	case http.MethodPut:
		return log.OpUpdate
	case http.MethodDelete:
		return log.OpDelete
	default:
		return log.OpRead
	}
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady runs every configured check under one deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := make(map[string]string, len(s.checks)+1)

	if _, err := s.ledger.Snapshot(ctx); err != nil {
		checks["ledger"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["ledger"] = "ok"
	}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	metrics := []struct {
		name, help, kind string
		value            int64
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests},
		{"http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.TotalErrors},
		{"http_response_time_avg_us", "Average response time in microseconds", "gauge", traceMetrics.AverageResponseTime},
		{"payments_recorded_total", "Payments recorded through the API", "counter", atomic.LoadInt64(&s.appMetrics.paymentsRecorded)},
		{"plans_served_total", "Plans, projections and comparisons served", "counter", atomic.LoadInt64(&s.appMetrics.plansServed)},
		{"rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", limitMetrics.TotalHits},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", limitMetrics.ClientCount},
		{"suspicious_requests_total", "Requests flagged by the detector", "counter", securityMetrics.SuspiciousRequests},
		{"uptime_seconds", "Process uptime in seconds", "gauge", int64(time.Since(s.appMetrics.started).Seconds())},
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].name < metrics[j].name })

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}
