package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/planner"
	"finanzas/internal/reminders"
	"finanzas/internal/services"
)

type (
	// LedgerAPI is what the handlers need from the ledger service.
	LedgerAPI interface {
		Snapshot(ctx context.Context) (core.Snapshot, error)
		CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error)
		UpdateDebt(ctx context.Context, d core.Debt) (core.Debt, error)
		DeleteDebt(ctx context.Context, id string) error
		CreateIncome(ctx context.Context, in core.Income) (core.Income, error)
		DeleteIncome(ctx context.Context, id string) error
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
		RecordPayment(ctx context.Context, p core.Payment) (core.Debt, error)
		ListPayments(ctx context.Context, debtID string) ([]core.Payment, error)
		History(ctx context.Context) ([]core.HistoryPoint, error)
	}

	// PlanAPI is what the handlers need from the plan service.
	PlanAPI interface {
		Plan(ctx context.Context, requested planner.Strategy, horizon int) (services.Plan, error)
		Projection(ctx context.Context, requested planner.Strategy) (services.Projection, error)
		Compare(ctx context.Context) (planner.Comparison, error)
		Estimates(ctx context.Context) ([]planner.Estimate, error)
		Reminders(ctx context.Context) ([]reminders.Reminder, error)
		Overview(ctx context.Context) (services.Overview, error)
	}

	// ReadinessCheck reports whether a dependency can serve traffic.
	ReadinessCheck func(ctx context.Context) error
)

type Options struct {
	Logger *log.Logger
	// RateLimitPerMinute bounds mutating requests per client IP.
	RateLimitPerMinute int
	// Checks are run by /readyz, keyed by dependency name.
	Checks map[string]ReadinessCheck
	// TrustedProxies extends the proxies whose forwarding headers are believed.
	TrustedProxies []string
}

type Server struct {
	http.Server
	ledger LedgerAPI
	plans  PlanAPI
	checks map[string]ReadinessCheck
	logger *log.Logger

	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware
	detector    *security.Detector

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	started          time.Time
	paymentsRecorded int64
	plansServed      int64
}

// NewServer wires routes and middleware, returning a ready to run server.
func NewServer(addr string, ledger LedgerAPI, plans PlanAPI, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s := &Server{
		ledger:      ledger,
		plans:       plans,
		checks:      opts.Checks,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:      trace.NewMiddleware(detector.ExtractClientIP, logger),
		detector:    detector,
		appMetrics:  appMetrics{started: time.Now()},
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/plan", s.handlePlan)
	mux.HandleFunc("GET /api/plan/compare", s.handleCompare)
	mux.HandleFunc("GET /api/projection", s.handleProjection)
	mux.HandleFunc("GET /api/estimates", s.handleEstimates)
	mux.HandleFunc("GET /api/reminders", s.handleReminders)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	mux.HandleFunc("POST /api/debts", s.handleCreateDebt)
	mux.HandleFunc("PUT /api/debts/{id}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", s.handleDeleteDebt)
	mux.HandleFunc("GET /api/debts/{id}/payments", s.handleListPayments)
	mux.HandleFunc("POST /api/debts/{id}/payments", s.handleRecordPayment)

	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	limit := ratelimit.WritesOnly(s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError(trace.GetRequestID(r.Context())).Write(w)
	}))
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	// Outermost first: trace so every line carries the request ID.
	var h http.Handler = mux
	h = limit(h)
	h = s.detector.Middleware(h)
	h = headers.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// Shutdown stops the rate limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) countPlan() {
	atomic.AddInt64(&s.appMetrics.plansServed, 1)
}
