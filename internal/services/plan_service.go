package services

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"finanzas/internal/cache"
	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/planner"
	"finanzas/internal/reminders"
	"finanzas/internal/store"
)

// MaxHorizon bounds caller supplied horizons to fifty years.
const MaxHorizon = 600

type (
	// Plan is a report together with the calendar date it reaches zero debt.
	Plan struct {
		planner.Report
		// DebtFreeDate is the first day of the payoff month; nil when the
		// horizon ran out or there is no debt.
		DebtFreeDate *core.Date `json:"debt_free_date"`
	}

	Projection struct {
		Summary      planner.Summary `json:"summary"`
		Series       []planner.Point `json:"series"`
		DebtFreeDate *core.Date      `json:"debt_free_date"`
	}

	// Overview is the dashboard headline: where the household stands and
	// what to do this month.
	Overview struct {
		Capacity       planner.Capacity       `json:"capacity"`
		Recommendation planner.Recommendation `json:"recommendation"`
		Priority       *planner.Priority      `json:"priority,omitempty"`
		Plan           planner.Summary        `json:"plan"`
		DebtFreeDate   *core.Date             `json:"debt_free_date"`
		Reminders      []reminders.Reminder   `json:"reminders"`
	}
)

// PlanService computes plans from the current snapshot. Reports are cached by
// a fingerprint of their inputs, so any ledger change yields a new key and no
// explicit invalidation is needed.
type PlanService struct {
	snapshots  store.SnapshotReader
	cache      cache.Cache[planner.Report]
	group      singleflight.Group
	horizon    int
	projection planner.Options
	now        func() time.Time
}

// NewPlanService wires the service. reports may be nil to disable caching.
// horizon is the default plan length; projection shapes the short forecast.
func NewPlanService(snapshots store.SnapshotReader, reports cache.Cache[planner.Report], horizon int, projection planner.Options) *PlanService {
	if horizon <= 0 {
		horizon = planner.DefaultHorizon
	}
	if projection.Horizon <= 0 {
		projection = planner.ProjectionOptions()
	}
	return &PlanService{
		snapshots:  snapshots,
		cache:      reports,
		horizon:    horizon,
		projection: projection,
		now:        time.Now,
	}
}

// Plan runs the full schedule. An empty strategy lets the recommendation
// decide; horizon 0 selects the configured default.
func (s *PlanService) Plan(ctx context.Context, requested planner.Strategy, horizon int) (Plan, error) {
	if horizon < 0 || horizon > MaxHorizon {
		return Plan{}, fmt.Errorf("horizon %d: %w", horizon, core.ErrInvalidHorizon)
	}
	if horizon == 0 {
		horizon = s.horizon
	}
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("load snapshot: %w", err)
	}
	opts := planner.Options{Horizon: horizon, Start: s.now()}
	report, err := s.report(ctx, snap, requested, opts)
	if err != nil {
		return Plan{}, err
	}
	return Plan{Report: report, DebtFreeDate: debtFreeDate(opts.Start, report.Schedule)}, nil
}

// Projection is the short-range debt and wealth series for charts.
func (s *PlanService) Projection(ctx context.Context, requested planner.Strategy) (Projection, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return Projection{}, fmt.Errorf("load snapshot: %w", err)
	}
	opts := s.projection
	opts.Start = s.now()
	report, err := s.report(ctx, snap, requested, opts)
	if err != nil {
		return Projection{}, err
	}
	return Projection{
		Summary:      report.Schedule.Summary(),
		Series:       report.Schedule.Series(),
		DebtFreeDate: debtFreeDate(opts.Start, report.Schedule),
	}, nil
}

// Compare runs both strategies on the same snapshot concurrently.
func (s *PlanService) Compare(ctx context.Context) (planner.Comparison, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return planner.Comparison{}, fmt.Errorf("load snapshot: %w", err)
	}
	opts := planner.Options{Horizon: s.horizon, Start: s.now()}

	var avalanche, snowball planner.Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.report(gctx, snap, planner.Avalanche, opts)
		avalanche = r
		return err
	})
	g.Go(func() error {
		r, err := s.report(gctx, snap, planner.Snowball, opts)
		snowball = r
		return err
	})
	if err := g.Wait(); err != nil {
		return planner.Comparison{}, err
	}
	return planner.Compare(avalanche.Schedule, snowball.Schedule), nil
}

func (s *PlanService) Estimates(ctx context.Context) ([]planner.Estimate, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return planner.EstimateAll(snap.Debts), nil
}

func (s *PlanService) Reminders(ctx context.Context) ([]reminders.Reminder, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return reminders.Due(snap, s.now()), nil
}

// Overview combines the default plan with today's reminders.
func (s *PlanService) Overview(ctx context.Context) (Overview, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("load snapshot: %w", err)
	}
	now := s.now()
	opts := planner.Options{Horizon: s.horizon, Start: now}
	report, err := s.report(ctx, snap, "", opts)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Capacity:       report.Capacity,
		Recommendation: report.Recommendation,
		Priority:       report.Priority,
		Plan:           report.Schedule.Summary(),
		DebtFreeDate:   debtFreeDate(now, report.Schedule),
		Reminders:      reminders.Due(snap, now),
	}, nil
}

// report returns the cached analysis for these inputs or computes it once,
// sharing the result with concurrent callers asking for the same key.
func (s *PlanService) report(ctx context.Context, snap core.Snapshot, requested planner.Strategy, opts planner.Options) (planner.Report, error) {
	if requested != "" && !requested.IsValid() {
		return planner.Report{}, fmt.Errorf("strategy %q: %w", requested, core.ErrInvalidStrategy)
	}
	key, err := fingerprint(snap, requested, opts)
	if err != nil {
		return planner.Report{}, fmt.Errorf("fingerprint snapshot: %w", err)
	}
	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Plan cache hit", "key", key)
			return r, nil
		}
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		r := planner.Analyze(snap, requested, opts)
		log.NewStructuredLogger(log.FromContext(ctx)).
			LogPlanComputed(ctx, string(r.Schedule.Strategy), string(r.Schedule.Outcome), r.Schedule.Periods())
		if s.cache != nil {
			s.cache.Set(key, r)
		}
		return r, nil
	})
	if err != nil {
		return planner.Report{}, err
	}
	slog.DebugContext(ctx, "Plan served",
		"key", key,
		"shared", shared,
		"strategy", requested)
	return v.(planner.Report), nil
}

// fingerprint hashes everything a report depends on. The start only matters
// to the month of the labels.
func fingerprint(snap core.Snapshot, requested planner.Strategy, opts planner.Options) (string, error) {
	b, err := json.Marshal(snap.Sanitized())
	if err != nil {
		return "", err
	}
	h := xxhash.New()
	h.Write(b)
	h.WriteString(string(requested))

	var buf [8]byte
	for _, n := range []int{opts.Horizon, opts.MinPeriods} {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}
	if !opts.Start.IsZero() {
		h.WriteString(opts.Start.Format("2006-01"))
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}

func debtFreeDate(start time.Time, schedule planner.Schedule) *core.Date {
	if schedule.Outcome != planner.OutcomePaidOff || schedule.PayoffPeriod <= 0 || start.IsZero() {
		return nil
	}
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	d := core.Date{Time: first.AddDate(0, schedule.PayoffPeriod, 0)}
	return &d
}
