package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/planner"
	"finanzas/internal/services"
	"finanzas/internal/sheets"
)

type (
	// Planner computes the default plan; *services.PlanService implements it.
	Planner interface {
		Plan(ctx context.Context, requested planner.Strategy, horizon int) (services.Plan, error)
	}

	// HistoryRecorder stores the current month's total debt.
	HistoryRecorder interface {
		RecordMonth(ctx context.Context, now time.Time) (core.HistoryPoint, error)
	}
)

// PlanWorker reacts to ledger events: it recomputes the plan, which warms the
// shared cache, records the month's history point and exports the schedule.
type PlanWorker struct {
	plans    Planner
	history  HistoryRecorder
	exporter sheets.PlanExporter
	now      func() time.Time
}

// NewPlanWorker wires the worker. history and exporter may be nil.
func NewPlanWorker(plans Planner, history HistoryRecorder, exporter sheets.PlanExporter) *PlanWorker {
	return &PlanWorker{
		plans:    plans,
		history:  history,
		exporter: exporter,
		now:      time.Now,
	}
}

// HandleLedgerEvent processes a single ledger event from AMQP. A returned
// error makes the consumer requeue the message.
func (w *PlanWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"kind", msg.Kind,
		"entity_id", msg.EntityID,
		"timestamp", msg.Timestamp)

	return w.refresh(ctx)
}

// StartupRefresh brings the cache, history and sheet up to date in case
// events were lost while the worker was down.
func (w *PlanWorker) StartupRefresh(ctx context.Context) error {
	if err := w.refresh(ctx); err != nil {
		return fmt.Errorf("startup refresh: %w", err)
	}
	slog.InfoContext(ctx, "Startup refresh completed")
	return nil
}

func (w *PlanWorker) refresh(ctx context.Context) error {
	plan, err := w.plans.Plan(ctx, "", 0)
	if err != nil {
		return fmt.Errorf("compute plan: %w", err)
	}

	slog.InfoContext(ctx, "Plan recomputed",
		"strategy", plan.Schedule.Strategy,
		"outcome", plan.Schedule.Outcome,
		"payoff_period", plan.Schedule.PayoffPeriod,
		"debt_free_date", plan.DebtFreeDate)

	if w.history != nil {
		if _, err := w.history.RecordMonth(ctx, w.now()); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
	}

	if w.exporter != nil {
		if err := w.exporter.ExportPlan(ctx, plan.Report); err != nil {
			return fmt.Errorf("export plan: %w", err)
		}
	}
	return nil
}
