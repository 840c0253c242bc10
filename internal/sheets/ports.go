package sheets

import (
	"context"

	"finanzas/internal/core"
	"finanzas/internal/planner"
)

// Ports for spreadsheet export.
type (
	// PlanExporter publishes a computed plan for people who read it outside the app.
	PlanExporter interface {
		ExportPlan(ctx context.Context, report planner.Report) error
	}

	HistoryExporter interface {
		ExportHistory(ctx context.Context, points []core.HistoryPoint) error
	}
)
