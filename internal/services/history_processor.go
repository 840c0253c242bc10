package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/sheets"
	"finanzas/internal/store"
)

// HistoryStore is the part of the ledger the processor needs.
type HistoryStore interface {
	store.SnapshotReader
	store.HistoryStore
}

// HistoryProcessorConfig holds configuration for the history processor
type HistoryProcessorConfig struct {
	// Interval is how often the current month's point is refreshed (default: 1h)
	Interval time.Duration
}

func DefaultHistoryProcessorConfig() HistoryProcessorConfig {
	return HistoryProcessorConfig{Interval: time.Hour}
}

// HistoryProcessor keeps the monthly total-debt history current, writing the
// point for the running month on every tick.
type HistoryProcessor struct {
	ledger   HistoryStore
	exporter sheets.HistoryExporter
	config   HistoryProcessorConfig
	now      func() time.Time

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewHistoryProcessor creates a processor. exporter may be nil.
func NewHistoryProcessor(ledger HistoryStore, exporter sheets.HistoryExporter, config HistoryProcessorConfig) *HistoryProcessor {
	if config.Interval <= 0 {
		config.Interval = DefaultHistoryProcessorConfig().Interval
	}
	return &HistoryProcessor{
		ledger:   ledger,
		exporter: exporter,
		config:   config,
		now:      time.Now,
	}
}

// RecordMonth stores the snapshot's total debt as the point for now's month
// and exports the full history when an exporter is configured.
func (p *HistoryProcessor) RecordMonth(ctx context.Context, now time.Time) (core.HistoryPoint, error) {
	if p.ledger == nil {
		return core.HistoryPoint{}, fmt.Errorf("processor not properly initialized")
	}
	snap, err := p.ledger.Snapshot(ctx)
	if err != nil {
		return core.HistoryPoint{}, fmt.Errorf("load snapshot: %w", err)
	}
	point := core.HistoryPoint{
		Period:    core.Date{Time: now}.MonthKey(),
		TotalDebt: snap.TotalDebt(),
	}
	if err := p.ledger.RecordHistory(ctx, point); err != nil {
		return core.HistoryPoint{}, fmt.Errorf("record history: %w", err)
	}

	slog.InfoContext(ctx, "Recorded history point",
		"period", point.Period,
		"total_debt", point.TotalDebt)

	if p.exporter != nil {
		points, err := p.ledger.History(ctx)
		if err != nil {
			return point, fmt.Errorf("load history: %w", err)
		}
		if err := p.exporter.ExportHistory(ctx, points); err != nil {
			return point, fmt.Errorf("export history: %w", err)
		}
	}
	return point, nil
}

// Start begins the processing loop. Returns an error if already running.
func (p *HistoryProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("history processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "History processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *HistoryProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "History processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "History processor stop timed out")
		return ctx.Err()
	}
}

func (p *HistoryProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *HistoryProcessor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Record immediately on startup
	p.tick(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *HistoryProcessor) tick(ctx context.Context) {
	if _, err := p.RecordMonth(ctx, p.now()); err != nil {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "History processing failed", err,
			log.ComponentHistory, log.OpRecord, log.NewFields().WithErrorType(log.ErrorTypeDatabase))
	}
}
