package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/escalation"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/codesidh/bpts/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// EscalationReport summarizes one SLA sweep over a scope.
type EscalationReport struct {
	Scope     string        `json:"scope"`
	Scanned   int           `json:"scanned"`
	Escalated int           `json:"escalated"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}

// EscalationStats exposes engine health for the worker's endpoints.
type EscalationStats struct {
	IsRunning      bool
	LastScanAt     time.Time
	LastError      string
	TotalRuns      int64
	TotalEscalated int64
}

// EscalationEngine periodically sweeps pending work requests for SLA
// breaches and records append-only escalations. An item already carrying
// an unresolved escalation is never escalated twice.
type EscalationEngine struct {
	workRepo       workrequest.Repository
	configRepo     config.Repository
	escalationRepo escalation.Repository
	notifier       Notifier
	publisher      eventbus.Publisher
	logger         *slog.Logger

	interval time.Duration
	deadline time.Duration

	// defaultSLAHours backstops configurations that carry no usable SLA.
	defaultSLAHours int

	mu     sync.Mutex
	stats  EscalationStats
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEscalationEngine creates the engine. interval <= 0 disables the
// periodic loop; on-demand ScanAll still works.
func NewEscalationEngine(
	workRepo workrequest.Repository,
	configRepo config.Repository,
	escalationRepo escalation.Repository,
	notifier Notifier,
	publisher eventbus.Publisher,
	interval, deadline time.Duration,
	defaultSLAHours int,
	logger *slog.Logger,
) *EscalationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultSLAHours <= 0 {
		defaultSLAHours = 72
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	return &EscalationEngine{
		workRepo:        workRepo,
		configRepo:      configRepo,
		escalationRepo:  escalationRepo,
		notifier:        notifier,
		publisher:       publisher,
		interval:        interval,
		deadline:        deadline,
		defaultSLAHours: defaultSLAHours,
		logger:          logger,
	}
}

// ScanAll sweeps the global scope and every business vertical with pending
// work. A scope whose sweep fails is logged and skipped.
func (e *EscalationEngine) ScanAll(ctx context.Context) ([]*EscalationReport, error) {
	if e.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.deadline)
		defer cancel()
	}

	verticals, err := e.workRepo.ListVerticals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list business verticals: %w", err)
	}

	scopes := make([]*uuid.UUID, 0, len(verticals)+1)
	scopes = append(scopes, nil)
	for i := range verticals {
		scopes = append(scopes, &verticals[i])
	}

	reports := make([]*EscalationReport, 0, len(scopes))
	for _, verticalID := range scopes {
		report, err := e.Scan(ctx, verticalID)
		if err != nil {
			if ctx.Err() != nil {
				return reports, ctx.Err()
			}
			e.logger.Warn("escalation scope skipped",
				"scope", config.ScopeLabel(verticalID),
				"error", err,
			)
			continue
		}
		reports = append(reports, report)
	}
	e.recordRun(reports)
	return reports, nil
}

// Scan sweeps one scope. Pending items in vertical scopes are covered by
// their vertical sweep; the global sweep (nil vertical) covers items with
// no vertical.
//
// A failure on one item is logged and skipped; the sweep continues.
func (e *EscalationEngine) Scan(ctx context.Context, verticalID *uuid.UUID) (*EscalationReport, error) {
	scope := config.ScopeLabel(verticalID)
	start := time.Now()
	report := &EscalationReport{Scope: scope}

	cfg, err := config.ResolveEffective(ctx, e.configRepo, config.DefaultKey, verticalID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve effective configuration: %w", err)
	}

	items, err := e.workRepo.FindPendingInScope(ctx, verticalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work requests: %w", err)
	}

	for _, item := range items {
		select {
		case <-ctx.Done():
			report.Duration = time.Since(start)
			return report, ctx.Err()
		default:
		}
		// The global sweep must not double-process vertical items.
		if verticalID == nil && item.BusinessVerticalID != nil {
			continue
		}
		report.Scanned++

		escalated, err := e.checkOne(ctx, item, cfg, start)
		if err != nil {
			report.Skipped++
			e.logger.Warn("work request skipped during escalation sweep",
				"work_request_id", item.ID,
				"scope", scope,
				"error", err,
			)
			continue
		}
		if escalated {
			report.Escalated++
		}
	}

	report.Duration = time.Since(start)
	if report.Escalated > 0 {
		e.logger.Info("escalation sweep completed",
			"scope", scope,
			"scanned", report.Scanned,
			"escalated", report.Escalated,
			"skipped", report.Skipped,
		)
	}
	return report, nil
}

// checkOne evaluates one work request against its SLA and escalates on
// breach. Returns true when a new escalation was recorded.
func (e *EscalationEngine) checkOne(
	ctx context.Context,
	item *workrequest.WorkRequest,
	cfg *config.PriorityConfiguration,
	now time.Time,
) (bool, error) {
	ageHours := item.AgeHoursAt(now)
	slaHours, rule := cfg.Escalation.MatchSLA(item.Category)
	if slaHours <= 0 {
		slaHours = cfg.Escalation.DefaultSLAHours
	}
	if slaHours <= 0 {
		slaHours = e.defaultSLAHours
	}
	if ageHours <= slaHours {
		return false, nil
	}

	open, err := e.escalationRepo.HasUnresolved(ctx, item.ID)
	if err != nil {
		return false, err
	}
	if open {
		return false, nil
	}

	var ruleName, action string
	var recipients []string
	reason := fmt.Sprintf("pending for %dh, SLA is %dh", ageHours, slaHours)
	if rule != nil {
		ruleName = rule.Name
		action = rule.Action
		recipients = rule.Recipients
	}

	record := escalation.New(item.ID, item.CreatedAt, reason, ruleName, action, recipients, item.PriorityScore, item.AssigneeID)
	if err := e.escalationRepo.Create(ctx, record); err != nil {
		return false, err
	}

	// The record is already durable; notification and event delivery are
	// best effort.
	if err := e.notifier.NotifyEscalation(ctx, record); err != nil {
		e.logger.Warn("escalation notification failed",
			"escalation_id", record.ID,
			"error", err,
		)
	}
	event := escalation.NewRaisedEvent(record, ageHours, slaHours)
	if err := eventbus.PublishDomainEvent(ctx, e.publisher, event); err != nil {
		e.logger.Warn("failed to publish escalation event", "error", err)
	}
	return true, nil
}

// Start launches the periodic sweep loop. Call Stop to shut down.
func (e *EscalationEngine) Start(ctx context.Context) {
	if e.interval <= 0 {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.done = make(chan struct{})
	e.stats.IsRunning = true
	e.mu.Unlock()

	go func() {
		defer close(e.done)
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if _, err := e.ScanAll(runCtx); err != nil {
					e.logger.Error("escalation sweep failed", "error", err)
				}
			}
		}
	}()
}

// Stop terminates the periodic loop and waits for it to exit.
func (e *EscalationEngine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	done := e.done
	e.stats.IsRunning = false
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Stats returns a snapshot of engine health.
func (e *EscalationEngine) Stats() EscalationStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *EscalationEngine) recordRun(reports []*EscalationReport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.TotalRuns++
	e.stats.LastScanAt = time.Now()
	e.stats.LastError = ""
	for _, r := range reports {
		e.stats.TotalEscalated += int64(r.Escalated)
	}
}
