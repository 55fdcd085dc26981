package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/codesidh/bpts/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// AutoAdjustmentReport summarizes one rule evaluation pass over a scope.
type AutoAdjustmentReport struct {
	Scope          string        `json:"scope"`
	RulesEvaluated int           `json:"rules_evaluated"`
	RulesTriggered int           `json:"rules_triggered"`
	RulesFailed    int           `json:"rules_failed"`
	NewVersion     int           `json:"new_version,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// AutoAdjustmentStats exposes engine health for the worker's endpoints.
type AutoAdjustmentStats struct {
	IsRunning       bool
	LastProcessedAt time.Time
	LastError       string
	TotalRuns       int64
	TotalTriggered  int64
}

// AutoAdjustmentEngine periodically evaluates adjustment rules against
// population metrics and commits bounded parameter changes as new
// configuration versions. Every applied change is a normal version with a
// full audit trail; nothing is mutated in place.
type AutoAdjustmentEngine struct {
	workRepo   workrequest.Repository
	configRepo config.Repository
	composer   *ScoreComposer
	evaluator  *RuleEvaluator
	publisher  eventbus.Publisher
	logger     *slog.Logger

	interval time.Duration
	deadline time.Duration

	mu     sync.Mutex
	stats  AutoAdjustmentStats
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAutoAdjustmentEngine creates the engine. interval <= 0 disables the
// periodic loop; on-demand ProcessAll still works.
func NewAutoAdjustmentEngine(
	workRepo workrequest.Repository,
	configRepo config.Repository,
	composer *ScoreComposer,
	publisher eventbus.Publisher,
	interval, deadline time.Duration,
	logger *slog.Logger,
) *AutoAdjustmentEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	return &AutoAdjustmentEngine{
		workRepo:   workRepo,
		configRepo: configRepo,
		composer:   composer,
		evaluator:  NewRuleEvaluator(),
		publisher:  publisher,
		interval:   interval,
		deadline:   deadline,
		logger:     logger,
	}
}

// ProcessAll runs one evaluation pass over the global scope and every
// business vertical with pending work. A scope whose evaluation fails is
// logged and skipped; the pass continues with the remaining scopes.
func (e *AutoAdjustmentEngine) ProcessAll(ctx context.Context) ([]*AutoAdjustmentReport, error) {
	if e.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.deadline)
		defer cancel()
	}

	scopes, err := e.scopes(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]*AutoAdjustmentReport, 0, len(scopes))
	for _, verticalID := range scopes {
		report, err := e.ProcessScope(ctx, verticalID)
		if err != nil {
			if ctx.Err() != nil {
				return reports, ctx.Err()
			}
			e.logger.Warn("auto-adjustment scope skipped",
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

// ProcessScope evaluates adjustment rules for one scope. Rules are applied
// in descending priority order; each triggered rule commits its own
// configuration version so every change is individually attributable and
// reversible.
func (e *AutoAdjustmentEngine) ProcessScope(ctx context.Context, verticalID *uuid.UUID) (*AutoAdjustmentReport, error) {
	scope := config.ScopeLabel(verticalID)
	start := time.Now()
	report := &AutoAdjustmentReport{Scope: scope}

	cfg, err := config.ResolveEffective(ctx, e.configRepo, config.DefaultKey, verticalID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve effective configuration: %w", err)
	}
	if !cfg.AutoAdjust.Enabled {
		report.Duration = time.Since(start)
		return report, nil
	}

	items, err := e.workRepo.FindPendingInScope(ctx, verticalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work requests: %w", err)
	}
	// Vertical items are measured by their own scope's pass; counting them
	// here too would double-weight them in the global metrics.
	if verticalID == nil {
		scoped := items[:0]
		for _, item := range items {
			if item.BusinessVerticalID == nil {
				scoped = append(scoped, item)
			}
		}
		items = scoped
	}
	snapshot := buildSnapshot(items, cfg, e.composer, nil, start)

	// current follows the chain of versions committed during this pass so
	// a later rule sees the effect of an earlier one.
	current := cfg
	for _, rule := range cfg.AutoAdjust.ActiveRulesOrdered() {
		report.RulesEvaluated++

		triggered, err := e.evaluator.EvaluateCondition(rule.Condition, snapshot)
		if err != nil {
			report.RulesFailed++
			e.logger.Warn("adjustment rule skipped",
				"scope", scope,
				"rule", rule.Name,
				"error", err,
			)
			continue
		}
		if !triggered {
			continue
		}

		next, err := e.commitAdjustment(ctx, current, rule, verticalID, start)
		if err != nil {
			report.RulesFailed++
			e.logger.Warn("adjustment rule could not be applied",
				"scope", scope,
				"rule", rule.Name,
				"error", err,
			)
			continue
		}

		report.RulesTriggered++
		report.NewVersion = next.Version
		current = next

		e.logger.Info("adjustment rule applied",
			"scope", scope,
			"rule", rule.Name,
			"config", next.Ref(),
		)
	}

	report.Duration = time.Since(start)
	return report, nil
}

// commitAdjustment materializes one triggered rule as a new configuration
// version.
func (e *AutoAdjustmentEngine) commitAdjustment(
	ctx context.Context,
	current *config.PriorityConfiguration,
	rule config.AdjustmentRule,
	verticalID *uuid.UUID,
	now time.Time,
) (*config.PriorityConfiguration, error) {
	latest, err := e.configRepo.LatestVersion(ctx, current.Key, verticalID)
	if err != nil {
		return nil, err
	}

	draft := current.NextVersion(latest+1, "auto-adjustment:"+rule.Name)
	draft.BusinessVerticalID = verticalID
	if err := e.evaluator.ApplyAction(draft, rule.Action, current.AutoAdjust.MaxDelta); err != nil {
		return nil, err
	}
	draft.AutoAdjust.LastProcessed = &now

	result := NewValidationEngine().Validate(draft)
	if !result.Valid {
		return nil, fmt.Errorf("%w: adjusted configuration invalid: %v", ErrRuleEvaluation, result.Errors)
	}

	if err := e.configRepo.CreateVersion(ctx, draft); err != nil {
		return nil, err
	}

	event := config.NewAutoAdjustedEvent(draft, rule.Name, current.Version)
	if err := eventbus.PublishDomainEvent(ctx, e.publisher, event); err != nil {
		e.logger.Warn("failed to publish auto-adjustment event", "error", err)
	}
	return draft, nil
}

// scopes returns nil (global) plus every vertical with pending work.
func (e *AutoAdjustmentEngine) scopes(ctx context.Context) ([]*uuid.UUID, error) {
	verticals, err := e.workRepo.ListVerticals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list business verticals: %w", err)
	}
	scopes := make([]*uuid.UUID, 0, len(verticals)+1)
	scopes = append(scopes, nil)
	for i := range verticals {
		scopes = append(scopes, &verticals[i])
	}
	return scopes, nil
}

// Start launches the periodic evaluation loop. Call Stop to shut down.
func (e *AutoAdjustmentEngine) Start(ctx context.Context) {
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
				if _, err := e.ProcessAll(runCtx); err != nil {
					e.logger.Error("auto-adjustment pass failed", "error", err)
				}
			}
		}
	}()
}

// Stop terminates the periodic loop and waits for it to exit.
func (e *AutoAdjustmentEngine) Stop() {
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
func (e *AutoAdjustmentEngine) Stats() AutoAdjustmentStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *AutoAdjustmentEngine) recordRun(reports []*AutoAdjustmentReport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.TotalRuns++
	e.stats.LastProcessedAt = time.Now()
	e.stats.LastError = ""
	for _, r := range reports {
		e.stats.TotalTriggered += int64(r.RulesTriggered)
	}
}
