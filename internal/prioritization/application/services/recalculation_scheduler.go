package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/google/uuid"
)

// RecalculationReport summarizes one bulk recalculation pass.
type RecalculationReport struct {
	Scope    string        `json:"scope"`
	Total    int           `json:"total"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// RecalculationStats exposes scheduler health for the worker's endpoints.
type RecalculationStats struct {
	IsRunning    bool
	LastRunAt    time.Time
	LastError    string
	TotalRuns    int64
	TotalSkipped int64
}

// RecalculationScheduler orchestrates population-wide score recomputation,
// guaranteeing at most one concurrent run per scope.
type RecalculationScheduler struct {
	workRepo    workrequest.Repository
	configRepo  config.Repository
	composer    *ScoreComposer
	utilization UtilizationProvider
	locker      ScopeLocker
	logger      *slog.Logger

	interval time.Duration

	mu     sync.Mutex
	stats  RecalculationStats
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRecalculationScheduler creates a scheduler. interval <= 0 disables the
// periodic loop; on-demand RecalculateAll still works.
func NewRecalculationScheduler(
	workRepo workrequest.Repository,
	configRepo config.Repository,
	composer *ScoreComposer,
	utilization UtilizationProvider,
	locker ScopeLocker,
	interval time.Duration,
	logger *slog.Logger,
) *RecalculationScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if locker == nil {
		locker = NewInProcessScopeLocker()
	}
	return &RecalculationScheduler{
		workRepo:    workRepo,
		configRepo:  configRepo,
		composer:    composer,
		utilization: utilization,
		locker:      locker,
		interval:    interval,
		logger:      logger,
	}
}

// RecalculateAll recomputes and commits scores for every pending work
// request in one scope under that scope's effective configuration.
// Idempotent with unchanged inputs. Items assigned to a business vertical
// belong to their vertical's pass; the global pass (nil vertical) covers
// only unassigned items, so no item is ever scored under a configuration
// another scope resolves differently.
//
// A second call for a scope already in flight returns
// ErrRecalculationInProgress rather than queueing. A single item's scoring
// failure is logged and skipped; the run continues.
func (s *RecalculationScheduler) RecalculateAll(ctx context.Context, verticalID *uuid.UUID) (*RecalculationReport, error) {
	scope := config.ScopeLabel(verticalID)
	start := time.Now()

	release, acquired, err := s.locker.TryLock(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scope lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("scope %s: %w", scope, ErrRecalculationInProgress)
	}
	defer release()

	// One configuration snapshot per pass: every item in this run sees the
	// same version, even if a new version is committed mid-pass.
	cfg, err := config.ResolveEffective(ctx, s.configRepo, config.DefaultKey, verticalID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve effective configuration: %w", err)
	}

	items, err := s.workRepo.FindPendingInScope(ctx, verticalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work requests: %w", err)
	}

	report := &RecalculationReport{Scope: scope}
	utilizationByDept := make(map[uuid.UUID]float64)

	for _, item := range items {
		// Each item's write is atomic, so cancellation simply stops
		// processing further items.
		select {
		case <-ctx.Done():
			report.Duration = time.Since(start)
			s.recordRun(report, ctx.Err())
			return report, ctx.Err()
		default:
		}
		// Vertical items are covered by their own pass under the
		// vertical's effective configuration.
		if verticalID == nil && item.BusinessVerticalID != nil {
			continue
		}
		report.Total++

		if err := s.scoreOne(ctx, item, cfg, utilizationByDept, workrequest.TriggerBulk); err != nil {
			report.Skipped++
			s.logger.Warn("work request skipped during recalculation",
				"work_request_id", item.ID,
				"scope", scope,
				"error", err,
			)
			continue
		}
		report.Updated++
	}

	report.Duration = time.Since(start)
	s.recordRun(report, nil)

	s.logger.Info("recalculation completed",
		"scope", scope,
		"total", report.Total,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"config", cfg.Ref(),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// RecalculateAllScopes runs one pass per scope: global plus every business
// vertical with pending work, each under its own resolved configuration
// snapshot. A scope that fails or is already being recalculated is logged
// and skipped; the sweep continues.
func (s *RecalculationScheduler) RecalculateAllScopes(ctx context.Context) ([]*RecalculationReport, error) {
	verticals, err := s.workRepo.ListVerticals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list business verticals: %w", err)
	}

	scopes := make([]*uuid.UUID, 0, len(verticals)+1)
	scopes = append(scopes, nil)
	for i := range verticals {
		scopes = append(scopes, &verticals[i])
	}

	reports := make([]*RecalculationReport, 0, len(scopes))
	for _, verticalID := range scopes {
		report, err := s.RecalculateAll(ctx, verticalID)
		if err != nil {
			if ctx.Err() != nil {
				return reports, ctx.Err()
			}
			s.logger.Warn("recalculation scope skipped",
				"scope", config.ScopeLabel(verticalID),
				"error", err,
			)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// CalculateOne recomputes and commits a single work request's score, the
// interactive path used on vote submission. Racing with a bulk pass is
// last-writer-wins; each write is atomic per item.
func (s *RecalculationScheduler) CalculateOne(ctx context.Context, workRequestID uuid.UUID) (*ScoredItem, error) {
	item, err := s.workRepo.FindByID(ctx, workRequestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cfg, err := config.ResolveEffective(ctx, s.configRepo, config.DefaultKey, item.BusinessVerticalID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve effective configuration: %w", err)
	}

	utilization := s.utilizationFor(ctx, item.DepartmentID, nil, cfg.Capacity.OptimalUtilizationPct)
	scored, err := s.composer.Compute(item, cfg, utilization, now)
	if err != nil {
		return nil, err
	}
	if err := s.composer.Commit(ctx, item, scored, cfg, workrequest.TriggerInteractive); err != nil {
		return nil, err
	}
	return &scored, nil
}

func (s *RecalculationScheduler) scoreOne(
	ctx context.Context,
	item *workrequest.WorkRequest,
	cfg *config.PriorityConfiguration,
	utilizationByDept map[uuid.UUID]float64,
	trigger workrequest.ScoreTrigger,
) error {
	utilization := s.utilizationFor(ctx, item.DepartmentID, utilizationByDept, cfg.Capacity.OptimalUtilizationPct)

	scored, err := s.composer.Compute(item, cfg, utilization, time.Now())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}
	if err := s.composer.Commit(ctx, item, scored, cfg, trigger); err != nil {
		return fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}
	return nil
}

// utilizationFor fetches a department's utilization with an optional
// per-pass cache. Missing utilization data degrades to the configured
// optimum (a neutral multiplier of 1) rather than failing the item.
func (s *RecalculationScheduler) utilizationFor(ctx context.Context, departmentID uuid.UUID, cache map[uuid.UUID]float64, neutral float64) float64 {
	if cache != nil {
		if pct, ok := cache[departmentID]; ok {
			return pct
		}
	}

	pct, err := s.utilization.UtilizationPct(ctx, departmentID)
	if err != nil {
		s.logger.Debug("utilization unavailable, using neutral value",
			"department_id", departmentID,
			"error", err,
		)
		pct = neutral
	}

	if cache != nil {
		cache[departmentID] = pct
	}
	return pct
}

// Start launches the periodic recalculation loop. Call Stop to shut down.
func (s *RecalculationScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.done = make(chan struct{})
	s.stats.IsRunning = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if _, err := s.RecalculateAllScopes(runCtx); err != nil {
					s.logger.Error("periodic recalculation failed", "error", err)
				}
			}
		}
	}()
}

// Stop terminates the periodic loop and waits for it to exit.
func (s *RecalculationScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.stats.IsRunning = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Stats returns a snapshot of scheduler health.
func (s *RecalculationScheduler) Stats() RecalculationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *RecalculationScheduler) recordRun(report *RecalculationReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.LastRunAt = time.Now()
	s.stats.TotalRuns++
	s.stats.TotalSkipped += int64(report.Skipped)
	if err != nil {
		s.stats.LastError = err.Error()
	} else {
		s.stats.LastError = ""
	}
}
