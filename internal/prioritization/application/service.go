// Package application exposes the prioritization context's operations as a
// single facade over its command, query, and service layers.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/application/commands"
	"github.com/codesidh/bpts/internal/prioritization/application/queries"
	"github.com/codesidh/bpts/internal/prioritization/application/services"
	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/escalation"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	sharedApplication "github.com/codesidh/bpts/internal/shared/application"
	"github.com/codesidh/bpts/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// Config carries the tunables the facade passes down to its engines.
type Config struct {
	RecalcInterval     time.Duration
	AutoAdjustInterval time.Duration
	AutoAdjustDeadline time.Duration
	EscalationInterval time.Duration
	EscalationDeadline time.Duration
	DefaultSLAHours    int
}

// Service is the entry point for everything the prioritization context can
// do: interactive and bulk scoring, configuration versioning, previews,
// escalations, and rule-driven auto adjustment.
type Service struct {
	scheduler    *services.RecalculationScheduler
	autoAdjuster *services.AutoAdjustmentEngine
	escalator    *services.EscalationEngine
	validator    *services.ValidationEngine

	createVersion  *commands.CreateVersionHandler
	rollback       *commands.RollbackConfigurationHandler
	setInheritance *commands.SetInheritanceHandler

	effectiveConfig *queries.GetEffectiveConfigurationHandler
	versionHistory  *queries.GetVersionHistoryHandler
	compareVersions *queries.CompareVersionsHandler
	preview         *queries.PreviewChangesHandler
	escalations     *queries.ListPendingEscalationsHandler
	scoreHistory    *queries.GetScoreHistoryHandler
}

// NewService wires the full prioritization context.
func NewService(
	workRepo workrequest.Repository,
	auditRepo workrequest.ScoreAuditRepository,
	configRepo config.Repository,
	escalationRepo escalation.Repository,
	utilization services.UtilizationProvider,
	locker services.ScopeLocker,
	notifier services.Notifier,
	publisher eventbus.Publisher,
	uow sharedApplication.UnitOfWork,
	cfg Config,
	logger *slog.Logger,
) *Service {
	composer := services.NewScoreComposer(workRepo, auditRepo)

	return &Service{
		scheduler: services.NewRecalculationScheduler(
			workRepo, configRepo, composer, utilization, locker, cfg.RecalcInterval, logger),
		autoAdjuster: services.NewAutoAdjustmentEngine(
			workRepo, configRepo, composer, publisher, cfg.AutoAdjustInterval, cfg.AutoAdjustDeadline, logger),
		escalator: services.NewEscalationEngine(
			workRepo, configRepo, escalationRepo, notifier, publisher,
			cfg.EscalationInterval, cfg.EscalationDeadline, cfg.DefaultSLAHours, logger),
		validator: services.NewValidationEngine(),

		createVersion:  commands.NewCreateVersionHandler(configRepo, publisher, uow),
		rollback:       commands.NewRollbackConfigurationHandler(configRepo, publisher, uow),
		setInheritance: commands.NewSetInheritanceHandler(configRepo, publisher, uow),

		effectiveConfig: queries.NewGetEffectiveConfigurationHandler(configRepo),
		versionHistory:  queries.NewGetVersionHistoryHandler(configRepo),
		compareVersions: queries.NewCompareVersionsHandler(configRepo),
		preview:         queries.NewPreviewChangesHandler(workRepo, composer, utilization),
		escalations:     queries.NewListPendingEscalationsHandler(escalationRepo),
		scoreHistory:    queries.NewGetScoreHistoryHandler(auditRepo),
	}
}

// CalculatePriorityScore recomputes and commits one work request's score.
func (s *Service) CalculatePriorityScore(ctx context.Context, workRequestID uuid.UUID) (*services.ScoredItem, error) {
	return s.scheduler.CalculateOne(ctx, workRequestID)
}

// RecalculateAll recomputes every pending work request in scope. Returns
// services.ErrRecalculationInProgress when the scope is already being
// recalculated.
func (s *Service) RecalculateAll(ctx context.Context, verticalID *uuid.UUID) (*services.RecalculationReport, error) {
	return s.scheduler.RecalculateAll(ctx, verticalID)
}

// RecalculateAllScopes runs one recalculation pass per scope, global plus
// every vertical with pending work, each under its own effective
// configuration.
func (s *Service) RecalculateAllScopes(ctx context.Context) ([]*services.RecalculationReport, error) {
	return s.scheduler.RecalculateAllScopes(ctx)
}

// PreviewChanges scores the pending population under a candidate
// configuration without persisting anything.
func (s *Service) PreviewChanges(ctx context.Context, candidate *config.PriorityConfiguration, verticalID *uuid.UUID) (*queries.PreviewResult, error) {
	return s.preview.Handle(ctx, queries.PreviewChangesQuery{Candidate: candidate, VerticalID: verticalID})
}

// PreviewChangesWithOptions exposes the full preview query surface.
func (s *Service) PreviewChangesWithOptions(ctx context.Context, query queries.PreviewChangesQuery) (*queries.PreviewResult, error) {
	return s.preview.Handle(ctx, query)
}

// GetEffectiveConfiguration resolves the configuration in force for a scope.
func (s *Service) GetEffectiveConfiguration(ctx context.Context, key string, verticalID *uuid.UUID) (*queries.EffectiveConfiguration, error) {
	return s.effectiveConfig.Handle(ctx, queries.GetEffectiveConfigurationQuery{Key: key, VerticalID: verticalID})
}

// ValidateConfiguration checks a draft without persisting it.
func (s *Service) ValidateConfiguration(cfg *config.PriorityConfiguration) services.ValidationResult {
	return s.validator.Validate(cfg)
}

// CreateConfigurationVersion validates and appends a new version.
func (s *Service) CreateConfigurationVersion(ctx context.Context, draft *config.PriorityConfiguration, requestedBy string) (*commands.CreateVersionResult, error) {
	return s.createVersion.Handle(ctx, commands.CreateVersionCommand{Draft: draft, RequestedBy: requestedBy})
}

// RollbackConfiguration restores an earlier version as a new version.
func (s *Service) RollbackConfiguration(ctx context.Context, key string, verticalID *uuid.UUID, targetVersion int, requestedBy string) (*commands.RollbackConfigurationResult, error) {
	return s.rollback.Handle(ctx, commands.RollbackConfigurationCommand{
		Key:           key,
		VerticalID:    verticalID,
		TargetVersion: targetVersion,
		RequestedBy:   requestedBy,
	})
}

// SetInheritance switches a vertical between inheriting the global
// configuration and overriding it.
func (s *Service) SetInheritance(ctx context.Context, key string, verticalID uuid.UUID, inherit bool, requestedBy string) (*commands.SetInheritanceResult, error) {
	return s.setInheritance.Handle(ctx, commands.SetInheritanceCommand{
		Key:         key,
		VerticalID:  verticalID,
		Inherit:     inherit,
		RequestedBy: requestedBy,
	})
}

// GetVersionHistory lists every version for a (key, vertical) pair.
func (s *Service) GetVersionHistory(ctx context.Context, key string, verticalID *uuid.UUID) ([]queries.VersionSummary, error) {
	return s.versionHistory.Handle(ctx, queries.GetVersionHistoryQuery{Key: key, VerticalID: verticalID})
}

// CompareVersions diffs two stored versions.
func (s *Service) CompareVersions(ctx context.Context, key string, verticalID *uuid.UUID, from, to int) (*config.Diff, error) {
	return s.compareVersions.Handle(ctx, queries.CompareVersionsQuery{
		Key:         key,
		VerticalID:  verticalID,
		FromVersion: from,
		ToVersion:   to,
	})
}

// GetPendingEscalations lists unresolved escalations.
func (s *Service) GetPendingEscalations(ctx context.Context, verticalID *uuid.UUID) ([]*escalation.PriorityEscalation, error) {
	return s.escalations.Handle(ctx, queries.ListPendingEscalationsQuery{VerticalID: verticalID})
}

// GetScoreHistory lists one work request's score audit trail.
func (s *Service) GetScoreHistory(ctx context.Context, workRequestID uuid.UUID) ([]workrequest.ScoreAudit, error) {
	return s.scoreHistory.Handle(ctx, queries.GetScoreHistoryQuery{WorkRequestID: workRequestID})
}

// ProcessAutoAdjustments runs one rule evaluation pass over all scopes.
func (s *Service) ProcessAutoAdjustments(ctx context.Context) ([]*services.AutoAdjustmentReport, error) {
	return s.autoAdjuster.ProcessAll(ctx)
}

// ScanEscalations runs one SLA sweep over all scopes.
func (s *Service) ScanEscalations(ctx context.Context) ([]*services.EscalationReport, error) {
	return s.escalator.ScanAll(ctx)
}

// Start launches the periodic background loops.
func (s *Service) Start(ctx context.Context) {
	s.scheduler.Start(ctx)
	s.autoAdjuster.Start(ctx)
	s.escalator.Start(ctx)
}

// Stop shuts the background loops down and waits for them to exit.
func (s *Service) Stop() {
	s.escalator.Stop()
	s.autoAdjuster.Stop()
	s.scheduler.Stop()
}

// Stats returns health snapshots for the worker's endpoints.
func (s *Service) Stats() (services.RecalculationStats, services.AutoAdjustmentStats, services.EscalationStats) {
	return s.scheduler.Stats(), s.autoAdjuster.Stats(), s.escalator.Stats()
}
