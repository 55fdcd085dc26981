package services

import (
	"context"
	"fmt"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/google/uuid"
)

// ScoredItem is the outcome of composing one work request's score.
type ScoredItem struct {
	WorkRequestID uuid.UUID

	// RawScore is the weighted sum before normalization.
	RawScore float64

	// Fraction is the raw score clamped into [0,1].
	Fraction float64

	// Score is the fraction projected onto the configured score range.
	Score float64

	Level workrequest.PriorityLevel

	DecayMultiplier    float64
	ValueMultiplier    float64
	CapacityMultiplier float64
}

// ScoreComposer combines the three multipliers with the base score and maps
// the result to a discrete priority level. Compute is pure; Commit persists.
type ScoreComposer struct {
	decay    *TimeDecayCalculator
	value    *BusinessValueCalculator
	capacity *CapacityAdjustmentCalculator

	workRepo  workrequest.Repository
	auditRepo workrequest.ScoreAuditRepository
}

// NewScoreComposer creates a composer. The repositories may be nil for
// preview-only use; Commit requires both.
func NewScoreComposer(workRepo workrequest.Repository, auditRepo workrequest.ScoreAuditRepository) *ScoreComposer {
	return &ScoreComposer{
		decay:     NewTimeDecayCalculator(),
		value:     NewBusinessValueCalculator(),
		capacity:  NewCapacityAdjustmentCalculator(),
		workRepo:  workRepo,
		auditRepo: auditRepo,
	}
}

// Compute returns the would-be score for a work request under cfg without
// mutating anything.
//
// A zero weight sum or inverted score bounds indicate a configuration that
// the validation engine should have rejected; they surface as
// config.ErrConfigurationInvalid.
func (c *ScoreComposer) Compute(w *workrequest.WorkRequest, cfg *config.PriorityConfiguration, utilizationPct float64, now time.Time) (ScoredItem, error) {
	algo := cfg.Algorithm
	if algo.WeightSum() == 0 {
		return ScoredItem{}, fmt.Errorf("weights sum to zero: %w", config.ErrConfigurationInvalid)
	}
	if cfg.MinScore >= cfg.MaxScore {
		return ScoredItem{}, fmt.Errorf("score bounds inverted: %w", config.ErrConfigurationInvalid)
	}

	decayMult := c.decay.Multiplier(w.CreatedAt, cfg.TimeDecay, now)
	valueMult := c.value.Multiplier(w, cfg.BusinessValue)
	capMult := c.capacity.Multiplier(w.DepartmentID, utilizationPct, cfg.Capacity)

	base := w.BaseScore
	raw := algo.BaseWeight*base +
		algo.TimeDecayWeight*(base*(decayMult-1)) +
		algo.BusinessValueWeight*(base*(valueMult-1)) +
		algo.CapacityWeight*(base*(capMult-1))

	fraction := clamp(raw, 0, 1)
	score := cfg.MinScore + fraction*(cfg.MaxScore-cfg.MinScore)

	return ScoredItem{
		WorkRequestID:      w.ID,
		RawScore:           raw,
		Fraction:           fraction,
		Score:              score,
		Level:              levelFor(algo.Bands, fraction),
		DecayMultiplier:    decayMult,
		ValueMultiplier:    valueMult,
		CapacityMultiplier: capMult,
	}, nil
}

// Commit writes the scored values back to the work request and appends a
// score audit record.
func (c *ScoreComposer) Commit(ctx context.Context, w *workrequest.WorkRequest, scored ScoredItem, cfg *config.PriorityConfiguration, trigger workrequest.ScoreTrigger) error {
	audit := workrequest.NewScoreAudit(w, scored.Score, scored.Level, cfg.Ref(), trigger)

	w.ApplyScore(scored.Score, scored.Level, time.Now().UTC())

	if err := c.workRepo.UpdateScore(ctx, w); err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	if err := c.auditRepo.Append(ctx, audit); err != nil {
		return fmt.Errorf("failed to append score audit: %w", err)
	}
	return nil
}

// levelFor maps a normalized fraction to the highest band whose threshold it
// meets. Thresholds are inclusive lower bounds, so boundary scores land in
// the higher band.
func levelFor(bands []config.ScoreBand, fraction float64) workrequest.PriorityLevel {
	if len(bands) == 0 {
		bands = config.DefaultAlgorithmConfig().Bands
	}
	level := workrequest.PriorityLow
	best := -1.0
	for _, b := range bands {
		if fraction >= b.Threshold && b.Threshold > best {
			if l := workrequest.PriorityLevel(b.Level); l.IsValid() {
				level = l
				best = b.Threshold
			}
		}
	}
	return level
}
