package services

import (
	"fmt"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/google/uuid"
)

// MetricSnapshot holds the aggregate metrics a rule condition can reference,
// computed once per evaluation tick for one scope.
type MetricSnapshot struct {
	Scope      string
	TakenAt    time.Time
	TotalItems int

	// AverageScore is the mean stored priority score.
	AverageScore float64

	// AverageAgeDays is the mean item age in days.
	AverageAgeDays float64

	// PriorityDrift is the mean absolute difference between stored scores
	// and freshly computed ones, a measure of how stale the population is.
	PriorityDrift float64

	DepartmentAverageScore map[uuid.UUID]float64
	DepartmentDrift        map[uuid.UUID]float64
}

// Value resolves a metric reference, optionally narrowed to a department.
func (m MetricSnapshot) Value(metric config.MetricName, departmentID *uuid.UUID) (float64, error) {
	if departmentID != nil {
		switch metric {
		case config.MetricAverageScore:
			return m.DepartmentAverageScore[*departmentID], nil
		case config.MetricPriorityDrift:
			return m.DepartmentDrift[*departmentID], nil
		default:
			return 0, fmt.Errorf("%w: %s is not available per department", config.ErrUnknownMetric, metric)
		}
	}

	switch metric {
	case config.MetricAverageScore:
		return m.AverageScore, nil
	case config.MetricAverageAge:
		return m.AverageAgeDays, nil
	case config.MetricPriorityDrift:
		return m.PriorityDrift, nil
	case config.MetricTotalItems:
		return float64(m.TotalItems), nil
	default:
		return 0, fmt.Errorf("%w: %s", config.ErrUnknownMetric, metric)
	}
}

// buildSnapshot aggregates metrics over the scoped population. Fresh scores
// are computed in preview mode; items that fail to compute contribute only
// their stored values.
func buildSnapshot(
	items []*workrequest.WorkRequest,
	cfg *config.PriorityConfiguration,
	composer *ScoreComposer,
	utilizationByDept map[uuid.UUID]float64,
	now time.Time,
) MetricSnapshot {
	snap := MetricSnapshot{
		Scope:                  cfg.Scope(),
		TakenAt:                now,
		TotalItems:             len(items),
		DepartmentAverageScore: make(map[uuid.UUID]float64),
		DepartmentDrift:        make(map[uuid.UUID]float64),
	}
	if len(items) == 0 {
		return snap
	}

	var scoreSum, ageSum, driftSum float64
	deptScoreSum := make(map[uuid.UUID]float64)
	deptDriftSum := make(map[uuid.UUID]float64)
	deptCount := make(map[uuid.UUID]int)

	for _, item := range items {
		scoreSum += item.PriorityScore
		ageSum += item.AgeAt(now).Hours() / 24
		deptScoreSum[item.DepartmentID] += item.PriorityScore
		deptCount[item.DepartmentID]++

		utilization, ok := utilizationByDept[item.DepartmentID]
		if !ok {
			utilization = cfg.Capacity.OptimalUtilizationPct
		}
		if scored, err := composer.Compute(item, cfg, utilization, now); err == nil {
			drift := scored.Score - item.PriorityScore
			if drift < 0 {
				drift = -drift
			}
			driftSum += drift
			deptDriftSum[item.DepartmentID] += drift
		}
	}

	n := float64(len(items))
	snap.AverageScore = scoreSum / n
	snap.AverageAgeDays = ageSum / n
	snap.PriorityDrift = driftSum / n
	for dept, count := range deptCount {
		snap.DepartmentAverageScore[dept] = deptScoreSum[dept] / float64(count)
		snap.DepartmentDrift[dept] = deptDriftSum[dept] / float64(count)
	}
	return snap
}
