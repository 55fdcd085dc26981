package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/application/services"
	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/google/uuid"
)

// defaultTopDeltas caps how many per-item rows a preview returns.
const defaultTopDeltas = 20

// PreviewChangesQuery scores the pending population under a candidate
// configuration without persisting anything.
type PreviewChangesQuery struct {
	Candidate  *config.PriorityConfiguration
	VerticalID *uuid.UUID

	// TopN limits the per-item delta rows; 0 uses the default.
	TopN int
}

// PreviewDelta is one work request's before/after comparison.
type PreviewDelta struct {
	WorkRequestID uuid.UUID                 `json:"work_request_id"`
	Title         string                    `json:"title"`
	CurrentScore  float64                   `json:"current_score"`
	NewScore      float64                   `json:"new_score"`
	Delta         float64                   `json:"delta"`
	CurrentLevel  workrequest.PriorityLevel `json:"current_level"`
	NewLevel      workrequest.PriorityLevel `json:"new_level"`
}

// PreviewResult summarizes the candidate configuration's impact.
type PreviewResult struct {
	Scope         string         `json:"scope"`
	Total         int            `json:"total"`
	LevelChanges  int            `json:"level_changes"`
	Failed        int            `json:"failed"`
	TopDeltas     []PreviewDelta `json:"top_deltas"`
	LevelsBefore  map[string]int `json:"levels_before"`
	LevelsAfter   map[string]int `json:"levels_after"`
	AverageBefore float64        `json:"average_before"`
	AverageAfter  float64        `json:"average_after"`
}

// PreviewChangesHandler handles the PreviewChangesQuery.
type PreviewChangesHandler struct {
	workRepo    workrequest.Repository
	composer    *services.ScoreComposer
	utilization services.UtilizationProvider
	validator   *services.ValidationEngine
}

// NewPreviewChangesHandler creates a new handler. The composer is used in
// compute-only mode; no scores or audits are ever written.
func NewPreviewChangesHandler(workRepo workrequest.Repository, composer *services.ScoreComposer, utilization services.UtilizationProvider) *PreviewChangesHandler {
	return &PreviewChangesHandler{
		workRepo:    workRepo,
		composer:    composer,
		utilization: utilization,
		validator:   services.NewValidationEngine(),
	}
}

// Handle executes the PreviewChangesQuery against the current pending
// population. Items that fail to score under the candidate are counted and
// excluded rather than failing the whole preview.
func (h *PreviewChangesHandler) Handle(ctx context.Context, query PreviewChangesQuery) (*PreviewResult, error) {
	candidate := query.Candidate
	if candidate == nil {
		return nil, fmt.Errorf("%w: no candidate provided", config.ErrConfigurationInvalid)
	}
	if v := h.validator.Validate(candidate); !v.Valid {
		return nil, fmt.Errorf("%w: %v", config.ErrConfigurationInvalid, v.Errors)
	}

	items, err := h.workRepo.FindPendingInScope(ctx, query.VerticalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &PreviewResult{
		Scope:        config.ScopeLabel(query.VerticalID),
		Total:        len(items),
		LevelsBefore: make(map[string]int),
		LevelsAfter:  make(map[string]int),
	}

	utilizationByDept := make(map[uuid.UUID]float64)
	deltas := make([]PreviewDelta, 0, len(items))
	var beforeSum, afterSum float64

	for _, item := range items {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		utilization, ok := utilizationByDept[item.DepartmentID]
		if !ok {
			pct, err := h.utilization.UtilizationPct(ctx, item.DepartmentID)
			if err != nil {
				pct = candidate.Capacity.OptimalUtilizationPct
			}
			utilization = pct
			utilizationByDept[item.DepartmentID] = pct
		}

		scored, err := h.composer.Compute(item, candidate, utilization, now)
		if err != nil {
			result.Failed++
			continue
		}

		beforeSum += item.PriorityScore
		afterSum += scored.Score
		result.LevelsBefore[item.PriorityLevel.String()]++
		result.LevelsAfter[scored.Level.String()]++
		if scored.Level != item.PriorityLevel {
			result.LevelChanges++
		}

		deltas = append(deltas, PreviewDelta{
			WorkRequestID: item.ID,
			Title:         item.Title,
			CurrentScore:  item.PriorityScore,
			NewScore:      scored.Score,
			Delta:         scored.Score - item.PriorityScore,
			CurrentLevel:  item.PriorityLevel,
			NewLevel:      scored.Level,
		})
	}

	if n := len(deltas); n > 0 {
		result.AverageBefore = beforeSum / float64(n)
		result.AverageAfter = afterSum / float64(n)
	}

	sort.SliceStable(deltas, func(i, j int) bool {
		return abs(deltas[i].Delta) > abs(deltas[j].Delta)
	})
	topN := query.TopN
	if topN <= 0 {
		topN = defaultTopDeltas
	}
	if len(deltas) > topN {
		deltas = deltas[:topN]
	}
	result.TopDeltas = deltas
	return result, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
