package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/application/services"
	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubWorkRepo serves a fixed pending population.
type stubWorkRepo struct {
	workrequest.Repository
	items []*workrequest.WorkRequest
}

func (r *stubWorkRepo) FindPendingInScope(_ context.Context, verticalID *uuid.UUID) ([]*workrequest.WorkRequest, error) {
	var out []*workrequest.WorkRequest
	for _, w := range r.items {
		if verticalID != nil {
			if w.BusinessVerticalID == nil || *w.BusinessVerticalID != *verticalID {
				continue
			}
		}
		out = append(out, w)
	}
	return out, nil
}

func neutralUtilization(cfg *config.PriorityConfiguration) services.UtilizationProvider {
	return services.UtilizationFunc(func(context.Context, uuid.UUID) (float64, error) {
		return cfg.Capacity.OptimalUtilizationPct, nil
	})
}

func previewItem(baseScore, currentScore float64, level workrequest.PriorityLevel) *workrequest.WorkRequest {
	return &workrequest.WorkRequest{
		ID:            uuid.New(),
		Title:         "item",
		Category:      "maintenance",
		DepartmentID:  uuid.New(),
		Status:        workrequest.StatusPending,
		CreatedAt:     time.Now().UTC(),
		BaseScore:     baseScore,
		PriorityScore: currentScore,
		PriorityLevel: level,
	}
}

func previewCandidate() *config.PriorityConfiguration {
	cfg := config.NewPriorityConfiguration(config.DefaultKey, nil, "test")
	cfg.TimeDecay.Enabled = false
	cfg.Capacity.Enabled = false
	return cfg
}

func TestPreviewChangesHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("previews without persisting", func(t *testing.T) {
		// fresh items with neutral multipliers score at base*100
		a := previewItem(0.3, 55, workrequest.PriorityHigh)
		b := previewItem(0.8, 10, workrequest.PriorityLow)

		repo := &stubWorkRepo{items: []*workrequest.WorkRequest{a, b}}
		candidate := previewCandidate()
		handler := NewPreviewChangesHandler(repo, services.NewScoreComposer(nil, nil), neutralUtilization(candidate))

		result, err := handler.Handle(ctx, PreviewChangesQuery{Candidate: candidate})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Total)
		assert.Zero(t, result.Failed)
		assert.Equal(t, 2, result.LevelChanges)
		assert.InDelta(t, 32.5, result.AverageBefore, 1e-9)
		assert.InDelta(t, 55, result.AverageAfter, 1e-9)

		assert.Equal(t, 1, result.LevelsBefore["high"])
		assert.Equal(t, 1, result.LevelsBefore["low"])
		assert.Equal(t, 1, result.LevelsAfter["medium"])
		assert.Equal(t, 1, result.LevelsAfter["critical"])

		// stored state is untouched
		assert.InDelta(t, 55, a.PriorityScore, 1e-9)
		assert.Equal(t, workrequest.PriorityHigh, a.PriorityLevel)
		assert.Nil(t, a.ScoreUpdatedAt)
	})

	t.Run("orders deltas by magnitude and caps at TopN", func(t *testing.T) {
		small := previewItem(0.5, 45, workrequest.PriorityMedium) // delta 5
		big := previewItem(0.9, 10, workrequest.PriorityLow)      // delta 80
		mid := previewItem(0.2, 60, workrequest.PriorityHigh)     // delta -40

		repo := &stubWorkRepo{items: []*workrequest.WorkRequest{small, big, mid}}
		candidate := previewCandidate()
		handler := NewPreviewChangesHandler(repo, services.NewScoreComposer(nil, nil), neutralUtilization(candidate))

		result, err := handler.Handle(ctx, PreviewChangesQuery{Candidate: candidate, TopN: 2})
		require.NoError(t, err)

		require.Len(t, result.TopDeltas, 2)
		assert.Equal(t, big.ID, result.TopDeltas[0].WorkRequestID)
		assert.InDelta(t, 80, result.TopDeltas[0].Delta, 1e-9)
		assert.Equal(t, mid.ID, result.TopDeltas[1].WorkRequestID)
		assert.InDelta(t, -40, result.TopDeltas[1].Delta, 1e-9)
	})

	t.Run("rejects an invalid candidate before scoring", func(t *testing.T) {
		candidate := previewCandidate()
		candidate.MinScore = 100
		candidate.MaxScore = 0

		repo := &stubWorkRepo{}
		handler := NewPreviewChangesHandler(repo, services.NewScoreComposer(nil, nil), neutralUtilization(candidate))

		_, err := handler.Handle(ctx, PreviewChangesQuery{Candidate: candidate})
		assert.True(t, errors.Is(err, config.ErrConfigurationInvalid))
	})

	t.Run("requires a candidate", func(t *testing.T) {
		handler := NewPreviewChangesHandler(&stubWorkRepo{}, services.NewScoreComposer(nil, nil), nil)

		_, err := handler.Handle(ctx, PreviewChangesQuery{})
		assert.True(t, errors.Is(err, config.ErrConfigurationInvalid))
	})

	t.Run("scopes the preview to one vertical", func(t *testing.T) {
		vertical := uuid.New()
		scoped := previewItem(0.5, 0, workrequest.PriorityLow)
		scoped.BusinessVerticalID = &vertical
		global := previewItem(0.5, 0, workrequest.PriorityLow)

		repo := &stubWorkRepo{items: []*workrequest.WorkRequest{scoped, global}}
		candidate := previewCandidate()
		handler := NewPreviewChangesHandler(repo, services.NewScoreComposer(nil, nil), neutralUtilization(candidate))

		result, err := handler.Handle(ctx, PreviewChangesQuery{Candidate: candidate, VerticalID: &vertical})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, vertical.String(), result.Scope)
	})
}
