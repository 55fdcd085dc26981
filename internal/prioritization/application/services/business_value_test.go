package services

import (
	"testing"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBusinessValueCalculator_Multiplier(t *testing.T) {
	calc := NewBusinessValueCalculator()
	vertical := uuid.New()

	cfg := config.BusinessValueWeightConfig{
		BaseMultiplier:               1.0,
		CategoryWeights:              map[string]float64{"compliance": 1.5},
		VerticalWeights:              map[uuid.UUID]float64{vertical: 1.2},
		StrategicAlignmentMultiplier: 1.25,
		ROIThreshold:                 100000,
		ROIBonusMultiplier:           1.15,
	}

	item := func() *workrequest.WorkRequest {
		return &workrequest.WorkRequest{
			ID:        uuid.New(),
			Category:  "maintenance",
			CreatedAt: time.Now(),
		}
	}

	t.Run("unknown category and vertical are neutral", func(t *testing.T) {
		assert.Equal(t, 1.0, calc.Multiplier(item(), cfg))
	})

	t.Run("category weight applies", func(t *testing.T) {
		w := item()
		w.Category = "compliance"
		assert.InDelta(t, 1.5, calc.Multiplier(w, cfg), 1e-9)
	})

	t.Run("vertical weight applies", func(t *testing.T) {
		w := item()
		w.BusinessVerticalID = &vertical
		assert.InDelta(t, 1.2, calc.Multiplier(w, cfg), 1e-9)
	})

	t.Run("strategic alignment applies", func(t *testing.T) {
		w := item()
		w.StrategicAlignment = true
		assert.InDelta(t, 1.25, calc.Multiplier(w, cfg), 1e-9)
	})

	t.Run("roi bonus applies at the threshold", func(t *testing.T) {
		w := item()
		roi := 100000.0
		w.ROIEstimate = &roi
		assert.InDelta(t, 1.15, calc.Multiplier(w, cfg), 1e-9)
	})

	t.Run("roi below threshold is neutral", func(t *testing.T) {
		w := item()
		roi := 99999.0
		w.ROIEstimate = &roi
		assert.Equal(t, 1.0, calc.Multiplier(w, cfg))
	})

	t.Run("all factors compound", func(t *testing.T) {
		w := item()
		w.Category = "compliance"
		w.BusinessVerticalID = &vertical
		w.StrategicAlignment = true
		roi := 250000.0
		w.ROIEstimate = &roi
		assert.InDelta(t, 1.5*1.2*1.25*1.15, calc.Multiplier(w, cfg), 1e-9)
	})

	t.Run("never negative", func(t *testing.T) {
		bad := cfg
		bad.BaseMultiplier = -2
		assert.Equal(t, 0.0, calc.Multiplier(item(), bad))
	})
}
