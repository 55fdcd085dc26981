package workrequest

import (
	"time"

	"github.com/google/uuid"
)

// ScoreTrigger records what caused a score commit.
type ScoreTrigger string

const (
	TriggerInteractive    ScoreTrigger = "interactive"
	TriggerBulk           ScoreTrigger = "bulk"
	TriggerAutoAdjustment ScoreTrigger = "auto_adjustment"
)

// ScoreAudit is an append-only record of one committed score change.
type ScoreAudit struct {
	ID            uuid.UUID
	WorkRequestID uuid.UUID

	OldScore float64
	NewScore float64
	OldLevel PriorityLevel
	NewLevel PriorityLevel

	// ConfigRef identifies the configuration version used, e.g.
	// "default/global@v3".
	ConfigRef string

	Trigger   ScoreTrigger
	CreatedAt time.Time
}

// NewScoreAudit creates an audit record for a score commit.
func NewScoreAudit(w *WorkRequest, newScore float64, newLevel PriorityLevel, configRef string, trigger ScoreTrigger) ScoreAudit {
	return ScoreAudit{
		ID:            uuid.New(),
		WorkRequestID: w.ID,
		OldScore:      w.PriorityScore,
		NewScore:      newScore,
		OldLevel:      w.PriorityLevel,
		NewLevel:      newLevel,
		ConfigRef:     configRef,
		Trigger:       trigger,
		CreatedAt:     time.Now().UTC(),
	}
}
