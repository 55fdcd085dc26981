package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/escalation"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/google/uuid"
)

// memConfigRepo is an in-memory config.Repository for engine tests.
type memConfigRepo struct {
	mu       sync.Mutex
	versions []*config.PriorityConfiguration
}

func newMemConfigRepo(seed ...*config.PriorityConfiguration) *memConfigRepo {
	return &memConfigRepo{versions: seed}
}

func (r *memConfigRepo) CreateVersion(_ context.Context, cfg *config.PriorityConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.Key == cfg.Key && config.ScopeLabel(v.BusinessVerticalID) == cfg.Scope() && v.Version == cfg.Version {
			return config.ErrVersionConflict
		}
	}
	r.versions = append(r.versions, cfg)
	return nil
}

func (r *memConfigRepo) GetVersion(_ context.Context, key string, verticalID *uuid.UUID, version int) (*config.PriorityConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.Key == key && v.Scope() == config.ScopeLabel(verticalID) && v.Version == version {
			return v, nil
		}
	}
	return nil, config.ErrVersionNotFound
}

func (r *memConfigRepo) GetActive(_ context.Context, key string, verticalID *uuid.UUID, at time.Time) (*config.PriorityConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *config.PriorityConfiguration
	for _, v := range r.versions {
		if v.Key != key || v.Scope() != config.ScopeLabel(verticalID) || !v.IsEffectiveAt(at) {
			continue
		}
		if best == nil || v.Version > best.Version {
			best = v
		}
	}
	if best == nil {
		return nil, config.ErrConfigurationNotFound
	}
	return best, nil
}

func (r *memConfigRepo) VersionHistory(_ context.Context, key string, verticalID *uuid.UUID) ([]*config.PriorityConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*config.PriorityConfiguration
	for _, v := range r.versions {
		if v.Key == key && v.Scope() == config.ScopeLabel(verticalID) {
			out = append(out, v)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Version > out[j].Version; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out, nil
}

func (r *memConfigRepo) LatestVersion(_ context.Context, key string, verticalID *uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := 0
	for _, v := range r.versions {
		if v.Key == key && v.Scope() == config.ScopeLabel(verticalID) && v.Version > latest {
			latest = v.Version
		}
	}
	return latest, nil
}

// memWorkRepo is an in-memory workrequest.Repository.
type memWorkRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*workrequest.WorkRequest

	// failUpdates lists ids whose UpdateScore calls fail.
	failUpdates map[uuid.UUID]bool

	updateCount int
}

func newMemWorkRepo(items ...*workrequest.WorkRequest) *memWorkRepo {
	r := &memWorkRepo{
		items:       make(map[uuid.UUID]*workrequest.WorkRequest),
		failUpdates: make(map[uuid.UUID]bool),
	}
	for _, w := range items {
		r.items[w.ID] = w
	}
	return r
}

func (r *memWorkRepo) FindByID(_ context.Context, id uuid.UUID) (*workrequest.WorkRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[id]
	if !ok {
		return nil, workrequest.ErrWorkRequestNotFound
	}
	return w, nil
}

func (r *memWorkRepo) FindPendingInScope(_ context.Context, verticalID *uuid.UUID) ([]*workrequest.WorkRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*workrequest.WorkRequest
	for _, w := range r.items {
		if !w.IsPending() {
			continue
		}
		if verticalID != nil {
			if w.BusinessVerticalID == nil || *w.BusinessVerticalID != *verticalID {
				continue
			}
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *memWorkRepo) UpdateScore(_ context.Context, w *workrequest.WorkRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdates[w.ID] {
		return fmt.Errorf("storage unavailable")
	}
	if _, ok := r.items[w.ID]; !ok {
		return workrequest.ErrWorkRequestNotFound
	}
	r.items[w.ID] = w
	r.updateCount++
	return nil
}

func (r *memWorkRepo) ListVerticals(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, w := range r.items {
		if w.IsPending() && w.BusinessVerticalID != nil && !seen[*w.BusinessVerticalID] {
			seen[*w.BusinessVerticalID] = true
			out = append(out, *w.BusinessVerticalID)
		}
	}
	return out, nil
}

// memAuditRepo is an in-memory workrequest.ScoreAuditRepository.
type memAuditRepo struct {
	mu     sync.Mutex
	audits []workrequest.ScoreAudit
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (r *memAuditRepo) Append(_ context.Context, audit workrequest.ScoreAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, audit)
	return nil
}

func (r *memAuditRepo) ListByWorkRequest(_ context.Context, workRequestID uuid.UUID) ([]workrequest.ScoreAudit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []workrequest.ScoreAudit
	for _, a := range r.audits {
		if a.WorkRequestID == workRequestID {
			out = append(out, a)
		}
	}
	return out, nil
}

// memEscalationRepo is an in-memory escalation.Repository.
type memEscalationRepo struct {
	mu      sync.Mutex
	records []*escalation.PriorityEscalation
}

func newMemEscalationRepo() *memEscalationRepo {
	return &memEscalationRepo{}
}

func (r *memEscalationRepo) Create(_ context.Context, e *escalation.PriorityEscalation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, e)
	return nil
}

func (r *memEscalationRepo) GetByID(_ context.Context, id uuid.UUID) (*escalation.PriorityEscalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.records {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, escalation.ErrEscalationNotFound
}

func (r *memEscalationRepo) HasUnresolved(_ context.Context, workRequestID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.records {
		if e.WorkRequestID == workRequestID && !e.Resolved {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEscalationRepo) ListPending(_ context.Context, _ *uuid.UUID) ([]*escalation.PriorityEscalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*escalation.PriorityEscalation
	for _, e := range r.records {
		if !e.Resolved {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEscalationRepo) MarkResolved(_ context.Context, e *escalation.PriorityEscalation) error {
	return nil
}

// recordingNotifier captures escalation notifications.
type recordingNotifier struct {
	mu       sync.Mutex
	notified []*escalation.PriorityEscalation
}

func (n *recordingNotifier) NotifyEscalation(_ context.Context, e *escalation.PriorityEscalation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, e)
	return nil
}

// fixedUtilization reports the same utilization for every department.
func fixedUtilization(pct float64) UtilizationProvider {
	return UtilizationFunc(func(context.Context, uuid.UUID) (float64, error) {
		return pct, nil
	})
}

// pendingItem builds a minimally valid pending work request.
func pendingItem(baseScore float64, age time.Duration) *workrequest.WorkRequest {
	return pendingItemAt(time.Now().UTC(), baseScore, age)
}

// pendingItemAt builds a pending work request whose age is measured from the
// caller's reference time, so tests that evaluate at that same instant see
// the exact whole-day age they asked for.
func pendingItemAt(now time.Time, baseScore float64, age time.Duration) *workrequest.WorkRequest {
	return &workrequest.WorkRequest{
		ID:            uuid.New(),
		Title:         "test item",
		Category:      "maintenance",
		DepartmentID:  uuid.New(),
		Status:        workrequest.StatusPending,
		CreatedAt:     now.Add(-age),
		BaseScore:     baseScore,
		PriorityLevel: workrequest.PriorityLow,
	}
}
