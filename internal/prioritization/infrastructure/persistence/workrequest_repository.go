package persistence

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/codesidh/bpts/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const (
	workRequestTable = "work_requests"
	scoreAuditTable  = "score_audits"
)

var workRequestColumns = []string{
	"id", "title", "category", "department_id", "business_vertical_id",
	"status", "created_at", "base_score", "strategic_alignment",
	"roi_estimate", "assignee_id", "priority_score", "priority_level",
	"score_updated_at",
}

// WorkRequestRepository implements workrequest.Repository. The prioritization
// context only ever writes the three priority fields; everything else belongs
// to the intake subsystem.
type WorkRequestRepository struct {
	conn    database.Connection
	builder sq.StatementBuilderType
}

// NewWorkRequestRepository creates a work request repository.
func NewWorkRequestRepository(conn database.Connection) *WorkRequestRepository {
	return &WorkRequestRepository{
		conn:    conn,
		builder: builderFor(conn.Driver()),
	}
}

// FindByID retrieves a single work request.
func (r *WorkRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*workrequest.WorkRequest, error) {
	query, args, err := r.builder.
		Select(workRequestColumns...).
		From(workRequestTable).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	w, err := scanWorkRequest(executor.QueryRow(ctx, query, args...))
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("%s: %w", id, workrequest.ErrWorkRequestNotFound)
	}
	return w, err
}

// FindPendingInScope retrieves pending work requests, optionally narrowed to
// one business vertical (nil = all). Ordered by creation time so bulk passes
// are deterministic.
func (r *WorkRequestRepository) FindPendingInScope(ctx context.Context, verticalID *uuid.UUID) ([]*workrequest.WorkRequest, error) {
	builder := r.builder.
		Select(workRequestColumns...).
		From(workRequestTable).
		Where(sq.Eq{"status": workrequest.StatusPending.String()})
	if verticalID != nil {
		builder = builder.Where(sq.Eq{"business_vertical_id": verticalID.String()})
	}

	query, args, err := builder.OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending work requests: %w", err)
	}
	defer rows.Close()

	var items []*workrequest.WorkRequest
	for rows.Next() {
		w, err := scanWorkRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// UpdateScore writes the priority fields of one work request atomically.
func (r *WorkRequestRepository) UpdateScore(ctx context.Context, w *workrequest.WorkRequest) error {
	query, args, err := r.builder.
		Update(workRequestTable).
		Set("priority_score", w.PriorityScore).
		Set("priority_level", w.PriorityLevel.String()).
		Set("score_updated_at", w.ScoreUpdatedAt.UTC()).
		Where(sq.Eq{"id": w.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%s: %w", w.ID, workrequest.ErrWorkRequestNotFound)
	}
	return nil
}

// ListVerticals returns the distinct verticals with pending work.
func (r *WorkRequestRepository) ListVerticals(ctx context.Context) ([]uuid.UUID, error) {
	query, args, err := r.builder.
		Select("DISTINCT business_vertical_id").
		From(workRequestTable).
		Where(sq.Eq{"status": workrequest.StatusPending.String()}).
		Where(sq.NotEq{"business_vertical_id": ""}).
		OrderBy("business_vertical_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verticals: %w", err)
	}
	defer rows.Close()

	var verticals []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid vertical id %q: %w", raw, err)
		}
		verticals = append(verticals, id)
	}
	return verticals, rows.Err()
}

func scanWorkRequest(row database.Row) (*workrequest.WorkRequest, error) {
	var (
		w           workrequest.WorkRequest
		id          string
		department  string
		vertical    string
		status      string
		level       string
		roiEstimate *float64
		assignee    string
	)

	err := row.Scan(
		&id, &w.Title, &w.Category, &department, &vertical,
		&status, &w.CreatedAt, &w.BaseScore, &w.StrategicAlignment,
		&roiEstimate, &assignee, &w.PriorityScore, &level,
		&w.ScoreUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	w.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid work request id %q: %w", id, err)
	}
	w.DepartmentID, err = uuid.Parse(department)
	if err != nil {
		return nil, fmt.Errorf("invalid department id %q: %w", department, err)
	}
	w.BusinessVerticalID, err = verticalFromColumn(vertical)
	if err != nil {
		return nil, err
	}
	w.AssigneeID, err = nullableUUIDFrom(assignee)
	if err != nil {
		return nil, fmt.Errorf("invalid assignee id %q: %w", assignee, err)
	}
	w.Status = workrequest.Status(status)
	w.PriorityLevel = workrequest.PriorityLevel(level)
	w.ROIEstimate = roiEstimate
	return &w, nil
}

// ScoreAuditRepository implements workrequest.ScoreAuditRepository.
// Append-only.
type ScoreAuditRepository struct {
	conn    database.Connection
	builder sq.StatementBuilderType
}

// NewScoreAuditRepository creates a score audit repository.
func NewScoreAuditRepository(conn database.Connection) *ScoreAuditRepository {
	return &ScoreAuditRepository{
		conn:    conn,
		builder: builderFor(conn.Driver()),
	}
}

// Append writes one audit record.
func (r *ScoreAuditRepository) Append(ctx context.Context, audit workrequest.ScoreAudit) error {
	query, args, err := r.builder.
		Insert(scoreAuditTable).
		Columns("id", "work_request_id", "old_score", "new_score",
			"old_level", "new_level", "config_ref", "trigger_type", "created_at").
		Values(
			audit.ID.String(), audit.WorkRequestID.String(),
			audit.OldScore, audit.NewScore,
			audit.OldLevel.String(), audit.NewLevel.String(),
			audit.ConfigRef, string(audit.Trigger), audit.CreatedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	if _, err := executor.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to append score audit: %w", err)
	}
	return nil
}

// ListByWorkRequest returns one work request's audit trail, newest first.
func (r *ScoreAuditRepository) ListByWorkRequest(ctx context.Context, workRequestID uuid.UUID) ([]workrequest.ScoreAudit, error) {
	query, args, err := r.builder.
		Select("id", "work_request_id", "old_score", "new_score",
			"old_level", "new_level", "config_ref", "trigger_type", "created_at").
		From(scoreAuditTable).
		Where(sq.Eq{"work_request_id": workRequestID.String()}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query score audits: %w", err)
	}
	defer rows.Close()

	var audits []workrequest.ScoreAudit
	for rows.Next() {
		var (
			audit     workrequest.ScoreAudit
			id        string
			requestID string
			oldLevel  string
			newLevel  string
			trigger   string
			createdAt time.Time
		)
		err := rows.Scan(&id, &requestID, &audit.OldScore, &audit.NewScore,
			&oldLevel, &newLevel, &audit.ConfigRef, &trigger, &createdAt)
		if err != nil {
			return nil, err
		}
		if audit.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid audit id %q: %w", id, err)
		}
		if audit.WorkRequestID, err = uuid.Parse(requestID); err != nil {
			return nil, fmt.Errorf("invalid work request id %q: %w", requestID, err)
		}
		audit.OldLevel = workrequest.PriorityLevel(oldLevel)
		audit.NewLevel = workrequest.PriorityLevel(newLevel)
		audit.Trigger = workrequest.ScoreTrigger(trigger)
		audit.CreatedAt = createdAt
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}
