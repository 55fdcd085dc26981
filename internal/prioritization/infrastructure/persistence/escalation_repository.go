package persistence

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/codesidh/bpts/internal/prioritization/domain/escalation"
	"github.com/codesidh/bpts/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const escalationTable = "priority_escalations"

var escalationColumns = []string{
	"id", "work_request_id", "request_created_at", "escalated_at",
	"reason", "rule_name", "action", "recipients", "current_score",
	"assignee_id", "resolved", "resolved_at", "resolved_by",
}

// EscalationRepository implements escalation.Repository. Records are
// append-only; resolution flips a flag, nothing is ever deleted.
type EscalationRepository struct {
	conn    database.Connection
	builder sq.StatementBuilderType
}

// NewEscalationRepository creates an escalation repository.
func NewEscalationRepository(conn database.Connection) *EscalationRepository {
	return &EscalationRepository{
		conn:    conn,
		builder: builderFor(conn.Driver()),
	}
}

// Create appends a new escalation record.
func (r *EscalationRepository) Create(ctx context.Context, e *escalation.PriorityEscalation) error {
	recipients, err := marshalJSON(e.Recipients)
	if err != nil {
		return err
	}

	query, args, err := r.builder.
		Insert(escalationTable).
		Columns(escalationColumns...).
		Values(
			e.ID.String(), e.WorkRequestID.String(),
			e.RequestCreatedAt.UTC(), e.EscalatedAt.UTC(),
			e.Reason, e.RuleName, e.Action, recipients, e.CurrentScore,
			nullableUUID(e.AssigneeID), e.Resolved, nil, e.ResolvedBy,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	if _, err := executor.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert escalation: %w", err)
	}
	return nil
}

// GetByID retrieves one escalation.
func (r *EscalationRepository) GetByID(ctx context.Context, id uuid.UUID) (*escalation.PriorityEscalation, error) {
	query, args, err := r.builder.
		Select(escalationColumns...).
		From(escalationTable).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	e, err := scanEscalation(executor.QueryRow(ctx, query, args...))
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("%s: %w", id, escalation.ErrEscalationNotFound)
	}
	return e, err
}

// HasUnresolved reports whether the work request has an open escalation.
func (r *EscalationRepository) HasUnresolved(ctx context.Context, workRequestID uuid.UUID) (bool, error) {
	query, args, err := r.builder.
		Select("COUNT(1)").
		From(escalationTable).
		Where(sq.Eq{"work_request_id": workRequestID.String(), "resolved": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	var count int
	if err := executor.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query unresolved escalations: %w", err)
	}
	return count > 0, nil
}

// ListPending returns unresolved escalations, newest first, optionally
// narrowed to one business vertical via the owning work request.
func (r *EscalationRepository) ListPending(ctx context.Context, verticalID *uuid.UUID) ([]*escalation.PriorityEscalation, error) {
	builder := r.builder.
		Select(prefixColumns("e", escalationColumns)...).
		From(escalationTable + " e").
		Where(sq.Eq{"e.resolved": false})
	if verticalID != nil {
		builder = builder.
			Join(workRequestTable + " w ON w.id = e.work_request_id").
			Where(sq.Eq{"w.business_vertical_id": verticalID.String()})
	}

	query, args, err := builder.OrderBy("e.escalated_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending escalations: %w", err)
	}
	defer rows.Close()

	var escalations []*escalation.PriorityEscalation
	for rows.Next() {
		e, err := scanEscalation(rows)
		if err != nil {
			return nil, err
		}
		escalations = append(escalations, e)
	}
	return escalations, rows.Err()
}

// MarkResolved persists a resolution performed via Resolve.
func (r *EscalationRepository) MarkResolved(ctx context.Context, e *escalation.PriorityEscalation) error {
	var resolvedAt any
	if e.ResolvedAt != nil {
		resolvedAt = e.ResolvedAt.UTC()
	}

	query, args, err := r.builder.
		Update(escalationTable).
		Set("resolved", e.Resolved).
		Set("resolved_at", resolvedAt).
		Set("resolved_by", e.ResolvedBy).
		Where(sq.Eq{"id": e.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark escalation resolved: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%s: %w", e.ID, escalation.ErrEscalationNotFound)
	}
	return nil
}

func scanEscalation(row database.Row) (*escalation.PriorityEscalation, error) {
	var (
		e          escalation.PriorityEscalation
		id         string
		requestID  string
		recipients string
		assignee   string
		resolvedAt *time.Time
	)

	err := row.Scan(
		&id, &requestID, &e.RequestCreatedAt, &e.EscalatedAt,
		&e.Reason, &e.RuleName, &e.Action, &recipients, &e.CurrentScore,
		&assignee, &e.Resolved, &resolvedAt, &e.ResolvedBy,
	)
	if err != nil {
		return nil, err
	}

	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid escalation id %q: %w", id, err)
	}
	if e.WorkRequestID, err = uuid.Parse(requestID); err != nil {
		return nil, fmt.Errorf("invalid work request id %q: %w", requestID, err)
	}
	if e.AssigneeID, err = nullableUUIDFrom(assignee); err != nil {
		return nil, fmt.Errorf("invalid assignee id %q: %w", assignee, err)
	}
	if err := unmarshalJSON(recipients, &e.Recipients); err != nil {
		return nil, err
	}
	e.ResolvedAt = resolvedAt
	return &e, nil
}

func prefixColumns(alias string, columns []string) []string {
	prefixed := make([]string, len(columns))
	for i, c := range columns {
		prefixed[i] = alias + "." + c
	}
	return prefixed
}
