package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const configTable = "priority_configurations"

var configColumns = []string{
	"id", "key", "business_vertical_id", "version", "inherits_global",
	"min_score", "max_score", "color", "description",
	"algorithm", "time_decay", "business_value", "capacity",
	"auto_adjust", "escalation",
	"effective_date", "expiration_date",
	"created_by", "created_at", "modified_by", "modified_at",
}

// ConfigRepository implements config.Repository. Versions are append-only
// rows; nothing is ever updated or deleted.
type ConfigRepository struct {
	conn    database.Connection
	builder sq.StatementBuilderType
}

// NewConfigRepository creates a configuration repository.
func NewConfigRepository(conn database.Connection) *ConfigRepository {
	return &ConfigRepository{
		conn:    conn,
		builder: builderFor(conn.Driver()),
	}
}

// CreateVersion appends a new version row.
func (r *ConfigRepository) CreateVersion(ctx context.Context, cfg *config.PriorityConfiguration) error {
	algorithm, err := marshalJSON(cfg.Algorithm)
	if err != nil {
		return err
	}
	timeDecay, err := marshalJSON(cfg.TimeDecay)
	if err != nil {
		return err
	}
	businessValue, err := marshalJSON(cfg.BusinessValue)
	if err != nil {
		return err
	}
	capacity, err := marshalJSON(cfg.Capacity)
	if err != nil {
		return err
	}
	autoAdjust, err := marshalJSON(cfg.AutoAdjust)
	if err != nil {
		return err
	}
	escalation, err := marshalJSON(cfg.Escalation)
	if err != nil {
		return err
	}

	var expiration any
	if cfg.ExpirationDate != nil {
		expiration = cfg.ExpirationDate.UTC()
	}

	query, args, err := r.builder.
		Insert(configTable).
		Columns(configColumns...).
		Values(
			cfg.ID.String(), cfg.Key, verticalColumn(cfg.BusinessVerticalID), cfg.Version, cfg.InheritsGlobal,
			cfg.MinScore, cfg.MaxScore, cfg.Color, cfg.Description,
			algorithm, timeDecay, businessValue, capacity,
			autoAdjust, escalation,
			cfg.EffectiveDate.UTC(), expiration,
			cfg.CreatedBy, cfg.CreatedAt.UTC(), cfg.ModifiedBy, cfg.ModifiedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	if _, err := executor.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s/%s v%d: %w", cfg.Key, cfg.Scope(), cfg.Version, config.ErrVersionConflict)
		}
		return fmt.Errorf("failed to insert configuration version: %w", err)
	}
	return nil
}

// GetVersion fetches one exact version.
func (r *ConfigRepository) GetVersion(ctx context.Context, key string, verticalID *uuid.UUID, version int) (*config.PriorityConfiguration, error) {
	query, args, err := r.builder.
		Select(configColumns...).
		From(configTable).
		Where(sq.Eq{"key": key, "business_vertical_id": verticalColumn(verticalID), "version": version}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	cfg, err := scanConfig(executor.QueryRow(ctx, query, args...))
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("%s/%s v%d: %w", key, config.ScopeLabel(verticalID), version, config.ErrVersionNotFound)
	}
	return cfg, err
}

// GetActive returns the version effective at the given instant for the exact
// (key, vertical) pair: the highest version among those whose effective
// window covers the instant.
func (r *ConfigRepository) GetActive(ctx context.Context, key string, verticalID *uuid.UUID, at time.Time) (*config.PriorityConfiguration, error) {
	query, args, err := r.builder.
		Select(configColumns...).
		From(configTable).
		Where(sq.Eq{"key": key, "business_vertical_id": verticalColumn(verticalID)}).
		Where(sq.LtOrEq{"effective_date": at.UTC()}).
		Where(sq.Or{
			sq.Eq{"expiration_date": nil},
			sq.Gt{"expiration_date": at.UTC()},
		}).
		OrderBy("version DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	cfg, err := scanConfig(executor.QueryRow(ctx, query, args...))
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("%s/%s: %w", key, config.ScopeLabel(verticalID), config.ErrConfigurationNotFound)
	}
	return cfg, err
}

// VersionHistory returns all versions in ascending order.
func (r *ConfigRepository) VersionHistory(ctx context.Context, key string, verticalID *uuid.UUID) ([]*config.PriorityConfiguration, error) {
	query, args, err := r.builder.
		Select(configColumns...).
		From(configTable).
		Where(sq.Eq{"key": key, "business_vertical_id": verticalColumn(verticalID)}).
		OrderBy("version ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query version history: %w", err)
	}
	defer rows.Close()

	var versions []*config.PriorityConfiguration
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, cfg)
	}
	return versions, rows.Err()
}

// LatestVersion returns the highest stored version number, 0 when none.
func (r *ConfigRepository) LatestVersion(ctx context.Context, key string, verticalID *uuid.UUID) (int, error) {
	query, args, err := r.builder.
		Select("COALESCE(MAX(version), 0)").
		From(configTable).
		Where(sq.Eq{"key": key, "business_vertical_id": verticalColumn(verticalID)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build select: %w", err)
	}

	executor := database.ExecutorFromContext(ctx, r.conn)
	var latest int
	if err := executor.QueryRow(ctx, query, args...).Scan(&latest); err != nil {
		return 0, fmt.Errorf("failed to query latest version: %w", err)
	}
	return latest, nil
}

// scanConfig hydrates one configuration row. Works for both Row and Rows.
func scanConfig(row database.Row) (*config.PriorityConfiguration, error) {
	var (
		cfg        config.PriorityConfiguration
		id         string
		vertical   string
		algorithm  string
		timeDecay  string
		bizValue   string
		capacity   string
		autoAdjust string
		escalation string
		expiration *time.Time
	)

	err := row.Scan(
		&id, &cfg.Key, &vertical, &cfg.Version, &cfg.InheritsGlobal,
		&cfg.MinScore, &cfg.MaxScore, &cfg.Color, &cfg.Description,
		&algorithm, &timeDecay, &bizValue, &capacity,
		&autoAdjust, &escalation,
		&cfg.EffectiveDate, &expiration,
		&cfg.CreatedBy, &cfg.CreatedAt, &cfg.ModifiedBy, &cfg.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration id %q: %w", id, err)
	}
	cfg.BusinessVerticalID, err = verticalFromColumn(vertical)
	if err != nil {
		return nil, err
	}
	cfg.ExpirationDate = expiration

	for _, col := range []struct {
		raw  string
		dest any
	}{
		{algorithm, &cfg.Algorithm},
		{timeDecay, &cfg.TimeDecay},
		{bizValue, &cfg.BusinessValue},
		{capacity, &cfg.Capacity},
		{autoAdjust, &cfg.AutoAdjust},
		{escalation, &cfg.Escalation},
	} {
		if err := unmarshalJSON(col.raw, col.dest); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// isUniqueViolation detects duplicate-key failures across both drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || // postgres 23505
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}
