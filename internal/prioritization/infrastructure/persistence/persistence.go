// Package persistence implements the prioritization repositories on top of
// the driver-neutral database layer. One implementation serves PostgreSQL
// and SQLite; the only per-driver difference is the placeholder format.
package persistence

import (
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/codesidh/bpts/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// builderFor returns a statement builder with the driver's placeholder
// format. SQLite keeps squirrel's default question marks.
func builderFor(driver database.Driver) sq.StatementBuilderType {
	if driver == database.DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// verticalColumn maps a nullable vertical id onto a NOT NULL column so the
// uniqueness constraint on (key, vertical, version) holds on both drivers.
// The empty string means global.
func verticalColumn(verticalID *uuid.UUID) string {
	if verticalID == nil {
		return ""
	}
	return verticalID.String()
}

func verticalFromColumn(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid vertical id %q: %w", s, err)
	}
	return &id, nil
}

// nullableUUID maps *uuid.UUID onto a TEXT column, empty string for nil.
func nullableUUID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func nullableUUIDFrom(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// marshalJSON encodes a sub-document for a TEXT column.
func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode column: %w", err)
	}
	return string(b), nil
}

func unmarshalJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}
	return nil
}
