package store

import (
	"context"

	"schemasync/internal/metadata"
)

// Dialect abstracts database-specific type inference, DDL generation and
// schema introspection. Every Dialect is a metadata.ColumnMapper.
type Dialect interface {
	metadata.ColumnMapper

	// Name returns "postgres", "sqlite" or "mysql".
	Name() string

	// DriverName returns the database/sql driver name.
	DriverName() string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	Placeholder(index int) string

	// QuoteIdent quotes a table or column name.
	QuoteIdent(name string) string

	// KindType maps a logical kind (see KindOf) to the DDL type, or "" if the
	// kind is unknown.
	KindType(kind string) string

	// TableExists checks whether a table exists in the current schema.
	TableExists(ctx context.Context, q Querier, table string) (bool, error)

	// GetColumns returns existing column names and their reported types.
	GetColumns(ctx context.Context, q Querier, table string) (map[string]string, error)

	// CreateTableSQL returns the CREATE TABLE statement for the column
	// definitions ("name TYPE MODIFIERS", already quoted).
	CreateTableSQL(table string, defs []string) string

	// AddColumnSQL returns the statements that add one column.
	AddColumnSQL(table, column, constraints string) []string

	// HistoryTableSQL returns the DDL for the sync log table.
	HistoryTableSQL() string

	// MapError inspects a driver error and wraps it with a well-known
	// sentinel error if applicable.
	MapError(err error) error
}

// NewDialect creates a Dialect for the given driver name.
func NewDialect(driver string) Dialect {
	switch driver {
	case "sqlite":
		return &SQLiteDialect{}
	case "mysql":
		return &MySQLDialect{}
	default:
		return &PostgresDialect{}
	}
}

var (
	_ Dialect = (*PostgresDialect)(nil)
	_ Dialect = (*SQLiteDialect)(nil)
	_ Dialect = (*MySQLDialect)(nil)
)
