package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresDialect implements Dialect for PostgreSQL via pgx/stdlib.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "pgx" }

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *PostgresDialect) ColumnType(_ string, sample any) string {
	return d.KindType(KindOf(sample))
}

func (d *PostgresDialect) KindType(kind string) string {
	switch kind {
	case KindString:
		return "TEXT"
	case KindInt:
		return "INTEGER"
	case KindBigInt:
		return "BIGINT"
	case KindFloat:
		return "DOUBLE PRECISION"
	case KindBoolean:
		return "BOOLEAN"
	case KindUUID:
		return "UUID"
	case KindTimestamp:
		return "TIMESTAMPTZ"
	case KindJSON:
		return "JSONB"
	case KindBytes:
		return "BYTEA"
	default:
		return ""
	}
}

func (d *PostgresDialect) TableExists(ctx context.Context, q Querier, table string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = $1 AND table_schema = current_schema())`,
		table,
	).Scan(&exists)
	return exists, err
}

func (d *PostgresDialect) GetColumns(ctx context.Context, q Querier, table string) (map[string]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT column_name, data_type FROM information_schema.columns WHERE table_name = $1 AND table_schema = current_schema()`,
		table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]string)
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, err
		}
		cols[name] = dataType
	}
	return cols, rows.Err()
}

func (d *PostgresDialect) CreateTableSQL(table string, defs []string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", d.QuoteIdent(table), strings.Join(defs, ",\n  "))
}

func (d *PostgresDialect) AddColumnSQL(table, column, constraints string) []string {
	return []string{
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", d.QuoteIdent(table), d.QuoteIdent(column), constraints),
	}
}

func (d *PostgresDialect) HistoryTableSQL() string {
	return `
CREATE TABLE IF NOT EXISTS _schema_sync_log (
    id          TEXT PRIMARY KEY,
    table_name  TEXT NOT NULL,
    columns     JSONB NOT NULL,
    synced_by   TEXT NOT NULL DEFAULT '',
    synced_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
}

// Postgres error codes the migrator cares about.
const (
	pgDuplicateTable  = "42P07"
	pgDuplicateColumn = "42701"
	pgDuplicateObject = "42710"
	pgUniqueViolation = "23505"
)

func (d *PostgresDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateTable, pgDuplicateColumn, pgDuplicateObject:
			return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		}
		return err
	}
	errStr := err.Error()
	if strings.Contains(errStr, "already exists") {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	if strings.Contains(errStr, "23505") || strings.Contains(errStr, "duplicate key") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}
