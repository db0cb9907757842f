package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLiteDialect implements Dialect for SQLite via modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) Placeholder(index int) string {
	return fmt.Sprintf("?%d", index)
}

func (d *SQLiteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *SQLiteDialect) ColumnType(_ string, sample any) string {
	return d.KindType(KindOf(sample))
}

func (d *SQLiteDialect) KindType(kind string) string {
	switch kind {
	case KindString, KindUUID, KindTimestamp, KindJSON:
		return "TEXT"
	case KindInt, KindBigInt, KindBoolean:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	case KindBytes:
		return "BLOB"
	default:
		return ""
	}
}

func (d *SQLiteDialect) TableExists(ctx context.Context, q Querier, table string) (bool, error) {
	var name string
	err := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?1",
		table,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *SQLiteDialect) GetColumns(ctx context.Context, q Querier, table string) (map[string]string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", d.QuoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]string)
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull int
		var dfltValue any
		var pk int
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = colType
	}
	return cols, rows.Err()
}

func (d *SQLiteDialect) CreateTableSQL(table string, defs []string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", d.QuoteIdent(table), strings.Join(defs, ",\n  "))
}

// AddColumnSQL moves UNIQUE into a separate unique index, since SQLite
// refuses to add a UNIQUE column to an existing table.
func (d *SQLiteDialect) AddColumnSQL(table, column, constraints string) []string {
	tokens := strings.Fields(constraints)
	kept := tokens[:0]
	unique := false
	for _, tok := range tokens {
		if strings.EqualFold(tok, "UNIQUE") {
			unique = true
			continue
		}
		kept = append(kept, tok)
	}

	stmts := []string{
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", d.QuoteIdent(table), d.QuoteIdent(column), strings.Join(kept, " ")),
	}
	if unique {
		stmts = append(stmts, fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
			d.QuoteIdent("idx_"+table+"_"+column), d.QuoteIdent(table), d.QuoteIdent(column)))
	}
	return stmts
}

func (d *SQLiteDialect) HistoryTableSQL() string {
	return `
CREATE TABLE IF NOT EXISTS _schema_sync_log (
    id          TEXT PRIMARY KEY,
    table_name  TEXT NOT NULL,
    columns     TEXT NOT NULL,
    synced_by   TEXT NOT NULL DEFAULT '',
    synced_at   TEXT NOT NULL DEFAULT (datetime('now'))
)`
}

func (d *SQLiteDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	if strings.Contains(errStr, "already exists") || strings.Contains(errStr, "duplicate column name") {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "constraint failed: UNIQUE") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}
