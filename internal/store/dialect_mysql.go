package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL 8 via go-sql-driver/mysql.
type MySQLDialect struct{}

func (d *MySQLDialect) Name() string       { return "mysql" }
func (d *MySQLDialect) DriverName() string { return "mysql" }

func (d *MySQLDialect) Placeholder(int) string { return "?" }

func (d *MySQLDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *MySQLDialect) ColumnType(_ string, sample any) string {
	return d.KindType(KindOf(sample))
}

// KindType uses VARCHAR for strings: MySQL cannot index TEXT without a
// prefix length, which would break UNIQUE.
func (d *MySQLDialect) KindType(kind string) string {
	switch kind {
	case KindString:
		return "VARCHAR(255)"
	case KindInt:
		return "INT"
	case KindBigInt:
		return "BIGINT"
	case KindFloat:
		return "DOUBLE"
	case KindBoolean:
		return "BOOLEAN"
	case KindUUID:
		return "CHAR(36)"
	case KindTimestamp:
		return "DATETIME(6)"
	case KindJSON:
		return "JSON"
	case KindBytes:
		return "LONGBLOB"
	default:
		return ""
	}
}

func (d *MySQLDialect) TableExists(ctx context.Context, q Querier, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`,
		table,
	).Scan(&n)
	return n > 0, err
}

func (d *MySQLDialect) GetColumns(ctx context.Context, q Querier, table string) (map[string]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT column_name, column_type FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?`,
		table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]string)
	for rows.Next() {
		var name, colType string
		if err := rows.Scan(&name, &colType); err != nil {
			return nil, err
		}
		cols[name] = colType
	}
	return cols, rows.Err()
}

func (d *MySQLDialect) CreateTableSQL(table string, defs []string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", d.QuoteIdent(table), strings.Join(defs, ",\n  "))
}

func (d *MySQLDialect) AddColumnSQL(table, column, constraints string) []string {
	return []string{
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", d.QuoteIdent(table), d.QuoteIdent(column), constraints),
	}
}

func (d *MySQLDialect) HistoryTableSQL() string {
	return `
CREATE TABLE IF NOT EXISTS _schema_sync_log (
    id          CHAR(26) PRIMARY KEY,
    table_name  VARCHAR(255) NOT NULL,
    columns     JSON NOT NULL,
    synced_by   VARCHAR(255) NOT NULL DEFAULT '',
    synced_at   DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
)`
}

// MySQL error numbers the migrator cares about.
const (
	myTableExists    = 1050
	myDuplicateCol   = 1060
	myDuplicateKey   = 1061
	myDuplicateEntry = 1062
)

func (d *MySQLDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case myTableExists, myDuplicateCol, myDuplicateKey:
			return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		case myDuplicateEntry:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		}
	}
	return err
}
