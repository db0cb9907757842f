package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNewDialect(t *testing.T) {
	assert.Equal(t, "postgres", NewDialect("postgres").Name())
	assert.Equal(t, "pgx", NewDialect("").DriverName())
	assert.Equal(t, "sqlite", NewDialect("sqlite").DriverName())
	assert.Equal(t, "mysql", NewDialect("mysql").Name())
}

func TestDialect_ColumnType(t *testing.T) {
	samples := []any{"", int32(0), int64(0), 0.0, false, uuid.UUID{}, time.Time{}, map[string]any{}, []byte{}, nil}
	expected := map[string][]string{
		"postgres": {"TEXT", "INTEGER", "BIGINT", "DOUBLE PRECISION", "BOOLEAN", "UUID", "TIMESTAMPTZ", "JSONB", "BYTEA", ""},
		"sqlite":   {"TEXT", "INTEGER", "INTEGER", "REAL", "INTEGER", "TEXT", "TEXT", "TEXT", "BLOB", ""},
		"mysql":    {"VARCHAR(255)", "INT", "BIGINT", "DOUBLE", "BOOLEAN", "CHAR(36)", "DATETIME(6)", "JSON", "LONGBLOB", ""},
	}
	for driver, types := range expected {
		d := NewDialect(driver)
		for i, sample := range samples {
			assert.Equal(t, types[i], d.ColumnType("col", sample), "%s: %T", driver, sample)
		}
	}
}

func TestDialect_QuoteIdent(t *testing.T) {
	assert.Equal(t, `"user"`, (&PostgresDialect{}).QuoteIdent("user"))
	assert.Equal(t, `"a""b"`, (&SQLiteDialect{}).QuoteIdent(`a"b`))
	assert.Equal(t, "`order`", (&MySQLDialect{}).QuoteIdent("order"))
}

func TestDialect_Placeholder(t *testing.T) {
	assert.Equal(t, "$2", (&PostgresDialect{}).Placeholder(2))
	assert.Equal(t, "?2", (&SQLiteDialect{}).Placeholder(2))
	assert.Equal(t, "?", (&MySQLDialect{}).Placeholder(2))
}

func TestSQLiteDialect_AddColumnMovesUnique(t *testing.T) {
	d := &SQLiteDialect{}

	stmts := d.AddColumnSQL("test", "name", "TEXT UNIQUE NOT NULL")
	assert.Equal(t, []string{
		`ALTER TABLE "test" ADD COLUMN "name" TEXT NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS "idx_test_name" ON "test" ("name")`,
	}, stmts)

	stmts = d.AddColumnSQL("test", "description", "TEXT")
	assert.Equal(t, []string{`ALTER TABLE "test" ADD COLUMN "description" TEXT`}, stmts)
}

func TestPostgresDialect_AddColumn(t *testing.T) {
	stmts := (&PostgresDialect{}).AddColumnSQL("test", "name", "TEXT UNIQUE NOT NULL")
	assert.Equal(t, []string{`ALTER TABLE "test" ADD COLUMN "name" TEXT UNIQUE NOT NULL`}, stmts)
}

func TestMapError_PG(t *testing.T) {
	dialect := &PostgresDialect{}

	dupCol := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "42701", Message: `column "name" of relation "test" already exists`})
	mapped := MapError(dialect, dupCol)
	assert.True(t, errors.Is(mapped, ErrAlreadyExists))

	var extracted *pgconn.PgError
	assert.True(t, errors.As(mapped, &extracted), "PgError stays extractable")

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	assert.True(t, errors.Is(MapError(dialect, unique), ErrUniqueViolation))

	other := &pgconn.PgError{Code: "42501", Message: "permission denied"}
	assert.Same(t, other, MapError(dialect, other))

	assert.Nil(t, MapError(dialect, nil))
}

func TestMapError_MySQL(t *testing.T) {
	dialect := &MySQLDialect{}

	dup := fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1060, Message: "Duplicate column name 'name'"})
	assert.True(t, errors.Is(MapError(dialect, dup), ErrAlreadyExists))

	entry := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.True(t, errors.Is(MapError(dialect, entry), ErrUniqueViolation))

	plain := errors.New("boom")
	assert.Equal(t, plain, MapError(dialect, plain))
}

func TestMapError_SQLite(t *testing.T) {
	dialect := &SQLiteDialect{}

	assert.True(t, errors.Is(MapError(dialect, errors.New("duplicate column name: name")), ErrAlreadyExists))
	assert.True(t, errors.Is(MapError(dialect, errors.New("table test already exists")), ErrAlreadyExists))
	assert.True(t, errors.Is(MapError(dialect, errors.New("UNIQUE constraint failed: test.name")), ErrUniqueViolation))
}
