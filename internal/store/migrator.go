package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"

	"schemasync/internal/metadata"
)

// Migrator reconciles a live table with declared column constraints. It
// creates missing tables and adds missing columns; it never alters or drops
// existing columns.
type Migrator struct {
	dialect Dialect
	history bool
}

type MigratorOption func(*Migrator)

// WithHistory records every successful reconcile in _schema_sync_log.
// Store.Bootstrap must have run first.
func WithHistory(enabled bool) MigratorOption {
	return func(m *Migrator) { m.history = enabled }
}

func NewMigrator(dialect Dialect, opts ...MigratorOption) *Migrator {
	m := &Migrator{dialect: dialect}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Reconcile implements metadata.Reconciler. When the mapper is itself a
// Dialect its SQL flavor is used, otherwise the migrator's own.
func (m *Migrator) Reconcile(ctx context.Context, conn *sql.Conn, mapper metadata.ColumnMapper, columns map[string]string, table string) error {
	d := m.dialect
	if md, ok := mapper.(Dialect); ok {
		d = md
	}
	if d == nil {
		return fmt.Errorf("reconcile %s: no dialect", table)
	}
	if len(columns) == 0 {
		return fmt.Errorf("reconcile %s: no columns declared", table)
	}

	exists, err := d.TableExists(ctx, conn, table)
	if err != nil {
		return fmt.Errorf("check table exists: %w", err)
	}

	if !exists {
		err = m.createTable(ctx, conn, d, columns, table)
	} else {
		err = m.addMissingColumns(ctx, conn, d, columns, table)
	}
	if err != nil {
		return err
	}

	if m.history {
		if err := m.record(ctx, conn, d, columns, table); err != nil {
			return fmt.Errorf("record sync of %s: %w", table, err)
		}
	}
	return nil
}

func (m *Migrator) createTable(ctx context.Context, conn *sql.Conn, d Dialect, columns map[string]string, table string) error {
	names := orderedColumns(columns)
	defs := make([]string, 0, len(names))
	for _, name := range names {
		defs = append(defs, columnDef(d, name, columns[name]))
	}

	_, err := Exec(ctx, conn, d.CreateTableSQL(table, defs))
	if err = MapError(d, err); err != nil {
		if !errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		log.Printf("DDL skipped (already exists): table %s", table)
		return m.addMissingColumns(ctx, conn, d, columns, table)
	}
	log.Printf("Created table %s (%d columns)", table, len(defs))
	return nil
}

func (m *Migrator) addMissingColumns(ctx context.Context, conn *sql.Conn, d Dialect, columns map[string]string, table string) error {
	existing, err := d.GetColumns(ctx, conn, table)
	if err != nil {
		return fmt.Errorf("get columns for %s: %w", table, err)
	}

	for _, name := range orderedColumns(columns) {
		if _, ok := existing[name]; ok {
			continue
		}
		for _, stmt := range d.AddColumnSQL(table, name, columns[name]) {
			_, err := Exec(ctx, conn, stmt)
			if err = MapError(d, err); err != nil {
				if errors.Is(err, ErrAlreadyExists) {
					log.Printf("DDL skipped (already exists): %s.%s", table, name)
					continue
				}
				return fmt.Errorf("add column %s.%s: %w", table, name, err)
			}
		}
		log.Printf("Added column %s.%s %s", table, name, columns[name])
	}
	return nil
}

func (m *Migrator) record(ctx context.Context, conn *sql.Conn, d Dialect, columns map[string]string, table string) error {
	colsJSON, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}
	_, err = Exec(ctx, conn,
		fmt.Sprintf("INSERT INTO _schema_sync_log (id, table_name, columns, synced_by) VALUES (%s, %s, %s, %s)",
			d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4)),
		ulid.Make().String(), table, string(colsJSON), ActorFrom(ctx))
	return err
}

type actorKey struct{}

// WithActor names who triggered the sync; history rows record it.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor set by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// orderedColumns puts "id" first and sorts the rest, so generated DDL is
// stable across runs.
func orderedColumns(columns map[string]string) []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		if name != "id" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := columns["id"]; ok {
		names = append([]string{"id"}, names...)
	}
	return names
}

// columnDef renders one column for CREATE TABLE. The id column becomes the
// primary key unless its constraints already say otherwise.
func columnDef(d Dialect, name, constraints string) string {
	def := d.QuoteIdent(name) + " " + constraints
	if name == "id" && !strings.Contains(strings.ToUpper(constraints), "PRIMARY KEY") {
		def += " PRIMARY KEY"
	}
	return def
}
