package metadata

import (
	"context"
	"database/sql"
)

// ConnProvider hands out a live session. *sql.DB satisfies it.
type ConnProvider interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Reconciler brings a storage table in line with the declared columns
// (canonical name -> constraint string). It owns all DDL.
type Reconciler interface {
	Reconcile(ctx context.Context, conn *sql.Conn, m ColumnMapper, columns map[string]string, table string) error
}

// Columns resolves every field into its constraint string.
func (e *Entity) Columns(m ColumnMapper) (map[string]string, error) {
	columns := make(map[string]string, len(e.fields))
	for _, name := range e.Fields() {
		cons, ok, err := e.FieldConstraints(name, m)
		if err != nil {
			return nil, &SyncError{Table: e.table, Field: name, Op: "resolve", Err: err}
		}
		if !ok {
			return nil, &SyncError{Table: e.table, Field: name, Op: "resolve", Err: ErrFieldDrift}
		}
		columns[name] = cons
	}
	return columns, nil
}

// Sync resolves all columns, acquires one connection and asks r to reconcile
// the entity's table. Nothing is retried here.
func (e *Entity) Sync(ctx context.Context, p ConnProvider, m ColumnMapper, r Reconciler) error {
	columns, err := e.Columns(m)
	if err != nil {
		return err
	}

	conn, err := p.Conn(ctx)
	if err != nil {
		return &SyncError{Table: e.table, Op: "acquire connection", Err: err}
	}
	defer conn.Close()

	if err := r.Reconcile(ctx, conn, m, columns, e.table); err != nil {
		return &SyncError{Table: e.table, Op: "reconcile", Err: err}
	}
	return nil
}
