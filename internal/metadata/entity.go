package metadata

import (
	"fmt"
	"strings"
)

// Entity is the fixed shape of one entity: its table and its fields in
// declaration order. It is immutable once built by NewEntity.
type Entity struct {
	name      string
	table     string
	fields    []Field
	resolvers map[string]*resolver
}

// resolver is the per-field dispatch record built once at definition time.
type resolver struct {
	field     Field
	typeOf    func(m ColumnMapper) string
	modifiers string
}

// Option configures NewEntity.
type Option func(*Entity)

// WithTable overrides the table name derived from the entity name.
func WithTable(table string) Option {
	return func(e *Entity) {
		if t := strings.TrimSpace(table); t != "" {
			e.table = t
		}
	}
}

// NewEntity canonicalizes field names, validates the declarations and builds
// the name -> resolver index.
func NewEntity(name string, fields []Field, opts ...Option) (*Entity, error) {
	e := &Entity{
		name:      name,
		table:     Snake(name),
		fields:    make([]Field, 0, len(fields)),
		resolvers: make(map[string]*resolver, len(fields)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.table == "" {
		return nil, fmt.Errorf("entity %q: table name is empty", name)
	}

	for _, f := range fields {
		raw := f.Name
		f.Name = Snake(f.Name)
		if f.Name == "" {
			return nil, &FieldError{Table: e.table, Field: raw, Err: fmt.Errorf("%w: empty name", ErrInvalidField)}
		}
		if f.Column == nil {
			f.Column = Inferred{}
		}
		if err := f.validate(); err != nil {
			return nil, &FieldError{Table: e.table, Field: f.Name, Err: err}
		}
		if _, dup := e.resolvers[f.Name]; dup {
			return nil, &FieldError{Table: e.table, Field: f.Name, Err: ErrDuplicateField}
		}
		e.fields = append(e.fields, f)
		e.resolvers[f.Name] = newResolver(f)
	}
	return e, nil
}

func newResolver(f Field) *resolver {
	r := &resolver{field: f, modifiers: strings.Join(f.Modifiers(), " ")}
	if ex, ok := f.Explicit(); ok {
		r.typeOf = func(ColumnMapper) string { return ex }
		return r
	}
	name := f.Name
	r.typeOf = func(m ColumnMapper) string {
		if m == nil {
			return ""
		}
		return m.ColumnType(name, f.Sample())
	}
	return r
}

// Name returns the entity name as declared.
func (e *Entity) Name() string { return e.name }

// Table returns the storage table name.
func (e *Entity) Table() string { return e.table }

// Fields returns the canonical field names in declaration order.
func (e *Entity) Fields() []string {
	names := make([]string, len(e.fields))
	for i, f := range e.fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the declaration for a canonical field name.
func (e *Entity) Field(name string) (Field, bool) {
	r, ok := e.resolvers[name]
	if !ok {
		return Field{}, false
	}
	return r.field, true
}

// Declarations returns a copy of all field declarations in order.
func (e *Entity) Declarations() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}
