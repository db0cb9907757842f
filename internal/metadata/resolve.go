package metadata

import "strings"

// ColumnMapper infers a storage type string from a sample value of a field.
// It must be deterministic for a given (field, sample) pair and safe for
// concurrent use. An empty result means the mapper cannot type the value.
type ColumnMapper interface {
	ColumnType(field string, sample any) string
}

// FieldType resolves the storage type of a field. ok is false when the entity
// has no field with that canonical name. An explicit override is returned
// verbatim and the mapper is not called.
func (e *Entity) FieldType(name string, m ColumnMapper) (typ string, ok bool) {
	r, ok := e.resolvers[name]
	if !ok {
		return "", false
	}
	return r.typeOf(m), true
}

// FieldConstraints resolves the full column definition of a field: the type
// followed by UNIQUE and NOT NULL when set, separated by single spaces.
// ok is false for unknown fields. A known field whose type cannot be
// resolved yields ErrUnresolvedType.
func (e *Entity) FieldConstraints(name string, m ColumnMapper) (string, bool, error) {
	r, ok := e.resolvers[name]
	if !ok {
		return "", false, nil
	}
	typ := strings.TrimSpace(r.typeOf(m))
	if typ == "" {
		return "", true, &FieldError{Table: e.table, Field: name, Err: ErrUnresolvedType}
	}
	if r.modifiers == "" {
		return typ, true, nil
	}
	return typ + " " + r.modifiers, true, nil
}
