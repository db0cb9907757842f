package metadata

import (
	"fmt"
	"reflect"
	"strings"
)

// ColumnType selects how a field's storage type is resolved: an Explicit
// string that is returned verbatim, or Inferred from the declared Go type by
// a ColumnMapper.
type ColumnType interface {
	isColumnType()
}

// Explicit is a storage type string that always wins over inference.
type Explicit string

// Inferred asks the ColumnMapper for a type based on a zero-value sample.
type Inferred struct{}

func (Explicit) isColumnType() {}
func (Inferred) isColumnType() {}

// Field declares one entity attribute.
type Field struct {
	Name    string
	Type    reflect.Type // only used to build the inference sample
	Unique  bool
	NotNull bool
	Select  bool // informational; not used by type or constraint resolution
	Column  ColumnType
}

// Explicit returns the override type and true when the field has one.
func (f Field) Explicit() (string, bool) {
	ex, ok := f.Column.(Explicit)
	return string(ex), ok
}

// Sample returns a fresh zero value of the declared type.
func (f Field) Sample() any {
	if f.Type == nil {
		return nil
	}
	return reflect.Zero(f.Type).Interface()
}

// Modifiers returns the constraint keywords for the field's flags:
// UNIQUE before NOT NULL.
func (f Field) Modifiers() []string {
	var mods []string
	if f.Unique {
		mods = append(mods, "UNIQUE")
	}
	if f.NotNull {
		mods = append(mods, "NOT NULL")
	}
	return mods
}

func (f Field) validate() error {
	switch ct := f.Column.(type) {
	case Explicit:
		if strings.TrimSpace(string(ct)) == "" {
			return fmt.Errorf("%w: empty type override", ErrInvalidField)
		}
	case nil, Inferred:
		if f.Type == nil {
			return fmt.Errorf("%w: declared type required for inferred column type", ErrInvalidField)
		}
	}
	return nil
}
