package metadata

import (
	"fmt"
	"reflect"
	"strings"
)

const structTag = "field"

type tabler interface {
	TableName() string
}

// FromStruct builds an Entity from a struct value or pointer. Exported fields
// become entity fields in declaration order; embedded structs are flattened.
// Per-field options come from the `field` tag, separated by semicolons:
//
//	Name   string `field:"unique;not_null;select"`
//	Amount int64  `field:"type:NUMERIC(18,2)"`
//	Cache  []byte `field:"-"`
//
// A TableName() method, on either the value or pointer receiver, overrides
// the derived table name; explicit options override both.
func FromStruct(v any, opts ...Option) (*Entity, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("from struct: nil value")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("from struct: %s is not a struct", t)
	}

	fields, err := structFields(t)
	if err != nil {
		return nil, fmt.Errorf("from struct %s: %w", t.Name(), err)
	}

	var all []Option
	if tb, ok := v.(tabler); ok {
		all = append(all, WithTable(tb.TableName()))
	} else if tb, ok := reflect.New(t).Interface().(tabler); ok {
		all = append(all, WithTable(tb.TableName()))
	}
	all = append(all, opts...)
	return NewEntity(t.Name(), fields, all...)
}

func structFields(t reflect.Type) ([]Field, error) {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup(structTag)
		if tag == "-" {
			continue
		}
		if sf.Anonymous && !tagged {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				nested, err := structFields(ft)
				if err != nil {
					return nil, err
				}
				fields = append(fields, nested...)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		f := Field{Name: sf.Name, Type: sf.Type}
		if err := parseTag(tag, &f); err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func parseTag(tag string, f *Field) error {
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, _ := strings.Cut(part, ":")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "unique":
			f.Unique = true
		case "not_null", "notnull", "not null":
			f.NotNull = true
		case "select":
			f.Select = true
		case "type", "sql_type":
			val = strings.TrimSpace(val)
			if val == "" {
				return fmt.Errorf("%w: empty type override", ErrInvalidField)
			}
			f.Column = Explicit(val)
		default:
			return fmt.Errorf("%w: unknown tag option %q", ErrInvalidField, key)
		}
	}
	return nil
}
