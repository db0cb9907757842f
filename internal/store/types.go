package store

import (
	"database/sql"
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Logical kinds a sample value can be classified into. Dialects map each
// kind to a DDL type.
const (
	KindString    = "string"
	KindInt       = "int"
	KindBigInt    = "bigint"
	KindFloat     = "float"
	KindBoolean   = "boolean"
	KindUUID      = "uuid"
	KindTimestamp = "timestamp"
	KindJSON      = "json"
	KindBytes     = "bytes"
)

var (
	uuidType       = reflect.TypeFor[uuid.UUID]()
	timeType       = reflect.TypeFor[time.Time]()
	rawJSONType    = reflect.TypeFor[json.RawMessage]()
	nullStringType = reflect.TypeFor[sql.NullString]()
	nullInt16Type  = reflect.TypeFor[sql.NullInt16]()
	nullInt32Type  = reflect.TypeFor[sql.NullInt32]()
	nullInt64Type  = reflect.TypeFor[sql.NullInt64]()
	nullFloatType  = reflect.TypeFor[sql.NullFloat64]()
	nullBoolType   = reflect.TypeFor[sql.NullBool]()
	nullTimeType   = reflect.TypeFor[sql.NullTime]()
	nullUUIDType   = reflect.TypeFor[uuid.NullUUID]()
)

// KindOf classifies a sample value by its Go type. Pointers are
// dereferenced, so a nil *string is still a string. It returns "" for
// values that have no column representation (nil interfaces, funcs, chans).
func KindOf(sample any) string {
	t := reflect.TypeOf(sample)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case uuidType, nullUUIDType:
		return KindUUID
	case timeType, nullTimeType:
		return KindTimestamp
	case rawJSONType:
		return KindJSON
	case nullStringType:
		return KindString
	case nullInt16Type, nullInt32Type:
		return KindInt
	case nullInt64Type:
		return KindBigInt
	case nullFloatType:
		return KindFloat
	case nullBoolType:
		return KindBoolean
	}

	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return KindInt
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return KindBigInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindBytes
		}
		return KindJSON
	case reflect.Map, reflect.Struct, reflect.Array:
		return KindJSON
	default:
		return ""
	}
}
