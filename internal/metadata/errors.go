package metadata

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateField = errors.New("duplicate field")
	ErrInvalidField   = errors.New("invalid field")
	ErrUnresolvedType = errors.New("unresolved column type")
	ErrFieldDrift     = errors.New("field list and resolvers out of sync")
)

// FieldError reports a failure scoped to one field of one table.
type FieldError struct {
	Table string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Table, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// SyncError is returned by Entity.Sync. Op is one of "resolve",
// "acquire connection" or "reconcile".
type SyncError struct {
	Table string
	Field string
	Op    string
	Err   error
}

func (e *SyncError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("sync %s: %s %s: %v", e.Table, e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("sync %s: %s: %v", e.Table, e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
