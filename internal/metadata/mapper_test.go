package metadata

import (
	"sync"

	"github.com/google/uuid"
)

// fakeMapper types a handful of Go values and counts its calls.
type fakeMapper struct {
	mu    sync.Mutex
	calls map[string]int
	pad   bool
}

func newFakeMapper() *fakeMapper {
	return &fakeMapper{calls: make(map[string]int)}
}

func (m *fakeMapper) ColumnType(field string, sample any) string {
	m.mu.Lock()
	m.calls[field]++
	m.mu.Unlock()

	var typ string
	switch sample.(type) {
	case string, *string:
		typ = "TEXT"
	case int64:
		typ = "BIGINT"
	case int32, int:
		typ = "INTEGER"
	case bool:
		typ = "BOOLEAN"
	case uuid.UUID:
		typ = "UUID"
	default:
		return ""
	}
	if m.pad {
		return "  " + typ + " "
	}
	return typ
}

func (m *fakeMapper) Calls(field string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[field]
}

func (m *fakeMapper) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}
