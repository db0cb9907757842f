package syncrun

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemasync/internal/metadata"
)

type textMapper struct{}

func (textMapper) ColumnType(string, any) string { return "TEXT" }

// fakeReconciler records tables and fails the ones listed in fail.
type fakeReconciler struct {
	mu      sync.Mutex
	tables  []string
	fail    map[string]error
	delay   time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (f *fakeReconciler) Reconcile(_ context.Context, _ *sql.Conn, _ metadata.ColumnMapper, _ map[string]string, table string) error {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		old := f.maxSeen.Load()
		if n <= old || f.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(f.delay)

	f.mu.Lock()
	f.tables = append(f.tables, table)
	f.mu.Unlock()
	return f.fail[table]
}

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func entities(t *testing.T, names ...string) []*metadata.Entity {
	t.Helper()
	out := make([]*metadata.Entity, 0, len(names))
	for _, n := range names {
		e, err := metadata.NewEntity(n, []metadata.Field{
			{Name: "ID", Type: reflect.TypeFor[int64]()},
			{Name: "Title", Type: reflect.TypeFor[string](), NotNull: true},
		})
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func TestRun_AllSucceed(t *testing.T) {
	rec := &fakeReconciler{}
	var done atomic.Int32
	r := &Runner{
		Provider:    newDB(t),
		Mapper:      textMapper{},
		Reconciler:  rec,
		Concurrency: 2,
		OnDone:      func(Result) { done.Add(1) },
	}

	report, err := r.Run(context.Background(), entities(t, "Post", "Comment", "Tag"))
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "post", report.Results[0].Table)
	assert.Equal(t, "comment", report.Results[1].Table)
	assert.Equal(t, 2, report.Results[2].Columns)
	assert.Empty(t, report.Failed())
	assert.Equal(t, int32(3), done.Load())
	assert.ElementsMatch(t, []string{"post", "comment", "tag"}, rec.tables)
	assert.False(t, report.Finished.Before(report.Started))
	assert.NotZero(t, report.ID)
}

func TestRun_FailureDoesNotStopOthers(t *testing.T) {
	boom := errors.New("permission denied")
	rec := &fakeReconciler{fail: map[string]error{"comment": boom}}
	r := &Runner{Provider: newDB(t), Mapper: textMapper{}, Reconciler: rec, Concurrency: 1}

	report, err := r.Run(context.Background(), entities(t, "Post", "Comment", "Tag"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var se *metadata.SyncError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "comment", se.Table)

	assert.Len(t, rec.tables, 3)
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "Comment", failed[0].Entity)
	assert.True(t, report.Results[0].OK())
	assert.True(t, report.Results[2].OK())
}

func TestRun_RespectsConcurrencyLimit(t *testing.T) {
	rec := &fakeReconciler{delay: 20 * time.Millisecond}
	r := &Runner{Provider: newDB(t), Mapper: textMapper{}, Reconciler: rec, Concurrency: 2}

	_, err := r.Run(context.Background(), entities(t, "A", "B", "C", "D", "E", "F"))
	require.NoError(t, err)
	assert.LessOrEqual(t, rec.maxSeen.Load(), int32(2))
}

func TestRun_ZeroConcurrencyRunsSerially(t *testing.T) {
	rec := &fakeReconciler{delay: 5 * time.Millisecond}
	r := &Runner{Provider: newDB(t), Mapper: textMapper{}, Reconciler: rec}

	_, err := r.Run(context.Background(), entities(t, "A", "B", "C"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), rec.maxSeen.Load())
}

func TestRun_CanceledContext(t *testing.T) {
	rec := &fakeReconciler{}
	r := &Runner{Provider: newDB(t), Mapper: textMapper{}, Reconciler: rec, Concurrency: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := r.Run(ctx, entities(t, "A", "B"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Failed(), 2)
	assert.Empty(t, rec.tables)
}

func TestRun_Empty(t *testing.T) {
	r := &Runner{Provider: newDB(t), Mapper: textMapper{}, Reconciler: &fakeReconciler{}}
	report, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
}
