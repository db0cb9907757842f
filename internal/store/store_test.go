package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemasync/internal/config"
	"schemasync/internal/metadata"
)

func sqliteConfig(t *testing.T) config.DatabaseConfig {
	return config.DatabaseConfig{Driver: "sqlite", Path: t.TempDir(), Name: "schemasync"}
}

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, sqliteConfig(t))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "sqlite", s.Dialect.Name())

	conn, err := s.Conn(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.NoError(t, s.Bootstrap(ctx))
	require.NoError(t, s.Bootstrap(ctx), "bootstrap is idempotent")

	exists, err := s.Dialect.TableExists(ctx, s.DB, "_schema_sync_log")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestConn_CanceledContext(t *testing.T) {
	s, err := New(context.Background(), sqliteConfig(t))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Conn(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	e, err := metadata.FromStruct(testModel{})
	require.NoError(t, err)
	err = e.Sync(ctx, s, s.Dialect, NewMigrator(s.Dialect))
	require.Error(t, err)
	assert.Equal(t, "sync test: acquire connection: context canceled", err.Error())
}

func TestNew_CreatesDataDir(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Path = filepath.Join(cfg.Path, "nested", "data")
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.FileExists(t, filepath.Join(cfg.Path, "schemasync.db"))
}

func TestNew_Unreachable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	cfg := config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(blocker, "data"), Name: "x"}
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
