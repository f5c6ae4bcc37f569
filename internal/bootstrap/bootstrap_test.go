package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/mcq-extractor/internal/config"
	"github.com/spherical/mcq-extractor/internal/observability"
	"github.com/spherical/mcq-extractor/internal/testutil"
)

func TestOpen_Defaults(t *testing.T) {
	deps, err := Open(context.Background(), config.DefaultConfig(), observability.Nop())
	require.NoError(t, err)
	defer deps.Close()

	assert.NotNil(t, deps.Service)
	assert.NotNil(t, deps.Extractor)
	assert.NotNil(t, deps.Validator)
	assert.Nil(t, deps.Repository)
	assert.Nil(t, deps.Store())
	assert.Nil(t, deps.Cache)
	assert.Nil(t, deps.DB())
}

func TestOpen_SQLiteAndMemoryCache(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "mcq.db")
	cfg.Cache.Driver = "memory"

	deps, err := Open(context.Background(), cfg, observability.Nop())
	require.NoError(t, err)
	defer deps.Close()

	require.NotNil(t, deps.Store())
	require.NotNil(t, deps.Cache)
	require.NotNil(t, deps.DB())

	ext, err := deps.Service.ProcessText(context.Background(), "notes.txt", "1. Q\na) x\n# b) y\n", nil)
	require.NoError(t, err)

	stored, err := deps.Store().Get(context.Background(), ext.ID)
	require.NoError(t, err)
	assert.Equal(t, ext.Questions, stored.Questions)

	cached, err := deps.Cache.Get(context.Background(), ext.SHA256)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, ext.ID, cached.ID)
}

func TestOpen_BadStorage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "missing-dir", "mcq.db")

	_, err := Open(context.Background(), cfg, observability.Nop())
	assert.Error(t, err)
}

func TestOpen_PostgresAndRedis(t *testing.T) {
	dsn := testutil.StartPostgres(t)
	addr := testutil.StartRedis(t)

	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "postgres"
	cfg.Storage.Postgres.DSN = dsn
	cfg.Cache.Driver = "redis"
	cfg.Cache.Redis.Addr = addr

	deps, err := Open(context.Background(), cfg, observability.Nop())
	require.NoError(t, err)
	defer deps.Close()

	ctx := context.Background()
	text := "1. Q\na) x\n# b) y\n"
	first, err := deps.Service.ProcessText(ctx, "notes.txt", text, nil)
	require.NoError(t, err)

	second, err := deps.Service.ProcessText(ctx, "notes.txt", text, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := deps.Store().List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
