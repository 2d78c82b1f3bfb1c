package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DBMODEL_CONFIG", "SERVER_PORT", "STORE_BACKEND", "MYSQL_DSN", "REDIS_ADDR", "REDIS_DB",
		"REDIS_PASSWORD", "CACHE_DB", "JWT_SECRET", "SWAGGER_HOST", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbmodel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
serverPort: "9000"
storeBackend: mysql
redisDB: 3
logLevel: debug
`), 0o600))

	clearEnv(t)
	t.Setenv("DBMODEL_CONFIG", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, BackendMySQL, cfg.StoreBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over file")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DBMODEL_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_BACKEND", "dynamodb")
		_, err := Load()
		assert.ErrorContains(t, err, "dynamodb")
	})

	t.Run("bad int falls back", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CACHE_DB", "x")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.CacheDB)
	})
}
