package config_test

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fleet-auth-server/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
serverAddr: ":9090"
databaseConfig:
  dsn: "postgres://file"
redisConfig:
  addr: "redis:6379"
  op_timeout: 750ms
TTL:
  api_key_cache_ceiling: 24h
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "postgres://file", cfg.DatabaseConfig.DSN)
	assert.Equal(t, "redis:6379", cfg.RedisConfig.Addr)
	assert.Equal(t, 750*time.Millisecond, cfg.RedisConfig.OpTimeout)
	assert.Equal(t, 24*time.Hour, cfg.TTL.APIKeyCacheCeiling)

	// значения по умолчанию
	assert.Equal(t, 25, cfg.DatabaseConfig.MaxOpenConns)
	assert.Equal(t, 3, cfg.RedisConfig.MaxRetries)
	assert.Equal(t, "PASETO_SECRET_KEY", cfg.Paseto.SecretEnv)
	assert.Equal(t, 5*time.Second, cfg.TTL.TouchTimeout)
	assert.Equal(t, 10, cfg.RateLimit.LoginRequests)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `serverAddr: ":9090"`)
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PASETO_REQUIRE_SECRET", "true")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ServerAddr)
	assert.Equal(t, "postgres://env", cfg.DatabaseConfig.DSN)
	assert.Equal(t, 3, cfg.RedisConfig.DB)
	assert.True(t, cfg.Paseto.RequireSecret)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.LoadConfig(writeConfig(t, "redisConfig: [unclosed"))
	assert.Error(t, err)
}

func TestLoadSecretKey(t *testing.T) {
	cfg := &config.PasetoConfig{SecretEnv: "FLEET_TEST_SECRET"}

	t.Setenv("FLEET_TEST_SECRET", hex.EncodeToString(bytes.Repeat([]byte{3}, 32)))
	key, err := config.LoadSecretKey(cfg)
	require.NoError(t, err)
	assert.False(t, key.Ephemeral())

	t.Setenv("FLEET_TEST_SECRET", "")
	cfg.RequireSecret = true
	_, err = config.LoadSecretKey(cfg)
	assert.ErrorIs(t, err, config.ErrSecretKeyMissing)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := config.NewRedisClient(&config.RedisConfig{
		Addr:        mr.Addr(),
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
		OpTimeout:   300 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, 300*time.Millisecond, client.OpTimeout)
	require.NoError(t, client.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = config.NewRedisClient(&config.RedisConfig{
		Addr:        addr,
		DialTimeout: 200 * time.Millisecond,
		ReadTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	assert.Error(t, err)
}
