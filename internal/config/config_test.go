package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: 9090
  env: test

database:
  host: db.internal
  user: app
  password: pw
  name: studyhive

jwt:
  secret: yaml-secret
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 15, cfg.JWT.ExpiresIn)
	assert.Equal(t, 60*24*7, cfg.JWT.RefreshIn)
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	t.Setenv("PORT", "8181")
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t,
		"app:pw@tcp(db.internal:3306)/studyhive?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DSN())
}
