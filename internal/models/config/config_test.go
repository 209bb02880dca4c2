package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "ENVIRONMENT", "HTTP_PORT", "PORT", "HTTP_REQUEST_TIMEOUT",
		"DB_DRIVER", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
		"DB_NAME", "DB_SSLMODE", "DB_AUTO_MIGRATE", "BOT_TOKEN", "BOT_DEBUG", "ADMIN_IDS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_USER", "tracker")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3001", cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t,
		"host=localhost port=5432 user=tracker password= dbname=subscriptions sslmode=disable",
		cfg.Database.DSN())
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/subs")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "11, 22,bogus")
	t.Setenv("HTTP_REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, DriverPGX, cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/subs", cfg.Database.DSN())
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []int64{11, 22}, cfg.Bot.AdminIDs)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: staging
http:
  port: "9000"
  request_timeout: 30s
database:
  driver: memory
log:
  level: debug
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Validation(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("BOT_TOKEN", "123:abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER must be one of")
	assert.Contains(t, err.Error(), "ADMIN_IDS is required")
}

func TestLoad_MissingCredentials(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER or DATABASE_URL is required")
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
