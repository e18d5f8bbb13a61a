package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("APP_TIMEZONE", "Europe/Rome")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "habit-hero", cfg.Auth.Issuer)
	assert.Equal(t, StoragePostgres, cfg.App.Storage)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Rome", loc.String())
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "7000"
  rate_limit: 5
db:
  host: db.internal
  name: habits
auth:
  jwt_secret: from-file
app:
  storage: memory
  streak_schedule: "@every 10m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_NAME", "habits_override")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.RateLimit)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "habits_override", cfg.DB.Name)
	assert.Equal(t, "5432", cfg.DB.Port, "unset keys keep defaults")
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, StorageMemory, cfg.App.Storage)
	assert.Equal(t, "@every 10m", cfg.App.StreakSchedule)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing JWT secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})

	t.Run("Bad integer", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("RATE_LIMIT", "lots")
		_, err := Load()
		assert.ErrorContains(t, err, "RATE_LIMIT")
	})

	t.Run("Unknown storage", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("STORAGE", "sqlite")
		_, err := Load()
		assert.ErrorIs(t, err, ErrUnknownStorage)
	})

	t.Run("Unknown timezone", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown timezone")
	})

	t.Run("Missing config file", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:1/n?sslmode=disable", c.DSN())
}
