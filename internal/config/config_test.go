package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "workouts.db", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessExpiration)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshExpiration)
	assert.Equal(t, 10, cfg.Pagination.PageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.True(t, cfg.Throttle.Enabled)
	assert.Equal(t, "100-H", cfg.Throttle.AnonRate)
	assert.Equal(t, "1000-D", cfg.Throttle.UserRate)
	assert.Equal(t, "database", cfg.Blacklist.Driver)
	assert.Equal(t, 10*time.Second, cfg.Blacklist.MongoTimeout)
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  address: ":9090"
  cors_allowed_origins: ["https://app.example.com"]
database:
  driver: postgres
  dsn: "host=db user=app dbname=workouts"
jwt:
  secret: from-file
  access_expiration: 10m
pagination:
  page_size: 20
s3:
  bucket_name: exports
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("THROTTLE_ENABLED", "false")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 10*time.Minute, cfg.JWT.AccessExpiration)
	assert.Equal(t, 20, cfg.Pagination.PageSize)
	assert.False(t, cfg.Throttle.Enabled)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "jwt.secret")

	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DATABASE_DRIVER", "oracle")
	_, err = LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "database.driver")

	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("THROTTLE_STORE", "redis")
	_, err = LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "redis_url")

	t.Setenv("THROTTLE_STORE", "memory")
	t.Setenv("BLACKLIST_DRIVER", "mongo")
	t.Setenv("BLACKLIST_MONGO_TIMEOUT", "0s")
	_, err = LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "mongo_timeout")
}
