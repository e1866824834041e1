package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"DB_DRIVER", "DB_PATH", "DB_USER", "DB_PASS", "DB_HOST", "DB_PORT", "DB_NAME", "DATABASE_URL",
	"LOG_LEVEL", "LOG_FORMAT", "PASSWORD_MODE", "BCRYPT_COST",
	"CACHE_ENABLED", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL", "CACHE_PREFIX",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "films.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "plain", cfg.PasswordMode)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "films", cfg.CachePrefix)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "file:films.db?_busy_timeout=5000&_foreign_keys=1", cfg.DSN())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	body := "DB_DRIVER=mysql\nDB_USER=films\nDB_PASS=pw\nDB_HOST=db\nDB_PORT=3307\nDB_NAME=collection\nCACHE_TTL=90s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("DB_HOST", "override")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "override", cfg.DBHost)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "films:pw@tcp(override:3307)/collection?charset=utf8mb4&parseTime=true&loc=UTC", cfg.DSN())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct{ key, value string }{
		{"BCRYPT_COST", "ten"},
		{"CACHE_ENABLED", "maybe"},
		{"REDIS_DB", "x"},
		{"CACHE_TTL", "5 minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBDriver: "sqlite3", DBPath: "films.db",
			LogLevel: "info", LogFormat: "json",
			PasswordMode: "plain", BcryptCost: 10,
			CacheTTL: time.Minute, RedisAddr: "localhost:6379",
		}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, "DB_DRIVER"},
		{"pgx without url", func(c *Config) { c.DBDriver = "pgx" }, "DATABASE_URL"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.LogFormat = "text" }, "LOG_FORMAT"},
		{"bad mode", func(c *Config) { c.PasswordMode = "md5" }, "PASSWORD_MODE"},
		{"bad cost", func(c *Config) { c.BcryptCost = 2 }, "BCRYPT_COST"},
		{"cache without ttl", func(c *Config) { c.CacheEnabled = true; c.CacheTTL = 0 }, "CACHE_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			require.NoError(t, c.Validate())
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}

	c := valid()
	c.DBDriver = "pgx"
	c.DatabaseURL = "postgres://u:p@localhost:5432/films"
	require.NoError(t, c.Validate())
	assert.Equal(t, c.DatabaseURL, c.DSN())
}
