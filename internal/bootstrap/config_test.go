package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"APP_ENV", "LOG_LEVEL", "SERVER_PORT",
	"SECRET_KEY", "SESSION_ENCRYPTION_KEY", "SESSION_BACKEND", "SESSION_MAX_AGE_HOURS", "SESSION_COOKIE_SECURE",
	"DB_DRIVER", "DB_DSN", "SQLITE_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_KEY_PREFIX",
	"CSRF_ENABLED", "CSRF_TIME_LIMIT_MINUTES",
}

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, values[key])
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"SECRET_KEY": "s3cret"})

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, SessionBackendCookie, cfg.SessionBackend)
	assert.Equal(t, 744*time.Hour, cfg.SessionMaxAge)
	assert.False(t, cfg.SessionCookieSecure)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "notes.db", cfg.SQLitePath)
	assert.Equal(t, "notes:", cfg.KeyPrefix)
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, time.Hour, cfg.CSRFTimeLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"APP_ENV":                 "production",
		"LOG_LEVEL":               "debug",
		"SECRET_KEY":              "s3cret",
		"SESSION_ENCRYPTION_KEY":  "0123456789abcdef",
		"SESSION_BACKEND":         "Redis",
		"SESSION_MAX_AGE_HOURS":   "2",
		"DB_DRIVER":               "postgres",
		"REDIS_ADDR":              "localhost:6379",
		"REDIS_DB":                "3",
		"CSRF_ENABLED":            "false",
		"CSRF_TIME_LIMIT_MINUTES": "15",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.SessionCookieSecure, "production defaults to secure cookies")
	assert.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	assert.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.False(t, cfg.CSRFEnabled)
	assert.Equal(t, 15*time.Minute, cfg.CSRFTimeLimit)
}

func TestLoadConfig_InvalidLogLevelFallsBack(t *testing.T) {
	setEnv(t, map[string]string{"SECRET_KEY": "s3cret", "LOG_LEVEL": "chatty"})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "SECRET_KEY"},
		{"redis without addr", map[string]string{"SECRET_KEY": "x", "SESSION_BACKEND": "redis"}, "REDIS_ADDR"},
		{"unknown backend", map[string]string{"SECRET_KEY": "x", "SESSION_BACKEND": "memcache"}, "SESSION_BACKEND"},
		{"unknown driver", map[string]string{"SECRET_KEY": "x", "DB_DRIVER": "oracle"}, "DB_DRIVER"},
		{"bad encryption key", map[string]string{"SECRET_KEY": "x", "SESSION_ENCRYPTION_KEY": "short"}, "SESSION_ENCRYPTION_KEY"},
		{"bad integer", map[string]string{"SECRET_KEY": "x", "REDIS_DB": "one"}, "REDIS_DB"},
		{"bad boolean", map[string]string{"SECRET_KEY": "x", "CSRF_ENABLED": "maybe"}, "CSRF_ENABLED"},
		{"zero max age", map[string]string{"SECRET_KEY": "x", "SESSION_MAX_AGE_HOURS": "0"}, "SESSION_MAX_AGE_HOURS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
