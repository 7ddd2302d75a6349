package config

import (
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "APP_PORT", "APP_HOST", "LOG_LEVEL", "JWT_SECRET",
	"DATABASE_URL", "DB_DRIVER", "DB_PATH", "STORAGE_DRIVER", "S3_BUCKET",
	"RATE_LIMIT_PER_MINUTE",
}

// clearEnv blanks every variable LoadConfig reads; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("FOODGRAM_SET", "from_env")
	t.Setenv("FOODGRAM_BLANK", "")

	assert.Equal(t, "from_env", GetEnvWithDefault("FOODGRAM_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnvWithDefault("FOODGRAM_BLANK", "fallback"))
	assert.Equal(t, "", GetEnvWithDefault("FOODGRAM_NEVER_SET", ""))
}

func TestGetEnvAsType(t *testing.T) {
	t.Setenv("FOODGRAM_INT", "42")
	t.Setenv("FOODGRAM_BOOL", "true")
	t.Setenv("FOODGRAM_GARBAGE", "many")

	assert.Equal(t, 42, GetEnvAsType("FOODGRAM_INT", 7))
	assert.Equal(t, true, GetEnvAsType("FOODGRAM_BOOL", false))
	assert.Equal(t, 7, GetEnvAsType("FOODGRAM_GARBAGE", 7))
	assert.Equal(t, 1.5, GetEnvAsType("FOODGRAM_INT", 1.5))
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	conf, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, conf.Port)
	assert.Equal(t, "localhost", conf.Host)
	assert.Equal(t, "development", conf.Environment)
	assert.Empty(t, conf.LogLevel)
	assert.Empty(t, conf.DatabaseURL)
	assert.Equal(t, "sqlite", conf.DBDriver)
	assert.Equal(t, "local", conf.StorageDriver)
	assert.Equal(t, "/media/", conf.MediaURL)
	assert.Equal(t, 60, conf.RateLimitPerMinute)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_HOST", "0.0.0.0")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("JWT_SECRET", "super_secret_jwt_key")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "foodgram-media")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	conf, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, conf.Port)
	assert.Equal(t, "0.0.0.0", conf.Host)
	assert.Equal(t, "super_secret_jwt_key", conf.JWTSecret)
	assert.Equal(t, logrus.WarnLevel, conf.LogrusLevel())
	assert.Equal(t, "foodgram-media", conf.StorageConfig().S3Bucket)
	assert.Zero(t, conf.RateLimitPerMinute)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non numeric port", "APP_PORT", "not_a_number"},
		{"malformed database url", "DATABASE_URL", "not a url"},
		{"s3 without bucket", "STORAGE_DRIVER", "s3"},
		{"negative rate limit", "RATE_LIMIT_PER_MINUTE", "-1"},
		{"unknown log level", "LOG_LEVEL", "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			conf, err := LoadConfig()
			assert.Error(t, err)
			assert.Nil(t, conf)
		})
	}
}

func TestDatabaseConfig(t *testing.T) {
	c := &Config{DBDriver: "sqlite", DatabaseURL: "postgres://u:p@db:5432/foodgram"}
	db := c.DatabaseConfig()
	assert.Equal(t, "postgres", db.Driver, "a database url implies postgres")
	assert.Equal(t, c.DatabaseURL, db.DSN())

	c = &Config{DBDriver: "sqlite", DBPath: "data.sqlite"}
	db = c.DatabaseConfig()
	assert.Equal(t, "data.sqlite?_foreign_keys=on", db.DSN())
}

func TestConfigStringMasksSecrets(t *testing.T) {
	c := &Config{
		DatabaseURL: "postgres://user:hunter2@db:5432/foodgram",
		DBPassword:  "hunter2",
		JWTSecret:   "jwt-hunter2",
		S3SecretKey: "s3-hunter2",
	}
	s := c.String()
	assert.False(t, strings.Contains(s, "hunter2"), "String() leaks a secret: %s", s)
	assert.Contains(t, s, "db:5432")
}

func TestLevel(t *testing.T) {
	for env, want := range map[string]logrus.Level{
		"development": logrus.DebugLevel,
		"production":  logrus.ErrorLevel,
		"staging":     logrus.InfoLevel,
		"":            logrus.InfoLevel,
	} {
		assert.Equal(t, want, Level(env), "environment %q", env)
	}

	c := &Config{Environment: "production", LogLevel: "debug"}
	assert.Equal(t, logrus.DebugLevel, c.LogrusLevel())
	c.LogLevel = ""
	assert.Equal(t, logrus.ErrorLevel, c.LogrusLevel())
}

func BenchmarkGetEnvWithDefault(b *testing.B) {
	os.Setenv("BENCH_KEY", "test_value")
	defer os.Unsetenv("BENCH_KEY")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GetEnvWithDefault("BENCH_KEY", "default")
	}
}

func TestSetLogLevel(t *testing.T) {
	previous := log.GetLevel()
	t.Cleanup(func() { SetLogLevel(previous) })

	SetLogLevel(logrus.DebugLevel)
	assert.True(t, log.IsLevelEnabled(logrus.DebugLevel))

	SetLogLevel(logrus.ErrorLevel)
	assert.False(t, log.IsLevelEnabled(logrus.WarnLevel))
}
