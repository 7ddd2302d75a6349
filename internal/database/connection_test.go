package database

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	testCases := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name:     "postgres from discrete fields",
			config:   DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "foodgram", SSLMode: "disable"},
			expected: "host=db user=u password=p dbname=foodgram port=5432 sslmode=disable",
		},
		{
			name:     "postgres url wins",
			config:   DatabaseConfig{Driver: "postgresql", Host: "db", URL: "postgres://u:p@db:5432/foodgram"},
			expected: "postgres://u:p@db:5432/foodgram",
		},
		{
			name:     "sqlite enables foreign keys",
			config:   DatabaseConfig{Driver: "sqlite", Path: "data.sqlite"},
			expected: "data.sqlite?_foreign_keys=on",
		},
		{
			name:     "sqlite keeps existing params",
			config:   DatabaseConfig{Driver: "", Path: "data.sqlite?cache=shared"},
			expected: "data.sqlite?cache=shared&_foreign_keys=on",
		},
		{
			name:     "sqlite default path",
			config:   DatabaseConfig{Driver: "sqlite"},
			expected: "foodgram.sqlite?_foreign_keys=on",
		},
		{
			name:     "unknown driver",
			config:   DatabaseConfig{Driver: "mysql"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestStringMasksPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "hunter2"}
	assert.NotContains(t, cfg.String(), "hunter2")
	assert.Contains(t, cfg.String(), "[REDACTED]")
}

func TestInitDatabaseRejectsUnknownDriver(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Nil(t, db)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)

	for _, table := range []string{
		"users", "subscriptions", "ingredients", "tags", "recipes",
		"recipe_tags", "ingredient_values", "favorites", "carts",
		"oauth_clients", "oauth_codes", "oauth_tokens",
	} {
		assert.True(t, db.Migrator().HasTable(table), "table %s should exist", table)
	}

	var foreignKeys int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&foreignKeys).Error)
	assert.Equal(t, 1, foreignKeys)
}

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		driver string
		name   string
	}{
		{"", "sqlite"},
		{"sqlite", "sqlite"},
		{"POSTGRES", "postgres"},
		{"postgresql", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			dialector, err := dialectorFor(DatabaseConfig{Driver: tt.driver, Path: "unused.db"})
			require.NoError(t, err)
			assert.Equal(t, tt.name, dialector.Name())
		})
	}

	_, err := dialectorFor(DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "supported: postgres, sqlite")
}

func TestSetLogLevel(t *testing.T) {
	previous := log.GetLevel()
	t.Cleanup(func() { SetLogLevel(previous) })

	SetLogLevel(logrus.DebugLevel)
	assert.True(t, log.IsLevelEnabled(logrus.DebugLevel))

	SetLogLevel(logrus.ErrorLevel)
	assert.False(t, log.IsLevelEnabled(logrus.WarnLevel))
}
