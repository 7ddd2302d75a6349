package database

import (
	"fmt"
	"strings"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	// Driver specifies the database driver (postgres, sqlite)
	Driver string

	// PostgreSQL-specific configuration
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// URL overrides the discrete PostgreSQL fields when set
	URL string

	// SQLite-specific configuration
	Path string
}

// String returns a string representation with sensitive data masked
func (c *DatabaseConfig) String() string {
	return fmt.Sprintf("DatabaseConfig{Driver: %s, Host: %s, Port: %s, User: %s, Password: [REDACTED], Name: %s, SSLMode: %s, Path: %s}",
		c.Driver, c.Host, c.Port, c.User, c.Name, c.SSLMode, c.Path)
}

// DSN builds a Data Source Name string based on the driver.
// SQLite connections always enable foreign keys so cascading deletes apply.
func (c *DatabaseConfig) DSN() string {
	switch strings.ToLower(c.Driver) {
	case "postgres", "postgresql":
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
	case "sqlite", "":
		path := c.Path
		if path == "" {
			path = "foodgram.sqlite"
		}
		separator := "?"
		if strings.Contains(path, "?") {
			separator = "&"
		}
		return path + separator + "_foreign_keys=on"
	default:
		return ""
	}
}
