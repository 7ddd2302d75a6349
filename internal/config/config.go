package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(Level(GetEnvWithDefault("APP_ENV", "development")))
}

// SetLogLevel sets the log level for the config package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DatabaseURL string `json:"database_url"`
	DBDriver    string `json:"db_driver"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// LogLevel overrides the level derived from Environment
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret          string `json:"jwt_secret"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute"`

	// Media storage configuration
	StorageDriver string `json:"storage_driver"`
	MediaRoot     string `json:"media_root"`
	MediaURL      string `json:"media_url"`
	S3Region      string `json:"s3_region"`
	S3Bucket      string `json:"s3_bucket"`
	S3Endpoint    string `json:"s3_endpoint"`
	S3PublicURL   string `json:"s3_public_url"`
	S3AccessKey   string `json:"s3_access_key"`
	S3SecretKey   string `json:"s3_secret_key"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DatabaseURL: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], RateLimitPerMinute: %d, StorageDriver: %s, MediaRoot: %s, S3Bucket: %s, S3Endpoint: %s, S3SecretKey: [REDACTED]}",
		c.Environment, c.Port, c.Host, maskDatabaseURL(c.DatabaseURL), c.DBDriver, c.DBHost, c.DBName, c.DBUser, c.DBPath,
		c.LogLevel, c.RateLimitPerMinute, c.StorageDriver, c.MediaRoot, c.S3Bucket, c.S3Endpoint)
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// DatabaseConfig returns the connection settings for the database package.
// A DATABASE_URL implies the postgres driver.
func (c *Config) DatabaseConfig() database.DatabaseConfig {
	driver := c.DBDriver
	if c.DatabaseURL != "" && driver == "sqlite" {
		driver = "postgres"
	}
	return database.DatabaseConfig{
		Driver:   driver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		URL:      c.DatabaseURL,
		Path:     c.DBPath,
	}
}

// StorageConfig returns the media storage settings.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Driver:      c.StorageDriver,
		MediaRoot:   c.MediaRoot,
		MediaURL:    c.MediaURL,
		S3Region:    c.S3Region,
		S3Bucket:    c.S3Bucket,
		S3Endpoint:  c.S3Endpoint,
		S3AccessKey: c.S3AccessKey,
		S3SecretKey: c.S3SecretKey,
		S3PublicURL: c.S3PublicURL,
	}
}

// Level maps APP_ENV to a logrus level: debug in development, error in
// production and info otherwise.
func Level(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// LogrusLevel is LOG_LEVEL when set, otherwise the level implied by the
// environment.
func (c *Config) LogrusLevel() logrus.Level {
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		return level
	}
	return Level(c.Environment)
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DatabaseURL and the numeric settings
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		// validate URL with net/url
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	logLevel := GetEnvWithDefault("LOG_LEVEL", "")
	if logLevel != "" {
		if _, err := logrus.ParseLevel(logLevel); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	rateLimit := GetEnvAsType("RATE_LIMIT_PER_MINUTE", 60)
	if rateLimit < 0 {
		return nil, errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}

	config := &Config{
		Environment:        GetEnvWithDefault("APP_ENV", "development"),
		Port:               port,
		Host:               GetEnvWithDefault("APP_HOST", "localhost"),
		DatabaseURL:        dbURL,
		DBDriver:           GetEnvWithDefault("DB_DRIVER", "sqlite"),
		DBHost:             GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:             GetEnvWithDefault("DB_PORT", "5432"),
		DBName:             GetEnvWithDefault("DB_NAME", "foodgram"),
		DBUser:             GetEnvWithDefault("DB_USER", "foodgram"),
		DBPassword:         GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:          GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:             GetEnvWithDefault("DB_PATH", "foodgram.sqlite"),
		LogLevel:           logLevel,
		JWTSecret:          GetEnvWithDefault("JWT_SECRET", "secret"),
		RateLimitPerMinute: rateLimit,
		StorageDriver:      GetEnvWithDefault("STORAGE_DRIVER", "local"),
		MediaRoot:          GetEnvWithDefault("MEDIA_ROOT", "media"),
		MediaURL:           GetEnvWithDefault("MEDIA_URL", "/media/"),
		S3Region:           GetEnvWithDefault("S3_REGION", "us-east-1"),
		S3Bucket:           GetEnvWithDefault("S3_BUCKET", ""),
		S3Endpoint:         GetEnvWithDefault("S3_ENDPOINT", ""),
		S3PublicURL:        GetEnvWithDefault("S3_PUBLIC_URL", ""),
		S3AccessKey:        GetEnvWithDefault("S3_ACCESS_KEY", ""),
		S3SecretKey:        GetEnvWithDefault("S3_SECRET_KEY", ""),
	}
	if strings.EqualFold(config.StorageDriver, "s3") && config.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET environment variable is required when STORAGE_DRIVER=s3")
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Warnf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
