package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel sets the log level for the database package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// retryDelays is the wait before each reconnection attempt; its length plus
// one is the number of attempts InitDatabase makes.
var retryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}

// InitDatabase opens the database described by cfg, retrying with
// exponential backoff while the server is unreachable, and sizes the
// connection pool for the driver.
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	driver := strings.ToLower(cfg.Driver)
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"db_driver": driver,
		"db_host":   cfg.Host,
		"db_name":   cfg.Name,
		"db_path":   cfg.Path,
	}).Info("Initializing database connection")

	attempts := len(retryDelays) + 1
	for attempt := 1; ; attempt++ {
		db, err := connect(dialector)
		if err == nil {
			configureConnectionPool(db, driver)
			log.WithFields(logrus.Fields{
				"db_driver": driver,
				"attempt":   attempt,
			}).Info("Database initialized successfully")
			return db, nil
		}

		log.WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": attempts,
			"error":        err.Error(),
		}).Warn("Database connection attempt failed")
		if attempt == attempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
		}
		time.Sleep(retryDelays[attempt-1])
	}
}

func dialectorFor(cfg DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "postgresql":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite", "":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", cfg.Driver)
	}
}

// connect opens dialector and pings the server once.
func connect(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// gormConfig enables error translation so unique and foreign key violations
// surface as gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	log.Info("Running schema migration")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.WithField("models", len(models.All())).Info("Schema migration complete")
	return nil
}

// OpenInMemory opens a private in-memory SQLite database with foreign keys on
// and the schema migrated. The pool is capped at one connection because every
// SQLite :memory: connection is a separate database.
func OpenInMemory() (*gorm.DB, error) {
	cfg := gormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// poolSettings bounds the connection pool of a driver.
type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

// SQLite serializes writers, so a single connection avoids "database is
// locked" errors under concurrent requests.
var pools = map[string]poolSettings{
	"postgres": {maxOpen: 25, maxIdle: 5, maxLifetime: 5 * time.Minute},
	"sqlite":   {maxOpen: 1, maxIdle: 1, maxLifetime: 0},
}

func configureConnectionPool(db *gorm.DB, driver string) {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Warn("Connection pool left at defaults")
		return
	}

	settings := pools["sqlite"]
	if driver == "postgres" || driver == "postgresql" {
		settings = pools["postgres"]
	}
	applyPool(sqlDB, settings)

	log.WithFields(logrus.Fields{
		"max_open_conns":    settings.maxOpen,
		"max_idle_conns":    settings.maxIdle,
		"conn_max_lifetime": settings.maxLifetime.String(),
	}).Debug("Connection pool configured")
}

func applyPool(sqlDB *sql.DB, settings poolSettings) {
	sqlDB.SetMaxOpenConns(settings.maxOpen)
	sqlDB.SetMaxIdleConns(settings.maxIdle)
	sqlDB.SetConnMaxLifetime(settings.maxLifetime)
}
