package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	_ "github.com/franciscosanchezn/foodgram-api/docs" // Import generated docs
	"github.com/franciscosanchezn/foodgram-api/internal/admin"
	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/routes"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
)

const serviceName = "foodgram-api"

// @title Foodgram API
// @version 1.0
// @description Recipe sharing: recipes, tags, ingredients, favorites, shopping carts and subscriptions
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize logger
	setUpLogger(configuration)

	// Initialize database connection
	db := setupDatabase(configuration)

	// Initialize media storage
	store, err := storage.New(context.Background(), configuration.StorageConfig())
	checkPanicErr(err)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	stop := routes.Setup(router, routes.Deps{
		DB:                 db,
		Storage:            store,
		JWTSecret:          configuration.JWTSecret,
		RateLimitPerMinute: configuration.RateLimitPerMinute,
		ServiceName:        serviceName,
	})
	defer stop()

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	if err := router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log
// level of every package based on the environment
func setUpLogger(conf *config.Config) {
	level := conf.LogrusLevel()
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(level)

	for _, setLevel := range []func(log.Level){
		admin.SetLogLevel,
		auth.SetLogLevel,
		config.SetLogLevel,
		controllers.SetLogLevel,
		database.SetLogLevel,
		middleware.SetLogLevel,
		routes.SetLogLevel,
		services.SetLogLevel,
		storage.SetLogLevel,
	} {
		setLevel(level)
	}

	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the configured database and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(conf.DatabaseConfig())
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}
