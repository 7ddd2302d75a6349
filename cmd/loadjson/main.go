// Command loadjson creates ingredients from a JSON file:
//
//	loadjson ingredients.json
//
// The file holds an array of {"name": ..., "measurement_unit": ...} objects.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/loader"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <ingredients.json>\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
	log.SetFormatter(&log.JSONFormatter{})

	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	level := conf.LogrusLevel()
	log.SetLevel(level)
	config.SetLogLevel(level)
	database.SetLogLevel(level)
	loader.SetLogLevel(level)
	services.SetLogLevel(level)

	db, err := database.InitDatabase(conf.DatabaseConfig())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	n, err := loader.LoadIngredientsFile(context.Background(), services.NewIngredientService(db), flag.Arg(0))
	if err != nil {
		log.WithError(err).WithField("created", n).Fatal("Failed to load ingredients")
	}
	fmt.Printf("Loaded %d ingredients from %s\n", n, flag.Arg(0))
}
