// Package loader bulk-loads reference data from JSON files.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel sets the log level for the loader package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// IngredientRecord is one element of an ingredients JSON array.
type IngredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// LoadIngredients decodes a JSON array of ingredient records and creates one
// ingredient per record, in order. Records are not deduplicated and there is
// no enclosing transaction: the first failing record stops the load and the
// rows created before it stay. It returns the number of rows created.
func LoadIngredients(ctx context.Context, svc services.IngredientService, r io.Reader) (int, error) {
	var records []IngredientRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return 0, fmt.Errorf("decode ingredients: %w", err)
	}

	created := 0
	for i, rec := range records {
		ingredient := &models.Ingredient{Name: rec.Name, MeasurementUnit: rec.MeasurementUnit}
		if err := svc.CreateIngredient(ctx, ingredient); err != nil {
			return created, fmt.Errorf("record %d (%q): %w", i, rec.Name, err)
		}
		created++
	}

	log.WithField("created", created).Info("Ingredients loaded")
	return created, nil
}

// LoadIngredientsFile runs LoadIngredients on the file at path.
func LoadIngredientsFile(ctx context.Context, svc services.IngredientService, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	log.WithField("path", path).Info("Loading ingredients")
	return LoadIngredients(ctx, svc, f)
}
