package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/franciscosanchezn/foodgram-api/internal/slug"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"gorm.io/gorm"
)

// Ingredient is reference data: a product name and the unit it is measured in.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:64;not null;index" json:"name" validate:"required,max=64"`
	Slug            string `gorm:"size:255;index" json:"slug"`
	NameFolded      string `gorm:"size:255;index" json:"-"`
	MeasurementUnit string `gorm:"size:64;not null" json:"measurement_unit" validate:"required,max=64"`
}

func (Ingredient) DefaultOrder() string {
	return "ingredients.name"
}

// FoldName is the case-insensitive search form of an ingredient name. SQL
// LOWER() only folds ASCII on SQLite, so folding happens here for both the
// stored column and the search term.
func FoldName(name string) string {
	return strings.ToLower(norm.NFKC.String(name))
}

// BeforeSave derives the slug from the current name and validates the row.
func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.Slug = slug.Make(i.Name)
	i.NameFolded = FoldName(i.Name)
	return validation.ValidateStruct(i)
}

func (i Ingredient) String() string {
	return fmt.Sprintf("%s, %s", i.Name, i.MeasurementUnit)
}
