package models

import (
	"fmt"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/slug"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"gorm.io/gorm"
)

// Bounds enforced on recipes and their ingredient quantities.
const (
	MinCookingTime = 1
	MaxCookingTime = 6000
	MinAmount      = 1
	MaxAmount      = 10000
)

// Recipe belongs to its author and links ingredients (with quantities) and tags.
type Recipe struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Name             string            `gorm:"size:128;uniqueIndex;not null" json:"name" validate:"required,max=128"`
	Slug             string            `gorm:"size:255;index" json:"slug"`
	AuthorID         uint              `gorm:"not null;index" json:"author_id"`
	Author           *User             `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty" validate:"-"`
	Image            string            `gorm:"size:255" json:"image"`
	Text             string            `gorm:"type:text;not null" json:"text" validate:"required,max=8196"`
	CookingTime      int               `gorm:"not null" json:"cooking_time" validate:"min=1,max=6000"`
	Tags             []Tag             `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty" validate:"-"`
	IngredientValues []IngredientValue `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty" validate:"-"`
	Favorites        []Favorite        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	Carts            []Cart            `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	CreatedAt        time.Time         `json:"-"`
	UpdatedAt        time.Time         `json:"-"`
}

func (Recipe) DefaultOrder() string {
	return "recipes.id DESC"
}

// BeforeSave derives the slug from the current name and validates the row.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	r.Slug = slug.Make(r.Name)
	return validation.ValidateStruct(r)
}

// GetAuthorID identifies the owner of the recipe for object-level permissions.
func (r *Recipe) GetAuthorID() uint {
	return r.AuthorID
}

func (r Recipe) String() string {
	return r.Name
}

// IngredientValue binds an ingredient to a recipe with a quantity.
type IngredientValue struct {
	ID           uint        `gorm:"primaryKey" json:"-"`
	IngredientID uint        `gorm:"not null;index" json:"ingredient_id"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"ingredient,omitempty" validate:"-"`
	RecipeID     uint        `gorm:"not null;index" json:"recipe_id"`
	Recipe       *Recipe     `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	Amount       int         `gorm:"not null" json:"amount" validate:"min=1,max=10000"`
}

func (IngredientValue) DefaultOrder() string {
	return "ingredient_values.ingredient_id"
}

// BeforeSave validates the amount bounds.
func (v *IngredientValue) BeforeSave(tx *gorm.DB) error {
	return validation.ValidateStruct(v)
}

func (v IngredientValue) String() string {
	if v.Ingredient == nil {
		return fmt.Sprintf("#%d - %d", v.IngredientID, v.Amount)
	}
	return fmt.Sprintf("%s (%s) - %d", v.Ingredient.Name, v.Ingredient.MeasurementUnit, v.Amount)
}
