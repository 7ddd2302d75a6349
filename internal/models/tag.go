package models

import (
	"github.com/franciscosanchezn/foodgram-api/internal/slug"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"gorm.io/gorm"
)

// DefaultTagColor is assigned to tags saved without a color.
const DefaultTagColor = "#FF0000"

type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:64;not null" json:"name" validate:"required,max=64"`
	Slug  string `gorm:"size:255;index" json:"slug"`
	Color string `gorm:"size:7;not null;default:'#FF0000'" json:"color" validate:"required,hexcolor"`
}

func (Tag) DefaultOrder() string {
	return "tags.name"
}

// BeforeSave derives the slug from the current name and validates the row.
func (t *Tag) BeforeSave(tx *gorm.DB) error {
	t.Slug = slug.Make(t.Name)
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	return validation.ValidateStruct(t)
}

func (t Tag) String() string {
	return t.Name
}
