package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

// IngredientService manages the ingredient reference data.
type IngredientService interface {
	// ListIngredients returns ingredients whose name starts with name
	// (case-insensitive); an empty name returns all of them.
	ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error
	UpdateIngredient(ctx context.Context, ingredient *models.Ingredient) error
	DeleteIngredient(ctx context.Context, id uint) error
}

type ingredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) IngredientService {
	return &ingredientService{db: db}
}

func (s *ingredientService) ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	tx := s.db.WithContext(ctx).Order(models.Ingredient{}.DefaultOrder())
	if name != "" {
		tx = tx.Where(`ingredients.name_folded LIKE ? ESCAPE '\'`, likePrefix(name))
	}

	ingredients := make([]models.Ingredient, 0)
	if err := tx.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *ingredientService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ingredient, nil
}

func (s *ingredientService) CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	return translate(s.db.WithContext(ctx).Create(ingredient).Error)
}

func (s *ingredientService) UpdateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	return translate(s.db.WithContext(ctx).Save(ingredient).Error)
}

func (s *ingredientService) DeleteIngredient(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Ingredient{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
