package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
)

type FavoriteService interface {
	AddFavorite(ctx context.Context, principal permissions.Principal, recipeID uint) (*models.Recipe, error)
	RemoveFavorite(ctx context.Context, principal permissions.Principal, recipeID uint) error
}

// CartService manages the principal's shopping cart.
type CartService interface {
	AddToCart(ctx context.Context, principal permissions.Principal, recipeID uint) (*models.Recipe, error)
	RemoveFromCart(ctx context.Context, principal permissions.Principal, recipeID uint) error
	// ShoppingList sums the ingredients of every recipe in the cart.
	ShoppingList(ctx context.Context, principal permissions.Principal) ([]ShoppingItem, error)
}

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

type favoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) FavoriteService {
	return &favoriteService{db: db}
}

func (s *favoriteService) AddFavorite(ctx context.Context, principal permissions.Principal, recipeID uint) (*models.Recipe, error) {
	return addRecipeLink(s.db.WithContext(ctx), principal, recipeID, &models.Favorite{
		UserID:   principal.UserID,
		RecipeID: recipeID,
	})
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, principal permissions.Principal, recipeID uint) error {
	return removeRecipeLink(s.db.WithContext(ctx), principal, recipeID, &models.Favorite{})
}

type cartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) CartService {
	return &cartService{db: db}
}

func (s *cartService) AddToCart(ctx context.Context, principal permissions.Principal, recipeID uint) (*models.Recipe, error) {
	return addRecipeLink(s.db.WithContext(ctx), principal, recipeID, &models.Cart{
		UserID:   principal.UserID,
		RecipeID: recipeID,
	})
}

func (s *cartService) RemoveFromCart(ctx context.Context, principal permissions.Principal, recipeID uint) error {
	return removeRecipeLink(s.db.WithContext(ctx), principal, recipeID, &models.Cart{})
}

func (s *cartService) ShoppingList(ctx context.Context, principal permissions.Principal) ([]ShoppingItem, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}

	items := make([]ShoppingItem, 0)
	err := s.db.WithContext(ctx).
		Table("ingredient_values").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_values.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_values.ingredient_id").
		Joins("JOIN carts ON carts.recipe_id = ingredient_values.recipe_id").
		Where("carts.user_id = ?", principal.UserID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// RenderShoppingList formats a shopping list as a plain-text download.
func RenderShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	b.WriteString("Shopping list\n\n")
	if len(items) == 0 {
		b.WriteString("Your shopping cart is empty.\n")
		return b.String()
	}
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (%s): %d\n", i+1, item.Name, item.MeasurementUnit, item.Amount)
	}
	return b.String()
}

// addRecipeLink stores a favorite or cart row for an existing recipe.
func addRecipeLink(db *gorm.DB, principal permissions.Principal, recipeID uint, row interface{}) (*models.Recipe, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		return nil, translate(err)
	}

	var count int64
	if err := db.Model(row).
		Where("user_id = ? AND recipe_id = ?", principal.UserID, recipeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	if err := db.Create(row).Error; err != nil {
		return nil, translate(err)
	}
	return &recipe, nil
}

func removeRecipeLink(db *gorm.DB, principal permissions.Principal, recipeID uint, model interface{}) error {
	if err := requireUser(principal); err != nil {
		return err
	}
	res := db.Where("user_id = ? AND recipe_id = ?", principal.UserID, recipeID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
