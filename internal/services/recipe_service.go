package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/pagination"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
)

const recipeImageDir = "recipes"

// IngredientAmount is one ingredient line of a recipe being written.
type IngredientAmount struct {
	IngredientID uint
	Amount       int
}

// RecipeInput is the writable part of a recipe. On update an empty Image
// keeps the current picture; tags and ingredients are always replaced.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       string
	TagIDs      []uint
	Ingredients []IngredientAmount
}

// RecipeFilter narrows a recipe listing. The favorite and cart flags are
// evaluated for the listing principal; nil means "don't filter".
type RecipeFilter struct {
	AuthorID         uint
	Tags             []string
	IsFavorited      *bool
	IsInShoppingCart *bool
}

// RecipeFlags tells, per recipe id, whether it is favorited or in the cart.
type RecipeFlags struct {
	Favorited map[uint]bool
	InCart    map[uint]bool
}

type RecipeService interface {
	ListRecipes(ctx context.Context, principal permissions.Principal, filter RecipeFilter, p pagination.Params) ([]models.Recipe, int64, pagination.Params, error)
	// ListAuthorRecipes returns up to limit newest recipes of an author
	// (all when limit <= 0) and the author's total.
	ListAuthorRecipes(ctx context.Context, authorID uint, limit int) ([]models.Recipe, int64, error)
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, principal permissions.Principal, in RecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, principal permissions.Principal, id uint, in RecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, principal permissions.Principal, id uint) error
	Flags(ctx context.Context, userID uint, recipeIDs []uint) (RecipeFlags, error)
}

type recipeService struct {
	db      *gorm.DB
	storage storage.Storage
}

func NewRecipeService(db *gorm.DB, store storage.Storage) RecipeService {
	return &recipeService{db: db, storage: store}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.Tag{}.DefaultOrder())
		}).
		Preload("IngredientValues", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.IngredientValue{}.DefaultOrder())
		}).
		Preload("IngredientValues.Ingredient")
}

func (s *recipeService) ListRecipes(ctx context.Context, principal permissions.Principal, filter RecipeFilter, p pagination.Params) ([]models.Recipe, int64, pagination.Params, error) {
	db := s.db.WithContext(ctx)
	tx := db.Model(&models.Recipe{})

	if filter.AuthorID != 0 {
		tx = tx.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.Tags) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags)
		tx = tx.Where("recipes.id IN (?)", tagged)
	}
	if filter.IsFavorited != nil {
		tx = userLinkFilter(db, tx, &models.Favorite{}, principal.UserID, *filter.IsFavorited)
	}
	if filter.IsInShoppingCart != nil {
		tx = userLinkFilter(db, tx, &models.Cart{}, principal.UserID, *filter.IsInShoppingCart)
	}

	return pagination.Query[models.Recipe](tx, p, preloadRecipe, orderBy(models.Recipe{}.DefaultOrder()))
}

// userLinkFilter keeps recipes that are (or are not) linked to userID
// through the favorites or carts table of model.
func userLinkFilter(db, tx *gorm.DB, model interface{}, userID uint, linked bool) *gorm.DB {
	if userID == 0 {
		if linked {
			return tx.Where("1 = 0")
		}
		return tx
	}
	sub := db.Model(model).Select("recipe_id").Where("user_id = ?", userID)
	if linked {
		return tx.Where("recipes.id IN (?)", sub)
	}
	return tx.Where("recipes.id NOT IN (?)", sub)
}

func (s *recipeService) ListAuthorRecipes(ctx context.Context, authorID uint, limit int) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx := db.Where("author_id = ?", authorID).Order(models.Recipe{}.DefaultOrder())
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	recipes := make([]models.Recipe, 0)
	if err := tx.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Scopes(preloadRecipe).First(&recipe, id).Error; err != nil {
		return nil, translate(err)
	}
	return &recipe, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, principal permissions.Principal, in RecipeInput) (*models.Recipe, error) {
	if err := permissions.Check(permissions.AuthorOrReadOnly{}, principal, http.MethodPost); err != nil {
		return nil, err
	}
	if err := checkIngredients(in.Ingredients); err != nil {
		return nil, err
	}
	if in.Image == "" {
		return nil, validation.NewError("image", "required", "this field is required")
	}

	key, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Name:        in.Name,
		AuthorID:    principal.UserID,
		Image:       key,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return translate(err)
		}
		return writeRecipeRelations(tx, recipe, in)
	})
	if err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"author_id": recipe.AuthorID,
	}).Info("Recipe created")
	return s.GetRecipe(ctx, recipe.ID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, principal permissions.Principal, id uint, in RecipeInput) (*models.Recipe, error) {
	if err := permissions.Check(permissions.AuthorOrReadOnly{}, principal, http.MethodPatch); err != nil {
		return nil, err
	}
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permissions.CheckObject(permissions.AuthorOrReadOnly{}, principal, http.MethodPatch, recipe); err != nil {
		return nil, err
	}
	if err := checkIngredients(in.Ingredients); err != nil {
		return nil, err
	}

	oldImage := recipe.Image
	newImage := ""
	if in.Image != "" {
		if newImage, err = s.storeImage(ctx, in.Image); err != nil {
			return nil, err
		}
		recipe.Image = newImage
	}
	recipe.Name = in.Name
	recipe.Text = in.Text
	recipe.CookingTime = in.CookingTime

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return translate(err)
		}
		return writeRecipeRelations(tx, recipe, in)
	})
	if err != nil {
		s.removeImage(ctx, newImage)
		return nil, err
	}
	if newImage != "" {
		s.removeImage(ctx, oldImage)
	}

	log.WithField("recipe_id", recipe.ID).Info("Recipe updated")
	return s.GetRecipe(ctx, recipe.ID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, principal permissions.Principal, id uint) error {
	if err := permissions.Check(permissions.AuthorOrReadOnly{}, principal, http.MethodDelete); err != nil {
		return err
	}
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return translate(err)
	}
	if err := permissions.CheckObject(permissions.AuthorOrReadOnly{}, principal, http.MethodDelete, &recipe); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&recipe).Error; err != nil {
		return translate(err)
	}
	s.removeImage(ctx, recipe.Image)

	log.WithField("recipe_id", id).Info("Recipe deleted")
	return nil
}

func (s *recipeService) Flags(ctx context.Context, userID uint, recipeIDs []uint) (RecipeFlags, error) {
	flags := RecipeFlags{Favorited: map[uint]bool{}, InCart: map[uint]bool{}}
	if userID == 0 || len(recipeIDs) == 0 {
		return flags, nil
	}
	db := s.db.WithContext(ctx)

	var favorited, inCart []uint
	if err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &favorited).Error; err != nil {
		return flags, err
	}
	if err := db.Model(&models.Cart{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &inCart).Error; err != nil {
		return flags, err
	}

	for _, id := range favorited {
		flags.Favorited[id] = true
	}
	for _, id := range inCart {
		flags.InCart[id] = true
	}
	return flags, nil
}

func checkIngredients(items []IngredientAmount) error {
	if len(items) == 0 {
		return ErrNoIngredients
	}
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if seen[item.IngredientID] {
			return fmt.Errorf("ingredient %d: %w", item.IngredientID, ErrDuplicateIngredient)
		}
		seen[item.IngredientID] = true
	}
	return nil
}

// writeRecipeRelations replaces the tags and ingredient lines of recipe.
func writeRecipeRelations(tx *gorm.DB, recipe *models.Recipe, in RecipeInput) error {
	tagIDs := uniqueIDs(in.TagIDs)
	tags := make([]models.Tag, 0, len(tagIDs))
	if len(tagIDs) > 0 {
		if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
			return err
		}
		if len(tags) != len(tagIDs) {
			return fmt.Errorf("tag: %w", ErrInvalidReference)
		}
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return translate(err)
	}

	ingredientIDs := make([]uint, 0, len(in.Ingredients))
	for _, item := range in.Ingredients {
		ingredientIDs = append(ingredientIDs, item.IngredientID)
	}
	var found int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&found).Error; err != nil {
		return err
	}
	if int(found) != len(ingredientIDs) {
		return fmt.Errorf("ingredient: %w", ErrInvalidReference)
	}

	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientValue{}).Error; err != nil {
		return err
	}
	values := make([]models.IngredientValue, 0, len(in.Ingredients))
	for _, item := range in.Ingredients {
		values = append(values, models.IngredientValue{
			RecipeID:     recipe.ID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		})
	}
	return translate(tx.Omit(clause.Associations).Create(&values).Error)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *recipeService) storeImage(ctx context.Context, uri string) (string, error) {
	img, err := storage.DecodeDataURI(uri)
	if err != nil {
		return "", err
	}
	key := storage.NewKey(recipeImageDir, img.Extension)
	if err := s.storage.Save(ctx, key, img.Data, img.ContentType); err != nil {
		return "", fmt.Errorf("store recipe image: %w", err)
	}
	return key, nil
}

func (s *recipeService) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to remove recipe image")
	}
}
