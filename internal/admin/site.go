package admin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/pagination"
)

var (
	ErrUnknownModel     = errors.New("model is not registered")
	ErrNotFound         = errors.New("object not found")
	ErrTooFewInlines    = errors.New("not enough inline rows")
	ErrInvalidReference = errors.New("referenced object does not exist")
)

// Row is one line of a change list, keyed by list_display column.
type Row = map[string]interface{}

// IngredientRow is an inline ingredient line of a recipe.
type IngredientRow struct {
	IngredientID uint `json:"ingredient_id" binding:"required"`
	Amount       int  `json:"amount" binding:"required"`
}

// RecipeChange is the recipe change form: the recipe with its inline
// ingredient rows and the read-only favorites count.
type RecipeChange struct {
	Recipe      *models.Recipe `json:"recipe"`
	InFavorites int64          `json:"in_favorites"`
}

// Site runs admin operations against the database.
type Site struct {
	db *gorm.DB
}

func NewSite(db *gorm.DB) *Site {
	return &Site{db: db}
}

// List returns a page of the change list of a registered model. Query values
// named after a list_filter narrow the rows; other values are ignored.
func (s *Site) List(ctx context.Context, name string, query url.Values, p pagination.Params) ([]Row, int64, pagination.Params, error) {
	m, ok := Lookup(name)
	if !ok {
		return nil, 0, p, ErrUnknownModel
	}

	tx := s.db.WithContext(ctx).Table(m.table)
	for _, join := range m.joins {
		tx = tx.Joins(join)
	}
	for _, filter := range m.ListFilter {
		if value := query.Get(filter); value != "" {
			tx = m.filters[filter](tx, value)
		}
	}

	rows, count, p, err := pagination.Query[Row](tx, p, func(db *gorm.DB) *gorm.DB {
		return db.Select(m.selectList()).Order(m.order)
	})
	if err != nil {
		return nil, count, p, err
	}
	for _, row := range rows {
		for k, v := range row {
			// computed text columns may come back as raw bytes
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
	}
	return rows, count, p, nil
}

// selectList renders the display columns, always including the primary key.
func (m ModelAdmin) selectList() string {
	parts := make([]string, 0, len(m.ListDisplay)+1)
	hasID := false
	for _, col := range m.ListDisplay {
		if col == "id" {
			hasID = true
		}
		parts = append(parts, fmt.Sprintf(`%s AS "%s"`, m.columns[col], col))
	}
	if !hasID {
		parts = append(parts, fmt.Sprintf(`%s.id AS "id"`, m.table))
	}
	return strings.Join(parts, ", ")
}

// Delete removes one row of a registered model; dependent rows cascade.
func (s *Site) Delete(ctx context.Context, name string, id uint) error {
	m, ok := Lookup(name)
	if !ok {
		return ErrUnknownModel
	}

	res := s.db.WithContext(ctx).Delete(m.model(), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	log.WithFields(logrus.Fields{"model": name, "id": id}).Info("Admin deleted object")
	return nil
}

// Recipe loads the recipe change form.
func (s *Site) Recipe(ctx context.Context, id uint) (*RecipeChange, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	err := db.
		Preload("Author").
		Preload("Tags").
		Preload("IngredientValues", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.IngredientValue{}.DefaultOrder())
		}).
		Preload("IngredientValues.Ingredient").
		First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var inFavorites int64
	if err := db.Model(&models.Favorite{}).Where("recipe_id = ?", id).Count(&inFavorites).Error; err != nil {
		return nil, err
	}
	return &RecipeChange{Recipe: &recipe, InFavorites: inFavorites}, nil
}

// ReplaceRecipeIngredients swaps the inline ingredient rows of a recipe. At
// least IngredientInlineMinNum rows are required.
func (s *Site) ReplaceRecipeIngredients(ctx context.Context, recipeID uint, rows []IngredientRow) error {
	if len(rows) < IngredientInlineMinNum {
		return fmt.Errorf("%w: at least %d ingredient required", ErrTooFewInlines, IngredientInlineMinNum)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id").First(&recipe, recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientValue{}).Error; err != nil {
			return err
		}
		values := make([]models.IngredientValue, 0, len(rows))
		for _, row := range rows {
			values = append(values, models.IngredientValue{
				RecipeID:     recipeID,
				IngredientID: row.IngredientID,
				Amount:       row.Amount,
			})
		}
		err := tx.Omit(clause.Associations).Create(&values).Error
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrInvalidReference
		}
		return err
	})
}
