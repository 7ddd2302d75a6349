package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/slug"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	user := &models.User{
		Email:     name + "@example.com",
		Username:  name,
		FirstName: "First",
		LastName:  "Last",
		Password:  "secret",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createRecipe(t *testing.T, db *gorm.DB, author *models.User, name string) *models.Recipe {
	recipe := &models.Recipe{
		Name:        name,
		AuthorID:    author.ID,
		Text:        "Mix and cook.",
		CookingTime: 10,
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSlugDerivedOnEverySave(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "chef")

	ingredient := &models.Ingredient{Name: "Сахар Песок", MeasurementUnit: "г", Slug: "ignored"}
	require.NoError(t, db.Create(ingredient).Error)
	assert.Equal(t, slug.Make("Сахар Песок"), ingredient.Slug)

	tag := &models.Tag{Name: "Quick Lunch"}
	require.NoError(t, db.Create(tag).Error)
	assert.Equal(t, "quick-lunch", tag.Slug)
	assert.Equal(t, models.DefaultTagColor, tag.Color)

	recipe := createRecipe(t, db, author, "Apple Pie")
	assert.Equal(t, "apple-pie", recipe.Slug)

	recipe.Name = "Grandma's Apple Pie"
	require.NoError(t, db.Save(recipe).Error)

	var reloaded models.Recipe
	require.NoError(t, db.First(&reloaded, recipe.ID).Error)
	assert.Equal(t, "grandmas-apple-pie", reloaded.Slug)
}

func TestRecipeCookingTimeBounds(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "chef")

	testCases := []struct {
		name        string
		cookingTime int
		wantErr     bool
	}{
		{name: "zero rejected", cookingTime: 0, wantErr: true},
		{name: "minimum accepted", cookingTime: models.MinCookingTime, wantErr: false},
		{name: "maximum accepted", cookingTime: models.MaxCookingTime, wantErr: false},
		{name: "above maximum rejected", cookingTime: models.MaxCookingTime + 1, wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			recipe := &models.Recipe{Name: tt.name, AuthorID: author.ID, Text: "text", CookingTime: tt.cookingTime}
			err := db.Create(recipe).Error
			if tt.wantErr {
				var verr *validation.Error
				assert.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
				assert.Zero(t, recipe.ID)
				return
			}
			assert.NoError(t, err)
			assert.NotZero(t, recipe.ID)
		})
	}
}

func TestIngredientValueAmountBounds(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "chef")
	recipe := createRecipe(t, db, author, "Soup")
	ingredient := &models.Ingredient{Name: "Salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(ingredient).Error)

	assert.Error(t, db.Create(&models.IngredientValue{RecipeID: recipe.ID, IngredientID: ingredient.ID, Amount: 0}).Error)
	assert.Error(t, db.Create(&models.IngredientValue{RecipeID: recipe.ID, IngredientID: ingredient.ID, Amount: models.MaxAmount + 1}).Error)
	assert.NoError(t, db.Create(&models.IngredientValue{RecipeID: recipe.ID, IngredientID: ingredient.ID, Amount: 5}).Error)
}

func TestUserValidation(t *testing.T) {
	db := setupTestDB(t)

	t.Run("name pattern rejected", func(t *testing.T) {
		user := &models.User{Email: "a@example.com", Username: "bad name", FirstName: "A", LastName: "B", Password: "x"}
		assert.Error(t, db.Create(user).Error)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		user := &models.User{Email: "not-an-email", Username: "ok", FirstName: "A", LastName: "B", Password: "x"}
		assert.Error(t, db.Create(user).Error)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		createUser(t, db, "first")
		dup := &models.User{Email: "first@example.com", Username: "second", FirstName: "A", LastName: "B", Password: "x"}
		err := db.Create(dup).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})
}

func TestPasswordHashing(t *testing.T) {
	user := &models.User{Password: "s3cret"}
	require.NoError(t, user.HashPassword())
	assert.NotEqual(t, "s3cret", user.Password)
	assert.True(t, user.CheckPassword("s3cret"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestRole(t *testing.T) {
	assert.Equal(t, models.RoleAdmin, (&models.User{IsStaff: true}).Role())
	assert.Equal(t, models.RoleUser, (&models.User{}).Role())
}

func TestUniquePairs(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "reader")
	author := createUser(t, db, "writer")
	recipe := createRecipe(t, db, author, "Pancakes")

	t.Run("favorite", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)
		err := db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("cart", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Cart{UserID: user.ID, RecipeID: recipe.ID}).Error)
		err := db.Create(&models.Cart{UserID: user.ID, RecipeID: recipe.ID}).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("subscription", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Subscription{UserID: user.ID, AuthorID: author.ID}).Error)
		err := db.Create(&models.Subscription{UserID: user.ID, AuthorID: author.ID}).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("self subscription is allowed", func(t *testing.T) {
		assert.NoError(t, db.Create(&models.Subscription{UserID: author.ID, AuthorID: author.ID}).Error)
	})

	t.Run("recipe name", func(t *testing.T) {
		dup := &models.Recipe{Name: "Pancakes", AuthorID: user.ID, Text: "t", CookingTime: 5}
		assert.ErrorIs(t, db.Create(dup).Error, gorm.ErrDuplicatedKey)
	})
}

func TestDeletingUserCascades(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "leaving")
	other := createUser(t, db, "staying")

	own := createRecipe(t, db, user, "Own Recipe")
	foreign := createRecipe(t, db, other, "Foreign Recipe")
	ingredient := &models.Ingredient{Name: "Flour", MeasurementUnit: "g"}
	require.NoError(t, db.Create(ingredient).Error)
	require.NoError(t, db.Create(&models.IngredientValue{RecipeID: own.ID, IngredientID: ingredient.ID, Amount: 100}).Error)

	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, RecipeID: foreign.ID}).Error)
	require.NoError(t, db.Create(&models.Cart{UserID: user.ID, RecipeID: foreign.ID}).Error)
	require.NoError(t, db.Create(&models.Favorite{UserID: other.ID, RecipeID: own.ID}).Error)
	require.NoError(t, db.Create(&models.Subscription{UserID: user.ID, AuthorID: other.ID}).Error)
	require.NoError(t, db.Create(&models.Subscription{UserID: other.ID, AuthorID: user.ID}).Error)

	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)

	assert.Equal(t, int64(1), count(t, db, &models.User{}))
	assert.Equal(t, int64(1), count(t, db, &models.Recipe{}), "own recipe should be removed")
	assert.Equal(t, int64(0), count(t, db, &models.IngredientValue{}))
	assert.Equal(t, int64(0), count(t, db, &models.Favorite{}))
	assert.Equal(t, int64(0), count(t, db, &models.Cart{}))
	assert.Equal(t, int64(0), count(t, db, &models.Subscription{}))
	assert.Equal(t, int64(1), count(t, db, &models.Ingredient{}), "ingredients are reference data")
}

func TestDeletingIngredientCascadesToValues(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "chef")
	recipe := createRecipe(t, db, author, "Bread")
	ingredient := &models.Ingredient{Name: "Yeast", MeasurementUnit: "g"}
	require.NoError(t, db.Create(ingredient).Error)
	require.NoError(t, db.Create(&models.IngredientValue{RecipeID: recipe.ID, IngredientID: ingredient.ID, Amount: 7}).Error)

	require.NoError(t, db.Delete(&models.Ingredient{}, ingredient.ID).Error)
	assert.Equal(t, int64(0), count(t, db, &models.IngredientValue{}))
	assert.Equal(t, int64(1), count(t, db, &models.Recipe{}))
}

func TestStringers(t *testing.T) {
	ingredient := models.Ingredient{Name: "Milk", MeasurementUnit: "ml"}
	assert.Equal(t, "Milk, ml", ingredient.String())

	value := models.IngredientValue{Ingredient: &ingredient, Amount: 200}
	assert.Equal(t, "Milk (ml) - 200", value.String())

	cart := models.Cart{User: &models.User{Username: "bob"}, Recipe: &models.Recipe{Name: "Latte"}}
	assert.Equal(t, `bob added "Latte" to the shopping cart`, cart.String())
}

func TestGrantExpiry(t *testing.T) {
	now := time.Now()

	code := &models.OAuthCode{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, code.Expired(now))
	assert.True(t, code.Expired(now.Add(2*time.Minute)))

	token := &models.OAuthToken{ExpiresAt: now.Add(-time.Second)}
	assert.True(t, token.Expired(now))
}

func TestIngredientNameFoldedOnSave(t *testing.T) {
	db := setupTestDB(t)

	ingredient := &models.Ingredient{Name: "Сахар Песок", MeasurementUnit: "г"}
	require.NoError(t, db.Create(ingredient).Error)
	assert.Equal(t, "сахар песок", ingredient.NameFolded)

	ingredient.Name = "ＭＩＬＫ"
	require.NoError(t, db.Save(ingredient).Error)
	assert.Equal(t, "milk", ingredient.NameFolded)
}
