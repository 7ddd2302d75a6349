package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

func names(ingredients []models.Ingredient) []string {
	out := make([]string, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, i.Name)
	}
	return out
}

func TestIngredientService_ListIngredients(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIngredientService(db)
	ctx := context.Background()

	createIngredient(t, db, "sugar", "g")
	createIngredient(t, db, "Salt", "g")
	createIngredient(t, db, "sugar syrup", "ml")
	createIngredient(t, db, "100% juice", "ml")
	createIngredient(t, db, "butter", "g")

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	sugar, err := svc.ListIngredients(ctx, "SUG")
	require.NoError(t, err)
	assert.Equal(t, []string{"sugar", "sugar syrup"}, names(sugar))

	s, err := svc.ListIngredients(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"Salt", "sugar", "sugar syrup"}, names(s))

	// wildcards in the query match literally
	percent, err := svc.ListIngredients(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, percent)

	juice, err := svc.ListIngredients(ctx, "100%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% juice"}, names(juice))
}

func TestIngredientService_ListIngredientsFoldsUnicode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIngredientService(db)
	ctx := context.Background()

	createIngredient(t, db, "Молоко", "мл")
	createIngredient(t, db, "Milk", "ml")
	createIngredient(t, db, "Мука", "г")

	for _, query := range []string{"Мол", "мол", "МОЛОКО"} {
		found, err := svc.ListIngredients(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, []string{"Молоко"}, names(found), "query %q", query)
	}

	m, err := svc.ListIngredients(ctx, "м")
	require.NoError(t, err)
	assert.Equal(t, []string{"Молоко", "Мука"}, names(m))

	latin, err := svc.ListIngredients(ctx, "mil")
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk"}, names(latin))
}

func TestIngredientService_CRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIngredientService(db)
	ctx := context.Background()

	ingredient := &models.Ingredient{Name: "Brown Sugar", MeasurementUnit: "g"}
	require.NoError(t, svc.CreateIngredient(ctx, ingredient))
	assert.Equal(t, "brown-sugar", ingredient.Slug)

	got, err := svc.GetIngredient(ctx, ingredient.ID)
	require.NoError(t, err)
	got.Name = "Cane Sugar"
	require.NoError(t, svc.UpdateIngredient(ctx, got))

	got, err = svc.GetIngredient(ctx, ingredient.ID)
	require.NoError(t, err)
	assert.Equal(t, "cane-sugar", got.Slug)

	require.NoError(t, svc.DeleteIngredient(ctx, ingredient.ID))
	_, err = svc.GetIngredient(ctx, ingredient.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteIngredient(ctx, ingredient.ID), ErrNotFound)
}

func TestTagService(t *testing.T) {
	db := setupTestDB(t)
	tags := NewTagService(db)
	recipes := NewRecipeService(db, newMemoryStorage())
	ctx := context.Background()

	author := createUser(t, db, "author", false)
	flour := createIngredient(t, db, "flour", "g")

	breakfast := &models.Tag{Name: "Breakfast", Color: "#00FF00"}
	require.NoError(t, tags.CreateTag(ctx, breakfast))
	dinner := &models.Tag{Name: "Dinner"}
	require.NoError(t, tags.CreateTag(ctx, dinner))
	assert.Equal(t, models.DefaultTagColor, dinner.Color)

	list, err := tags.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Breakfast", list[0].Name)

	recipe, err := recipes.CreateRecipe(ctx, principalOf(author),
		recipeInput("Pancakes", []uint{breakfast.ID, dinner.ID}, IngredientAmount{flour.ID, 200}))
	require.NoError(t, err)
	require.Len(t, recipe.Tags, 2)

	require.NoError(t, tags.DeleteTag(ctx, breakfast.ID))

	reloaded, err := recipes.GetRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Tags, 1)
	assert.Equal(t, dinner.ID, reloaded.Tags[0].ID)

	_, err = tags.GetTag(ctx, breakfast.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, tags.DeleteTag(ctx, breakfast.ID), ErrNotFound)

	dinner.Color = "red"
	assert.Error(t, tags.UpdateTag(ctx, dinner))
}
