package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
)

func TestFavoriteService(t *testing.T) {
	f, ctx := newRecipeFixture(t)
	svc := NewFavoriteService(f.db)
	reader := principalOf(f.other)

	recipe, err := f.svc.CreateRecipe(ctx(), principalOf(f.author), recipeInput("Soup", nil, IngredientAmount{f.flour.ID, 1}))
	require.NoError(t, err)

	got, err := svc.AddFavorite(ctx(), reader, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, got.ID)

	_, err = svc.AddFavorite(ctx(), reader, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.AddFavorite(ctx(), reader, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddFavorite(ctx(), permissions.Anonymous(), recipe.ID)
	assert.ErrorIs(t, err, permissions.ErrNotAuthenticated)

	// another user may favorite the same recipe
	_, err = svc.AddFavorite(ctx(), principalOf(f.author), recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count(t, f.db, &models.Favorite{}))

	require.NoError(t, svc.RemoveFavorite(ctx(), reader, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFavorite(ctx(), reader, recipe.ID), ErrNotFound)
	assert.Equal(t, int64(1), count(t, f.db, &models.Favorite{}))
}

func TestCartService_ShoppingList(t *testing.T) {
	f, ctx := newRecipeFixture(t)
	svc := NewCartService(f.db)
	author := principalOf(f.author)
	reader := principalOf(f.other)

	pancakes, err := f.svc.CreateRecipe(ctx(), author, recipeInput("Pancakes", nil,
		IngredientAmount{f.flour.ID, 200}, IngredientAmount{f.milk.ID, 300}))
	require.NoError(t, err)
	bread, err := f.svc.CreateRecipe(ctx(), author, recipeInput("Bread", nil,
		IngredientAmount{f.flour.ID, 500}))
	require.NoError(t, err)
	sauce, err := f.svc.CreateRecipe(ctx(), author, recipeInput("Sauce", nil,
		IngredientAmount{f.milk.ID, 1000}))
	require.NoError(t, err)

	for _, r := range []*models.Recipe{pancakes, bread} {
		_, err := svc.AddToCart(ctx(), reader, r.ID)
		require.NoError(t, err)
	}
	_, err = svc.AddToCart(ctx(), author, sauce.ID)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx(), reader, bread.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	items, err := svc.ShoppingList(ctx(), reader)
	require.NoError(t, err)
	assert.Equal(t, []ShoppingItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 700},
		{Name: "milk", MeasurementUnit: "ml", Amount: 300},
	}, items)

	text := RenderShoppingList(items)
	assert.Contains(t, text, "1. flour (g): 700\n")
	assert.Contains(t, text, "2. milk (ml): 300\n")

	require.NoError(t, svc.RemoveFromCart(ctx(), reader, pancakes.ID))
	items, err = svc.ShoppingList(ctx(), reader)
	require.NoError(t, err)
	assert.Equal(t, []ShoppingItem{{Name: "flour", MeasurementUnit: "g", Amount: 500}}, items)

	_, err = svc.ShoppingList(ctx(), permissions.Anonymous())
	assert.ErrorIs(t, err, permissions.ErrNotAuthenticated)
}

func TestRenderShoppingList_Empty(t *testing.T) {
	assert.Contains(t, RenderShoppingList(nil), "empty")
}
