package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

func TestTagService_DeleteTagUnlinksRecipes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	tags := NewTagService(db)
	recipes := NewRecipeService(db, newMemoryStorage())

	author := createUser(t, db, "author", false)
	breakfast := createTag(t, db, "Breakfast")
	dinner := createTag(t, db, "Dinner")
	eggs := createIngredient(t, db, "eggs", "pcs")

	recipe, err := recipes.CreateRecipe(ctx, principalOf(author),
		recipeInput("Omelette", []uint{breakfast.ID, dinner.ID}, IngredientAmount{eggs.ID, 3}))
	require.NoError(t, err)
	require.Equal(t, int64(2), countTagLinks(t, db))

	require.NoError(t, tags.DeleteTag(ctx, breakfast.ID))
	assert.ErrorIs(t, tags.DeleteTag(ctx, breakfast.ID), ErrNotFound)

	assert.Equal(t, int64(1), countTagLinks(t, db))
	got, err := recipes.GetRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Dinner", got.Tags[0].Name)
	assert.Equal(t, int64(1), count(t, db, &models.Recipe{}))
}
