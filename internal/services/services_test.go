package services

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
)

var pngImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Save(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) URL(key string) string {
	return "/media/" + key
}

func (m *memoryStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *memoryStorage) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	return db
}

// countTagLinks counts rows of the recipe/tag join table.
func countTagLinks(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Table("recipe_tags").Count(&n).Error)
	return n
}

func createUser(t *testing.T, db *gorm.DB, name string, staff bool) *models.User {
	user := &models.User{
		Email:     name + "@example.com",
		Username:  name,
		FirstName: "First",
		LastName:  "Last",
		Password:  "secret",
		IsStaff:   staff,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(user).Error)
	return user
}

func principalOf(u *models.User) permissions.Principal {
	return permissions.Principal{UserID: u.ID, IsStaff: u.IsStaff}
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

func createTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	tag := &models.Tag{Name: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func recipeInput(name string, tags []uint, ingredients ...IngredientAmount) RecipeInput {
	return RecipeInput{
		Name:        name,
		Text:        "Mix everything and bake.",
		CookingTime: 30,
		Image:       pngImage,
		TagIDs:      tags,
		Ingredients: ingredients,
	}
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
