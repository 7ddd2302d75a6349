package controllers

import (
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RecipeIngredientResponse is one ingredient line of a recipe.
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse is the compact recipe used by favorites, carts and
// subscriptions.
type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse is a followed author with a preview of their recipes.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

type serializer struct {
	storage storage.Storage
}

func (s serializer) user(u *models.User, subscribed bool) UserResponse {
	if u == nil {
		return UserResponse{}
	}
	return UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func (s serializer) image(key string) string {
	if key == "" {
		return ""
	}
	return s.storage.URL(key)
}

func (s serializer) recipe(r *models.Recipe, flags services.RecipeFlags, subscribed map[uint]bool) RecipeResponse {
	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	ingredients := make([]RecipeIngredientResponse, 0, len(r.IngredientValues))
	for _, v := range r.IngredientValues {
		line := RecipeIngredientResponse{ID: v.IngredientID, Amount: v.Amount}
		if v.Ingredient != nil {
			line.Name = v.Ingredient.Name
			line.MeasurementUnit = v.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, line)
	}
	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           s.user(r.Author, subscribed[r.AuthorID]),
		Ingredients:      ingredients,
		IsFavorited:      flags.Favorited[r.ID],
		IsInShoppingCart: flags.InCart[r.ID],
		Name:             r.Name,
		Image:            s.image(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func (s serializer) shortRecipe(r *models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       s.image(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (s serializer) subscription(author *models.User, recipes []models.Recipe, total int64) SubscriptionResponse {
	short := make([]ShortRecipeResponse, 0, len(recipes))
	for i := range recipes {
		short = append(short, s.shortRecipe(&recipes[i]))
	}
	return SubscriptionResponse{
		UserResponse: s.user(author, true),
		Recipes:      short,
		RecipesCount: total,
	}
}
