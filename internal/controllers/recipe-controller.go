package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/pagination"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
)

const shoppingListFilename = "shopping_list.txt"

// RecipeController handles HTTP requests related to recipes
type RecipeController interface {
	// ListRecipes retrieves a page of recipes with optional filtering
	ListRecipes(c *gin.Context)
	// GetRecipe retrieves a recipe by its ID
	GetRecipe(c *gin.Context)
	// CreateRecipe creates a new recipe authored by the caller
	CreateRecipe(c *gin.Context)
	// UpdateRecipe replaces an existing recipe
	UpdateRecipe(c *gin.Context)
	// DeleteRecipe deletes a recipe by its ID
	DeleteRecipe(c *gin.Context)
	// AddFavorite marks a recipe as favorite
	AddFavorite(c *gin.Context)
	// RemoveFavorite unmarks a favorite recipe
	RemoveFavorite(c *gin.Context)
	// AddToCart puts a recipe in the shopping cart
	AddToCart(c *gin.Context)
	// RemoveFromCart takes a recipe out of the shopping cart
	RemoveFromCart(c *gin.Context)
	// DownloadShoppingCart renders the shopping list as plain text
	DownloadShoppingCart(c *gin.Context)
}

// RecipeIngredientRequest is one ingredient line of a recipe payload.
type RecipeIngredientRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required,min=1,max=10000"`
}

// RecipeRequest is the recipe payload. Image is a base64 data URI; it is
// required on create and optional on update.
type RecipeRequest struct {
	Ingredients []RecipeIngredientRequest `json:"ingredients" binding:"required,min=1,dive"`
	Tags        []uint                    `json:"tags" binding:"required,min=1"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" binding:"required,max=128"`
	Text        string                    `json:"text" binding:"required,max=8196"`
	CookingTime int                       `json:"cooking_time" binding:"required,min=1,max=6000"`
}

func (r RecipeRequest) input() services.RecipeInput {
	in := services.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Image:       r.Image,
		TagIDs:      r.Tags,
		Ingredients: make([]services.IngredientAmount, 0, len(r.Ingredients)),
	}
	for _, item := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, services.IngredientAmount{IngredientID: item.ID, Amount: item.Amount})
	}
	return in
}

type recipeController struct {
	recipes       services.RecipeService
	favorites     services.FavoriteService
	carts         services.CartService
	subscriptions services.SubscriptionService
	serializer    serializer
}

func NewRecipeController(recipes services.RecipeService, favorites services.FavoriteService, carts services.CartService, subscriptions services.SubscriptionService, store storage.Storage) RecipeController {
	return &recipeController{
		recipes:       recipes,
		favorites:     favorites,
		carts:         carts,
		subscriptions: subscriptions,
		serializer:    serializer{storage: store},
	}
}

// ListRecipes godoc
// @Summary Get recipes
// @Description Get a page of recipes, newest first
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs (any of)" collectionFormat(multi)
// @Param is_favorited query int false "1 to keep favorites, 0 to exclude them"
// @Param is_in_shopping_cart query int false "1 to keep cart recipes, 0 to exclude them"
// @Success 200 {object} pagination.Page[RecipeResponse]
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes [get]
func (rc *recipeController) ListRecipes(c *gin.Context) {
	p, ok := parsePage(c)
	if !ok {
		return
	}

	filter := services.RecipeFilter{
		Tags:             c.QueryArray("tags"),
		IsFavorited:      boolQuery(c, "is_favorited"),
		IsInShoppingCart: boolQuery(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid author format"))
			return
		}
		filter.AuthorID = uint(author)
	}

	principal := middleware.PrincipalFrom(c)
	recipes, count, p, err := rc.recipes.ListRecipes(c.Request.Context(), principal, filter, p)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := rc.render(c, principal, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(responses, count, p, pagination.AbsoluteURL(c.Request)))
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeResponse
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [get]
func (rc *recipeController) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := rc.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusOK, recipe)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body RecipeRequest true "Recipe"
// @Success 201 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes [post]
func (rc *recipeController) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := rc.recipes.CreateRecipe(c.Request.Context(), middleware.PrincipalFrom(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordRecipePublished()
	rc.respondRecipe(c, http.StatusCreated, recipe)
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Only the author may update a recipe. Tags and ingredients are replaced; an empty image keeps the current one.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body RecipeRequest true "Recipe"
// @Success 200 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [patch]
func (rc *recipeController) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := rc.recipes.UpdateRecipe(c.Request.Context(), middleware.PrincipalFrom(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [delete]
func (rc *recipeController) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := rc.recipes.DeleteRecipe(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id}/favorite [post]
func (rc *recipeController) AddFavorite(c *gin.Context) {
	rc.addLink(c, rc.favorites.AddFavorite)
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id}/favorite [delete]
func (rc *recipeController) RemoveFavorite(c *gin.Context) {
	rc.removeLink(c, rc.favorites.RemoveFavorite)
}

// AddToCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id}/shopping_cart [post]
func (rc *recipeController) AddToCart(c *gin.Context) {
	rc.addLink(c, rc.carts.AddToCart)
}

// RemoveFromCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id}/shopping_cart [delete]
func (rc *recipeController) RemoveFromCart(c *gin.Context) {
	rc.removeLink(c, rc.carts.RemoveFromCart)
}

// DownloadShoppingCart godoc
// @Summary Download the shopping list
// @Description Ingredient amounts summed over every recipe in the cart
// @Tags recipes
// @Produce plain
// @Success 200 {string} string
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/download_shopping_cart [get]
func (rc *recipeController) DownloadShoppingCart(c *gin.Context) {
	items, err := rc.carts.ShoppingList(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordShoppingListDownload()

	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(services.RenderShoppingList(items)))
}

type linkFunc func(ctx context.Context, principal permissions.Principal, recipeID uint) (*models.Recipe, error)

type unlinkFunc func(ctx context.Context, principal permissions.Principal, recipeID uint) error

func (rc *recipeController) addLink(c *gin.Context, add linkFunc) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := add(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rc.serializer.shortRecipe(recipe))
}

func (rc *recipeController) removeLink(c *gin.Context, remove unlinkFunc) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *recipeController) respondRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	responses, err := rc.render(c, middleware.PrincipalFrom(c), []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, responses[0])
}

// render serializes recipes with the caller's favorite, cart and
// subscription flags.
func (rc *recipeController) render(c *gin.Context, principal permissions.Principal, recipes []models.Recipe) ([]RecipeResponse, error) {
	ids := make([]uint, 0, len(recipes))
	authors := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
		authors = append(authors, r.AuthorID)
	}

	flags, err := rc.recipes.Flags(c.Request.Context(), principal.UserID, ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := rc.subscriptions.SubscribedTo(c.Request.Context(), principal.UserID, authors)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, rc.serializer.recipe(&recipes[i], flags, subscribed))
	}
	return out, nil
}

// boolQuery reads a 0/1 (or true/false) filter; anything else means unset.
func boolQuery(c *gin.Context, name string) *bool {
	v, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return nil
	}
	return &v
}
