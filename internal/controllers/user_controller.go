package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/pagination"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
)

// RecipesLimitQueryParam caps the recipes embedded in each subscription.
const RecipesLimitQueryParam = "recipes_limit"

// UserController handles HTTP requests related to accounts and subscriptions
type UserController interface {
	// ListUsers returns a page of accounts
	ListUsers(c *gin.Context)
	// Me returns the caller's account
	Me(c *gin.Context)
	// GetUser returns one account
	GetUser(c *gin.Context)
	// Subscriptions returns the authors the caller follows
	Subscriptions(c *gin.Context)
	// Subscribe follows an author
	Subscribe(c *gin.Context)
	// Unsubscribe stops following an author
	Unsubscribe(c *gin.Context)
}

type userController struct {
	users         services.UserService
	subscriptions services.SubscriptionService
	recipes       services.RecipeService
	serializer    serializer
}

func NewUserController(users services.UserService, subscriptions services.SubscriptionService, recipes services.RecipeService, store storage.Storage) UserController {
	return &userController{
		users:         users,
		subscriptions: subscriptions,
		recipes:       recipes,
		serializer:    serializer{storage: store},
	}
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} pagination.Page[UserResponse]
// @Failure 404 {object} models.APIError
// @Router /api/v1/users [get]
func (uc *userController) ListUsers(c *gin.Context) {
	p, ok := parsePage(c)
	if !ok {
		return
	}

	users, count, p, err := uc.users.ListUsers(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed, err := uc.subscribedTo(c, users)
	if err != nil {
		respondError(c, err)
		return
	}

	page := pagination.NewPage(users, count, p, pagination.AbsoluteURL(c.Request))
	c.JSON(http.StatusOK, pagination.Map(page, func(u models.User) UserResponse {
		return uc.serializer.user(&u, subscribed[u.ID])
	}))
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/me [get]
func (uc *userController) Me(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	user, err := uc.users.GetUserByID(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, uc.serializer.user(user, false))
}

// GetUser godoc
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} models.APIError
// @Router /api/v1/users/{id} [get]
func (uc *userController) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := uc.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed, err := uc.subscribedTo(c, []models.User{*user})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, uc.serializer.user(user, subscribed[user.ID]))
}

// Subscriptions godoc
// @Summary List subscriptions
// @Description Authors followed by the caller, each with a preview of their recipes
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} pagination.Page[SubscriptionResponse]
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/subscriptions [get]
func (uc *userController) Subscriptions(c *gin.Context) {
	p, ok := parsePage(c)
	if !ok {
		return
	}

	authors, count, p, err := uc.subscriptions.ListSubscriptions(c.Request.Context(), middleware.PrincipalFrom(c), p)
	if err != nil {
		respondError(c, err)
		return
	}

	limit := recipesLimit(c)
	results := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		recipes, total, err := uc.recipes.ListAuthorRecipes(c.Request.Context(), authors[i].ID, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, uc.serializer.subscription(&authors[i], recipes, total))
	}

	c.JSON(http.StatusOK, pagination.NewPage(results, count, p, pagination.AbsoluteURL(c.Request)))
}

// Subscribe godoc
// @Summary Subscribe to an author
// @Tags users
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes in the response"
// @Success 201 {object} SubscriptionResponse
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id}/subscribe [post]
func (uc *userController) Subscribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	author, err := uc.subscriptions.Subscribe(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	recipes, total, err := uc.recipes.ListAuthorRecipes(c.Request.Context(), author.ID, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uc.serializer.subscription(author, recipes, total))
}

// Unsubscribe godoc
// @Summary Unsubscribe from an author
// @Tags users
// @Param id path int true "Author ID"
// @Success 204
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id}/subscribe [delete]
func (uc *userController) Unsubscribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := uc.subscriptions.Unsubscribe(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (uc *userController) subscribedTo(c *gin.Context, users []models.User) (map[uint]bool, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return uc.subscriptions.SubscribedTo(c.Request.Context(), middleware.PrincipalFrom(c).UserID, ids)
}

// recipesLimit reads recipes_limit; missing or invalid means no limit.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query(RecipesLimitQueryParam))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
