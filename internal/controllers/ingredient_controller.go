package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
)

// IngredientController handles HTTP requests related to ingredients
type IngredientController interface {
	// ListIngredients retrieves ingredients, optionally by name prefix
	ListIngredients(c *gin.Context)
	// GetIngredient retrieves an ingredient by its ID
	GetIngredient(c *gin.Context)
	// CreateIngredient creates a new ingredient
	CreateIngredient(c *gin.Context)
	// UpdateIngredient updates an existing ingredient
	UpdateIngredient(c *gin.Context)
	// DeleteIngredient deletes an ingredient by its ID
	DeleteIngredient(c *gin.Context)
}

type IngredientRequest struct {
	Name            string `json:"name" binding:"required,max=64"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=64"`
}

type ingredientController struct {
	service services.IngredientService
}

func NewIngredientController(service services.IngredientService) IngredientController {
	return &ingredientController{service: service}
}

// ListIngredients godoc
// @Summary Get all ingredients
// @Description Get ingredients with optional name prefix filtering
// @Tags ingredients
// @Produce json
// @Param name query string false "Name prefix (case-insensitive)"
// @Success 200 {array} models.Ingredient
// @Router /api/v1/ingredients [get]
func (ic *ingredientController) ListIngredients(c *gin.Context) {
	ingredients, err := ic.service.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// GetIngredient godoc
// @Summary Get ingredient by ID
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.APIError
// @Router /api/v1/ingredients/{id} [get]
func (ic *ingredientController) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ingredient, err := ic.service.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

// CreateIngredient godoc
// @Summary Create an ingredient
// @Tags ingredients
// @Accept json
// @Produce json
// @Param ingredient body IngredientRequest true "Ingredient"
// @Success 201 {object} models.Ingredient
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/ingredients [post]
func (ic *ingredientController) CreateIngredient(c *gin.Context) {
	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ingredient := &models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := ic.service.CreateIngredient(c.Request.Context(), ingredient); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

// UpdateIngredient godoc
// @Summary Update an ingredient
// @Tags ingredients
// @Accept json
// @Produce json
// @Param id path int true "Ingredient ID"
// @Param ingredient body IngredientRequest true "Ingredient"
// @Success 200 {object} models.Ingredient
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/ingredients/{id} [patch]
func (ic *ingredientController) UpdateIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ingredient, err := ic.service.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ingredient.Name = req.Name
	ingredient.MeasurementUnit = req.MeasurementUnit
	if err := ic.service.UpdateIngredient(c.Request.Context(), ingredient); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

// DeleteIngredient godoc
// @Summary Delete an ingredient
// @Tags ingredients
// @Param id path int true "Ingredient ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/ingredients/{id} [delete]
func (ic *ingredientController) DeleteIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ic.service.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
