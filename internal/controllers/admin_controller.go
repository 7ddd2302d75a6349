package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/foodgram-api/internal/admin"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/pagination"
)

// AdminController exposes the staff-only admin site.
type AdminController struct {
	site *admin.Site
}

func NewAdminController(site *admin.Site) *AdminController {
	return &AdminController{site: site}
}

// ReplaceIngredientsRequest carries the inline ingredient rows of a recipe.
type ReplaceIngredientsRequest struct {
	Ingredients []admin.IngredientRow `json:"ingredients" binding:"dive"`
}

// Registry godoc
// @Summary Admin registry
// @Description Registered models with their list columns, filters, read-only fields and inlines
// @Tags admin
// @Produce json
// @Success 200 {array} admin.ModelAdmin
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin [get]
func (ac *AdminController) Registry(c *gin.Context) {
	c.JSON(http.StatusOK, admin.Registry())
}

// ListRows godoc
// @Summary Admin change list
// @Description Rows of a registered model. Query parameters named after a list filter narrow the rows.
// @Tags admin
// @Produce json
// @Param model path string true "Model name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} pagination.Page[map[string]interface{}]
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/models/{model} [get]
func (ac *AdminController) ListRows(c *gin.Context) {
	p, ok := parsePage(c)
	if !ok {
		return
	}

	rows, count, p, err := ac.site.List(c.Request.Context(), c.Param("model"), c.Request.URL.Query(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(rows, count, p, pagination.AbsoluteURL(c.Request)))
}

// DeleteRow godoc
// @Summary Admin delete
// @Description Delete a row of a registered model together with its dependents
// @Tags admin
// @Param model path string true "Model name"
// @Param id path int true "Row ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/models/{model}/{id} [delete]
func (ac *AdminController) DeleteRow(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	model := c.Param("model")
	if err := ac.site.Delete(c.Request.Context(), model, id); err != nil {
		respondError(c, err)
		return
	}

	log.WithFields(logrus.Fields{
		"model":    model,
		"id":       id,
		"staff_id": middleware.PrincipalFrom(c).UserID,
	}).Info("Admin deleted row")
	c.Status(http.StatusNoContent)
}

// RecipeForm godoc
// @Summary Admin recipe form
// @Description Recipe with inline ingredients and the read-only favorites count
// @Tags admin
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} admin.RecipeChange
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/recipes/{id} [get]
func (ac *AdminController) RecipeForm(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	change, err := ac.site.Recipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}

// ReplaceRecipeIngredients godoc
// @Summary Admin recipe inlines
// @Description Replace the ingredient rows of a recipe; at least one row is required
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param rows body ReplaceIngredientsRequest true "Ingredient rows"
// @Success 200 {object} admin.RecipeChange
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/recipes/{id}/ingredients [put]
func (ac *AdminController) ReplaceRecipeIngredients(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReplaceIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ac.site.ReplaceRecipeIngredients(c.Request.Context(), id, req.Ingredients); err != nil {
		respondError(c, err)
		return
	}
	ac.RecipeForm(c)
}
