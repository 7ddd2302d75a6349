package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
)

// TagController handles HTTP requests related to tags
type TagController interface {
	// ListTags retrieves all tags
	ListTags(c *gin.Context)
	// GetTag retrieves a tag by its ID
	GetTag(c *gin.Context)
	// CreateTag creates a new tag
	CreateTag(c *gin.Context)
	// UpdateTag updates an existing tag
	UpdateTag(c *gin.Context)
	// DeleteTag deletes a tag by its ID
	DeleteTag(c *gin.Context)
}

// TagRequest is the writable part of a tag. Color defaults to red.
type TagRequest struct {
	Name  string `json:"name" binding:"required,max=64"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

type tagController struct {
	service services.TagService
}

func NewTagController(service services.TagService) TagController {
	return &tagController{service: service}
}

// ListTags godoc
// @Summary Get all tags
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /api/v1/tags [get]
func (tc *tagController) ListTags(c *gin.Context) {
	tags, err := tc.service.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTag godoc
// @Summary Get tag by ID
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} models.APIError
// @Router /api/v1/tags/{id} [get]
func (tc *tagController) GetTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	tag, err := tc.service.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// CreateTag godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param tag body TagRequest true "Tag"
// @Success 201 {object} models.Tag
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tags [post]
func (tc *tagController) CreateTag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tag := &models.Tag{Name: req.Name, Color: req.Color}
	if err := tc.service.CreateTag(c.Request.Context(), tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// UpdateTag godoc
// @Summary Update a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Param tag body TagRequest true "Tag"
// @Success 200 {object} models.Tag
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tags/{id} [patch]
func (tc *tagController) UpdateTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tag, err := tc.service.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	tag.Name = req.Name
	if req.Color != "" {
		tag.Color = req.Color
	}
	if err := tc.service.UpdateTag(c.Request.Context(), tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag godoc
// @Summary Delete a tag
// @Tags tags
// @Param id path int true "Tag ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tags/{id} [delete]
func (tc *tagController) DeleteTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := tc.service.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
