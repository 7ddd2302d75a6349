package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
)

// TokenIssuer signs access tokens for accounts that logged in with a password.
type TokenIssuer interface {
	IssueUserToken(user *models.User) (string, time.Duration, error)
}

type AuthController struct {
	userService services.UserService
	tokens      TokenIssuer
}

func NewAuthController(userService services.UserService, tokens TokenIssuer) *AuthController {
	return &AuthController{
		userService: userService,
		tokens:      tokens,
	}
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,name_chars"`
	FirstName string `json:"first_name" binding:"required,max=150,name_chars"`
	LastName  string `json:"last_name" binding:"required,max=150,name_chars"`
	Password  string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the email/password login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest changes the caller's password.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// Register godoc
// @Summary Register a user
// @Description Create a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Account details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/v1/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}

	if err := user.HashPassword(); err != nil {
		respondError(c, err)
		return
	}

	if err := ac.userService.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	log.WithField("user_id", user.ID).Info("User registered")
	c.JSON(http.StatusCreated, serializer{}.user(user, false))
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a Bearer access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 429 {object} models.APIError
// @Router /api/v1/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.userService.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		log.WithField("email", req.Email).Warn("Login failed")
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Unable to log in with provided credentials."))
		return
	}

	token, ttl, err := ac.tokens.IssueUserToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordTokenIssued("password")

	log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role(),
	}).Info("User logged in")
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int64(ttl.Seconds()),
		"user":         serializer{}.user(user, false),
	})
}

// SetPassword godoc
// @Summary Change password
// @Description Replace the caller's password after checking the current one
// @Tags users
// @Accept json
// @Param passwords body SetPasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/set_password [post]
func (ac *AuthController) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	principal := middleware.PrincipalFrom(c)
	if err := ac.userService.ChangePassword(c.Request.Context(), principal, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
