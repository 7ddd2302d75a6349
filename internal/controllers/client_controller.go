package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
)

var supportedGrantTypes = map[string]bool{
	"client_credentials": true,
	"authorization_code": true,
}

type ClientController struct {
	clients services.ClientService
}

func NewClientController(clients services.ClientService) *ClientController {
	return &ClientController{clients: clients}
}

// ClientRequest registers an OAuth2 client. Scopes and grant types are
// space-separated lists; grant types default to client_credentials.
type ClientRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Domain      string `json:"domain" binding:"omitempty,url"`
	Scopes      string `json:"scopes"`
	GrantTypes  string `json:"grant_types"`
	RedirectURI string `json:"redirect_uri" binding:"omitempty,url"`
}

// grantTypes normalizes the requested grant types.
func (r ClientRequest) grantTypes() (string, error) {
	fields := strings.Fields(r.GrantTypes)
	if len(fields) == 0 {
		return "client_credentials", nil
	}
	for _, grant := range fields {
		if !supportedGrantTypes[grant] {
			return "", validation.NewError("grant_types", "oneof", "Unsupported grant type \""+grant+"\".")
		}
	}
	return strings.Join(fields, " "), nil
}

// ClientCredentials is returned once, when the client is created. The
// secret is stored hashed and cannot be recovered later.
type ClientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	Scopes       string `json:"scopes"`
	GrantTypes   string `json:"grant_types"`
	RedirectURI  string `json:"redirect_uri"`
}

// CreateClient godoc
// @Summary Register an OAuth2 client
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body ClientRequest true "Client details"
// @Success 201 {object} ClientCredentials
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	grants, err := req.grantTypes()
	if err != nil {
		respondError(c, err)
		return
	}

	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	owner := middleware.PrincipalFrom(c).UserID
	client := &models.OAuthClient{
		ID:          uuid.NewString(),
		Secret:      string(hash),
		Name:        req.Name,
		Domain:      req.Domain,
		UserID:      owner,
		Scopes:      req.Scopes,
		GrantTypes:  grants,
		RedirectURI: req.RedirectURI,
	}
	if err := cc.clients.CreateClient(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}

	log.WithField("client_id", client.ID).WithField("user_id", owner).Info("OAuth2 client registered")
	c.JSON(http.StatusCreated, ClientCredentials{
		ClientID:     client.ID,
		ClientSecret: secret,
		Name:         client.Name,
		Domain:       client.Domain,
		Scopes:       client.Scopes,
		GrantTypes:   client.GrantTypes,
		RedirectURI:  client.RedirectURI,
	})
}

// ListClients godoc
// @Summary List the caller's OAuth2 clients
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} models.OAuthClient
// @Security BearerAuth
// @Router /api/v1/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clients.GetClientsByUserID(c.Request.Context(), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// DeleteClient godoc
// @Summary Delete one of the caller's OAuth2 clients
// @Tags OAuth2 Clients
// @Param id path string true "Client ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	err := cc.clients.DeleteClient(c.Request.Context(), c.Param("id"), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
