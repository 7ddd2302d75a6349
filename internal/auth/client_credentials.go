package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oautherrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

// HandleToken handles the token endpoint for both client credentials and authorization code grants
// @Summary Token Endpoint
// @Description Obtain an access token using client credentials or authorization code grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials or authorization_code"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param code formData string false "Authorization code (required for authorization_code grant)"
// @Param redirect_uri formData string false "Redirect URI (required for authorization_code grant)"
// @Param code_verifier formData string false "PKCE code verifier"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	grantType := oauth2.GrantType(c.PostForm("grant_type"))

	switch grantType {
	case oauth2.ClientCredentials:
		o.handleClientCredentials(c)
	case oauth2.AuthorizationCode:
		o.handleAuthorizationCode(c)
	default:
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrUnsupportedGrantType,
			"Supported grant types: client_credentials, authorization_code"))
	}
}

func (o *OAuthService) handleAuthorizationCode(c *gin.Context) {
	client, ok := o.authenticateClient(c, oauth2.AuthorizationCode)
	if !ok {
		return
	}

	code := c.PostForm("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "code is required"))
		return
	}

	// The manager checks the code against the client and redirect URI,
	// verifies PKCE and deletes the code before issuing the token.
	ti, err := o.server.Manager.GenerateAccessToken(c.Request.Context(), oauth2.AuthorizationCode, &oauth2.TokenGenerateRequest{
		ClientID:     client.ID,
		ClientSecret: c.PostForm("client_secret"),
		RedirectURI:  c.PostForm("redirect_uri"),
		Code:         code,
		CodeVerifier: c.PostForm("code_verifier"),
		Request:      c.Request,
	})
	if err != nil {
		o.respondGrantError(c, client.ID, err)
		return
	}

	writeToken(c, oauth2.AuthorizationCode, ti)
}

func (o *OAuthService) handleClientCredentials(c *gin.Context) {
	client, ok := o.authenticateClient(c, oauth2.ClientCredentials)
	if !ok {
		return
	}

	ti, err := o.server.Manager.GenerateAccessToken(c.Request.Context(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     client.ID,
		ClientSecret: c.PostForm("client_secret"),
		Scope:        client.Scopes,
		Request:      c.Request,
	})
	if err != nil {
		o.respondGrantError(c, client.ID, err)
		return
	}

	writeToken(c, oauth2.ClientCredentials, ti)
}

// authenticateClient loads the client named in the form, checks its secret
// and that it may use grantType. It writes the error response itself.
func (o *OAuthService) authenticateClient(c *gin.Context, grantType oauth2.GrantType) (*models.OAuthClient, bool) {
	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")

	var client models.OAuthClient
	if err := o.db.WithContext(c.Request.Context()).Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidClient, "Unknown client"))
		return nil, false
	}

	if !client.VerifyPassword(clientSecret) {
		log.WithField("client_id", clientID).Warn("Client authentication failed")
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidClient, "Client authentication failed"))
		return nil, false
	}

	if !allowsGrant(&client, grantType) {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrUnauthorizedClient,
			"Client is not allowed to use grant type "+grantType.String()))
		return nil, false
	}

	return &client, true
}

func (o *OAuthService) respondGrantError(c *gin.Context, clientID string, err error) {
	if errors.Is(err, oautherrors.ErrInvalidClient) {
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidClient, "Client authentication failed"))
		return
	}

	log.WithFields(logrus.Fields{
		"client_id": clientID,
		"error":     err.Error(),
	}).Warn("Token request rejected")
	c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidGrant, "The provided grant is invalid or expired"))
}

// allowsGrant reports whether the client lists grantType. A client with no
// grant types recorded may use every grant.
func allowsGrant(client *models.OAuthClient, grantType oauth2.GrantType) bool {
	if strings.TrimSpace(client.GrantTypes) == "" {
		return true
	}
	for _, g := range strings.Fields(client.GrantTypes) {
		if g == grantType.String() {
			return true
		}
	}
	return false
}

func writeToken(c *gin.Context, grantType oauth2.GrantType, ti oauth2.TokenInfo) {
	metrics.RecordTokenIssued(grantType.String())

	response := gin.H{
		"access_token": ti.GetAccess(),
		"token_type":   "Bearer",
		"expires_in":   int64(ti.GetAccessExpiresIn() / time.Second),
		"scope":        ti.GetScope(),
	}
	if refresh := ti.GetRefresh(); refresh != "" {
		response["refresh_token"] = refresh
	}
	c.JSON(http.StatusOK, response)
}
