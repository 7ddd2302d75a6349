package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
)

// Context keys set by the authentication middleware.
const (
	UserIDKey    = "userID"
	UserRoleKey  = "userRole"
	ClientIDKey  = "clientID"
	ScopesKey    = "scopes"
	AuthTypeKey  = "auth_type"
	PrincipalKey = "principal"
)

// OAuth2Auth middleware that handles OAuth2 JWT access tokens
// This middleware validates JWT tokens and extracts user information from claims
// following RFC 6749 (OAuth2) and RFC 7519 (JWT) specifications
func OAuth2Auth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required",
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}
		authenticate(c, jwtSecret)
	}
}

// OptionalAuth authenticates the request when it carries a Bearer token and
// otherwise continues as the anonymous principal. A token that is present
// but invalid is still rejected.
func OptionalAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Set(PrincipalKey, permissions.Anonymous())
			c.Next()
			return
		}
		authenticate(c, jwtSecret)
	}
}

// PrincipalFrom returns the caller set by OAuth2Auth or OptionalAuth, or the
// anonymous principal when neither ran.
func PrincipalFrom(c *gin.Context) permissions.Principal {
	if value, ok := c.Get(PrincipalKey); ok {
		if principal, ok := value.(permissions.Principal); ok {
			return principal
		}
	}
	return permissions.Anonymous()
}

// authenticate resolves the Bearer token into the request identity. Errors
// follow RFC 6750.
func authenticate(c *gin.Context, jwtSecret []byte) {
	raw, errorCode, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		respondWithOAuth2Error(c, http.StatusUnauthorized, errorCode, err.Error())
		return
	}

	identity, err := decodeAccessToken(raw, jwtSecret)
	if err != nil {
		log.WithError(err).Debug("Rejected bearer token")
		respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrInvalidToken, err.Error())
		return
	}

	identity.apply(c)
	c.Next()
}

// respondWithOAuth2Error responds with RFC 6750 compliant error format
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.Header("WWW-Authenticate", fmt.Sprintf(`Bearer error=%q`, errorCode))
	c.AbortWithStatusJSON(status, models.NewOAuth2Error(errorCode, description))
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header together with the RFC 6750 error code to report when it is unusable.
func bearerToken(header string) (string, string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", models.ErrInvalidRequest, errors.New("authorization header must use Bearer scheme. Format: 'Bearer <token>'")
	}
	if raw = strings.TrimSpace(raw); raw == "" {
		return "", models.ErrInvalidToken, errors.New("bearer token is empty")
	}
	return raw, "", nil
}

// accessIdentity is what an access token says about its bearer.
type accessIdentity struct {
	UserID   uint
	Role     string
	ClientID string
	Scope    string
}

func (id accessIdentity) apply(c *gin.Context) {
	c.Set(UserIDKey, id.UserID)
	c.Set(UserRoleKey, id.Role)
	c.Set(PrincipalKey, permissions.Principal{UserID: id.UserID, IsStaff: id.Role == models.RoleAdmin})
	if id.Scope != "" {
		c.Set(ScopesKey, id.Scope)
	}

	// Tokens minted through an OAuth2 client carry it as audience.
	if id.ClientID != "" {
		c.Set(ClientIDKey, id.ClientID)
		c.Set(AuthTypeKey, "oauth2")
	} else {
		c.Set(AuthTypeKey, "jwt")
	}
}

// tokenParser accepts HMAC-signed tokens only. exp is mandatory; iat and nbf
// are checked when present.
var tokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}),
	jwt.WithExpirationRequired(),
	jwt.WithIssuedAt(),
)

// decodeAccessToken verifies raw and reads the identity claims. Refresh
// tokens carry no role and are rejected here.
func decodeAccessToken(raw string, jwtSecret []byte) (accessIdentity, error) {
	token, err := tokenParser.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return accessIdentity{}, fmt.Errorf("token parsing failed: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return accessIdentity{}, errors.New("invalid token claims format")
	}

	userID, err := claimUserID(claims)
	if err != nil {
		return accessIdentity{}, err
	}
	role, err := claimRole(claims)
	if err != nil {
		return accessIdentity{}, err
	}

	identity := accessIdentity{UserID: userID, Role: role}
	if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
		identity.ClientID = aud[0]
	}
	identity.Scope, _ = claims["scope"].(string)
	return identity, nil
}

// claimUserID reads the uid claim, issued as a decimal string. Numeric
// values are tolerated.
func claimUserID(claims jwt.MapClaims) (uint, error) {
	var id uint64
	switch uid := claims["uid"].(type) {
	case string:
		parsed, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %s", uid)
		}
		id = parsed
	case float64:
		if uid < 1 {
			return 0, fmt.Errorf("invalid uid claim: must be positive, got: %v", uid)
		}
		id = uint64(uid)
	case nil:
		return 0, errors.New("token missing required 'uid' claim. This token is not valid for this API")
	default:
		return 0, fmt.Errorf("invalid uid claim type %T", uid)
	}

	if id == 0 {
		return 0, errors.New("invalid user identifier: cannot be zero")
	}
	return uint(id), nil
}

// claimRole reads the role claim. It is required and must be a known role.
func claimRole(claims jwt.MapClaims) (string, error) {
	role, _ := claims["role"].(string)
	switch role {
	case models.RoleAdmin, models.RoleUser:
		return role, nil
	case "":
		return "", errors.New("token missing required 'role' claim. Tokens must explicitly specify user roles")
	default:
		return "", fmt.Errorf("invalid role '%s'. Allowed roles: %s, %s", role, models.RoleAdmin, models.RoleUser)
	}
}
