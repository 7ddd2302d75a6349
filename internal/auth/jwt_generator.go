package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

var errNoUser = errors.New("cannot generate token: no user ID available")

// accessClaims is the payload of every token this service signs. Refresh
// tokens leave Role empty so the middleware refuses them as access tokens.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   string `json:"role,omitempty"`
	Scope  string `json:"scope,omitempty"`
}

// TokenGenerator signs access tokens carrying the uid and role claims the
// auth middleware expects. It satisfies oauth2.AccessGenerate.
type TokenGenerator struct {
	key    []byte
	method jwt.SigningMethod
	db     *gorm.DB
}

func NewTokenGenerator(key []byte, method jwt.SigningMethod, db *gorm.DB) *TokenGenerator {
	return &TokenGenerator{key: key, method: method, db: db}
}

// Token is called by the OAuth2 manager for every grant. Client credentials
// grants have no user of their own and act as the user owning the client.
func (g *TokenGenerator) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}
	if userID == "" {
		return "", "", errNoUser
	}

	// Looked up on every issuance so a demoted account cannot mint staff tokens.
	role, err := g.roleOf(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch user role: %w", err)
	}

	info := data.TokenInfo
	access, err := g.sign(accessClaims{
		RegisteredClaims: registered(info.GetAccessCreateAt(), info.GetAccessExpiresIn(), data.Client.GetID()),
		UserID:           userID,
		Role:             role,
		Scope:            info.GetScope(),
	})
	if err != nil {
		return "", "", err
	}
	if !isGenRefresh {
		return access, "", nil
	}

	refresh, err := g.sign(accessClaims{
		RegisteredClaims: registered(info.GetRefreshCreateAt(), info.GetRefreshExpiresIn(), ""),
		UserID:           userID,
	})
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// UserToken signs an access token for a user who logged in with a password
// rather than through an OAuth2 grant.
func (g *TokenGenerator) UserToken(user *models.User, issuedAt time.Time, ttl time.Duration) (string, error) {
	if user == nil || user.ID == 0 {
		return "", errNoUser
	}
	return g.sign(accessClaims{
		RegisteredClaims: registered(issuedAt, ttl, ""),
		UserID:           strconv.FormatUint(uint64(user.ID), 10),
		Role:             user.Role(),
	})
}

func registered(issuedAt time.Time, ttl time.Duration, audience string) jwt.RegisteredClaims {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return claims
}

func (g *TokenGenerator) sign(claims accessClaims) (string, error) {
	return jwt.NewWithClaims(g.method, claims).SignedString(g.key)
}

func (g *TokenGenerator) roleOf(ctx context.Context, rawID string) (string, error) {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		return "", fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	err = g.db.WithContext(ctx).Select("id", "is_staff").First(&user, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", fmt.Errorf("user with ID %d not found", id)
	case err != nil:
		return "", fmt.Errorf("database error: %w", err)
	}
	return user.Role(), nil
}
