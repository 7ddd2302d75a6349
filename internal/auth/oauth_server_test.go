package auth

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	oauthmodels "github.com/go-oauth2/oauth2/v4/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

const testSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, staff bool) *models.User {
	user := &models.User{
		Email:     name + "@example.com",
		Username:  name,
		FirstName: "Test",
		LastName:  "User",
		Password:  "password",
		IsStaff:   staff,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(user).Error)
	return user
}

func createClient(t *testing.T, db *gorm.DB, id, secret string, userID uint, grantTypes string) *models.OAuthClient {
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)

	client := &models.OAuthClient{
		ID:          id,
		Secret:      string(hashedSecret),
		Name:        id,
		Domain:      "http://localhost:3000",
		UserID:      userID,
		Scopes:      "read write",
		GrantTypes:  grantTypes,
		RedirectURI: "http://localhost:3000/callback",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, testSecret)
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
}

func TestJWTTokenGeneration(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)

	admin := createUser(t, db, "chef", true)
	createClient(t, db, "test_client", "test_secret", admin.ID, "client_credentials")

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "test_client",
		ClientSecret: "test_secret",
		Scope:        "read",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokenInfo.GetAccess())

	claims := parseClaims(t, tokenInfo.GetAccess())
	assert.Equal(t, strconv.FormatUint(uint64(admin.ID), 10), claims["uid"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
	assert.Equal(t, "test_client", claims["aud"])
	assert.Equal(t, "read", claims["scope"])
}

func TestJWTTokenGenerationWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)

	user := createUser(t, db, "cook", false)
	createClient(t, db, "test_client", "test_secret", user.ID, "")

	_, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "test_client",
		ClientSecret: "wrong",
	})
	assert.Error(t, err)
}

func TestTokenGeneratorRequiresUser(t *testing.T) {
	db := setupTestDB(t)
	generator := NewTokenGenerator([]byte(testSecret), jwt.SigningMethodHS256, db)

	// Stored clients always have an owner (oauth_clients.user_id is a
	// foreign key), so ownerless clients are built in memory.
	tests := []struct {
		name   string
		client *oauthmodels.Client
		want   string
	}{
		{"no owner", &oauthmodels.Client{ID: "orphan"}, "no user ID available"},
		{"unknown owner", &oauthmodels.Client{ID: "ghost", UserID: "999"}, "not found"},
		{"malformed owner", &oauthmodels.Client{ID: "bad", UserID: "chef"}, "invalid user ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := oauthmodels.NewToken()
			info.SetAccessCreateAt(time.Now())
			info.SetAccessExpiresIn(time.Hour)

			access, refresh, err := generator.Token(context.Background(), &oauth2.GenerateBasic{
				Client:    tt.client,
				TokenInfo: info,
			}, false)
			assert.ErrorContains(t, err, tt.want)
			assert.Empty(t, access)
			assert.Empty(t, refresh)
		})
	}
}

func TestIssueUserToken(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)

	user := createUser(t, db, "cook", false)

	token, ttl, err := oauthService.IssueUserToken(user)
	require.NoError(t, err)
	assert.Equal(t, AccessTokenTTL, ttl)

	claims := parseClaims(t, token)
	assert.Equal(t, strconv.FormatUint(uint64(user.ID), 10), claims["uid"])
	assert.Equal(t, models.RoleUser, claims["role"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), exp.Time, time.Minute)

	_, _, err = oauthService.IssueUserToken(&models.User{})
	assert.Error(t, err)
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "cook", false)
	createClient(t, db, "integration_test_client", "integration_test_secret", user.ID, "")

	clientStore := NewGormClientStore(db)
	ctx := context.Background()

	retrievedClient, err := clientStore.GetByID(ctx, "integration_test_client")
	require.NoError(t, err)
	assert.Equal(t, "integration_test_client", retrievedClient.GetID())
	assert.Equal(t, strconv.FormatUint(uint64(user.ID), 10), retrievedClient.GetUserID())

	_, err = clientStore.GetByID(ctx, "missing")
	assert.Error(t, err)
}

func TestTokenStoreRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	info := oauthmodels.NewToken()
	info.SetClientID("machine")
	info.SetAccess("access-value")
	info.SetAccessCreateAt(time.Now())
	info.SetAccessExpiresIn(time.Hour)
	info.SetScope("read")
	require.NoError(t, store.Create(ctx, info))

	got, err := store.GetByAccess(ctx, "access-value")
	require.NoError(t, err)
	assert.Equal(t, "machine", got.GetClientID())
	assert.Empty(t, got.GetUserID())
	assert.Empty(t, got.GetRefresh())
	assert.Equal(t, "read", got.GetScope())

	require.NoError(t, store.RemoveByAccess(ctx, "access-value"))
	_, err = store.GetByAccess(ctx, "access-value")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTokenStoreExpiredCode(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	info := oauthmodels.NewToken()
	info.SetClientID("web")
	info.SetUserID("1")
	info.SetCode("stale")
	info.SetCodeCreateAt(time.Now().Add(-time.Hour))
	info.SetCodeExpiresIn(time.Minute)
	require.NoError(t, store.Create(ctx, info))

	_, err := store.GetByCode(ctx, "stale")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
