package auth

import (
	"context"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	oauthmodels "github.com/go-oauth2/oauth2/v4/models"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

// GormClientStore implements oauth2.ClientStore on top of the oauth_clients table.
type GormClientStore struct {
	db *gorm.DB
}

func NewGormClientStore(db *gorm.DB) *GormClientStore {
	return &GormClientStore{db: db}
}

func (s *GormClientStore) GetByID(ctx context.Context, id string) (oauth2.ClientInfo, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}

	// *models.OAuthClient implements ClientPasswordVerifier, so the manager
	// compares secrets against the bcrypt hash.
	return &client, nil
}

// GormTokenStore implements oauth2.TokenStore. Authorization codes live in
// oauth_codes, access tokens in oauth_tokens.
type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) Create(ctx context.Context, info oauth2.TokenInfo) error {
	if code := info.GetCode(); code != "" {
		return s.CreateCode(ctx, info)
	}

	token := &models.OAuthToken{
		ClientID:     info.GetClientID(),
		UserID:       optional(info.GetUserID()),
		AccessToken:  info.GetAccess(),
		RefreshToken: optional(info.GetRefresh()),
		Scopes:       info.GetScope(),
		ExpiresAt:    info.GetAccessCreateAt().Add(info.GetAccessExpiresIn()),
	}
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormTokenStore) RemoveByAccess(ctx context.Context, access string) error {
	return s.db.WithContext(ctx).Where("access_token = ?", access).Delete(&models.OAuthToken{}).Error
}

func (s *GormTokenStore) RemoveByRefresh(ctx context.Context, refresh string) error {
	return s.db.WithContext(ctx).Where("refresh_token = ?", refresh).Delete(&models.OAuthToken{}).Error
}

func (s *GormTokenStore) GetByAccess(ctx context.Context, access string) (oauth2.TokenInfo, error) {
	var token models.OAuthToken
	if err := s.db.WithContext(ctx).Where("access_token = ?", access).First(&token).Error; err != nil {
		return nil, err
	}
	if token.Expired(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}
	return tokenInfo(&token), nil
}

func (s *GormTokenStore) GetByRefresh(ctx context.Context, refresh string) (oauth2.TokenInfo, error) {
	var token models.OAuthToken
	if err := s.db.WithContext(ctx).Where("refresh_token = ?", refresh).First(&token).Error; err != nil {
		return nil, err
	}
	return tokenInfo(&token), nil
}

func (s *GormTokenStore) GetByCode(ctx context.Context, code string) (oauth2.TokenInfo, error) {
	var oauthCode models.OAuthCode
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&oauthCode).Error; err != nil {
		return nil, err
	}

	if oauthCode.Expired(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}

	return &oauthmodels.Token{
		ClientID:            oauthCode.ClientID,
		UserID:              oauthCode.UserID,
		Code:                oauthCode.Code,
		CodeCreateAt:        oauthCode.CreatedAt,
		CodeExpiresIn:       oauthCode.ExpiresAt.Sub(oauthCode.CreatedAt),
		CodeChallenge:       oauthCode.CodeChallenge,
		CodeChallengeMethod: oauthCode.CodeChallengeMethod,
		RedirectURI:         oauthCode.RedirectURI,
		Scope:               oauthCode.Scopes,
	}, nil
}

func (s *GormTokenStore) RemoveByCode(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Where("code = ?", code).Delete(&models.OAuthCode{}).Error
}

func (s *GormTokenStore) CreateCode(ctx context.Context, info oauth2.TokenInfo) error {
	createdAt := info.GetCodeCreateAt()
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	code := &models.OAuthCode{
		ClientID:            info.GetClientID(),
		UserID:              info.GetUserID(),
		Code:                info.GetCode(),
		CodeChallenge:       info.GetCodeChallenge(),
		CodeChallengeMethod: info.GetCodeChallengeMethod().String(),
		RedirectURI:         info.GetRedirectURI(),
		Scopes:              info.GetScope(),
		ExpiresAt:           createdAt.Add(info.GetCodeExpiresIn()),
		CreatedAt:           createdAt,
	}
	return s.db.WithContext(ctx).Create(code).Error
}

func tokenInfo(token *models.OAuthToken) *oauthmodels.Token {
	return &oauthmodels.Token{
		ClientID:        token.ClientID,
		UserID:          deref(token.UserID),
		Access:          token.AccessToken,
		AccessCreateAt:  token.CreatedAt,
		AccessExpiresIn: token.ExpiresAt.Sub(token.CreatedAt),
		Refresh:         deref(token.RefreshToken),
		Scope:           token.Scopes,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
