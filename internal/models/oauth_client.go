package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is an API client registered by a user. It implements
// oauth2.ClientInfo and oauth2.ClientPasswordVerifier so it can be handed
// straight to the OAuth2 manager.
type OAuthClient struct {
	ID          string         `gorm:"primaryKey" json:"client_id"`
	Secret      string         `gorm:"not null" json:"-"`
	Name        string         `json:"name"`
	Domain      string         `json:"domain"`
	UserID      uint           `gorm:"index" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	Scopes      string         `json:"scopes"`      // Space-separated list of allowed scopes
	GrantTypes  string         `json:"grant_types"` // Space-separated list: "authorization_code client_credentials"
	RedirectURI string         `json:"redirect_uri"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

func (c *OAuthClient) GetID() string {
	return c.ID
}

func (c *OAuthClient) GetSecret() string {
	return c.Secret
}

func (c *OAuthClient) GetDomain() string {
	return c.Domain
}

func (c *OAuthClient) IsPublic() bool {
	return false
}

// GetUserID returns the owning user as the decimal string the token layer expects.
func (c *OAuthClient) GetUserID() string {
	if c.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword checks a plain client secret against the stored bcrypt hash.
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
