package models

import "time"

// OAuthCode is an authorization code awaiting exchange. UserID holds the
// decimal user id because the OAuth2 manager passes users around as strings.
type OAuthCode struct {
	Code                string    `gorm:"primaryKey"`
	ClientID            string    `gorm:"not null;index"`
	UserID              string    `gorm:"not null"`
	RedirectURI         string
	Scopes              string
	CodeChallenge       string
	CodeChallengeMethod string
	CreatedAt           time.Time
	ExpiresAt           time.Time `gorm:"not null"`
}

func (OAuthCode) TableName() string { return "oauth_codes" }

// Expired reports whether the code can no longer be exchanged.
func (c *OAuthCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// OAuthToken records an issued access token. Client credentials tokens of
// clients without an owner have no UserID; only authorization code grants
// carry a RefreshToken.
type OAuthToken struct {
	ID           uint      `gorm:"primaryKey"`
	AccessToken  string    `gorm:"uniqueIndex;not null"`
	RefreshToken *string   `gorm:"index"`
	ClientID     string    `gorm:"not null;index"`
	UserID       *string
	Scopes       string
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OAuthToken) TableName() string { return "oauth_tokens" }

// Expired reports whether the access token has passed its lifetime.
func (t *OAuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
