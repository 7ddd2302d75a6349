package auth

import (
	"time"

	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLogLevel sets the log level for the auth package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

const (
	// AccessTokenTTL is the lifetime of tokens issued to password logins.
	AccessTokenTTL = 24 * time.Hour

	authorizationCodeTTL = 10 * time.Minute
)

type OAuthService struct {
	server    *server.Server
	db        *gorm.DB
	generator *TokenGenerator
}

func NewOAuthService(db *gorm.DB, jwtSecret string) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetAuthorizeCodeExp(authorizationCodeTTL)

	// Every token carries uid and role so the API middleware can build a principal
	generator := NewTokenGenerator([]byte(jwtSecret), jwt.SigningMethodHS256, db)
	manager.MapAccessGenerate(generator)

	tokenStore := NewGormTokenStore(db)
	manager.MustTokenStorage(tokenStore, nil)

	clientStore := NewGormClientStore(db)
	manager.MapClientStorage(clientStore)

	srv := server.NewDefaultServer(manager)
	srv.SetAllowGetAccessRequest(true)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	return &OAuthService{
		server:    srv,
		db:        db,
		generator: generator,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// IssueUserToken signs an access token for an account that logged in with
// its email and password.
func (o *OAuthService) IssueUserToken(user *models.User) (string, time.Duration, error) {
	token, err := o.generator.UserToken(user, time.Now(), AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role(),
	}).Debug("Issued user access token")
	return token, AccessTokenTTL, nil
}
