// Command create_dev_client seeds a development account and an OAuth2
// client bound to it:
//
//	go run ./scripts -role admin
package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

const devPassword = "dev-password-123"

func main() {
	// Parse command line flags
	role := flag.String("role", models.RoleAdmin, "Account role (admin or user)")
	flag.Parse()
	if *role != models.RoleAdmin && *role != models.RoleUser {
		log.Fatalf("Unknown role %q", *role)
	}

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	db, err := database.InitDatabase(conf.DatabaseConfig())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	// Determine client credentials based on role
	clientID, clientSecret := "dev-client", "dev-secret-123"
	if *role == models.RoleUser {
		clientID, clientSecret = "user-client", "user-secret-123"
	}

	user, err := getOrCreateUser(db, *role)
	if err != nil {
		log.WithError(err).Fatal("Failed to get account for role")
	}

	// Check if client already exists
	var existing models.OAuthClient
	if err := db.Where("id = ?", clientID).First(&existing).Error; err == nil {
		fmt.Printf("Development client already exists for role '%s'!\n", *role)
		printCredentials(clientID, clientSecret, user)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash secret")
	}

	client := models.OAuthClient{
		ID:          clientID,
		Secret:      string(hash),
		Name:        fmt.Sprintf("Development %s Client", *role),
		Domain:      "http://localhost:3000",
		UserID:      user.ID,
		Scopes:      "read write",
		GrantTypes:  "client_credentials authorization_code",
		RedirectURI: "http://localhost:3000/callback",
	}
	if err := db.Create(&client).Error; err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	fmt.Printf("✓ Development OAuth client created for role '%s'!\n", *role)
	printCredentials(clientID, clientSecret, user)
}

// getOrCreateUser finds or creates the development account of a role
func getOrCreateUser(db *gorm.DB, role string) (*models.User, error) {
	email := fmt.Sprintf("%s@foodgram.local", role)

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role())
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Email:     email,
		Username:  "dev_" + role,
		FirstName: "Development",
		LastName:  role,
		Password:  devPassword,
		IsStaff:   role == models.RoleAdmin,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	fmt.Printf("Created new user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role())
	return &user, nil
}

func printCredentials(clientID, clientSecret string, user *models.User) {
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Printf("User ID: %d\n", user.ID)
	fmt.Printf("Login: %s / %s\n", user.Email, devPassword)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:8080/api/v1/oauth/token \\\n")
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}
