package models

import (
	"fmt"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Roles carried in access tokens. Staff accounts get RoleAdmin.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account. Email is the login field and identifies the account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email" validate:"required,email,max=254"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username" validate:"required,max=150,name_chars"`
	FirstName string    `gorm:"size:150;not null" json:"first_name" validate:"required,max=150,name_chars"`
	LastName  string    `gorm:"size:150;not null" json:"last_name" validate:"required,max=150,name_chars"`
	Password  string    `gorm:"not null" json:"-"`
	IsStaff   bool      `gorm:"not null;default:false" json:"is_staff"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// DefaultOrder is the ordering used when listing users.
func (User) DefaultOrder() string {
	return "users.id"
}

// BeforeSave validates the account fields before every insert or update.
func (u *User) BeforeSave(tx *gorm.DB) error {
	return validation.ValidateStruct(u)
}

// Role returns the token role of the account.
func (u *User) Role() string {
	if u.IsStaff {
		return RoleAdmin
	}
	return RoleUser
}

// HashPassword replaces the plain-text Password with its bcrypt hash.
func (u *User) HashPassword() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func (u User) String() string {
	return u.Username
}
