package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/pagination"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
)

type UserService interface {
	// CreateUser stores a new account. The password must already be hashed.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, p pagination.Params) ([]models.User, int64, pagination.Params, error)
	// ChangePassword replaces the principal's password after checking the current one.
	ChangePassword(ctx context.Context, principal permissions.Principal, current, next string) error
	// DeleteUser removes the account together with everything it owns.
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("user with email %q: %w", user.Email, ErrAlreadyExists)
	}
	if err := db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("user with username %q: %w", user.Username, ErrAlreadyExists)
	}

	if err := db.Create(user).Error; err != nil {
		return translate(err)
	}
	log.WithFields(map[string]interface{}{"user_id": user.ID, "is_staff": user.IsStaff}).Info("User created")
	return nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context, p pagination.Params) ([]models.User, int64, pagination.Params, error) {
	tx := s.db.WithContext(ctx).Model(&models.User{})
	return pagination.Query[models.User](tx, p, orderBy(models.User{}.DefaultOrder()))
}

func (s *userService) ChangePassword(ctx context.Context, principal permissions.Principal, current, next string) error {
	if err := requireUser(principal); err != nil {
		return err
	}
	user, err := s.GetUserByID(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return ErrInvalidPassword
	}

	user.Password = next
	if err := user.HashPassword(); err != nil {
		return err
	}
	return translate(s.db.WithContext(ctx).Save(user).Error)
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	// recipes, their tag links and every per-user row cascade
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	log.WithField("user_id", id).Info("User deleted")
	return nil
}
