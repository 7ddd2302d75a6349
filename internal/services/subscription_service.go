package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/pagination"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
)

type SubscriptionService interface {
	// Subscribe makes the principal follow authorID.
	Subscribe(ctx context.Context, principal permissions.Principal, authorID uint) (*models.User, error)
	Unsubscribe(ctx context.Context, principal permissions.Principal, authorID uint) error
	// ListSubscriptions returns the authors the principal follows.
	ListSubscriptions(ctx context.Context, principal permissions.Principal, p pagination.Params) ([]models.User, int64, pagination.Params, error)
	// SubscribedTo reports which of authorIDs the user follows.
	SubscribedTo(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
}

type subscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) SubscriptionService {
	return &subscriptionService{db: db}
}

func (s *subscriptionService) Subscribe(ctx context.Context, principal permissions.Principal, authorID uint) (*models.User, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, authorID).Error; err != nil {
		return nil, translate(err)
	}

	if authorID == principal.UserID {
		log.WithField("user_id", principal.UserID).Warn("User subscribed to themselves")
	}

	var count int64
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", principal.UserID, authorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	sub := &models.Subscription{UserID: principal.UserID, AuthorID: authorID}
	if err := db.Create(sub).Error; err != nil {
		return nil, translate(err)
	}

	log.WithFields(logrus.Fields{
		"user_id":   principal.UserID,
		"author_id": authorID,
	}).Debug("Subscription created")
	return &author, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, principal permissions.Principal, authorID uint) error {
	if err := requireUser(principal); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", principal.UserID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, principal permissions.Principal, p pagination.Params) ([]models.User, int64, pagination.Params, error) {
	if err := requireUser(principal); err != nil {
		return nil, 0, p, err
	}
	tx := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", principal.UserID)
	return pagination.Query[models.User](tx, p, orderBy(models.Subscription{}.DefaultOrder()))
}

func (s *subscriptionService) SubscribedTo(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return out, nil
	}

	var ids []uint
	if err := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
