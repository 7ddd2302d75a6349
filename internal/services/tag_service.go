package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

type TagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) error
	UpdateTag(ctx context.Context, tag *models.Tag) error
	// DeleteTag removes the tag and detaches it from every recipe.
	DeleteTag(ctx context.Context, id uint) error
}

type tagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) TagService {
	return &tagService{db: db}
}

func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	if err := s.db.WithContext(ctx).Order(models.Tag{}.DefaultOrder()).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *tagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tag, nil
}

func (s *tagService) CreateTag(ctx context.Context, tag *models.Tag) error {
	return translate(s.db.WithContext(ctx).Create(tag).Error)
}

func (s *tagService) UpdateTag(ctx context.Context, tag *models.Tag) error {
	return translate(s.db.WithContext(ctx).Save(tag).Error)
}

func (s *tagService) DeleteTag(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Tag{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
