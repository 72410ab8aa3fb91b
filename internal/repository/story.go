package repository

import (
	"context"
	"time"

	"instakilo/internal/cache"
	"instakilo/internal/models"

	"gorm.io/gorm"
)

// StoryRepository defines the interface for story data operations
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uint) (*models.Story, error)
	// ListActiveByAuthors returns unexpired stories for the given authors,
	// oldest first. Expired rows stay in the table; they are simply filtered.
	ListActiveByAuthors(ctx context.Context, authorIDs []uint) ([]*models.Story, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]*models.Story, error)
	Delete(ctx context.Context, id uint) error
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	if story.ExpiresAt.IsZero() {
		story.ExpiresAt = time.Now().Add(models.StoryTTL)
	}
	err := r.db.WithContext(ctx).Create(story).Error
	if err == nil {
		cache.Invalidate(ctx, cache.StoriesKey(story.UserID))
	}
	return err
}

func (r *storyRepository) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) ListActiveByAuthors(ctx context.Context, authorIDs []uint) ([]*models.Story, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var stories []*models.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ? AND expires_at > ?", authorIDs, time.Now()).
		Order("created_at ASC, id ASC").
		Find(&stories).Error
	return stories, err
}

func (r *storyRepository) ListActiveByUser(ctx context.Context, userID uint) ([]*models.Story, error) {
	var stories []*models.Story
	key := cache.StoriesKey(userID)
	err := cache.Aside(ctx, key, &stories, cache.StoriesTTL, func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ? AND expires_at > ?", userID, time.Now()).
			Order("created_at ASC, id ASC").
			Find(&stories).Error
	})
	return stories, err
}

func (r *storyRepository) Delete(ctx context.Context, id uint) error {
	story, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Story{}, id).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.StoriesKey(story.UserID))
	return nil
}
