package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"instakilo/internal/models"
	"instakilo/internal/repository"

	"gorm.io/gorm"
)

type StoryService struct {
	storyRepo repository.StoryRepository
	userRepo  repository.UserRepository
}

func NewStoryService(storyRepo repository.StoryRepository, userRepo repository.UserRepository) *StoryService {
	return &StoryService{storyRepo: storyRepo, userRepo: userRepo}
}

type CreateStoryInput struct {
	UserID    uint
	MediaURL  string
	MediaType string
}

// StoryTray groups a user's active stories for the feed header.
type StoryTray struct {
	UserID   uint            `json:"user_id"`
	Username string          `json:"username"`
	Avatar   string          `json:"avatar"`
	Stories  []*models.Story `json:"stories"`
}

func (s *StoryService) CreateStory(ctx context.Context, in CreateStoryInput) (*models.Story, error) {
	if strings.TrimSpace(in.MediaURL) == "" {
		return nil, models.NewValidationError("media_url is required")
	}
	if _, err := url.ParseRequestURI(in.MediaURL); err != nil {
		return nil, models.NewValidationError("media_url must be a valid URL")
	}
	mediaType := in.MediaType
	if mediaType == "" {
		mediaType = models.MediaTypeImage
	}
	switch mediaType {
	case models.MediaTypeImage, models.MediaTypeVideo:
		// valid
	default:
		return nil, models.NewValidationError("Invalid media_type")
	}

	story := &models.Story{
		UserID:    in.UserID,
		MediaURL:  in.MediaURL,
		MediaType: mediaType,
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// GetTray returns the viewer's story tray: their own active stories plus
// those of everyone they follow, grouped per author.
func (s *StoryService) GetTray(ctx context.Context, viewerID uint) ([]*StoryTray, error) {
	followeeIDs, err := s.userRepo.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authorIDs := append(followeeIDs, viewerID)

	stories, err := s.storyRepo.ListActiveByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	trays := make([]*StoryTray, 0)
	byAuthor := make(map[uint]*StoryTray)
	for _, story := range stories {
		tray, ok := byAuthor[story.UserID]
		if !ok {
			tray = &StoryTray{UserID: story.UserID}
			if story.User != nil {
				tray.Username = story.User.Username
				tray.Avatar = story.User.Avatar
			}
			byAuthor[story.UserID] = tray
			trays = append(trays, tray)
		}
		tray.Stories = append(tray.Stories, story)
	}
	return trays, nil
}

func (s *StoryService) GetUserStories(ctx context.Context, userID uint) ([]*models.Story, error) {
	return s.storyRepo.ListActiveByUser(ctx, userID)
}

func (s *StoryService) DeleteStory(ctx context.Context, userID, storyID uint) error {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("story", storyID)
	}
	if err != nil {
		return err
	}
	if story.UserID != userID {
		return models.NewForbiddenError("You can only delete your own stories")
	}
	return s.storyRepo.Delete(ctx, storyID)
}
