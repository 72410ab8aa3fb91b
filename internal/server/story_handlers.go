package server

import (
	"instakilo/internal/models"
	"instakilo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateStory handles POST /api/stories
func (s *Server) CreateStory(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		MediaURL  string `json:"media_url"`
		MediaType string `json:"media_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	story, err := s.storyService.CreateStory(c.Context(), service.CreateStoryInput{
		UserID:    userID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventStoryCreated, map[string]interface{}{
		"story_id": story.ID,
		"user_id":  story.UserID,
	})

	return c.Status(fiber.StatusCreated).JSON(story)
}

// GetStoryTray handles GET /api/stories/tray
func (s *Server) GetStoryTray(c *fiber.Ctx) error {
	trays, err := s.storyService.GetTray(c.Context(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(trays)
}

// GetUserStories handles GET /api/stories/user/:id
func (s *Server) GetUserStories(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	stories, err := s.storyService.GetUserStories(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(stories)
}

// DeleteStory handles DELETE /api/stories/:id
func (s *Server) DeleteStory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.storyService.DeleteStory(c.Context(), currentUserID(c), id); err != nil {
		return respondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
