package server

import (
	"instakilo/internal/models"
	"instakilo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts/feed?cursor=<token>&limit=<n>.
//
// Auth required: the page carries the viewer's liked/saved flags, and the
// personalized rollout keys off the viewer's identity.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	userID := currentUserID(c)

	page, err := s.postService.GetFeed(c.Context(), service.FeedQuery{
		Cursor:        c.Query("cursor"),
		Limit:         c.QueryInt("limit", 0),
		CurrentUserID: userID,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(page)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Caption   string `json:"caption"`
		MediaURL  string `json:"media_url"`
		MediaType string `json:"media_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:    userID,
		Caption:   req.Caption,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventPostCreated, map[string]interface{}{
		"post_id": post.ID,
		"user_id": post.UserID,
	})

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(c.Context(), id, userID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(c.Context(), id, p.Limit, p.Offset, currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(posts)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	admin, err := s.isAdminByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		UserID:  userID,
		PostID:  id,
		IsAdmin: admin,
	}); err != nil {
		return respondAppError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like.
//
// Liking twice is a success: the response reflects the current state
// rather than reporting a conflict.
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := s.postService.LikePost(c.Context(), userID, id)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventPostReactionUpdated, map[string]interface{}{
		"post_id":     post.ID,
		"likes_count": post.LikesCount,
	})

	return c.JSON(post)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := s.postService.UnlikePost(c.Context(), userID, id)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventPostReactionUpdated, map[string]interface{}{
		"post_id":     post.ID,
		"likes_count": post.LikesCount,
	})

	return c.JSON(post)
}

// SavePost handles POST /api/posts/:id/save
func (s *Server) SavePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.SavePost(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(post)
}

// UnsavePost handles DELETE /api/posts/:id/save
func (s *Server) UnsavePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.UnsavePost(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(post)
}

// GetSavedPosts handles GET /api/users/me/saved
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.GetSavedPosts(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(posts)
}
