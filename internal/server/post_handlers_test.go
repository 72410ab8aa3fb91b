package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"instakilo/internal/config"
	"instakilo/internal/featureflags"
	"instakilo/internal/feed"
	"instakilo/internal/models"
	"instakilo/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(postRepo *MockPostRepository, userRepo *MockUserRepository) *Server {
	s := &Server{
		config:       &config.Config{JWTSecret: "test-secret-do-not-use-in-prod", Env: "test"},
		featureFlags: featureflags.NewManager(""),
	}
	s.postService = service.NewPostService(postRepo, userRepo, s.featureFlags)
	s.userService = service.NewUserService(userRepo)
	return s
}

// fakeAuth injects an authenticated user the way AuthRequired would.
func fakeAuth(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

// feedPosts builds n posts in reverse-chronological order, minute-spaced,
// with microsecond-precision timestamps so cursor round-trips are exact.
func feedPosts(n int) []*models.Post {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]*models.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = &models.Post{
			ID:        uint(100 - i),
			Caption:   fmt.Sprintf("post %d", 100-i),
			MediaURL:  "https://cdn.example.com/p.jpg",
			MediaType: models.MediaTypeImage,
			UserID:    1,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return posts
}

func decodeFeedPage(t *testing.T, body io.Reader) service.FeedPage {
	t.Helper()
	var page service.FeedPage
	require.NoError(t, json.NewDecoder(body).Decode(&page))
	return page
}

func TestGetFeedReturnsFullPageWithCursor(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	posts := feedPosts(models.DefaultFeedLimit)
	// The cursorless first page is fetched viewer-agnostic, then the
	// viewer's liked/saved flags are re-derived.
	mockPostRepo.On("ListFeed", mock.Anything, (*feed.Cursor)(nil),
		models.DefaultFeedLimit, uint(0), []uint(nil)).Return(posts, nil)
	mockPostRepo.On("GetLikedPostIDs", mock.Anything, uint(1), mock.Anything).Return([]uint(nil), nil)
	mockPostRepo.On("GetSavedPostIDs", mock.Anything, uint(1), mock.Anything).Return([]uint(nil), nil)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Get("/posts/feed", s.GetFeed)

	req := httptest.NewRequest("GET", "/posts/feed", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	page := decodeFeedPage(t, resp.Body)
	assert.Len(t, page.Posts, models.DefaultFeedLimit)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextCursor)

	// The cursor must point at the last post on the page.
	cur, err := feed.Decode(page.NextCursor)
	require.NoError(t, err)
	last := posts[len(posts)-1]
	assert.Equal(t, last.ID, cur.ID)
	assert.Equal(t, last.CreatedAt.UnixMicro(), cur.CreatedAt.UnixMicro())

	mockPostRepo.AssertExpectations(t)
}

func TestGetFeedPartialPageHasNoCursor(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	mockPostRepo.On("ListFeed", mock.Anything, (*feed.Cursor)(nil),
		models.DefaultFeedLimit, uint(0), []uint(nil)).Return(feedPosts(3), nil)
	mockPostRepo.On("GetLikedPostIDs", mock.Anything, uint(1), mock.Anything).Return([]uint(nil), nil)
	mockPostRepo.On("GetSavedPostIDs", mock.Anything, uint(1), mock.Anything).Return([]uint(nil), nil)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Get("/posts/feed", s.GetFeed)

	resp, err := app.Test(httptest.NewRequest("GET", "/posts/feed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	page := decodeFeedPage(t, resp.Body)
	assert.Len(t, page.Posts, 3)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestGetFeedClampsOversizedLimit(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	mockPostRepo.On("ListFeed", mock.Anything, (*feed.Cursor)(nil),
		models.MaxFeedLimit, uint(0), []uint(nil)).Return(feedPosts(5), nil)
	mockPostRepo.On("GetLikedPostIDs", mock.Anything, uint(1), mock.Anything).Return([]uint(nil), nil)
	mockPostRepo.On("GetSavedPostIDs", mock.Anything, uint(1), mock.Anything).Return([]uint(nil), nil)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Get("/posts/feed", s.GetFeed)

	resp, err := app.Test(httptest.NewRequest("GET", "/posts/feed?limit=500", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	mockPostRepo.AssertExpectations(t)
}

func TestGetFeedResumesFromCursor(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	boundary := feed.Cursor{
		CreatedAt: time.Date(2025, 6, 1, 11, 55, 0, 0, time.UTC),
		ID:        95,
	}
	mockPostRepo.On("ListFeed", mock.Anything,
		mock.MatchedBy(func(b *feed.Cursor) bool {
			return b != nil && b.ID == boundary.ID &&
				b.CreatedAt.UnixMicro() == boundary.CreatedAt.UnixMicro()
		}),
		models.DefaultFeedLimit, uint(1), []uint(nil)).Return(feedPosts(2), nil)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Get("/posts/feed", s.GetFeed)

	url := "/posts/feed?cursor=" + boundary.Encode()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	mockPostRepo.AssertExpectations(t)
}

func TestGetFeedRejectsMalformedCursor(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Get("/posts/feed", s.GetFeed)

	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%25%25garbage"},
		{"no separator", "aGVsbG8"},
		{"non-numeric fields", "YWJjOmRlZg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/posts/feed?cursor="+tt.cursor, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "INVALID_CURSOR", body.Code)
		})
	}

	mockPostRepo.AssertNotCalled(t, "ListFeed",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetFeedRequiresAuth(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	app := fiber.New()
	app.Get("/api/posts/feed", s.AuthRequired(), s.GetFeed)

	// No Authorization header: rejected before the query runs.
	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts/feed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "AUTH_REQUIRED", body.Code)
	mockPostRepo.AssertNotCalled(t, "ListFeed",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// With a valid token the page is served for that viewer.
	token, err := s.generateToken(7, "casey_v")
	require.NoError(t, err)
	mockPostRepo.On("ListFeed", mock.Anything, (*feed.Cursor)(nil),
		models.DefaultFeedLimit, uint(0), []uint(nil)).Return(feedPosts(2), nil)
	mockPostRepo.On("GetLikedPostIDs", mock.Anything, uint(7), mock.Anything).Return([]uint(nil), nil)
	mockPostRepo.On("GetSavedPostIDs", mock.Anything, uint(7), mock.Anything).Return([]uint(nil), nil)

	req := httptest.NewRequest("GET", "/api/posts/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	mockPostRepo.AssertExpectations(t)
}

func TestLikePostReturnsUpdatedPost(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	mockPostRepo.On("Exists", mock.Anything, uint(42)).Return(true, nil)
	mockPostRepo.On("Like", mock.Anything, uint(1), uint(42)).Return(nil)
	mockPostRepo.On("GetByID", mock.Anything, uint(42), uint(1)).Return(&models.Post{
		ID:         42,
		MediaURL:   "https://cdn.example.com/p.jpg",
		UserID:     2,
		Liked:      true,
		LikesCount: 3,
	}, nil)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Post("/posts/:id/like", s.LikePost)

	resp, err := app.Test(httptest.NewRequest("POST", "/posts/42/like", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var post models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	assert.True(t, post.Liked)
	assert.Equal(t, 3, post.LikesCount)
	mockPostRepo.AssertExpectations(t)
}

func TestLikePostMissingPostIs404(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	mockPostRepo.On("Exists", mock.Anything, uint(999)).Return(false, nil)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Post("/posts/:id/like", s.LikePost)

	resp, err := app.Test(httptest.NewRequest("POST", "/posts/999/like", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Code)
	mockPostRepo.AssertNotCalled(t, "Like", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnlikePostWithoutLikeStillSucceeds(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	mockPostRepo.On("Exists", mock.Anything, uint(42)).Return(true, nil)
	mockPostRepo.On("Unlike", mock.Anything, uint(1), uint(42)).Return(nil)
	mockPostRepo.On("GetByID", mock.Anything, uint(42), uint(1)).Return(&models.Post{
		ID:       42,
		MediaURL: "https://cdn.example.com/p.jpg",
		UserID:   2,
	}, nil)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Delete("/posts/:id/like", s.UnlikePost)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/posts/42/like", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var post models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	assert.False(t, post.Liked)
	assert.Equal(t, 0, post.LikesCount)
}

func TestLikePostRejectsGarbageID(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Post("/posts/:id/like", s.LikePost)

	resp, err := app.Test(httptest.NewRequest("POST", "/posts/abc/like", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	mockPostRepo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
}

func TestCreatePostValidation(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(mockPostRepo, mockUserRepo)

	app := fiber.New()
	app.Use(fakeAuth(1))
	app.Post("/posts", s.CreatePost)

	tests := []struct {
		name string
		body string
	}{
		{"missing media_url", `{"caption":"hi"}`},
		{"relative media_url", `{"media_url":"not-a-url"}`},
		{"bad media_type", `{"media_url":"https://cdn.example.com/p.jpg","media_type":"gif"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/posts", jsonBody(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}

	mockPostRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
