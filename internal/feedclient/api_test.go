package feedclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"instakilo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientQueryFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts/feed", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("cursor"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"posts":[{"id":5}],"next_cursor":"def","has_more":true}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	page, err := c.QueryFeed(context.Background(), "abc123", 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, uint(5), page.Posts[0].ID)
	assert.Equal(t, "def", page.NextCursor)
	assert.True(t, page.HasMore)
}

func TestHTTPClientSurfacesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/posts/42/like", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"post with ID 42 not found","code":"NOT_FOUND"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	_, err := c.AddLike(context.Background(), 42)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestHTTPClientUnlikeHitsDeleteEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/posts/7/like", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"liked":false,"likes_count":3}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	post, err := c.RemoveLike(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, post.Liked)
	assert.Equal(t, 3, post.LikesCount)
}
