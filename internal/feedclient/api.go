package feedclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"instakilo/internal/models"
)

// Page is one feed page as returned by the server. NextCursor is opaque
// and only meaningful while HasMore is true.
type Page struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor string         `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// API is the server surface the store drives. HTTPClient is the production
// implementation; tests substitute a scripted fake.
type API interface {
	QueryFeed(ctx context.Context, cursor string, limit int) (*Page, error)
	AddLike(ctx context.Context, postID uint) (*models.Post, error)
	RemoveLike(ctx context.Context, postID uint) (*models.Post, error)
	AddSave(ctx context.Context, postID uint) (*models.Post, error)
	RemoveSave(ctx context.Context, postID uint) (*models.Post, error)
}

// HTTPClient talks to an InstaKilo API server over HTTP with an optional
// bearer token.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken swaps the bearer token, e.g. after a re-login.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) QueryFeed(ctx context.Context, cursor string, limit int) (*Page, error) {
	endpoint := fmt.Sprintf("%s/api/posts/feed?limit=%d", c.baseURL, limit)
	if cursor != "" {
		endpoint += "&cursor=" + url.QueryEscape(cursor)
	}

	var page Page
	if err := c.do(ctx, http.MethodGet, endpoint, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) AddLike(ctx context.Context, postID uint) (*models.Post, error) {
	return c.mutatePost(ctx, http.MethodPost, postID, "like")
}

func (c *HTTPClient) RemoveLike(ctx context.Context, postID uint) (*models.Post, error) {
	return c.mutatePost(ctx, http.MethodDelete, postID, "like")
}

func (c *HTTPClient) AddSave(ctx context.Context, postID uint) (*models.Post, error) {
	return c.mutatePost(ctx, http.MethodPost, postID, "save")
}

func (c *HTTPClient) RemoveSave(ctx context.Context, postID uint) (*models.Post, error) {
	return c.mutatePost(ctx, http.MethodDelete, postID, "save")
}

func (c *HTTPClient) mutatePost(ctx context.Context, method string, postID uint, action string) (*models.Post, error) {
	endpoint := fmt.Sprintf("%s/api/posts/%d/%s", c.baseURL, postID, action)
	var post models.Post
	if err := c.do(ctx, method, endpoint, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// do issues the request and decodes either the success body into out or the
// server's error envelope into an *models.AppError.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("feed api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("feed api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp models.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Code != "" {
			return &models.AppError{Code: errResp.Code, Message: errResp.Error}
		}
		return fmt.Errorf("feed api: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("feed api: decode response: %w", err)
	}
	return nil
}
