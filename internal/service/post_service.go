// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"instakilo/internal/cache"
	"instakilo/internal/featureflags"
	"instakilo/internal/feed"
	"instakilo/internal/models"
	"instakilo/internal/observability"
	"instakilo/internal/repository"

	"gorm.io/gorm"
)

// FlagPersonalizedFeed gates the followees-only feed. Off means everyone
// gets the flat reverse-chronological firehose.
const FlagPersonalizedFeed = "personalized_feed"

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	flags    *featureflags.Manager
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	flags *featureflags.Manager,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		flags:    flags,
	}
}

type CreatePostInput struct {
	UserID    uint
	Caption   string
	MediaURL  string
	MediaType string
}

type FeedQuery struct {
	Cursor        string
	Limit         int
	CurrentUserID uint
}

// FeedPage is one page of the feed. NextCursor is opaque to clients; it is
// only meaningful when HasMore is true.
type FeedPage struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

type DeletePostInput struct {
	UserID  uint
	PostID  uint
	IsAdmin bool
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
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
	if len(in.Caption) > models.MaxCaptionLength {
		return nil, models.NewValidationError("Caption too long (max 2200 characters)")
	}

	owner, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Caption:   in.Caption,
		MediaURL:  in.MediaURL,
		MediaType: mediaType,
		UserID:    in.UserID,
		// Author snapshot is frozen at creation; later profile edits do
		// not rewrite existing posts.
		OwnerUsername: owner.Username,
		OwnerAvatar:   owner.Avatar,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetFeed returns one cursor-delimited page of the feed.
//
// The limit is clamped, never rejected; a malformed cursor is the only
// query-shape error a client can cause.
func (s *PostService) GetFeed(ctx context.Context, in FeedQuery) (*FeedPage, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = models.DefaultFeedLimit
	}
	if limit > models.MaxFeedLimit {
		limit = models.MaxFeedLimit
	}

	var boundary *feed.Cursor
	if in.Cursor != "" {
		c, err := feed.Decode(in.Cursor)
		if err != nil {
			return nil, models.NewInvalidCursorError()
		}
		boundary = &c
	}

	personalized := in.CurrentUserID != 0 &&
		s.flags.Enabled(FlagPersonalizedFeed, in.CurrentUserID)

	var authorIDs []uint
	if personalized {
		followeeIDs, err := s.userRepo.FolloweeIDs(ctx, in.CurrentUserID)
		if err != nil {
			return nil, err
		}
		// Own posts always show up in a personalized feed.
		authorIDs = append(followeeIDs, in.CurrentUserID)
	}

	var posts []*models.Post
	var err error
	if boundary == nil && !personalized {
		posts, err = s.firstPageCached(ctx, limit, in.CurrentUserID)
	} else {
		posts, err = s.postRepo.ListFeed(ctx, boundary, limit, in.CurrentUserID, authorIDs)
	}
	if err != nil {
		return nil, err
	}

	page := &FeedPage{
		Posts:   posts,
		HasMore: len(posts) == limit,
	}
	if page.HasMore {
		last := posts[len(posts)-1]
		page.NextCursor = feed.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	observability.FeedPagesServed.WithLabelValues(strconv.FormatBool(page.HasMore)).Inc()
	return page, nil
}

// firstPageCached serves the cursorless flat first page from Redis when
// possible. The cached copy is viewer-agnostic; liked/saved flags are
// re-derived for the requesting user afterwards.
func (s *PostService) firstPageCached(ctx context.Context, limit int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, cache.FeedFirstKey(limit), &posts, cache.FeedFirstTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.postRepo.ListFeed(ctx, nil, limit, 0, nil)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if currentUserID != 0 && len(posts) > 0 {
		postIDs := make([]uint, len(posts))
		for i, p := range posts {
			postIDs[i] = p.ID
		}

		likedIDs, err := s.postRepo.GetLikedPostIDs(ctx, currentUserID, postIDs)
		if err != nil {
			return nil, err
		}
		savedIDs, err := s.postRepo.GetSavedPostIDs(ctx, currentUserID, postIDs)
		if err != nil {
			return nil, err
		}

		likedMap := make(map[uint]bool, len(likedIDs))
		for _, id := range likedIDs {
			likedMap[id] = true
		}
		savedMap := make(map[uint]bool, len(savedIDs))
		for _, id := range savedIDs {
			savedMap[id] = true
		}
		for _, p := range posts {
			p.Liked = likedMap[p.ID]
			p.Saved = savedMap[p.ID]
		}
	}

	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("post", id)
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// LikePost adds the user to the post's liked-by set. Liking an already
// liked post is a success, not a conflict.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		observability.LikeMutations.WithLabelValues("like", "not_found").Inc()
		return nil, err
	}
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		observability.LikeMutations.WithLabelValues("like", "error").Inc()
		return nil, err
	}
	observability.LikeMutations.WithLabelValues("like", "ok").Inc()
	return s.postRepo.GetByID(ctx, postID, userID)
}

// UnlikePost removes the user from the liked-by set; removing an absent
// like is a no-op success.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		observability.LikeMutations.WithLabelValues("unlike", "not_found").Inc()
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		observability.LikeMutations.WithLabelValues("unlike", "error").Inc()
		return nil, err
	}
	observability.LikeMutations.WithLabelValues("unlike", "ok").Inc()
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *PostService) SavePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Save(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *PostService) UnsavePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unsave(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *PostService) GetSavedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListSaved(ctx, userID, limit, offset)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("post", in.PostID)
	}
	if err != nil {
		return err
	}

	if post.UserID != in.UserID && !in.IsAdmin {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

func (s *PostService) requirePost(ctx context.Context, postID uint) error {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("post", postID)
	}
	return nil
}
