package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	PostKeyPrefix      = "post:%d"
	FeedFirstKeyPrefix = "feed:first:%d"
	StoriesKeyPrefix   = "stories:user:%d"
)

const (
	UserTTL = 5 * time.Minute
	PostTTL = 30 * time.Minute
	// FeedFirstTTL is deliberately short: the first feed page is the hottest
	// query and also the one that goes stale fastest.
	FeedFirstTTL = 30 * time.Second
	StoriesTTL   = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// FeedFirstKey caches the cursorless first page of the flat feed per limit.
func FeedFirstKey(limit int) string {
	return fmt.Sprintf(FeedFirstKeyPrefix, limit)
}

func StoriesKey(userID uint) string {
	return fmt.Sprintf(StoriesKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateFeedFirst drops every cached first page. Limits are clamped to
// a small range so scanning the possible keys is cheaper than tracking them.
func InvalidateFeedFirst(ctx context.Context, maxLimit int) {
	if client == nil {
		return
	}
	for limit := 1; limit <= maxLimit; limit++ {
		client.Del(ctx, FeedFirstKey(limit))
	}
}
