package models

import (
	"time"

	"gorm.io/gorm"
)

// Media types accepted for posts.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Feed page size bounds. Out-of-range requests are clamped, never rejected.
const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 20
	MaxCaptionLength = 2200
)

// Post represents a feed post in the InstaKilo application.
//
// OwnerUsername and OwnerAvatar are a denormalized snapshot of the author
// taken at post-creation time. They are never re-joined live; profile edits
// do not rewrite old posts.
type Post struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Caption       string `gorm:"type:text" json:"caption"`
	MediaURL      string `gorm:"not null" json:"media_url"`
	MediaType     string `gorm:"not null;default:image" json:"media_type"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	User          *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OwnerUsername string `gorm:"not null" json:"owner_username"`
	OwnerAvatar   string `json:"owner_avatar"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time. Advisory only,
	// not guaranteed consistent with the comments table at any instant.
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`
	// Saved indicates whether the current requesting user saved this post (computed)
	Saved     bool           `gorm:"->" json:"saved"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like is one member of a post's liked-by set. The composite unique index
// is what makes the set a set: a user can appear at most once per post.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_pair" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_pair;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedPost mirrors Like for the save/unsave feature.
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_save_pair" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_save_pair;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
