package models

import "time"

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

// Story is a short-lived media post. Stories are hard-deleted by expiry
// filtering at query time rather than a background reaper.
type Story struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MediaURL  string    `gorm:"not null" json:"media_url"`
	MediaType string    `gorm:"not null;default:image" json:"media_type"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}
