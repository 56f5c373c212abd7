package models

import "time"

// Like targets either an article (CommentID nil) or a comment (ArticleID nil).
// Unliking flips IsActive instead of deleting the row.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ArticleID *uint     `gorm:"index" json:"article_id"`
	CommentID *uint     `gorm:"index" json:"comment_id"`
	IsActive  bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
