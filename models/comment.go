package models

import "time"

type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ArticleID       uint      `gorm:"not null;index" json:"article_id"`
	AuthorID        uint      `gorm:"not null;index" json:"author_id"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment_id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	IsActive        bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`

	Author  User      `gorm:"foreignKey:AuthorID" json:"author"`
	Replies []Comment `gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE;" json:"replies,omitempty"`
}
