package models

import (
	"time"
)

// NotificationKind is chosen by the decision logic when a notification is created.
type NotificationKind string

const (
	KindArticleLike    NotificationKind = "article.like"
	KindCommentLike    NotificationKind = "comment.like"
	KindArticleComment NotificationKind = "article.comment"
	KindCommentReply   NotificationKind = "comment.reply"
)

func (k NotificationKind) Valid() bool {
	switch k {
	case KindArticleLike, KindCommentLike, KindArticleComment, KindCommentReply:
		return true
	}
	return false
}

// Notification is owned by RecipientID. Only IsRead changes after creation.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notification_recipient" json:"recipient_id"`
	ActorID     uint             `gorm:"not null;index" json:"actor_id"`
	ArticleID   uint             `gorm:"not null;index" json:"article_id"`
	CommentID   *uint            `gorm:"index" json:"comment_id"` // nil => article-level
	Type        NotificationKind `gorm:"size:32" json:"type"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	Link        string           `gorm:"size:500" json:"link"`
	IsRead      bool             `gorm:"default:false;not null;index:idx_notification_recipient" json:"is_read"`
	IsActive    bool             `gorm:"default:true;not null" json:"is_active"`
	CreatedAt   time.Time        `gorm:"autoCreateTime;index" json:"created_at"`

	Recipient User    `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE;" json:"-"`
	Actor     User    `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE;" json:"-"`
	Article   Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE;" json:"-"`
}
