package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/e-blog-backend/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type ListOptions struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

// Normalize applies the default limit and clamps limit to [1, MaxListLimit] and
// offset to >= 0.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit == 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit < 1 {
		o.Limit = 1
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// NotificationView is a stored notification joined with the display fields the
// client needs.
type NotificationView struct {
	ID              uint                    `json:"id"`
	RecipientID     uint                    `json:"recipient_id"`
	ActorID         uint                    `json:"actor_id"`
	ArticleID       uint                    `json:"article_id"`
	CommentID       *uint                   `json:"comment_id"`
	ParentCommentID *uint                   `json:"parent_comment_id"`
	Type            models.NotificationKind `json:"type"`
	Message         string                  `json:"message"`
	Link            string                  `json:"link"`
	IsRead          bool                    `json:"is_read"`
	IsActive        bool                    `json:"is_active"`
	CreatedAt       time.Time               `json:"created_at"`
	ActorUsername   string                  `json:"actor_username"`
	ActorAvatarURL  string                  `json:"actor_avatar_url,omitempty"`
	ArticleTitle    string                  `json:"article_title"`
}

// NewNotificationView builds a view from a freshly created record.
func NewNotificationView(n *models.Notification, actorUsername, articleTitle string, parentCommentID *uint) NotificationView {
	return NotificationView{
		ID:              n.ID,
		RecipientID:     n.RecipientID,
		ActorID:         n.ActorID,
		ArticleID:       n.ArticleID,
		CommentID:       n.CommentID,
		ParentCommentID: parentCommentID,
		Type:            n.Type,
		Message:         n.Message,
		Link:            n.Link,
		IsRead:          n.IsRead,
		IsActive:        n.IsActive,
		CreatedAt:       n.CreatedAt,
		ActorUsername:   actorUsername,
		ArticleTitle:    articleTitle,
	}
}

// NotificationStore is the durable log of notifications, keyed by recipient.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	FindActiveArticleLike(ctx context.Context, actorID, recipientID, articleID uint) (*models.Notification, error)
	ListForRecipient(ctx context.Context, recipientID uint, opts ListOptions) ([]NotificationView, error)
	MarkRead(ctx context.Context, ids []uint, recipientID uint) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
}

type GormNotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if n.RecipientID == n.ActorID {
		return errors.New("refusing self-notification")
	}
	n.IsActive = true
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// FindActiveArticleLike returns the active article.like notification for the
// triple, or nil when there is none.
func (s *GormNotificationStore) FindActiveArticleLike(ctx context.Context, actorID, recipientID, articleID uint) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).
		Where("actor_id = ? AND recipient_id = ? AND article_id = ?", actorID, recipientID, articleID).
		Where("type = ? AND comment_id IS NULL AND is_active = ?", models.KindArticleLike, true).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find like notification: %w", err)
	}
	return &n, nil
}

func (s *GormNotificationStore) ListForRecipient(ctx context.Context, recipientID uint, opts ListOptions) ([]NotificationView, error) {
	opts = opts.Normalize()

	q := s.db.WithContext(ctx).
		Table("notifications AS n").
		Select(`n.id, n.recipient_id, n.actor_id, n.article_id, n.comment_id, n.type, n.message, n.link,
			n.is_read, n.is_active, n.created_at, c.parent_comment_id,
			u.username AS actor_username, u.avatar_url AS actor_avatar_url, a.title AS article_title`).
		Joins("JOIN users u ON u.id = n.actor_id").
		Joins("JOIN articles a ON a.id = n.article_id").
		Joins("LEFT JOIN comments c ON c.id = n.comment_id").
		Where("n.is_active = ? AND n.recipient_id = ?", true, recipientID)
	if opts.UnreadOnly {
		q = q.Where("n.is_read = ?", false)
	}

	views := make([]NotificationView, 0)
	err := q.Order("n.created_at DESC").Order("n.id DESC").
		Limit(opts.Limit).Offset(opts.Offset).
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return views, nil
}

// MarkRead only touches ids owned by recipientID.
func (s *GormNotificationStore) MarkRead(ctx context.Context, ids []uint, recipientID uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ?", recipientID, ids).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormNotificationStore) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_active = ? AND is_read = ?", recipientID, true, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormNotificationStore) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_active = ? AND is_read = ?", recipientID, true, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
