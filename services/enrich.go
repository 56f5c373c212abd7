package services

import "github.com/vnkhanh/e-blog-backend/models"

// EnrichedNotification is the client-facing shape: the view plus camelCase
// aliases for the identifier fields.
type EnrichedNotification struct {
	NotificationView
	ActorIDAlias         uint  `json:"actorId"`
	ArticleIDAlias       uint  `json:"articleId"`
	CommentIDAlias       *uint `json:"commentId"`
	ParentCommentIDAlias *uint `json:"parentCommentId"`
	NotificationID       uint  `json:"notificationId"`
}

// InferKind picks a kind for records stored without one. Checked in order:
// parent comment => reply, comment => comment like, article with actor and
// recipient => article comment, otherwise article like.
func InferKind(v NotificationView) models.NotificationKind {
	switch {
	case v.ParentCommentID != nil:
		return models.KindCommentReply
	case v.CommentID != nil:
		return models.KindCommentLike
	case v.ArticleID != 0 && v.ActorID != 0 && v.RecipientID != 0:
		return models.KindArticleComment
	default:
		return models.KindArticleLike
	}
}

// Enrich normalizes the type and fills the aliases. Enrich(Enrich(v).NotificationView)
// equals Enrich(v).
func Enrich(v NotificationView) EnrichedNotification {
	if !v.Type.Valid() {
		v.Type = InferKind(v)
	}
	return EnrichedNotification{
		NotificationView:     v,
		ActorIDAlias:         v.ActorID,
		ArticleIDAlias:       v.ArticleID,
		CommentIDAlias:       v.CommentID,
		ParentCommentIDAlias: v.ParentCommentID,
		NotificationID:       v.ID,
	}
}

func EnrichAll(views []NotificationView) []EnrichedNotification {
	out := make([]EnrichedNotification, 0, len(views))
	for _, v := range views {
		out = append(out, Enrich(v))
	}
	return out
}

// UnreadEvent carries the current unread count. The first event of every stream
// has Type "init"; later badge refreshes use "unread".
type UnreadEvent struct {
	Type        string `json:"type"`
	UnreadCount int64  `json:"unreadCount"`
}

func InitEvent(unread int64) UnreadEvent {
	return UnreadEvent{Type: "init", UnreadCount: unread}
}

func UnreadCountEvent(unread int64) UnreadEvent {
	return UnreadEvent{Type: "unread", UnreadCount: unread}
}
