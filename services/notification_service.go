package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/e-blog-backend/metrics"
	"github.com/vnkhanh/e-blog-backend/models"
	"github.com/vnkhanh/e-blog-backend/utils"
)

// Publisher pushes an event to every live connection of a recipient and reports
// how many received it.
type Publisher interface {
	Publish(recipientID uint, event any) int
}

// NotificationService decides whether a social action produces a notification,
// records it and hands the enriched record to the live bus.
//
// The On* methods never return errors: a failed notification must not fail the
// like or comment that triggered it.
type NotificationService struct {
	store  NotificationStore
	lookup ContentLookup
	bus    Publisher
}

func NewNotificationService(store NotificationStore, lookup ContentLookup, bus Publisher) *NotificationService {
	return &NotificationService{store: store, lookup: lookup, bus: bus}
}

func ArticleLink(articleID uint) string {
	return fmt.Sprintf("/articles/%d", articleID)
}

func CommentLink(articleID, commentID uint) string {
	return fmt.Sprintf("/articles/%d#comment-%d", articleID, commentID)
}

// OnArticleLiked notifies the article author, at most once per active
// (actor, author, article) like notification. Unlikes never retract it.
func (s *NotificationService) OnArticleLiked(ctx context.Context, actorID, articleID uint) *models.Notification {
	n, err := s.articleLiked(ctx, actorID, articleID)
	s.settle(models.KindArticleLike, actorID, articleID, err)
	return n
}

// OnCommentLiked notifies the comment author on every qualifying like.
func (s *NotificationService) OnCommentLiked(ctx context.Context, actorID, commentID uint) *models.Notification {
	n, err := s.commentLiked(ctx, actorID, commentID)
	s.settle(models.KindCommentLike, actorID, commentID, err)
	return n
}

// OnCommentPosted notifies the parent comment author for replies and the article
// author for top-level comments.
func (s *NotificationService) OnCommentPosted(ctx context.Context, comment *models.Comment) *models.Notification {
	kind := models.KindArticleComment
	if comment.ParentCommentID != nil {
		kind = models.KindCommentReply
	}
	n, err := s.commentPosted(ctx, comment)
	s.settle(kind, comment.AuthorID, comment.ID, err)
	return n
}

// PublishUnreadCount refreshes the badge on the recipient's other open clients.
func (s *NotificationService) PublishUnreadCount(recipientID uint, unread int64) {
	s.bus.Publish(recipientID, UnreadCountEvent(unread))
}

func (s *NotificationService) settle(kind models.NotificationKind, actorID, targetID uint, err error) {
	if err == nil {
		return
	}
	metrics.NotificationFailures.WithLabelValues(string(kind)).Inc()
	log.Error().Err(err).
		Str("type", string(kind)).
		Uint("actor_id", actorID).
		Uint("target_id", targetID).
		Msg("notification creation failed")
}

func (s *NotificationService) articleLiked(ctx context.Context, actorID, articleID uint) (*models.Notification, error) {
	article, err := s.lookup.GetArticle(ctx, articleID)
	if err != nil {
		return nil, fail(err)
	}
	if article.AuthorID == actorID {
		return nil, nil
	}

	existing, err := s.store.FindActiveArticleLike(ctx, actorID, article.AuthorID, article.ID)
	if err != nil {
		return nil, fail(err)
	}
	if existing != nil {
		return nil, nil
	}

	actor, err := s.lookup.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, fail(err)
	}

	n := &models.Notification{
		RecipientID: article.AuthorID,
		ActorID:     actorID,
		ArticleID:   article.ID,
		Type:        models.KindArticleLike,
		Message:     fmt.Sprintf("%s liked your article %q", actor.Username, article.Title),
		Link:        ArticleLink(article.ID),
	}
	return s.record(ctx, n, actor.Username, article.Title, nil)
}

func (s *NotificationService) commentLiked(ctx context.Context, actorID, commentID uint) (*models.Notification, error) {
	comment, err := s.lookup.GetComment(ctx, commentID)
	if err != nil {
		return nil, fail(err)
	}
	if comment.AuthorID == actorID {
		return nil, nil
	}

	title := ""
	article, err := s.lookup.GetArticle(ctx, comment.ArticleID)
	switch {
	case err == nil:
		title = article.Title
	case !errors.Is(err, ErrNotFound):
		return nil, fail(err)
	}

	actor, err := s.lookup.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, fail(err)
	}

	n := &models.Notification{
		RecipientID: comment.AuthorID,
		ActorID:     actorID,
		ArticleID:   comment.ArticleID,
		CommentID:   &comment.ID,
		Type:        models.KindCommentLike,
		Message:     fmt.Sprintf("%s liked your comment on %q", actor.Username, title),
		Link:        CommentLink(comment.ArticleID, comment.ID),
	}
	return s.record(ctx, n, actor.Username, title, comment.ParentCommentID)
}

func (s *NotificationService) commentPosted(ctx context.Context, comment *models.Comment) (*models.Notification, error) {
	article, err := s.lookup.GetArticle(ctx, comment.ArticleID)
	if err != nil {
		return nil, fail(err)
	}

	var n *models.Notification
	if comment.ParentCommentID != nil {
		parent, err := s.lookup.GetComment(ctx, *comment.ParentCommentID)
		if err != nil {
			return nil, fail(err)
		}
		// the article author is not told about replies to someone else's comment
		if parent.AuthorID == comment.AuthorID {
			return nil, nil
		}
		n = &models.Notification{
			RecipientID: parent.AuthorID,
			CommentID:   &comment.ID,
			Type:        models.KindCommentReply,
		}
	} else {
		if article.AuthorID == comment.AuthorID {
			return nil, nil
		}
		n = &models.Notification{
			RecipientID: article.AuthorID,
			Type:        models.KindArticleComment,
		}
	}

	actor, err := s.lookup.GetUserByID(ctx, comment.AuthorID)
	if err != nil {
		return nil, fail(err)
	}

	n.ActorID = comment.AuthorID
	n.ArticleID = article.ID
	n.Link = CommentLink(article.ID, comment.ID)
	if n.Type == models.KindCommentReply {
		n.Message = fmt.Sprintf("%s replied to your comment on %q", actor.Username, article.Title)
	} else {
		n.Message = fmt.Sprintf("%s commented on your article %q", actor.Username, article.Title)
	}
	return s.record(ctx, n, actor.Username, article.Title, comment.ParentCommentID)
}

func (s *NotificationService) record(ctx context.Context, n *models.Notification, actorUsername, articleTitle string, parentCommentID *uint) (*models.Notification, error) {
	if err := s.store.Create(ctx, n); err != nil {
		return nil, fail(err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	view := NewNotificationView(n, actorUsername, articleTitle, parentCommentID)
	s.bus.Publish(n.RecipientID, Enrich(view))
	return n, nil
}

func fail(err error) error {
	return fmt.Errorf("%w: %w", utils.ErrNotificationCreationFailed, err)
}
