package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-blog-backend/middleware"
	"github.com/vnkhanh/e-blog-backend/models"
	"github.com/vnkhanh/e-blog-backend/services"
)

// likeTarget selects article likes or comment likes.
type likeTarget struct {
	column string // article_id | comment_id
	other  string
	id     uint
}

func articleTarget(id uint) likeTarget {
	return likeTarget{column: "article_id", other: "comment_id", id: id}
}

func commentTarget(id uint) likeTarget {
	return likeTarget{column: "comment_id", other: "article_id", id: id}
}

type LikeController struct {
	db       *gorm.DB
	notifier *services.NotificationService
}

func NewLikeController(db *gorm.DB, notifier *services.NotificationService) *LikeController {
	return &LikeController{db: db, notifier: notifier}
}

func (h *LikeController) scope(ctx context.Context, userID uint, t likeTarget) *gorm.DB {
	return h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(t.column+" = ?", t.id).
		Where(t.other + " IS NULL")
}

func (h *LikeController) findLike(ctx context.Context, userID uint, t likeTarget, activeOnly bool) (*models.Like, error) {
	q := h.scope(ctx, userID, t)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var like models.Like
	err := q.First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (h *LikeController) countLikes(ctx context.Context, t likeTarget) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).Model(&models.Like{}).
		Where(t.column+" = ? AND is_active = ?", t.id, true).
		Count(&count).Error
	return count, err
}

// like activates the user's like, reusing a soft-removed row when there is one.
// created is false when the like was already active.
func (h *LikeController) like(ctx context.Context, userID uint, t likeTarget) (*models.Like, bool, error) {
	existing, err := h.findLike(ctx, userID, t, false)
	if err != nil {
		return nil, false, err
	}
	if existing != nil && existing.IsActive {
		return existing, false, nil
	}
	if existing != nil {
		if err := h.db.WithContext(ctx).Model(existing).Update("is_active", true).Error; err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}

	like := models.Like{UserID: userID, IsActive: true}
	if t.column == "article_id" {
		like.ArticleID = &t.id
	} else {
		like.CommentID = &t.id
	}
	if err := h.db.WithContext(ctx).Create(&like).Error; err != nil {
		return nil, false, err
	}
	return &like, true, nil
}

func (h *LikeController) exists(ctx context.Context, model any, id uint) (bool, error) {
	var count int64
	err := h.db.WithContext(ctx).Model(model).Where("id = ? AND is_active = ?", id, true).Count(&count).Error
	return count > 0, err
}

func (h *LikeController) count(c *gin.Context, t likeTarget) {
	count, err := h.countLikes(c.Request.Context(), t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"likesCount": count})
}

func (h *LikeController) status(c *gin.Context, t likeTarget) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	like, err := h.findLike(ctx, user.ID, t, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	count, err := h.countLikes(ctx, t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": like != nil, "likesCount": count})
}

// add likes the target and runs notify when the like is new. The notification
// runs detached from the request so a client disconnect cannot cut it short; its
// failures are swallowed by the notification service.
func (h *LikeController) add(c *gin.Context, t likeTarget, model any, notFound string, notify func(ctx context.Context, actorID uint)) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	ok, err := h.exists(ctx, model, t.id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}

	like, created, err := h.like(ctx, user.ID, t)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Str(t.column, fmt.Sprint(t.id)).Msg("like")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Already liked"})
		return
	}

	notify(context.WithoutCancel(ctx), user.ID)

	c.JSON(http.StatusCreated, gin.H{"message": "Like added successfully", "like": like})
}

// remove soft-deletes the like. Notifications already sent stay as they are.
func (h *LikeController) remove(c *gin.Context, t likeTarget) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	like, err := h.findLike(ctx, user.ID, t, true)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if like == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Like not found"})
		return
	}
	if err := h.db.WithContext(ctx).Model(like).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ====== ARTICLE LIKES ======
func (h *LikeController) ArticleLikeCount(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.count(c, articleTarget(id))
	}
}

func (h *LikeController) ArticleLikeStatus(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.status(c, articleTarget(id))
	}
}

func (h *LikeController) LikeArticle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.add(c, articleTarget(id), &models.Article{}, "Article not found", func(ctx context.Context, actorID uint) {
		h.notifier.OnArticleLiked(ctx, actorID, id)
	})
}

func (h *LikeController) UnlikeArticle(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.remove(c, articleTarget(id))
	}
}

// ====== COMMENT LIKES ======
func (h *LikeController) CommentLikeStatus(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.status(c, commentTarget(id))
	}
}

func (h *LikeController) LikeComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.add(c, commentTarget(id), &models.Comment{}, "Comment not found", func(ctx context.Context, actorID uint) {
		h.notifier.OnCommentLiked(ctx, actorID, id)
	})
}

func (h *LikeController) UnlikeComment(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.remove(c, commentTarget(id))
	}
}
