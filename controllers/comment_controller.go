package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-blog-backend/middleware"
	"github.com/vnkhanh/e-blog-backend/models"
	"github.com/vnkhanh/e-blog-backend/services"
)

type CommentController struct {
	db       *gorm.DB
	notifier *services.NotificationService
}

func NewCommentController(db *gorm.DB, notifier *services.NotificationService) *CommentController {
	return &CommentController{db: db, notifier: notifier}
}

// CreateCommentRequest is the body of POST /api/articles/:id/comments.
type CreateCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID *uint  `json:"parent_comment_id,omitempty"`
}

type CommentResponse struct {
	ID              uint              `json:"id"`
	ArticleID       uint              `json:"article_id"`
	AuthorID        uint              `json:"author_id"`
	AuthorUsername  string            `json:"author_username"`
	ParentCommentID *uint             `json:"parent_comment_id"`
	Content         string            `json:"content"`
	CreatedAt       time.Time         `json:"created_at"`
	Replies         []CommentResponse `json:"replies"`
}

// Create posts a comment or a reply. The parent must be on the same article.
func (h *CommentController) Create(c *gin.Context) {
	articleID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content is required"})
		return
	}

	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)
	db := h.db.WithContext(ctx)

	var article models.Article
	if err := db.First(&article, "id = ? AND is_active = ?", articleID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.ParentCommentID != nil {
		var parent models.Comment
		err := db.First(&parent, "id = ? AND is_active = ?", *req.ParentCommentID, true).Error
		if err != nil || parent.ArticleID != articleID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment not found on this article"})
			return
		}
	}

	comment := models.Comment{
		ArticleID:       articleID,
		AuthorID:        user.ID,
		ParentCommentID: req.ParentCommentID,
		Content:         strings.TrimSpace(req.Content),
		IsActive:        true,
	}
	if err := db.Create(&comment).Error; err != nil {
		log.Error().Err(err).Uint("article_id", articleID).Msg("create comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comment"})
		return
	}

	h.notifier.OnCommentPosted(context.WithoutCancel(ctx), &comment)

	c.JSON(http.StatusCreated, CommentResponse{
		ID:              comment.ID,
		ArticleID:       comment.ArticleID,
		AuthorID:        comment.AuthorID,
		AuthorUsername:  user.Username,
		ParentCommentID: comment.ParentCommentID,
		Content:         comment.Content,
		CreatedAt:       comment.CreatedAt,
		Replies:         []CommentResponse{},
	})
}

// List returns the article's comments as a tree, oldest first at every level.
func (h *CommentController) List(c *gin.Context) {
	articleID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var comments []models.Comment
	err := h.db.WithContext(c.Request.Context()).
		Preload("Author").
		Where("article_id = ? AND is_active = ?", articleID, true).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, buildCommentTree(comments))
}

// buildCommentTree nests replies under their parents. Replies whose parent is
// missing (removed) are dropped.
func buildCommentTree(comments []models.Comment) []CommentResponse {
	children := make(map[uint][]models.Comment)
	var roots []models.Comment
	for _, cmt := range comments {
		if cmt.ParentCommentID == nil {
			roots = append(roots, cmt)
		} else {
			children[*cmt.ParentCommentID] = append(children[*cmt.ParentCommentID], cmt)
		}
	}

	var format func(models.Comment) CommentResponse
	format = func(cmt models.Comment) CommentResponse {
		resp := CommentResponse{
			ID:              cmt.ID,
			ArticleID:       cmt.ArticleID,
			AuthorID:        cmt.AuthorID,
			AuthorUsername:  cmt.Author.Username,
			ParentCommentID: cmt.ParentCommentID,
			Content:         cmt.Content,
			CreatedAt:       cmt.CreatedAt,
			Replies:         []CommentResponse{},
		}
		for _, reply := range children[cmt.ID] {
			resp.Replies = append(resp.Replies, format(reply))
		}
		return resp
	}

	out := make([]CommentResponse, 0, len(roots))
	for _, root := range roots {
		out = append(out, format(root))
	}
	return out
}
