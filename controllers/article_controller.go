package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-blog-backend/middleware"
	"github.com/vnkhanh/e-blog-backend/models"
)

type ArticleController struct {
	db *gorm.DB
}

func NewArticleController(db *gorm.DB) *ArticleController {
	return &ArticleController{db: db}
}

type CreateArticleRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

func (h *ArticleController) Create(c *gin.Context) {
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	article := models.Article{
		AuthorID: user.ID,
		Title:    req.Title,
		Slug:     slug.Make(req.Title),
		Content:  req.Content,
		IsActive: true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&article).Error; err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("create article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create article"})
		return
	}

	c.Header("Location", fmt.Sprintf("/api/articles/%d", article.ID))
	c.JSON(http.StatusCreated, article)
}

func (h *ArticleController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var article models.Article
	err := h.db.WithContext(c.Request.Context()).
		Preload("Author").
		First(&article, "id = ? AND is_active = ?", id, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Uint("article_id", id).Msg("get article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load article"})
		return
	}
	c.JSON(http.StatusOK, article)
}
