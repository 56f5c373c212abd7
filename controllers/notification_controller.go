package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/e-blog-backend/middleware"
	"github.com/vnkhanh/e-blog-backend/services"
)

type NotificationController struct {
	store    services.NotificationStore
	notifier *services.NotificationService
}

func NewNotificationController(store services.NotificationStore, notifier *services.NotificationService) *NotificationController {
	return &NotificationController{store: store, notifier: notifier}
}

// List is GET /api/notifications?limit=&offset=&unreadOnly=
func (h *NotificationController) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	opts := services.ListOptions{
		Limit:      queryInt(c, "limit", services.DefaultListLimit),
		Offset:     queryInt(c, "offset", 0),
		UnreadOnly: queryBool(c, "unreadOnly"),
	}

	views, err := h.store.ListForRecipient(ctx, user.ID, opts)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}
	unread, err := h.store.CountUnread(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("count unread notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": services.EnrichAll(views),
		"unreadCount":   unread,
	})
}

// UnreadCount is the polling fallback for clients without a live stream.
func (h *NotificationController) UnreadCount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	unread, err := h.store.CountUnread(c.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("count unread notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": unread})
}

type markReadInput struct {
	IDs []uint `json:"ids"`
}

// MarkRead marks the given ids read; ids owned by someone else are ignored.
func (h *NotificationController) MarkRead(c *gin.Context) {
	var input markReadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	updated, err := h.store.MarkRead(ctx, input.IDs, user.ID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("mark notifications read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}
	unread, err := h.store.CountUnread(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("count unread notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}
	if updated > 0 {
		h.notifier.PublishUnreadCount(user.ID, unread)
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated, "unreadCount": unread})
}

func (h *NotificationController) MarkAllRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	updated, err := h.store.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("mark all notifications read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark all notifications read"})
		return
	}
	if updated > 0 {
		h.notifier.PublishUnreadCount(user.ID, 0)
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated, "unreadCount": 0})
}
