package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-blog-backend/controllers"
	"github.com/vnkhanh/e-blog-backend/middleware"
	"github.com/vnkhanh/e-blog-backend/services"
	"github.com/vnkhanh/e-blog-backend/ws"
)

// Deps are the long-lived components the routes are wired to.
type Deps struct {
	DB       *gorm.DB
	Auth     *services.AuthService
	Store    services.NotificationStore
	Notifier *services.NotificationService
	Bus      *ws.Bus
	Stream   *ws.StreamHandler
}

func SetupRouter(r *gin.Engine, d Deps) *gin.Engine {
	authCtl := controllers.NewAuthController(d.Auth)
	articleCtl := controllers.NewArticleController(d.DB)
	commentCtl := controllers.NewCommentController(d.DB, d.Notifier)
	likeCtl := controllers.NewLikeController(d.DB, d.Notifier)
	notificationCtl := controllers.NewNotificationController(d.Store, d.Notifier)
	adminCtl := controllers.NewAdminController(d.DB)
	healthCtl := controllers.NewHealthController(d.DB, d.Bus)

	requireAuth := middleware.RequireAuth(d.Auth)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", healthCtl.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
		auth.POST("/logout", requireAuth, authCtl.Logout)
		auth.GET("/logout", requireAuth, authCtl.Logout)
		auth.GET("/me", requireAuth, authCtl.Me)
	}

	articles := api.Group("/articles")
	{
		articles.POST("", requireAuth, articleCtl.Create)
		articles.GET("/:id", articleCtl.Get)

		articles.GET("/:id/likes/count", likeCtl.ArticleLikeCount)
		articles.GET("/:id/likes", requireAuth, likeCtl.ArticleLikeStatus)
		articles.POST("/:id/likes", requireAuth, likeCtl.LikeArticle)
		articles.DELETE("/:id/likes", requireAuth, likeCtl.UnlikeArticle)

		articles.GET("/:id/comments", commentCtl.List)
		articles.POST("/:id/comments", requireAuth, commentCtl.Create)
	}

	comments := api.Group("/comments", requireAuth)
	{
		comments.GET("/:id/likes", likeCtl.CommentLikeStatus)
		comments.POST("/:id/likes", likeCtl.LikeComment)
		comments.DELETE("/:id/likes", likeCtl.UnlikeComment)
	}

	// the stream authenticates itself: EventSource can only pass ?token=
	api.GET("/notifications/stream", d.Stream.NotificationStream)

	notifications := api.Group("/notifications", requireAuth)
	{
		notifications.GET("", notificationCtl.List)
		notifications.GET("/unread-count", notificationCtl.UnreadCount)
		notifications.POST("/mark-read", notificationCtl.MarkRead)
		notifications.POST("/mark-all-read", notificationCtl.MarkAllRead)
	}

	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	{
		admin.PATCH("/users/:id/status", adminCtl.SetUserStatus)
	}

	r.GET("/ws/notifications", d.Stream.NotificationWebSocket)

	return r
}
