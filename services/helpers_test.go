package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/e-blog-backend/config"
	"github.com/vnkhanh/e-blog-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "blog.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func seedUser(t *testing.T, db *gorm.DB, id uint, username string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Username: username, PasswordHash: "x", IsActive: true}
	mustCreate(t, db, u)
	return u
}

func seedArticle(t *testing.T, db *gorm.DB, id, authorID uint, title string) *models.Article {
	t.Helper()
	a := &models.Article{ID: id, AuthorID: authorID, Title: title, IsActive: true}
	mustCreate(t, db, a)
	return a
}

func seedComment(t *testing.T, db *gorm.DB, id, articleID, authorID uint, parentID *uint) *models.Comment {
	t.Helper()
	c := &models.Comment{ID: id, ArticleID: articleID, AuthorID: authorID, ParentCommentID: parentID, Content: "hi", IsActive: true}
	mustCreate(t, db, c)
	return c
}

func seedNotification(t *testing.T, db *gorm.DB, n models.Notification) *models.Notification {
	t.Helper()
	if n.Type == "" {
		n.Type = models.KindArticleLike
	}
	if n.Message == "" {
		n.Message = "m"
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.IsActive = true
	mustCreate(t, db, &n)
	return &n
}

func countNotifications(t *testing.T, db *gorm.DB, where ...any) int64 {
	t.Helper()
	var count int64
	q := db.Model(&models.Notification{})
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return count
}

type published struct {
	recipientID uint
	event       any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(recipientID uint, event any) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{recipientID, event})
	return 1
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

var testCtx = context.Background()

func uintPtr(v uint) *uint { return &v }
