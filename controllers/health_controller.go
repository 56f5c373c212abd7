package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-blog-backend/ws"
)

const dbPingTimeout = 2 * time.Second

type HealthController struct {
	db      *gorm.DB
	bus     *ws.Bus
	started time.Time
}

func NewHealthController(db *gorm.DB, bus *ws.Bus) *HealthController {
	return &HealthController{db: db, bus: bus, started: time.Now()}
}

type healthReport struct {
	Status    string   `json:"status"`
	Database  string   `json:"db"`
	Stream    ws.Stats `json:"stream"`
	Uptime    string   `json:"uptime"`
	Timestamp int64    `json:"timestamp"`
}

// HealthCheck reports degraded with a 503 when the database does not answer.
func (h *HealthController) HealthCheck(c *gin.Context) {
	report := healthReport{
		Status:    "ok",
		Database:  "ok",
		Stream:    h.bus.Stats(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().Unix(),
	}

	if err := h.pingDB(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("health: database unreachable")
		report.Status = "degraded"
		report.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *HealthController) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
