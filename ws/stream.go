package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/e-blog-backend/metrics"
	"github.com/vnkhanh/e-blog-backend/models"
	"github.com/vnkhanh/e-blog-backend/services"
	"github.com/vnkhanh/e-blog-backend/utils"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *utils.Claims, error)
}

type UnreadCounter interface {
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
}

type streamConn interface {
	Conn
	Ping() error
}

// StreamHandler serves the live notification feed over SSE and WebSocket.
type StreamHandler struct {
	auth      Authenticator
	unread    UnreadCounter
	bus       *Bus
	heartbeat time.Duration
	upgrader  websocket.Upgrader
}

func NewStreamHandler(auth Authenticator, unread UnreadCounter, bus *Bus, heartbeat time.Duration, allowOrigins []string) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &StreamHandler{
		auth:      auth,
		unread:    unread,
		bus:       bus,
		heartbeat: heartbeat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowOrigins),
		},
	}
}

func originChecker(allowOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range allowOrigins {
			if allowed == "*" || strings.EqualFold(allowed, origin) {
				return true
			}
		}
		return false
	}
}

// NotificationStream is GET /api/notifications/stream. Authentication failures
// get one JSON error response; once the event-stream headers are out, problems
// only end the stream.
func (h *StreamHandler) NotificationStream(c *gin.Context) {
	user, _, err := h.auth.Authenticate(c.Request.Context(), utils.StreamToken(c))
	if err != nil {
		log.Debug().Err(err).Str("ip", c.ClientIP()).Msg("notification stream rejected")
		utils.AbortWithAuthError(c, err)
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	conn := newSSEConn(c.Writer)
	defer conn.Close()

	h.serve(c.Request.Context(), user.ID, conn, "sse")
}

// NotificationWebSocket is GET /ws/notifications, the same feed over a WebSocket.
func (h *StreamHandler) NotificationWebSocket(c *gin.Context) {
	user, _, err := h.auth.Authenticate(c.Request.Context(), utils.StreamToken(c))
	if err != nil {
		log.Debug().Err(err).Str("ip", c.ClientIP()).Msg("notification websocket rejected")
		utils.AbortWithAuthError(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := newWSConn(raw)
	defer conn.Close()
	go conn.readPump(h.heartbeat)

	h.serve(c.Request.Context(), user.ID, conn, "websocket")
}

// serve sends the init snapshot, registers conn on the bus and keeps it alive
// until the request context ends, the transport closes or a heartbeat fails.
func (h *StreamHandler) serve(ctx context.Context, userID uint, conn streamConn, transport string) {
	unread, err := h.unread.CountUnread(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("unread count for stream init")
	} else {
		payload, err := json.Marshal(services.InitEvent(unread))
		if err == nil {
			if err := conn.Send(payload); err != nil {
				return
			}
		}
	}

	cleanup := h.bus.Register(userID, conn)
	defer cleanup()

	gauge := metrics.StreamConnections.WithLabelValues(transport)
	gauge.Inc()
	defer gauge.Dec()

	log.Info().Uint("user_id", userID).Str("transport", transport).Msg("notification stream connected")
	defer log.Info().Uint("user_id", userID).Str("transport", transport).Msg("notification stream closed")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}
