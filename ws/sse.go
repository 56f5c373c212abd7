package ws

import (
	"errors"
	"io"
	"sync"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

var errConnClosed = errors.New("connection closed")

// sseConn writes Server-Sent Events to a committed streaming response. Writes are
// serialized because the bus and the heartbeat write from different goroutines.
type sseConn struct {
	mu     sync.Mutex
	w      gin.ResponseWriter
	closed bool
	done   chan struct{}
	once   sync.Once
}

func newSSEConn(w gin.ResponseWriter) *sseConn {
	return &sseConn{w: w, done: make(chan struct{})}
}

func (c *sseConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	if err := sse.Encode(c.w, sse.Event{Data: string(payload)}); err != nil {
		return err
	}
	c.w.Flush()
	return nil
}

// Ping writes an SSE comment line.
func (c *sseConn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	if _, err := io.WriteString(c.w, ": ping\n\n"); err != nil {
		return err
	}
	c.w.Flush()
	return nil
}

func (c *sseConn) Done() <-chan struct{} {
	return c.done
}

// Close stops further writes. The response itself ends when the handler returns.
func (c *sseConn) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
	})
}
