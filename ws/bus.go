package ws

import (
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/e-blog-backend/metrics"
)

// Conn is one open live connection. Done is closed once the transport is gone.
type Conn interface {
	Send(payload []byte) error
	Done() <-chan struct{}
	Close()
}

// Bus maps a recipient to its open connections and fans events out to them.
// It is in-memory and lossy: events for a recipient with no connection are dropped.
type Bus struct {
	mu     sync.RWMutex
	conns  map[uint]map[Conn]struct{}
	owners map[Conn]uint
}

func NewBus() *Bus {
	return &Bus{
		conns:  make(map[uint]map[Conn]struct{}),
		owners: make(map[Conn]uint),
	}
}

// Register adds conn under recipientID and returns its cleanup. The same cleanup
// runs when conn.Done() closes; only the first call has an effect. A conn already
// registered under another recipient is moved; registering it again under the
// same recipient only returns a cleanup.
func (b *Bus) Register(recipientID uint, conn Conn) func() {
	b.mu.Lock()
	if prev, ok := b.owners[conn]; ok {
		if prev == recipientID {
			b.mu.Unlock()
			return func() { b.Unregister(recipientID, conn) }
		}
		b.removeLocked(prev, conn)
	}
	set, ok := b.conns[recipientID]
	if !ok {
		set = make(map[Conn]struct{})
		b.conns[recipientID] = set
	}
	set[conn] = struct{}{}
	b.owners[conn] = recipientID
	b.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() { b.Unregister(recipientID, conn) })
	}
	go func() {
		<-conn.Done()
		cleanup()
	}()
	return cleanup
}

// Unregister removes conn from recipientID. Safe to call repeatedly.
func (b *Bus) Unregister(recipientID uint, conn Conn) {
	b.mu.Lock()
	b.removeLocked(recipientID, conn)
	b.mu.Unlock()
}

func (b *Bus) removeLocked(recipientID uint, conn Conn) {
	set, ok := b.conns[recipientID]
	if !ok {
		return
	}
	delete(set, conn)
	if b.owners[conn] == recipientID {
		delete(b.owners, conn)
	}
	if len(set) == 0 {
		delete(b.conns, recipientID)
	}
}

// Publish serializes event once and writes it to every connection of recipientID
// concurrently. A failed write drops that connection only. Returns the number of
// successful writes.
func (b *Bus) Publish(recipientID uint, event any) int {
	metrics.EventsPublished.Inc()

	b.mu.RLock()
	set := b.conns[recipientID]
	targets := make([]Conn, 0, len(set))
	for conn := range set {
		targets = append(targets, conn)
	}
	b.mu.RUnlock()

	if len(targets) == 0 {
		return 0
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Uint("recipient_id", recipientID).Msg("marshal live event")
		return 0
	}

	var delivered atomic.Int64
	var wg sync.WaitGroup
	for _, conn := range targets {
		wg.Add(1)
		go func(conn Conn) {
			defer wg.Done()
			if err := conn.Send(payload); err != nil {
				metrics.EventWriteFailures.Inc()
				log.Debug().Err(err).Uint("recipient_id", recipientID).Msg("dropping live connection")
				b.Unregister(recipientID, conn)
				conn.Close()
				return
			}
			delivered.Add(1)
		}(conn)
	}
	wg.Wait()

	n := int(delivered.Load())
	metrics.EventsDelivered.Add(float64(n))
	return n
}

// CloseAll closes every registered connection. Their Done hooks unregister them.
// Used on server shutdown so open streams end instead of holding it up.
func (b *Bus) CloseAll() {
	b.mu.RLock()
	conns := make([]Conn, 0, len(b.owners))
	for conn := range b.owners {
		conns = append(conns, conn)
	}
	b.mu.RUnlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// Connections returns how many connections recipientID has open.
func (b *Bus) Connections(recipientID uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns[recipientID])
}

func (b *Bus) HasRecipient(recipientID uint) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.conns[recipientID]
	return ok
}

type Stats struct {
	Recipients  int `json:"recipients"`
	Connections int `json:"connections"`
}

func (b *Bus) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{Recipients: len(b.conns), Connections: len(b.owners)}
}
