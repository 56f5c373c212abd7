package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

type fakeConn struct {
	mu      sync.Mutex
	sent    [][]byte
	sendErr error
	done    chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{done: make(chan struct{})}
}

func (f *fakeConn) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, append([]byte(nil), payload...))
	return nil
}

func (f *fakeConn) Ping() error { return nil }

func (f *fakeConn) Done() <-chan struct{} { return f.done }

func (f *fakeConn) Close() {
	f.once.Do(func() { close(f.done) })
}

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishWithoutConnections(t *testing.T) {
	bus := NewBus()
	if n := bus.Publish(42, map[string]string{"type": "x"}); n != 0 {
		t.Fatalf("Publish = %d, want 0", n)
	}
	if bus.HasRecipient(42) {
		t.Fatal("publish created a recipient entry")
	}
}

func TestPublishFansOutToEveryConnection(t *testing.T) {
	bus := NewBus()
	a, b, other := newFakeConn(), newFakeConn(), newFakeConn()
	bus.Register(7, a)
	bus.Register(7, b)
	bus.Register(8, other)

	n := bus.Publish(7, map[string]any{"type": "article.like", "id": 1})
	if n != 2 {
		t.Fatalf("Publish = %d, want 2", n)
	}

	for _, conn := range []*fakeConn{a, b} {
		msgs := conn.messages()
		if len(msgs) != 1 {
			t.Fatalf("got %d messages, want 1", len(msgs))
		}
		var got map[string]any
		if err := json.Unmarshal(msgs[0], &got); err != nil {
			t.Fatalf("payload not json: %v", err)
		}
		if got["type"] != "article.like" {
			t.Fatalf("payload = %v", got)
		}
	}
	if len(other.messages()) != 0 {
		t.Fatal("event leaked to another recipient")
	}
}

func TestPublishDropsOnlyFailingConnection(t *testing.T) {
	bus := NewBus()
	good, bad := newFakeConn(), newFakeConn()
	bad.sendErr = errors.New("broken pipe")
	bus.Register(7, good)
	bus.Register(7, bad)

	if n := bus.Publish(7, "hello"); n != 1 {
		t.Fatalf("Publish = %d, want 1", n)
	}
	if got := bus.Connections(7); got != 1 {
		t.Fatalf("Connections = %d, want 1", got)
	}
	select {
	case <-bad.Done():
	default:
		t.Fatal("failing connection was not closed")
	}

	if n := bus.Publish(7, "again"); n != 1 {
		t.Fatalf("second Publish = %d, want 1", n)
	}
	if got := len(good.messages()); got != 2 {
		t.Fatalf("good conn got %d messages, want 2", got)
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	bus := NewBus()
	conn := newFakeConn()
	cleanup := bus.Register(7, conn)

	cleanup()
	cleanup()
	bus.Unregister(7, conn)

	if bus.HasRecipient(7) {
		t.Fatal("empty recipient entry left behind")
	}
	if s := bus.Stats(); s.Recipients != 0 || s.Connections != 0 {
		t.Fatalf("Stats = %+v", s)
	}
	if n := bus.Publish(7, "x"); n != 0 {
		t.Fatalf("Publish after cleanup = %d", n)
	}
}

func TestRemovingOneConnectionKeepsOthers(t *testing.T) {
	bus := NewBus()
	a, b := newFakeConn(), newFakeConn()
	cleanupA := bus.Register(7, a)
	bus.Register(7, b)

	cleanupA()

	if got := bus.Connections(7); got != 1 {
		t.Fatalf("Connections = %d, want 1", got)
	}
	if n := bus.Publish(7, "x"); n != 1 {
		t.Fatalf("Publish = %d, want 1", n)
	}
}

func TestDoneTriggersCleanup(t *testing.T) {
	bus := NewBus()
	conn := newFakeConn()
	bus.Register(7, conn)

	conn.Close()

	waitFor(t, "cleanup after Done", func() bool { return !bus.HasRecipient(7) })
}

func TestRegisterMovesConnectionBetweenRecipients(t *testing.T) {
	bus := NewBus()
	conn := newFakeConn()
	bus.Register(7, conn)
	bus.Register(8, conn)

	if bus.HasRecipient(7) {
		t.Fatal("connection still listed under old recipient")
	}
	if got := bus.Connections(8); got != 1 {
		t.Fatalf("Connections(8) = %d", got)
	}
	if s := bus.Stats(); s.Connections != 1 {
		t.Fatalf("Stats = %+v", s)
	}
}

func TestConcurrentRegisterAndPublish(t *testing.T) {
	bus := NewBus()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			conn := newFakeConn()
			cleanup := bus.Register(7, conn)
			cleanup()
		}()
		go func() {
			defer wg.Done()
			bus.Publish(7, "x")
		}()
	}
	wg.Wait()

	if bus.HasRecipient(7) {
		t.Fatal("recipient entry left after all cleanups")
	}
}

func TestRegisterSameRecipientTwice(t *testing.T) {
	bus := NewBus()
	conn := newFakeConn()
	bus.Register(7, conn)
	cleanup := bus.Register(7, conn)

	if got := bus.Connections(7); got != 1 {
		t.Fatalf("Connections = %d, want 1", got)
	}
	if n := bus.Publish(7, "x"); n != 1 {
		t.Fatalf("Publish = %d, want 1", n)
	}

	cleanup()
	cleanup()
	if bus.HasRecipient(7) {
		t.Fatal("recipient left after cleanup")
	}
}

func TestCloseAll(t *testing.T) {
	bus := NewBus()
	a, b, c := newFakeConn(), newFakeConn(), newFakeConn()
	bus.Register(7, a)
	bus.Register(7, b)
	bus.Register(8, c)

	bus.CloseAll()

	for _, conn := range []*fakeConn{a, b, c} {
		select {
		case <-conn.Done():
		default:
			t.Fatal("connection left open")
		}
	}
	waitFor(t, "registry to empty", func() bool {
		s := bus.Stats()
		return s.Recipients == 0 && s.Connections == 0
	})
}
