package client

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dwilliams27/gc-decomp/internal/event"
	"github.com/dwilliams27/gc-decomp/internal/eventlog"
	"github.com/dwilliams27/gc-decomp/internal/worker"
)

const (
	// DefaultReconnectDelay is the fixed retry interval after a drop.
	// There is no backoff and no ceiling: the server is on a local,
	// trusted network and reconnecting forever is the desired behavior.
	DefaultReconnectDelay = 3 * time.Second

	// DefaultKeepaliveInterval paces the client's "ping" text frames.
	DefaultKeepaliveInterval = 30 * time.Second

	writeTimeout = 10 * time.Second
)

// ConnState is the session's externally visible connection status.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// Session owns at most one live connection to the agent's event stream
// and feeds every decoded frame to the event log and the worker
// aggregator, in that order, one frame at a time. A dropped connection
// is retried indefinitely at a fixed interval.
type Session struct {
	url               string
	reconnectDelay    time.Duration
	keepaliveInterval time.Duration

	mu       sync.Mutex
	conn     *websocket.Conn
	state    ConnState
	retry    *time.Timer // pending reconnect; nil when none scheduled
	stopPing chan struct{}
	closed   bool

	log    *eventlog.Log
	agg    *worker.Aggregator
	notify chan struct{}
}

// SessionOption adjusts session construction.
type SessionOption func(*Session)

// WithReconnectDelay overrides the fixed reconnect interval.
func WithReconnectDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.reconnectDelay = d }
}

// WithKeepaliveInterval overrides the ping cadence.
func WithKeepaliveInterval(d time.Duration) SessionOption {
	return func(s *Session) { s.keepaliveInterval = d }
}

// NewSession creates a session that will feed the given log and
// aggregator. It does not connect; call Connect.
func NewSession(url string, lg *eventlog.Log, agg *worker.Aggregator, opts ...SessionOption) *Session {
	s := &Session{
		url:               url,
		reconnectDelay:    DefaultReconnectDelay,
		keepaliveInterval: DefaultKeepaliveInterval,
		log:               lg,
		agg:               agg,
		notify:            make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current connection status.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Notify returns a coalescing channel that receives a tick after every
// applied event or status change. Consumers that miss ticks still see
// the latest state on the next read.
func (s *Session) Notify() <-chan struct{} {
	return s.notify
}

// Connect opens the stream connection. It is a no-op when a connection
// is already live, a dial is in flight, or the session is closed.
func (s *Session) Connect() {
	s.mu.Lock()
	if s.closed || s.conn != nil || s.state == Connecting {
		s.mu.Unlock()
		return
	}
	s.state = Connecting
	s.mu.Unlock()
	s.wake()
	go s.dial()
}

// Close tears the session down: the pending reconnect (if any) is
// cancelled and the live connection closed. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	conn := s.conn
	s.conn = nil
	if s.stopPing != nil {
		close(s.stopPing)
		s.stopPing = nil
	}
	s.state = Disconnected
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.log.SetConnected(false)
	s.wake()
}

func (s *Session) dial() {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		log.Printf("stream dial %s: %v (retry in %v)", s.url, err, s.reconnectDelay)
		s.state = Disconnected
		s.scheduleReconnectLocked()
		s.mu.Unlock()
		s.log.SetConnected(false)
		s.wake()
		return
	}
	s.conn = conn
	s.state = Connected
	s.stopPing = make(chan struct{})
	stop := s.stopPing
	s.mu.Unlock()

	s.log.SetConnected(true)
	s.wake()
	go s.keepalive(conn, stop)
	go s.readLoop(conn)
}

// readLoop decodes and applies frames until the connection dies. Each
// frame is fully applied (log append, then aggregator fold) before the
// next is read, so state mutations follow wire arrival order exactly.
func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.dropConn(conn)
			return
		}

		ev, err := event.Parse(data)
		if err != nil {
			// Not the structure we expect; discard and keep reading.
			continue
		}
		if ev.IsKeepalive() {
			continue
		}

		s.log.Append(ev)
		s.agg.Process(ev)
		s.wake()
	}
}

// dropConn handles a dead connection: clears the reference if it is
// still current, flips status, and schedules exactly one reconnect.
// A stale connection (already replaced) only gets closed.
func (s *Session) dropConn(conn *websocket.Conn) {
	conn.Close()

	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.state = Disconnected
	if s.stopPing != nil {
		close(s.stopPing)
		s.stopPing = nil
	}
	if !s.closed {
		s.scheduleReconnectLocked()
	}
	s.mu.Unlock()

	s.log.SetConnected(false)
	s.wake()
}

// scheduleReconnectLocked arms the retry timer unless one is already
// pending. Caller holds s.mu.
func (s *Session) scheduleReconnectLocked() {
	if s.retry != nil || s.closed {
		return
	}
	s.retry = time.AfterFunc(s.reconnectDelay, func() {
		s.mu.Lock()
		s.retry = nil
		if s.closed || s.conn != nil || s.state == Connecting {
			s.mu.Unlock()
			return
		}
		s.state = Connecting
		s.mu.Unlock()
		s.wake()
		s.dial()
	})
}

// keepalive sends the protocol's "ping" text frame on a fixed interval.
// The server answers with a pong frame, which readLoop discards. This
// goroutine is the connection's only writer.
func (s *Session) keepalive(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(s.keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// wake publishes a coalesced change notification.
func (s *Session) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
