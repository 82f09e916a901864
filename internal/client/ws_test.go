package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dwilliams27/gc-decomp/internal/eventlog"
	"github.com/dwilliams27/gc-decomp/internal/worker"
)

// testReconnectDelay keeps reconnect-path tests fast.
const testReconnectDelay = 30 * time.Millisecond

// wsServer is a stub event-stream server. It accepts any number of
// connections and lets tests push frames or kill connections.
type wsServer struct {
	srv   *httptest.Server
	mu    sync.Mutex
	conns []*websocket.Conn
	dials int32
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()
	w := &wsServer{}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	w.srv = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		atomic.AddInt32(&w.dials, 1)
		w.mu.Lock()
		w.conns = append(w.conns, conn)
		w.mu.Unlock()
		// Drain client keepalives until the connection dies.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(w.srv.Close)
	return w
}

func (w *wsServer) url() string {
	return "ws" + strings.TrimPrefix(w.srv.URL, "http") + "/ws/events"
}

func (w *wsServer) dialCount() int {
	return int(atomic.LoadInt32(&w.dials))
}

func (w *wsServer) latest(t *testing.T) *websocket.Conn {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.conns) == 0 {
		t.Fatal("no server-side connection")
	}
	return w.conns[len(w.conns)-1]
}

func (w *wsServer) send(t *testing.T, frame string) {
	t.Helper()
	if err := w.latest(t).WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func (w *wsServer) dropLatest(t *testing.T) {
	t.Helper()
	w.latest(t).Close()
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestSession(t *testing.T, url string) (*Session, *eventlog.Log, *worker.Aggregator) {
	t.Helper()
	lg := eventlog.New(0)
	agg := worker.NewAggregator()
	s := NewSession(url, lg, agg, WithReconnectDelay(testReconnectDelay))
	t.Cleanup(s.Close)
	return s, lg, agg
}

func TestSessionDeliversInOrder(t *testing.T) {
	srv := newWSServer(t)
	s, lg, agg := newTestSession(t, srv.url())

	if s.State() != Disconnected {
		t.Fatalf("initial state = %v, want disconnected", s.State())
	}
	s.Connect()
	waitFor(t, "connect", func() bool { return s.State() == Connected })
	if !lg.Connected() {
		t.Error("log connectivity flag not set on connect")
	}

	srv.send(t, `{"type":"agent_event","ts":1,"event":"iteration_start","function":"f","iteration":1}`)
	srv.send(t, `this is not json`)
	srv.send(t, `{"type":"pong","ts":2}`)
	srv.send(t, `{"type":"agent_event","ts":3,"event":"match_improved","function":"f","new":40}`)

	waitFor(t, "both events applied", func() bool { return lg.Len() == 2 })

	events := lg.Events()
	if events[0].Kind != "iteration_start" || events[1].Kind != "match_improved" {
		t.Errorf("log order = [%s %s]", events[0].Kind, events[1].Kind)
	}
	rec, ok := agg.Get("f")
	if !ok {
		t.Fatal("aggregator did not see the stream")
	}
	if rec.MatchPct != 40 {
		t.Errorf("MatchPct = %v, want 40", rec.MatchPct)
	}
}

func TestMalformedFrameLeavesStateUntouched(t *testing.T) {
	srv := newWSServer(t)
	s, lg, agg := newTestSession(t, srv.url())
	s.Connect()
	waitFor(t, "connect", func() bool { return s.State() == Connected })

	srv.send(t, `garbage`)
	srv.send(t, `[1,2]`)
	srv.send(t, `{"type":"agent_event","ts":1,"event":"iteration_start","function":"f"}`)
	waitFor(t, "sentinel event", func() bool { return lg.Len() > 0 })

	if lg.Len() != 1 {
		t.Errorf("log has %d entries, want 1", lg.Len())
	}
	if agg.Len() != 1 {
		t.Errorf("aggregator has %d records, want 1", agg.Len())
	}
	if s.State() != Connected {
		t.Errorf("state = %v after malformed frames, want connected", s.State())
	}
}

func TestReconnectAfterDrop(t *testing.T) {
	srv := newWSServer(t)
	s, lg, _ := newTestSession(t, srv.url())
	s.Connect()
	waitFor(t, "first connect", func() bool { return srv.dialCount() == 1 })

	srv.dropLatest(t)
	waitFor(t, "disconnect observed", func() bool { return s.State() != Connected || srv.dialCount() > 1 })
	waitFor(t, "reconnect", func() bool { return srv.dialCount() == 2 && s.State() == Connected })

	if !lg.Connected() {
		t.Error("log connectivity flag not restored after reconnect")
	}

	// The recovered connection still delivers.
	srv.send(t, `{"type":"agent_event","ts":9,"event":"iteration_start","function":"g"}`)
	waitFor(t, "post-reconnect event", func() bool { return lg.Len() == 1 })
}

func TestSingleReconnectScheduled(t *testing.T) {
	srv := newWSServer(t)
	s, _, _ := newTestSession(t, srv.url())
	s.Connect()
	waitFor(t, "first connect", func() bool { return srv.dialCount() == 1 })

	srv.dropLatest(t)
	waitFor(t, "reconnect", func() bool { return srv.dialCount() == 2 })

	// Even after several reconnect intervals there is exactly one retry:
	// the second connection is healthy, so no further dials may happen.
	time.Sleep(4 * testReconnectDelay)
	if got := srv.dialCount(); got != 2 {
		t.Errorf("dial count = %d, want 2 (double-scheduled reconnect)", got)
	}
}

func TestConnectIsNoopWhileConnected(t *testing.T) {
	srv := newWSServer(t)
	s, _, _ := newTestSession(t, srv.url())
	s.Connect()
	waitFor(t, "connect", func() bool { return s.State() == Connected })

	s.Connect()
	s.Connect()
	time.Sleep(2 * testReconnectDelay)
	if got := srv.dialCount(); got != 1 {
		t.Errorf("dial count = %d after redundant Connect calls, want 1", got)
	}
}

func TestCloseCancelsPendingReconnect(t *testing.T) {
	srv := newWSServer(t)
	s, lg, _ := newTestSession(t, srv.url())
	s.Connect()
	waitFor(t, "connect", func() bool { return srv.dialCount() == 1 })

	srv.dropLatest(t)
	waitFor(t, "disconnect observed", func() bool { return s.State() == Disconnected })

	// Teardown while the retry timer is pending.
	s.Close()
	time.Sleep(4 * testReconnectDelay)
	if got := srv.dialCount(); got != 1 {
		t.Errorf("dial count = %d after Close, want 1 (reconnect not cancelled)", got)
	}
	if s.State() != Disconnected {
		t.Errorf("state = %v after Close", s.State())
	}
	if lg.Connected() {
		t.Error("log still flagged connected after Close")
	}

	// Close is idempotent and Connect after Close stays inert.
	s.Close()
	s.Connect()
	time.Sleep(2 * testReconnectDelay)
	if got := srv.dialCount(); got != 1 {
		t.Errorf("dial count = %d after Connect on closed session, want 1", got)
	}
}

func TestDialFailureRetries(t *testing.T) {
	// Server that never upgrades: every dial fails, every failure must
	// arm exactly one new retry.
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "no", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	s, _, _ := newTestSession(t, url)
	s.Connect()

	waitFor(t, "stays disconnected", func() bool { return s.State() == Disconnected })
	time.Sleep(3 * testReconnectDelay)
	if s.State() == Connected {
		t.Error("connected to a non-websocket endpoint")
	}
}

func TestNotifyCoalesces(t *testing.T) {
	srv := newWSServer(t)
	s, lg, _ := newTestSession(t, srv.url())

	s.Connect()
	waitFor(t, "connect", func() bool { return s.State() == Connected })

	for i := 0; i < 10; i++ {
		srv.send(t, `{"type":"agent_event","ts":1,"event":"tool_call","function":"f","tool":"t"}`)
	}
	waitFor(t, "events drained", func() bool { return lg.Len() == 10 })

	// The channel holds at most one pending tick.
	<-s.Notify()
	select {
	case <-s.Notify():
	default:
	}
	select {
	case <-s.Notify():
		t.Error("notify channel buffered more than one tick")
	default:
	}
}
