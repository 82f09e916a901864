package mock

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Server exposes the mock event stream on /ws/events.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// SetupRoutes registers the stream endpoint on the mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/events", s.handleWS)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("mock upgrade: %v", err)
		return
	}
	c := s.hub.addClient(conn)
	log.Printf("mock client connected (%d total)", s.hub.ClientCount())
	defer func() {
		s.hub.removeClient(c)
		log.Printf("mock client disconnected (%d total)", s.hub.ClientCount())
	}()

	// The only inbound traffic is the keepalive "ping"; answer each one
	// with a pong frame on the client's send queue.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if string(data) != "ping" {
			continue
		}
		pong, _ := json.Marshal(map[string]any{
			"type": "pong",
			"ts":   float64(time.Now().UnixNano()) / float64(time.Second),
		})
		select {
		case c.send <- pong:
		default:
		}
	}
}

// ListenAndServe runs the mock server until it fails.
func ListenAndServe(host string, port int, mux *http.ServeMux) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("mock agent backend listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
