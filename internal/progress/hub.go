package progress

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 2 * time.Second

// Hub fans fetch progress events out to TCP line subscribers and
// websocket clients. A subscriber whose write fails is dropped on the
// spot rather than backing up a running fetch.
type Hub struct {
	mu  sync.Mutex
	tcp map[net.Conn]struct{}
	ws  map[*websocket.Conn]struct{}
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

type welcome struct {
	Type    string `json:"type"`
	Clients int    `json:"clients"`
}

func NewHub() *Hub {
	return &Hub{
		tcp: make(map[net.Conn]struct{}),
		ws:  make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	h.tcp[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.tcp, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) AddWS(conn *websocket.Conn) {
	h.mu.Lock()
	h.ws[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.ws, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Notify implements archive.Notifier.
func (h *Hub) Notify(ev FetchEvent) { h.broadcast(ev) }

func (h *Hub) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	line := append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.tcp {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := conn.Write(line); err != nil {
			_ = conn.Close()
			delete(h.tcp, conn)
		}
	}

	for conn := range h.ws {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = conn.Close()
			delete(h.ws, conn)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tcp)
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.tcp),
		WSClients:  len(h.ws),
	}
}

// Welcome sends the greeting line a new TCP subscriber sees first.
func (h *Hub) Welcome(conn net.Conn) {
	b, err := json.Marshal(welcome{Type: "welcome", Clients: h.Count()})
	if err != nil {
		return
	}
	_, _ = conn.Write(append(b, '\n'))
}
