package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/steveyiyo/tutor-relay/pkg/types"
)

const writeWait = 5 * time.Second

// Peer wraps one socket. gorilla connections allow a single concurrent
// writer, so every write goes through mu.
type Peer struct {
	ID   string
	mu   sync.Mutex
	conn *websocket.Conn
}

// Send writes one event envelope.
func (p *Peer) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	b, err := json.Marshal(types.Envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.TextMessage, b)
}

func (p *Peer) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Close sends a close frame with reason and closes the socket.
func (p *Peer) Close(code int, reason string) error {
	p.mu.Lock()
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	p.mu.Unlock()
	return p.conn.Close()
}

type Hub struct {
	mu    sync.RWMutex
	peers map[string]*Peer
}

func NewHub() *Hub {
	return &Hub{peers: map[string]*Peer{}}
}

func (h *Hub) Add(id string, c *websocket.Conn) *Peer {
	p := &Peer{ID: id, conn: c}
	h.mu.Lock()
	h.peers[id] = p
	h.mu.Unlock()
	return p
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.peers, id)
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// CloseAll closes every peer with a going-away frame. Read loops observe
// the closed sockets and clean up after themselves.
func (h *Hub) CloseAll(reason string) {
	h.mu.RLock()
	peers := make([]*Peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.RUnlock()
	for _, p := range peers {
		_ = p.Close(websocket.CloseGoingAway, reason)
	}
}
