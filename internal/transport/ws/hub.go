package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server-initiated message types. The domain events are named by the service layer.
const (
	MsgConnected MessageType = "connected"
	MsgError     MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections per logged-in user
type Hub struct {
	// email -> open connections (one per browser tab)
	conns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	disconnect chan string
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	Email string
	Send  chan []byte
	Hub   *Hub
}

// BroadcastMessage is a message addressed to every connection of one user
type BroadcastMessage struct {
	Email   string
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		disconnect: make(chan string),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.Email] == nil {
				h.conns[conn.Email] = make(map[*Connection]struct{})
			}
			h.conns[conn.Email][conn] = struct{}{}
			h.mu.Unlock()
			log.Printf("[WS] %s connected (%d open)", conn.Email, h.Count(conn.Email))

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.Email]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.Email)
					}
					log.Printf("[WS] %s disconnected", conn.Email)
				}
			}
			h.mu.Unlock()

		case email := <-h.disconnect:
			h.mu.Lock()
			for conn := range h.conns[email] {
				close(conn.Send)
			}
			delete(h.conns, email)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				log.Printf("[WS] ERROR: encoding %s message: %v", msg.Message.Type, err)
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.Email] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Count returns the number of open connections for a user
func (h *Hub) Count(email string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[email])
}

// BroadcastToUser sends a message to every connection of a user (implements service.Broadcaster)
func (h *Hub) BroadcastToUser(email string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] ERROR: encoding %s payload: %v", msgType, err)
		return
	}
	h.broadcast <- &BroadcastMessage{
		Email: email,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectUser closes every connection of a user, e.g. on logout (implements service.Broadcaster)
func (h *Hub) DisconnectUser(email string) {
	h.disconnect <- email
}
