// Package websocket pushes user-addressed events to connected browsers.
package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"skillshare/middleware"
	"skillshare/notify"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
	deliverBuffer  = 1024
)

type envelope struct {
	userID string
	data   []byte
}

// Hub keeps every open connection grouped by user. The client map is only
// mutated from Run.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan envelope
	done       chan struct{}
	mu         sync.RWMutex
}

type Client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
	hub    *Hub
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan envelope, deliverBuffer),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then drops every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for userID, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			log.Printf("[WebSocket] hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			h.mu.Unlock()
			log.Printf("[WebSocket] %s connected (%d sockets)", client.userID, len(set))

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case env := <-h.deliver:
			h.mu.Lock()
			for client := range h.clients[env.userID] {
				select {
				case client.send <- env.data:
				default:
					log.Printf("[WebSocket] dropping slow socket for %s", client.userID)
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	log.Printf("[WebSocket] %s disconnected", client.userID)
}

// Publish queues ev for every socket userID has open. It never blocks; when
// the queue is full the event is dropped and clients catch up by polling.
func (h *Hub) Publish(userID string, ev notify.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WebSocket] marshal %s: %v", ev.Type, err)
		return
	}
	select {
	case h.deliver <- envelope{userID: userID, data: data}:
	case <-h.done:
	default:
		log.Printf("[WebSocket] queue full, dropped %s for %s", ev.Type, userID)
	}
}

// ConnectedUsers reports how many distinct users have at least one socket.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler authenticates the ?token= query parameter (or Authorization header)
// before upgrading the connection.
func (h *Hub) Handler(tokens *middleware.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := middleware.BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Token required"})
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			log.Printf("[WebSocket] rejected connection: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WebSocket] upgrade failed: %v", err)
			return
		}

		client := &Client{
			conn:   conn,
			userID: claims.UserID,
			send:   make(chan []byte, sendBuffer),
			hub:    h,
		}
		welcome, _ := json.Marshal(notify.Event{
			Type: "connected",
			Payload: gin.H{
				"userId": claims.UserID,
				"time":   time.Now().Unix(),
			},
		})
		client.send <- welcome

		select {
		case h.register <- client:
		case <-h.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

type inbound struct {
	Type    string `json:"type"`
	Payload struct {
		To       string `json:"to"`
		IsTyping *bool  `json:"isTyping"`
	} `json:"payload"`
}

// Typing is relayed to the counterpart named in the client's typing frame.
type Typing struct {
	From     string `json:"from"`
	IsTyping bool   `json:"isTyping"`
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] read error for %s: %v", c.userID, err)
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(message, &in); err != nil {
			log.Printf("[WebSocket] bad frame from %s: %v", c.userID, err)
			continue
		}

		switch in.Type {
		case "ping":
			c.hub.Publish(c.userID, notify.Event{Type: "pong", Payload: gin.H{"time": time.Now().Unix()}})
		case notify.EventTyping, "typing_start", "typing_end":
			to := strings.ToLower(strings.TrimSpace(in.Payload.To))
			if to == "" || to == c.userID {
				continue
			}
			typing := in.Type != "typing_end"
			if in.Payload.IsTyping != nil {
				typing = *in.Payload.IsTyping
			}
			c.hub.Publish(to, notify.Event{Type: notify.EventTyping, Payload: Typing{From: c.userID, IsTyping: typing}})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
