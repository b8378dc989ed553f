package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	sendBuffer = 256
)

// Message types pushed to clients.
const (
	MessageBoard      = "board"
	MessageToast      = "toast"
	MessageDragResult = "dragResult"
	MessagePong       = "pong"
	MessageError      = "error"
)

// WebSocketMessage is the envelope pushed to clients.
type WebSocketMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// InboundMessage is the envelope received from clients. Data is decoded by
// whoever handles the message type.
type InboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MessageHandler handles one inbound message from a client.
type MessageHandler func(client *Client, message InboundMessage)

// Client represents a connected WebSocket client
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}

// Reply queues a message for this client only. It drops the message when
// the client is not keeping up.
func (c *Client) Reply(message WebSocketMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error("marshal websocket reply", "type", message.Type, "error", err)
		return
	}
	c.Hub.deliver(c, payload)
}

// ReadPump pumps messages from the WebSocket connection to the hub's handler
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read failed", "client", c.ID, "error", err)
			}
			return
		}

		var message InboundMessage
		if err := json.Unmarshal(raw, &message); err != nil {
			c.Hub.logger.Warn("malformed websocket message", "client", c.ID, "error", err)
			continue
		}

		if message.Type == "ping" {
			c.Reply(WebSocketMessage{
				Type: MessagePong,
				Data: map[string]string{"timestamp": time.Now().Format(time.RFC3339)},
			})
			continue
		}

		c.Hub.logger.Debug("websocket message", "client", c.ID, "type", message.Type)
		if handler := c.Hub.handler; handler != nil {
			handler(c, message)
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type delivery struct {
	client  *Client
	payload []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	direct     chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	handler    MessageHandler
	logger     *slog.Logger
}

// NewHub creates a new hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		direct:     make(chan delivery, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// HandleMessages sets the handler for inbound client messages. Call it
// before clients connect.
func (h *Hub) HandleMessages(handler MessageHandler) {
	h.handler = handler
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a message to every connected client.
func (h *Hub) Broadcast(message WebSocketMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("marshal websocket message", "type", message.Type, "error", err)
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case h.direct <- delivery{client: client, payload: payload}:
	case <-h.done:
	}
}

// Run is the hub's main loop. It returns when ctx is done, closing every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			close(client.Send)
			delete(h.clients, client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("client connected", "client", client.ID, "clients", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("client disconnected", "client", client.ID, "clients", len(h.clients))
			}
		case d := <-h.direct:
			if h.clients[d.client] {
				h.send(d.client, d.payload)
			}
		case payload := <-h.broadcast:
			for client := range h.clients {
				h.send(client, payload)
			}
		}
	}
}

func (h *Hub) send(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		// Client's send buffer is full, assume disconnected
		h.logger.Warn("client send buffer full, removing client", "client", client.ID)
		close(client.Send)
		delete(h.clients, client)
	}
}
