package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendBufferSize = 256
)

// Client is one WebSocket connection known to the Hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound messages. The hub never blocks on it.
	send chan []byte

	userID        int64
	authenticated bool

	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID int64, authenticated bool) *Client {
	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
		userID:        userID,
		authenticated: authenticated,
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// enqueue queues an event for this client only, dropping it if the send
// buffer is full.
func (c *Client) enqueue(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// readPump owns the inbound side of the connection. Whichever way the loop
// ends (peer close, network error, read deadline), the deferred cleanup
// unregisters the client exactly once and closes the transport.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleMessage(raw)
	}
}

// handleMessage implements the inbound protocol: ping is answered with pong,
// subscribe is acknowledged (no topic filtering yet). Everything else,
// malformed JSON included, is ignored and never ends the session.
func (c *Client) handleMessage(raw []byte) {
	var msg struct {
		Type  string `json:"type"`
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "ping":
		c.enqueue(Pong())
	case "subscribe":
		topic := msg.Topic
		if topic == "" {
			topic = "feed"
		}
		c.enqueue(Subscribed(topic))
	}
}

// writePump owns the outbound side and the heartbeat. It exits when the send
// channel is closed (unregister) or a write fails, closing the transport and
// thereby unblocking the read pump.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
