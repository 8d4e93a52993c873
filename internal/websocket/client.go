package websocket

import (
	"context"
	"encoding/json"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	maxInboundSize = 4096
)

// Client is a single connection belonging to an identified family member.
type Client struct {
	hub      *Hub
	conn     *ws.Conn
	send     chan []byte
	familyID int64
	userID   int64
	name     string
}

func NewClient(hub *Hub, conn *ws.Conn, familyID, userID int64, name string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		familyID: familyID,
		userID:   userID,
		name:     name,
	}
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection closes, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// inboundMessage is what clients may send upstream. Only typing indicators
// are relayed; everything else is ignored.
type inboundMessage struct {
	Type    string `json:"type"`
	Context string `json:"context"`
}

// readPump relays typing indicators to the rest of the family and returns on
// connection error, which triggers cleanup.
func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxInboundSize)
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}

		var in inboundMessage
		if err := json.Unmarshal(data, &in); err != nil {
			continue
		}
		if in.Type != "typing" {
			continue
		}
		c.hub.BroadcastToFamily(c.familyID, Message{
			Type:   "typing",
			UserID: c.userID,
			Name:   c.name,
			Extra:  map[string]any{"context": in.Context},
		})
	}
}

// writePump drains the send channel and writes messages to the connection,
// pinging periodically to detect stale peers.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Hub closed the channel, connection is done
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
