package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents one WebSocket client connection.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
	mu        sync.Mutex
	closed    bool
}

// NewClient creates a new WebSocket client for a session.
func NewClient(conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

// Send queues a frame to be written to the client. Sends after Close are
// dropped silently; a full buffer closes the client.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// Buffer full, close the client
		c.closeLocked()
	}
}

// SendMessage marshals and queues an event frame.
func (c *Client) SendMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.Send(data)
	return nil
}

// EmitResponse queues an ai-message-response frame with the model's reply.
func (c *Client) EmitResponse(text string) {
	msg, err := NewResponseMessage(text)
	if err != nil {
		log.Printf("session %s: failed to build response frame: %v", c.sessionID, err)
		return
	}
	if err := c.SendMessage(msg); err != nil {
		log.Printf("session %s: failed to send response frame: %v", c.sessionID, err)
	}
}

// EmitError queues an error frame with a human-readable message.
func (c *Client) EmitError(message string) {
	msg, err := NewErrorMessage(message)
	if err != nil {
		log.Printf("session %s: failed to build error frame: %v", c.sessionID, err)
		return
	}
	if err := c.SendMessage(msg); err != nil {
		log.Printf("session %s: failed to send error frame: %v", c.sessionID, err)
	}
}

// Close closes the client's outbound channel. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// IsClosed returns true if the client is closed.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// SessionID returns the session ID associated with this client.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Conn returns the underlying WebSocket connection.
func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// SendChan returns the outbound frame channel for the client.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}
