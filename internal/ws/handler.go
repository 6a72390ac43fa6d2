package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ai-chat-relay/backend/internal/chat"
	"github.com/ai-chat-relay/backend/internal/gateway"
	"github.com/ai-chat-relay/backend/internal/model"
	"github.com/ai-chat-relay/backend/internal/relay"
	"github.com/ai-chat-relay/backend/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

// Client-facing text for queue overflow.
const errTextBusy = "Still processing your previous message, please wait"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking in production
		return true
	},
}

// Handler handles WebSocket connections for chat sessions. Each accepted
// connection gets its own conversation log and relay controller; the
// backend gateway is shared across all connections.
type Handler struct {
	sessions  *session.Manager
	gen       gateway.Generator
	queueSize int
}

// NewHandler creates a new WebSocket handler.
func NewHandler(sessions *session.Manager, gen gateway.Generator, queueSize int) *Handler {
	return &Handler{
		sessions:  sessions,
		gen:       gen,
		queueSize: queueSize,
	}
}

// HandleConnection upgrades the HTTP connection to a WebSocket, opens a
// fresh session, and runs the read/write pumps until disconnect.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sess, err := h.sessions.Open(r.Context(), r.RemoteAddr)
	if err != nil {
		log.Printf("failed to open session: %v", err)
		conn.Close()
		return err
	}

	client := NewClient(conn, sess.ID)

	// The client doubles as the relay's emitter; frames queued after the
	// client closes are dropped, which keeps late backend replies silent.
	ctrl := relay.New(sess.ID, chat.NewLog(), h.gen, client, relay.Config{
		QueueSize: h.queueSize,
		OnTurns: func(userTurns, modelTurns int) {
			if err := h.sessions.RecordTurns(context.Background(), sess.ID, userTurns, modelTurns); err != nil {
				log.Printf("session %s: failed to record turns: %v", sess.ID, err)
			}
		},
	})

	go h.writePump(client)
	go h.readPump(client, ctrl)

	return nil
}

// readPump pumps inbound frames from the WebSocket connection into the
// relay controller. Teardown of the session happens here, once, when the
// read loop ends.
func (h *Handler) readPump(client *Client, ctrl *relay.Controller) {
	defer func() {
		ctrl.Close()
		client.Close()
		client.Conn().Close()
		if err := h.sessions.CloseSession(context.Background(), client.SessionID()); err != nil {
			log.Printf("session %s: failed to close session record: %v", client.SessionID(), err)
		}
	}()

	client.Conn().SetReadLimit(maxMessageSize)
	client.Conn().SetReadDeadline(time.Now().Add(pongWait))
	client.Conn().SetPongHandler(func(string) error {
		client.Conn().SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := client.Conn().ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("session %s: websocket error: %v", client.SessionID(), err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("session %s: failed to unmarshal frame: %v", client.SessionID(), err)
			continue
		}

		h.handleMessage(client, ctrl, &msg)
	}
}

// handleMessage dispatches one inbound frame.
func (h *Handler) handleMessage(client *Client, ctrl *relay.Controller, msg *Message) {
	switch msg.Type {
	case MessageTypeAIMessage:
		switch err := ctrl.Submit(msg.Data); err {
		case nil:
		case model.ErrRelayBusy:
			client.EmitError(errTextBusy)
		case model.ErrRelayClosed:
			// Read loop is about to end; nothing to emit.
		default:
			log.Printf("session %s: submit failed: %v", client.SessionID(), err)
		}
	case MessageTypePing:
		h.handlePing(client)
	}
}

// handlePing answers application-level ping frames.
func (h *Handler) handlePing(client *Client) {
	if err := client.SendMessage(&Message{Type: MessageTypePong}); err != nil {
		log.Printf("session %s: failed to send pong: %v", client.SessionID(), err)
	}
}

// writePump pumps queued frames to the WebSocket connection.
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn().Close()
	}()

	for {
		select {
		case message, ok := <-client.SendChan():
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The client was closed
				client.Conn().WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Each frame goes in its own WebSocket message so that
			// JSON.parse() works on the frontend.
			if err := client.Conn().WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			n := len(client.SendChan())
			for i := 0; i < n; i++ {
				queued := <-client.SendChan()
				client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.Conn().WriteMessage(websocket.TextMessage, queued); err != nil {
					return
				}
			}
		case <-ticker.C:
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn().WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SetCheckOrigin sets a custom origin checker for the WebSocket upgrader.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}
