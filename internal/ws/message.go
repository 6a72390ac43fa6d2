package ws

import "encoding/json"

// MessageType represents the type of WebSocket event frame.
type MessageType string

const (
	// Client -> Server message types
	MessageTypeAIMessage MessageType = "ai-message"
	MessageTypePing      MessageType = "ping"

	// Server -> Client message types
	MessageTypeAIResponse MessageType = "ai-message-response"
	MessageTypeError      MessageType = "error"
	MessageTypePong       MessageType = "pong"
)

// Message is the event frame exchanged over the WebSocket. Inbound chat
// messages carry the user's text in Data; outbound events carry a
// structured Payload.
type Message struct {
	Type    MessageType     `json:"type"`
	Data    string          `json:"data,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ResponsePayload is the payload of an ai-message-response event.
type ResponsePayload struct {
	Response string `json:"response"`
}

// ErrorPayload is the payload of an error event. The message is
// human-readable and not interpreted programmatically by clients.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewResponseMessage builds an ai-message-response frame.
func NewResponseMessage(text string) (*Message, error) {
	payload, err := json.Marshal(ResponsePayload{Response: text})
	if err != nil {
		return nil, err
	}
	return &Message{Type: MessageTypeAIResponse, Payload: payload}, nil
}

// NewErrorMessage builds an error frame.
func NewErrorMessage(message string) (*Message, error) {
	payload, err := json.Marshal(ErrorPayload{Message: message})
	if err != nil {
		return nil, err
	}
	return &Message{Type: MessageTypeError, Payload: payload}, nil
}
