package ws

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// **Feature: ai-chat-relay, Property 3: event frame integrity**
// For any user text, an inbound ai-message frame survives a JSON
// round-trip unchanged, and for any reply or error text the outbound
// frames carry the exact payload field the client expects.
func TestEventFrameIntegrityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("ai-message frames preserve data integrity", prop.ForAll(
		func(data string) bool {
			msg := Message{
				Type: MessageTypeAIMessage,
				Data: data,
			}

			jsonData, err := json.Marshal(msg)
			if err != nil {
				return false
			}

			var parsed Message
			if err := json.Unmarshal(jsonData, &parsed); err != nil {
				return false
			}

			return parsed.Type == MessageTypeAIMessage && parsed.Data == data
		},
		gen.AnyString(),
	))

	properties.Property("response frames carry the reply verbatim", prop.ForAll(
		func(text string) bool {
			msg, err := NewResponseMessage(text)
			if err != nil {
				return false
			}

			jsonData, err := json.Marshal(msg)
			if err != nil {
				return false
			}

			var parsed Message
			if err := json.Unmarshal(jsonData, &parsed); err != nil {
				return false
			}
			if parsed.Type != MessageTypeAIResponse {
				return false
			}

			var payload ResponsePayload
			if err := json.Unmarshal(parsed.Payload, &payload); err != nil {
				return false
			}
			return payload.Response == text
		},
		gen.AnyString(),
	))

	properties.Property("error frames carry the message verbatim", prop.ForAll(
		func(text string) bool {
			msg, err := NewErrorMessage(text)
			if err != nil {
				return false
			}

			jsonData, err := json.Marshal(msg)
			if err != nil {
				return false
			}

			var parsed Message
			if err := json.Unmarshal(jsonData, &parsed); err != nil {
				return false
			}
			if parsed.Type != MessageTypeError {
				return false
			}

			var payload ErrorPayload
			if err := json.Unmarshal(parsed.Payload, &payload); err != nil {
				return false
			}
			return payload.Message == text
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
