// Package gateway adapts the conversation turn log to the upstream
// generative-language service.
package gateway

import (
	"context"

	"github.com/ai-chat-relay/backend/internal/model"
)

// Generator produces the next model turn from the full ordered
// conversation. The generator is stateless between calls; all
// conversational context is carried in the turns argument on every call.
type Generator interface {
	// Generate performs a single upstream call and returns the model's
	// reply. Failures wrap model.ErrBackendFailure. Generate does not
	// retry and has no side effects beyond the one outbound call.
	Generate(ctx context.Context, turns []model.Turn) (string, error)
}
