package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ai-chat-relay/backend/internal/model"
)

const (
	defaultModel   = openai.ChatModelGPT4oMini
	defaultTimeout = 60 * time.Second

	defaultSystemInstruction = "You are a helpful assistant. Keep replies short and conversational."
)

// Config holds configuration for the OpenAI-backed gateway.
type Config struct {
	APIKey            string
	BaseURL           string // optional, for OpenAI-compatible endpoints
	Model             string
	SystemInstruction string
	Timeout           time.Duration // bound on a single upstream call
}

// OpenAIGateway generates replies through the OpenAI chat completions API.
// The underlying HTTP client is safe for concurrent calls from multiple
// connections and holds no per-session state.
type OpenAIGateway struct {
	client  openai.Client
	model   openai.ChatModel
	system  string
	timeout time.Duration
}

// NewOpenAIGateway creates a gateway from the given configuration,
// applying defaults for any zero-valued fields.
func NewOpenAIGateway(cfg Config) *OpenAIGateway {
	// Retry policy belongs to callers, not the gateway; disable the
	// client's built-in retries.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	g := &OpenAIGateway{
		client:  openai.NewClient(opts...),
		model:   defaultModel,
		system:  defaultSystemInstruction,
		timeout: defaultTimeout,
	}
	if cfg.Model != "" {
		g.model = openai.ChatModel(cfg.Model)
	}
	if cfg.SystemInstruction != "" {
		g.system = cfg.SystemInstruction
	}
	if cfg.Timeout > 0 {
		g.timeout = cfg.Timeout
	}
	return g
}

// Generate sends the full conversation upstream and returns the reply text.
func (g *OpenAIGateway) Generate(ctx context.Context, turns []model.Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("%w: empty conversation", model.ErrInvalidTurn)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if g.system != "" {
		messages = append(messages, openai.SystemMessage(g.system))
	}
	for _, turn := range turns {
		switch turn.Role {
		case model.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case model.RoleModel:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			return "", fmt.Errorf("%w: unknown role %q", model.ErrInvalidTurn, turn.Role)
		}
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrBackendFailure, err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: upstream returned no content", model.ErrBackendFailure)
	}
	return completion.Choices[0].Message.Content, nil
}
