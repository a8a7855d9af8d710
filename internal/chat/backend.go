package chat

import "context"

// SystemPrompt frames every conversation
const SystemPrompt = "You are PlanMate AI, a helpful and friendly AI assistant focused on productivity and task management. " +
	"You provide concise, actionable advice and engage in natural conversations. " +
	"You can help with setting goals, time management, productivity tips, and general questions. " +
	"Keep responses clear and to the point, but maintain a warm and encouraging tone."

// Generation defaults
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Backend produces the assistant's reply to message given the prior turns in conv.
// Implementations must not modify conv.
type Backend interface {
	Reply(ctx context.Context, conv *Conversation, message string) (string, error)
}

// Options configures a provider backend
type Options struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}
