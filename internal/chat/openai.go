package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIBackend talks to the OpenAI chat completions API
type OpenAIBackend struct {
	client *openai.Client
	opts   Options
}

// NewOpenAIBackend creates an OpenAI client
func NewOpenAIBackend(opts Options) (*OpenAIBackend, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not configured")
	}
	return &OpenAIBackend{
		client: openai.NewClient(opts.APIKey),
		opts:   opts.withDefaults(DefaultOpenAIModel),
	}, nil
}

// Reply sends the system prompt, the history and the new message
func (b *OpenAIBackend) Reply(ctx context.Context, conv *Conversation, message string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.opts.Model,
		Messages:    openAIMessages(conv, message),
		Temperature: float32(b.opts.Temperature),
		MaxTokens:   b.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return reply, nil
}

func openAIMessages(conv *Conversation, message string) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
	}
	if conv != nil {
		for _, turn := range conv.Turns {
			role := openai.ChatMessageRoleUser
			if turn.Role == RoleAssistant {
				role = openai.ChatMessageRoleAssistant
			}
			messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
		}
	}
	return append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
}
