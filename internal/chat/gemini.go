package chat

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiBackend talks to the Gemini API
type GeminiBackend struct {
	client *genai.Client
	opts   Options
}

// NewGeminiBackend creates a Gemini client
func NewGeminiBackend(ctx context.Context, opts Options) (*GeminiBackend, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{client: client, opts: opts.withDefaults(DefaultGeminiModel)}, nil
}

// Reply sends the whole history plus the new message
func (b *GeminiBackend) Reply(ctx context.Context, conv *Conversation, message string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.opts.Model, geminiContents(conv, message), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(b.opts.Temperature)),
		MaxOutputTokens:   int32(b.opts.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no response from Gemini")
	}
	return text, nil
}

func geminiContents(conv *Conversation, message string) []*genai.Content {
	var contents []*genai.Content
	if conv != nil {
		for _, turn := range conv.Turns {
			var role genai.Role = genai.RoleUser
			if turn.Role == RoleAssistant {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(turn.Text, role))
		}
	}
	return append(contents, genai.NewContentFromText(message, genai.RoleUser))
}
