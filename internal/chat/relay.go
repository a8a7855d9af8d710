package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	// ErrEmptyMessage is returned for blank messages
	ErrEmptyMessage = errors.New("empty message")
	// ErrTransport is returned when the provider fails twice in a row
	ErrTransport = errors.New("chat provider unavailable")
)

// User-facing texts for the relay errors
const (
	EmptyMessageText = "Please enter a message"
	TransportText    = "I'm having trouble connecting to the AI service. Please try again in a moment."
)

// Relay forwards a user's message to a backend and records the exchange
type Relay struct {
	backend Backend
	now     func() time.Time
}

// NewRelay creates a relay over backend
func NewRelay(backend Backend) *Relay {
	return &Relay{backend: backend, now: time.Now}
}

// Send relays message with the conversation's history and returns the reply.
// The conversation only grows when a reply was received.
func (r *Relay) Send(ctx context.Context, conv *Conversation, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	reply, err := r.backend.Reply(ctx, conv, message)
	if err != nil {
		log.Printf("[CHAT] WARNING: Provider call failed for conversation %s, retrying: %v", conv.ID, err)
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrTransport, ctx.Err())
		}
		reply, err = r.backend.Reply(ctx, conv, message)
		if err != nil {
			log.Printf("[CHAT] ERROR: Provider call failed again for conversation %s: %v", conv.ID, err)
			return "", fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}

	conv.append(message, reply, r.now())
	return reply, nil
}
