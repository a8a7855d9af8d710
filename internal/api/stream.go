package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"planmate/internal/analytics"
)

const (
	streamReadTimeout  = 60 * time.Second
	streamPingInterval = 30 * time.Second
	streamWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development - customize for production
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMessage is pushed to stream clients whenever the user's tasks change
type StreamMessage struct {
	Type    string             `json:"type"`
	Summary *analytics.Summary `json:"summary,omitempty"`
}

// StreamHandler handles GET /api/analytics/stream
// WebSocket protocol:
// 1. Client sends: $AUTH <jwt-token>
// 2. Server replies AUTH_SUCCESS and pushes the current summary
// 3. Server pushes a fresh summary after every change to the user's tasks
func (h *Handlers) StreamHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[STREAM] Failed to upgrade connection from %s: %v", c.ClientIP(), err)
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
		return
	}

	userID, err := h.authenticateStream(conn)
	if err != nil {
		log.Printf("[STREAM] Authentication failed from %s: %v", c.ClientIP(), err)
		conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf("ERROR: %v", err)))
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("AUTH_SUCCESS")); err != nil {
		return
	}

	connectionID := uuid.New().String()
	log.Printf("[STREAM] Session authenticated: user=%s, connection_id=%s", userID, connectionID)

	changes, unsubscribe := h.notifier.Subscribe(userID)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	})

	// The reader only watches for the client going away; clients send nothing after $AUTH
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[STREAM] Connection %s closed unexpectedly: %v", connectionID, err)
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
		}
	}()

	if err := h.pushSummary(ctx, conn, userID); err != nil {
		log.Printf("[STREAM] Failed to push summary to %s: %v", connectionID, err)
		return
	}

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[STREAM] Connection %s closed for user=%s", connectionID, userID)
			return
		case <-changes:
			if err := h.pushSummary(ctx, conn, userID); err != nil {
				log.Printf("[STREAM] Failed to push summary to %s: %v", connectionID, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		}
	}
}

// authenticateStream waits for and validates the $AUTH message
func (h *Handlers) authenticateStream(conn *websocket.Conn) (string, error) {
	messageType, message, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("failed to read auth message: %w", err)
	}
	if messageType != websocket.TextMessage {
		return "", fmt.Errorf("expected text message for authentication")
	}

	msgStr := strings.TrimSpace(string(message))
	if !strings.HasPrefix(msgStr, "$AUTH ") {
		return "", fmt.Errorf("first message must be $AUTH <token>")
	}

	token := strings.TrimSpace(strings.TrimPrefix(msgStr, "$AUTH "))
	if token == "" {
		return "", fmt.Errorf("token is required")
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	return claims.UserID, nil
}

func (h *Handlers) pushSummary(ctx context.Context, conn *websocket.Conn, userID string) error {
	tasks, err := h.taskService.AllTasks(ctx, userID)
	if err != nil {
		return err
	}
	summary := h.engine.Summarize(tasks, h.taskService.Now())

	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(StreamMessage{Type: "summary", Summary: &summary})
}
