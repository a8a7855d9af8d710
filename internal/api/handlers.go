package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"planmate/internal/analytics"
	"planmate/internal/chat"
	"planmate/internal/services"
	"planmate/internal/validation"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	taskService   *services.TaskService
	engine        *analytics.Engine
	pdfService    *services.PDFService
	digestService *services.DigestService // nil disables the digest endpoints (503)
	sessions      *chat.SessionStore
	relay         *chat.Relay // nil when no chat provider is configured
	notifier      *services.Notifier
	jwtService    *services.JWTService
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	taskService *services.TaskService,
	engine *analytics.Engine,
	pdfService *services.PDFService,
	digestService *services.DigestService,
	sessions *chat.SessionStore,
	relay *chat.Relay,
	notifier *services.Notifier,
	jwtService *services.JWTService,
) *Handlers {
	return &Handlers{
		taskService:   taskService,
		engine:        engine,
		pdfService:    pdfService,
		digestService: digestService,
		sessions:      sessions,
		relay:         relay,
		notifier:      notifier,
		jwtService:    jwtService,
	}
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, chat.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, validation.ErrInvalidTask), errors.Is(err, analytics.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": chat.EmptyMessageText})
	case errors.Is(err, chat.ErrTransport):
		c.JSON(http.StatusBadGateway, gin.H{"error": chat.TransportText})
	default:
		log.Printf("[API] ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
