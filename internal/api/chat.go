package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planmate/internal/middleware"
	"planmate/internal/models"
)

// CreateChatSessionHandler handles POST /api/chat/sessions
func (h *Handlers) CreateChatSessionHandler(c *gin.Context) {
	conv := h.sessions.Create(middleware.GetUserID(c))
	c.JSON(http.StatusCreated, models.ChatSessionResponse{SessionID: conv.ID})
}

// GetChatSessionHandler handles GET /api/chat/sessions/:id
func (h *Handlers) GetChatSessionHandler(c *gin.Context) {
	conv, err := h.sessions.Get(middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": conv.ID,
		"turns":     conv.History(),
	})
}

// SendChatMessageHandler handles POST /api/chat/sessions/:id/messages
func (h *Handlers) SendChatMessageHandler(c *gin.Context) {
	if h.relay == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat is not configured"})
		return
	}

	conv, err := h.sessions.Get(middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.relay.Send(c.Request.Context(), conv, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ChatMessageResponse{SessionID: conv.ID, Reply: reply})
}

// ResetChatSessionHandler handles POST /api/chat/sessions/:id/reset
func (h *Handlers) ResetChatSessionHandler(c *gin.Context) {
	if err := h.sessions.Reset(middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteChatSessionHandler handles DELETE /api/chat/sessions/:id
func (h *Handlers) DeleteChatSessionHandler(c *gin.Context) {
	if err := h.sessions.Delete(middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
