package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"planmate/internal/middleware"
	"planmate/internal/models"
	"planmate/internal/services"
	"planmate/internal/utils"
)

func (h *Handlers) digestEnabled(c *gin.Context) bool {
	if h.digestService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "weekly digests are not configured"})
		return false
	}
	return true
}

// OptInDigestHandler handles POST /api/digest/opt-in
// Request body: {"email": "...", "timezone": "Europe/Paris", "nextTriggerTime": "2025-01-20T08:00:00Z"}
func (h *Handlers) OptInDigestHandler(c *gin.Context) {
	if !h.digestEnabled(c) {
		return
	}

	var req models.DigestOptInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timezone"})
			return
		}
	}

	sub := models.DigestSubscription{
		UserID:   middleware.GetUserID(c),
		Email:    req.Email,
		Timezone: req.Timezone,
	}

	if req.NextTriggerTime != nil && *req.NextTriggerTime != "" {
		trigger, err := time.Parse(time.RFC3339, *req.NextTriggerTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nextTriggerTime must be RFC 3339"})
			return
		}
		sub.NextTriggerTime = &trigger
	}

	if err := h.digestService.OptIn(c.Request.Context(), sub); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "opted-in",
		"schedule": h.digestService.ScheduleFor(sub),
	})
}

// OptOutDigestHandler handles POST /api/digest/opt-out
func (h *Handlers) OptOutDigestHandler(c *gin.Context) {
	if !h.digestEnabled(c) {
		return
	}

	if err := h.digestService.OptOut(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "opted-out"})
}

// SendDigestHandler handles POST /api/digest/send
// Sends the digest for the week containing weekStartDate, or last week when omitted.
func (h *Handlers) SendDigestHandler(c *gin.Context) {
	if !h.digestEnabled(c) {
		return
	}

	var req models.DigestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loc := h.engine.Location()
	weekStart := services.PreviousWeekStart(h.taskService.Now().In(loc))
	if req.WeekStartDate != "" {
		date, err := utils.ParseDateIn(req.WeekStartDate, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week start date"})
			return
		}
		weekStart, _ = utils.CalculateWeekRange(date)
	}

	if err := h.digestService.SendDigest(c.Request.Context(), middleware.GetUserID(c), req.Email, weekStart); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "sent",
		"weekStartDate": utils.FormatDate(weekStart),
	})
}
