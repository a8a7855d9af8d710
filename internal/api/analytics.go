package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"planmate/internal/analytics"
	"planmate/internal/middleware"
	"planmate/internal/utils"
)

// summaryFor computes the caller's summary at the service clock's current instant
func (h *Handlers) summaryFor(c *gin.Context) (analytics.Summary, bool) {
	tasks, err := h.taskService.AllTasks(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return analytics.Summary{}, false
	}
	return h.engine.Summarize(tasks, h.taskService.Now()), true
}

// SummaryHandler handles GET /api/analytics/summary
func (h *Handlers) SummaryHandler(c *gin.Context) {
	summary, ok := h.summaryFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, summary)
}

// WeeklyHandler handles GET /api/analytics/weekly
func (h *Handlers) WeeklyHandler(c *gin.Context) {
	summary, ok := h.summaryFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"weekly":        summary.Weekly,
		"lastSevenDays": summary.LastSevenDays,
	})
}

// PrioritiesHandler handles GET /api/analytics/priorities
func (h *Handlers) PrioritiesHandler(c *gin.Context) {
	summary, ok := h.summaryFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, summary.Priorities)
}

// InsightsHandler handles GET /api/analytics/insights
func (h *Handlers) InsightsHandler(c *gin.Context) {
	summary, ok := h.summaryFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, summary.Insights)
}

// ReportPDFHandler handles GET /api/analytics/report.pdf
func (h *Handlers) ReportPDFHandler(c *gin.Context) {
	summary, ok := h.summaryFor(c)
	if !ok {
		return
	}

	data, err := h.pdfService.GenerateProgressReportPDF(&summary, "Progress Report")
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("progress-%s.pdf", utils.FormatDate(summary.GeneratedAt.In(h.engine.Location())))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// ComputeHandler handles POST /api/analytics/compute
// The body is a JSON array of task documents; nothing is stored.
// Malformed input still answers 200 with the empty-state summary and a warning.
func (h *Handlers) ComputeHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	summary, err := h.engine.SummarizeJSON(body, h.taskService.Now())
	if err != nil {
		log.Printf("[ANALYTICS] WARNING: Computing defaults for invalid task list: %v", err)
		c.JSON(http.StatusOK, gin.H{"summary": summary, "warning": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
