package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"planmate/internal/middleware"
	"planmate/internal/models"
	"planmate/internal/validation"
)

// ListTasksHandler handles GET /api/tasks
// Query: status=all|active|completed, priority=high|medium|low, sortBy=priority|dueDate|createdAt, order=asc|desc
func (h *Handlers) ListTasksHandler(c *gin.Context) {
	opts, err := parseListOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), middleware.GetUserID(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TaskListResponse{Tasks: tasks, Count: len(tasks)})
}

func parseListOptions(c *gin.Context) (models.TaskListOptions, error) {
	opts := models.TaskListOptions{
		Status:   models.TaskStatusFilter(c.DefaultQuery("status", string(models.TaskStatusAll))),
		Priority: models.Priority(c.Query("priority")),
		SortBy:   models.TaskSortField(c.DefaultQuery("sortBy", string(models.SortByPriority))),
	}

	switch opts.Status {
	case models.TaskStatusAll, models.TaskStatusActive, models.TaskStatusCompleted:
	default:
		return opts, fmt.Errorf("invalid status %q", opts.Status)
	}

	if opts.Priority != "" && !opts.Priority.Valid() {
		return opts, fmt.Errorf("invalid priority %q", opts.Priority)
	}

	switch opts.SortBy {
	case models.SortByPriority, models.SortByDueDate, models.SortByCreatedAt:
	default:
		return opts, fmt.Errorf("invalid sortBy %q", opts.SortBy)
	}

	switch strings.ToLower(c.DefaultQuery("order", "desc")) {
	case "asc":
		opts.Ascending = true
	case "desc":
	default:
		return opts, fmt.Errorf("order must be asc or desc")
	}

	return opts, nil
}

// CreateTaskHandler handles POST /api/tasks
func (h *Handlers) CreateTaskHandler(c *gin.Context) {
	req, ok := bindTaskRequest(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTaskHandler handles GET /api/tasks/:id
func (h *Handlers) GetTaskHandler(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTaskHandler handles PUT /api/tasks/:id
func (h *Handlers) UpdateTaskHandler(c *gin.Context) {
	req, ok := bindTaskRequest(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTaskHandler handles DELETE /api/tasks/:id
func (h *Handlers) DeleteTaskHandler(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleTaskHandler handles POST /api/tasks/:id/toggle
func (h *Handlers) ToggleTaskHandler(c *gin.Context) {
	task, err := h.taskService.ToggleComplete(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// bindTaskRequest checks the raw body against the task schema before binding it
func bindTaskRequest(c *gin.Context) (models.TaskRequest, bool) {
	var req models.TaskRequest

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return req, false
	}

	if err := validation.ValidateTaskPayload(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}

	if err := binding.JSON.BindBody(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}

	return req, true
}
