package models

import "time"

// Priority represents the urgency of a task
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the recognized priorities in display order
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the recognized priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Weight is the sort weight used when ordering by priority (high=3, medium=2, low=1, unknown=0)
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task represents a user's planned task
type Task struct {
	ID          string     `bson:"_id" json:"id"`
	UserID      string     `bson:"userId" json:"userId"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	DueDate     *time.Time `bson:"dueDate,omitempty" json:"dueDate,omitempty"` // Calendar date plus start time
	StartTime   string     `bson:"startTime,omitempty" json:"startTime,omitempty"` // HH:MM
	EndTime     string     `bson:"endTime,omitempty" json:"endTime,omitempty"`     // HH:MM
	Priority    Priority   `bson:"priority" json:"priority"`
	Completed   bool       `bson:"completed" json:"completed"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   *time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// TaskStatusFilter selects tasks by completion state when listing
type TaskStatusFilter string

const (
	TaskStatusAll       TaskStatusFilter = "all"
	TaskStatusActive    TaskStatusFilter = "active"
	TaskStatusCompleted TaskStatusFilter = "completed"
)

// TaskSortField is the field tasks are ordered by when listing
type TaskSortField string

const (
	SortByPriority  TaskSortField = "priority"
	SortByDueDate   TaskSortField = "dueDate"
	SortByCreatedAt TaskSortField = "createdAt"
)

// TaskListOptions controls filtering and ordering of a task listing
type TaskListOptions struct {
	Status    TaskStatusFilter
	Priority  Priority // Empty means any priority
	SortBy    TaskSortField
	Ascending bool
}
