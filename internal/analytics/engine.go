// Package analytics derives progress statistics from a user's task list.
//
// Every computation is a pure function of the task snapshot (and, for weekly views, the
// reference instant). The engine never mutates its input and keeps no state between calls,
// so one Engine may be shared across goroutines. Malformed records are skipped per-record
// rather than reported as errors.
package analytics

import (
	"time"

	"planmate/internal/models"
)

// Engine computes task analytics in a fixed local timezone
type Engine struct {
	loc *time.Location
}

// Option configures an Engine
type Option func(*Engine)

// WithLocation sets the timezone used for day and hour bucketing
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewEngine creates an engine; bucketing defaults to time.Local
func NewEngine(opts ...Option) *Engine {
	e := &Engine{loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the timezone used for bucketing
func (e *Engine) Location() *time.Location {
	return e.loc
}

// completionTime returns a task's completion instant when it is present and not earlier
// than its creation instant.
func completionTime(task models.Task) (time.Time, bool) {
	if task.CompletedAt == nil || task.CompletedAt.IsZero() {
		return time.Time{}, false
	}
	if createdAt, ok := creationTime(task); ok && task.CompletedAt.Before(createdAt) {
		return time.Time{}, false
	}
	return *task.CompletedAt, true
}

func creationTime(task models.Task) (time.Time, bool) {
	if task.CreatedAt == nil || task.CreatedAt.IsZero() {
		return time.Time{}, false
	}
	return *task.CreatedAt, true
}

func dueTime(task models.Task) (time.Time, bool) {
	if task.DueDate == nil || task.DueDate.IsZero() {
		return time.Time{}, false
	}
	return *task.DueDate, true
}
