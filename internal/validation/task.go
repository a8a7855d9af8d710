package validation

import (
	"fmt"
	"strings"
	"time"

	"planmate/internal/models"
	"planmate/internal/utils"
)

const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "10:00"
)

// TaskInput is a validated, normalized task request
type TaskInput struct {
	Title       string
	Description string
	DueDate     time.Time // Calendar date combined with StartTime
	StartTime   string
	EndTime     string
	Priority    models.Priority
}

// ValidateTaskInput checks a task request and fills in defaults.
//
// The due date's calendar day (in loc) is combined with the start time to form DueDate.
// When that day is today the start must still be ahead of now.
func ValidateTaskInput(req models.TaskRequest, now time.Time, loc *time.Location) (*TaskInput, error) {
	if loc == nil {
		loc = time.Local
	}

	input := &TaskInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		StartTime:   strings.TrimSpace(req.StartTime),
		EndTime:     strings.TrimSpace(req.EndTime),
		Priority:    req.Priority,
	}

	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, fmt.Errorf("%w: priority must be high, medium or low", ErrInvalidTask)
	}

	if input.StartTime == "" {
		input.StartTime = DefaultStartTime
	}
	if input.EndTime == "" {
		input.EndTime = DefaultEndTime
	}
	startHour, startMinute, err := utils.ParseClock(input.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: startTime: %v", ErrInvalidTask, err)
	}
	if _, _, err := utils.ParseClock(input.EndTime); err != nil {
		return nil, fmt.Errorf("%w: endTime: %v", ErrInvalidTask, err)
	}

	day, err := utils.ParseDateIn(strings.TrimSpace(req.DueDate), loc)
	if err != nil {
		return nil, fmt.Errorf("%w: dueDate: %v", ErrInvalidTask, err)
	}
	input.DueDate = time.Date(day.Year(), day.Month(), day.Day(), startHour, startMinute, 0, 0, loc)

	if utils.SameDay(input.DueDate, now, loc) && !input.DueDate.After(now) {
		return nil, fmt.Errorf("%w: start time must be in the future for today's date", ErrInvalidTask)
	}

	return input, nil
}
