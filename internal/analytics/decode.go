package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"planmate/internal/models"
	"planmate/internal/utils"
)

// ErrInvalidInput is returned when a task payload is not a list
var ErrInvalidInput = errors.New("task input is not a list")

// DecodeTasks converts an untyped JSON task list into tasks.
//
// The payload must be a JSON array; anything else (including null or an empty body) is
// ErrInvalidInput, as is anything after the array. Elements that are not objects are
// skipped. Timestamp fields accept every shape utils.ParseInstant understands, naive
// values being read in loc.
func DecodeTasks(raw []byte, loc *time.Location) ([]models.Task, error) {
	if loc == nil {
		loc = time.Local
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after task list", ErrInvalidInput)
	}

	items, ok := payload.([]interface{})
	if !ok {
		return nil, ErrInvalidInput
	}

	tasks := make([]models.Task, 0, len(items))
	for _, item := range items {
		doc, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		tasks = append(tasks, taskFromDocument(doc, loc))
	}
	return tasks, nil
}

// SummarizeJSON decodes raw and summarizes it at now. Invalid input yields the
// empty-state summary together with ErrInvalidInput.
func (e *Engine) SummarizeJSON(raw []byte, now time.Time) (Summary, error) {
	tasks, err := DecodeTasks(raw, e.loc)
	if err != nil {
		return e.DefaultSummary(now), err
	}
	return e.Summarize(tasks, now), nil
}

func taskFromDocument(doc map[string]interface{}, loc *time.Location) models.Task {
	task := models.Task{
		ID:          stringField(doc, "id"),
		UserID:      stringField(doc, "userId"),
		Title:       stringField(doc, "title"),
		Description: stringField(doc, "description"),
		StartTime:   stringField(doc, "startTime"),
		EndTime:     stringField(doc, "endTime"),
		Priority:    models.Priority(stringField(doc, "priority")),
	}
	if task.ID == "" {
		task.ID = stringField(doc, "_id")
	}

	if completed, ok := doc["completed"].(bool); ok {
		task.Completed = completed
	}

	task.DueDate = instantField(doc, "dueDate", loc)
	task.CompletedAt = instantField(doc, "completedAt", loc)
	task.CreatedAt = instantField(doc, "createdAt", loc)
	if updatedAt := instantField(doc, "updatedAt", loc); updatedAt != nil {
		task.UpdatedAt = *updatedAt
	}
	return task
}

func stringField(doc map[string]interface{}, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

func instantField(doc map[string]interface{}, key string, loc *time.Location) *time.Time {
	t, ok := utils.ParseInstant(doc[key], loc)
	if !ok {
		return nil
	}
	return &t
}
