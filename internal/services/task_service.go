package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"planmate/internal/models"
	"planmate/internal/utils"
	"planmate/internal/validation"
)

// ErrTaskNotFound is returned when a task does not exist or belongs to another user
var ErrTaskNotFound = errors.New("task not found")

// CompletionRecorder receives completion state changes (InfluxDB in production)
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, task models.Task) error
}

// TaskService manages a user's tasks
type TaskService struct {
	store    TaskStore
	notifier *Notifier
	clock    utils.Clock
	loc      *time.Location
	recorder CompletionRecorder
}

// NewTaskService creates a new task service
func NewTaskService(store TaskStore, notifier *Notifier, clock utils.Clock, loc *time.Location) *TaskService {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &TaskService{
		store:    store,
		notifier: notifier,
		clock:    clock,
		loc:      loc,
	}
}

// SetCompletionRecorder enables completion events
func (s *TaskService) SetCompletionRecorder(recorder CompletionRecorder) {
	s.recorder = recorder
}

// Now returns the service clock's current instant
func (s *TaskService) Now() time.Time {
	return s.clock.Now()
}

// CreateTask validates the request and stores a new open task
func (s *TaskService) CreateTask(ctx context.Context, userID string, req models.TaskRequest) (*models.Task, error) {
	now := s.clock.Now()
	input, err := validation.ValidateTaskInput(req, now, s.loc)
	if err != nil {
		return nil, err
	}

	dueDate := input.DueDate
	createdAt := now
	task := &models.Task{
		ID:          utils.GenerateUUID(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     &dueDate,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Priority:    input.Priority,
		CreatedAt:   &createdAt,
		UpdatedAt:   now,
	}

	if err := s.store.InsertTask(ctx, task); err != nil {
		return nil, err
	}

	log.Printf("[TASKS] Created task %s for user %s", task.ID, userID)
	s.publish(userID)
	return task, nil
}

// GetTask retrieves one of the user's tasks
func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.store.FindTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return task, nil
}

// UpdateTask replaces the editable fields of a task. Completion state and createdAt are kept.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, req models.TaskRequest) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	input, err := validation.ValidateTaskInput(req, now, s.loc)
	if err != nil {
		return nil, err
	}

	dueDate := input.DueDate
	task.Title = input.Title
	task.Description = input.Description
	task.DueDate = &dueDate
	task.StartTime = input.StartTime
	task.EndTime = input.EndTime
	task.Priority = input.Priority
	task.UpdatedAt = now

	if err := s.replace(ctx, task); err != nil {
		return nil, err
	}

	log.Printf("[TASKS] Updated task %s for user %s", taskID, userID)
	s.publish(userID)
	return task, nil
}

// DeleteTask removes one of the user's tasks
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	deleted, err := s.store.DeleteTask(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	log.Printf("[TASKS] Deleted task %s for user %s", taskID, userID)
	s.publish(userID)
	return nil
}

// ToggleComplete flips a task's completion state. Completing stamps completedAt, reopening clears it.
func (s *TaskService) ToggleComplete(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	task.Completed = !task.Completed
	if task.Completed {
		completedAt := now
		task.CompletedAt = &completedAt
	} else {
		task.CompletedAt = nil
	}
	task.UpdatedAt = now

	if err := s.replace(ctx, task); err != nil {
		return nil, err
	}

	log.Printf("[TASKS] Task %s for user %s completed=%t", taskID, userID, task.Completed)
	if s.recorder != nil {
		if err := s.recorder.RecordCompletion(ctx, *task); err != nil {
			log.Printf("[TASKS] WARNING: Failed to record completion for task %s: %v", taskID, err)
		}
	}
	s.publish(userID)
	return task, nil
}

// AllTasks returns the user's full task snapshot
func (s *TaskService) AllTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.store.FindTasksByUser(ctx, userID)
}

// ListTasks returns the user's tasks filtered and ordered by opts
func (s *TaskService) ListTasks(ctx context.Context, userID string, opts models.TaskListOptions) ([]models.Task, error) {
	tasks, err := s.store.FindTasksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FilterAndSortTasks(tasks, opts), nil
}

// FilterAndSortTasks applies status and priority filters and orders the result.
// The default order is priority, highest first. Tasks without the sort field go last.
func FilterAndSortTasks(tasks []models.Task, opts models.TaskListOptions) []models.Task {
	filtered := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		switch opts.Status {
		case models.TaskStatusActive:
			if task.Completed {
				continue
			}
		case models.TaskStatusCompleted:
			if !task.Completed {
				continue
			}
		}
		if opts.Priority != "" && task.Priority != opts.Priority {
			continue
		}
		filtered = append(filtered, task)
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = models.SortByPriority
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]

		var cmp int
		switch sortBy {
		case models.SortByDueDate:
			if c, ok := compareOptionalTimes(a.DueDate, b.DueDate); ok {
				cmp = c
			} else {
				return a.DueDate != nil
			}
		case models.SortByCreatedAt:
			if c, ok := compareOptionalTimes(a.CreatedAt, b.CreatedAt); ok {
				cmp = c
			} else {
				return a.CreatedAt != nil
			}
		default:
			cmp = a.Priority.Weight() - b.Priority.Weight()
		}

		if cmp == 0 {
			return a.ID < b.ID
		}
		if opts.Ascending {
			return cmp < 0
		}
		return cmp > 0
	})

	return filtered
}

// compareOptionalTimes compares two optional instants. ok is false when exactly one is missing.
func compareOptionalTimes(a, b *time.Time) (cmp int, ok bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil || b == nil:
		return 0, false
	case a.Before(*b):
		return -1, true
	case a.After(*b):
		return 1, true
	}
	return 0, true
}

func (s *TaskService) replace(ctx context.Context, task *models.Task) error {
	updated, err := s.store.ReplaceTask(ctx, task)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
	}
	return nil
}

func (s *TaskService) publish(userID string) {
	if s.notifier != nil {
		s.notifier.Publish(userID)
	}
}
