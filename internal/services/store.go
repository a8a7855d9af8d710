package services

import (
	"context"
	"sync"

	"planmate/internal/models"
)

// TaskStore persists tasks. Lookups return nil, nil when nothing matches.
// Implemented by database.MongoDBClient and MemoryStore.
type TaskStore interface {
	InsertTask(ctx context.Context, task *models.Task) error
	FindTask(ctx context.Context, userID, taskID string) (*models.Task, error)
	FindTasksByUser(ctx context.Context, userID string) ([]models.Task, error)
	ReplaceTask(ctx context.Context, task *models.Task) (bool, error)
	DeleteTask(ctx context.Context, userID, taskID string) (bool, error)
}

// SubscriptionStore persists weekly digest subscriptions
type SubscriptionStore interface {
	UpsertSubscription(ctx context.Context, sub models.DigestSubscription) error
	RemoveSubscription(ctx context.Context, userID string) error
	FindSubscription(ctx context.Context, userID string) (*models.DigestSubscription, error)
	FindAllSubscriptions(ctx context.Context) ([]models.DigestSubscription, error)
}

// MemoryStore keeps tasks and subscriptions in process memory.
// Used when MongoDB is not configured, and in tests.
type MemoryStore struct {
	tasks         map[string]models.Task
	subscriptions map[string]models.DigestSubscription
	mutex         sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:         make(map[string]models.Task),
		subscriptions: make(map[string]models.DigestSubscription),
	}
}

// InsertTask stores a copy of the task
func (s *MemoryStore) InsertTask(ctx context.Context, task *models.Task) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tasks[task.ID] = *task
	return nil
}

// FindTask retrieves a task by ID if the user owns it
func (s *MemoryStore) FindTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists || task.UserID != userID {
		return nil, nil
	}
	return &task, nil
}

// FindTasksByUser retrieves every task the user owns
func (s *MemoryStore) FindTasksByUser(ctx context.Context, userID string) ([]models.Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	tasks := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// ReplaceTask overwrites an existing task owned by the same user
func (s *MemoryStore) ReplaceTask(ctx context.Context, task *models.Task) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, exists := s.tasks[task.ID]
	if !exists || existing.UserID != task.UserID {
		return false, nil
	}
	s.tasks[task.ID] = *task
	return true, nil
}

// DeleteTask removes a task the user owns
func (s *MemoryStore) DeleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, exists := s.tasks[taskID]
	if !exists || existing.UserID != userID {
		return false, nil
	}
	delete(s.tasks, taskID)
	return true, nil
}

// UpsertSubscription adds or replaces the user's subscription
func (s *MemoryStore) UpsertSubscription(ctx context.Context, sub models.DigestSubscription) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.subscriptions[sub.UserID] = sub
	return nil
}

// RemoveSubscription deletes the user's subscription
func (s *MemoryStore) RemoveSubscription(ctx context.Context, userID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.subscriptions, userID)
	return nil
}

// FindSubscription retrieves the user's subscription
func (s *MemoryStore) FindSubscription(ctx context.Context, userID string) (*models.DigestSubscription, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sub, exists := s.subscriptions[userID]
	if !exists {
		return nil, nil
	}
	return &sub, nil
}

// FindAllSubscriptions retrieves every subscription
func (s *MemoryStore) FindAllSubscriptions(ctx context.Context) ([]models.DigestSubscription, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	subs := make([]models.DigestSubscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, sub)
	}
	return subs, nil
}
