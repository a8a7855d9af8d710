package analytics

import (
	"sort"
	"time"

	"planmate/internal/models"
)

// recentCompletedLimit is how many tasks the "recently completed" list shows
const recentCompletedLimit = 5

// Summary bundles every view shown on the progress screen
type Summary struct {
	GeneratedAt     time.Time            `json:"generatedAt"`
	Counts          Counts               `json:"counts"`
	Weekly          WeeklySeries         `json:"weekly"`
	Priorities      PriorityDistribution `json:"priorities"`
	Insights        ProductivityInsights `json:"insights"`
	RecentCompleted []models.Task        `json:"recentCompleted"`
	LastSevenDays   []DayProgress        `json:"lastSevenDays"`
}

// Summarize computes all views for one snapshot of tasks at the reference instant now
func (e *Engine) Summarize(tasks []models.Task, now time.Time) Summary {
	return Summary{
		GeneratedAt:     now,
		Counts:          e.Counts(tasks),
		Weekly:          e.WeeklySeries(tasks, now),
		Priorities:      e.PriorityDistribution(tasks),
		Insights:        e.ProductivityInsights(tasks),
		RecentCompleted: RecentCompleted(tasks, recentCompletedLimit),
		LastSevenDays:   e.LastSevenDays(tasks, now),
	}
}

// DefaultSummary is the empty-state summary at now
func (e *Engine) DefaultSummary(now time.Time) Summary {
	return e.Summarize(nil, now)
}

// RecentCompleted returns up to limit completed tasks, newest completion first.
// Completed tasks without a completedAt sort after the rest in their original order.
func RecentCompleted(tasks []models.Task, limit int) []models.Task {
	completed := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Completed {
			completed = append(completed, task)
		}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		a, b := completed[i].CompletedAt, completed[j].CompletedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})

	if limit >= 0 && len(completed) > limit {
		completed = completed[:limit]
	}
	return completed
}

// AsOf rewinds a task snapshot to the instant at. Tasks created after at are dropped and
// completions recorded after at are treated as still open. The input is not modified.
func AsOf(tasks []models.Task, at time.Time) []models.Task {
	snapshot := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.CreatedAt != nil && task.CreatedAt.After(at) {
			continue
		}
		if task.CompletedAt != nil && task.CompletedAt.After(at) {
			task.Completed = false
			task.CompletedAt = nil
		}
		snapshot = append(snapshot, task)
	}
	return snapshot
}
