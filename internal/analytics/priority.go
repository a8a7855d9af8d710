package analytics

import (
	"planmate/internal/models"
	"planmate/internal/utils"
)

// PriorityCount holds the totals for one priority level
type PriorityCount struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// PriorityDistribution breaks tasks down by priority.
// Tasks with an unrecognized priority are not counted in any bucket.
type PriorityDistribution struct {
	High   PriorityCount `json:"high"`
	Medium PriorityCount `json:"medium"`
	Low    PriorityCount `json:"low"`
}

// For returns the bucket for p, or nil when p is not a recognized priority
func (d *PriorityDistribution) For(p models.Priority) *PriorityCount {
	switch p {
	case models.PriorityHigh:
		return &d.High
	case models.PriorityMedium:
		return &d.Medium
	case models.PriorityLow:
		return &d.Low
	}
	return nil
}

// PriorityDistribution counts total and completed tasks per priority
func (e *Engine) PriorityDistribution(tasks []models.Task) PriorityDistribution {
	var dist PriorityDistribution
	for _, task := range tasks {
		bucket := dist.For(task.Priority)
		if bucket == nil {
			continue
		}
		bucket.Total++
		if task.Completed {
			bucket.Completed++
		}
	}
	return dist
}

// Counts are the simple totals shown on the overview cards
type Counts struct {
	Total                 int `json:"total"`
	Completed             int `json:"completed"`
	Pending               int `json:"pending"`
	HighPriority          int `json:"highPriority"`
	HighPriorityCompleted int `json:"highPriorityCompleted"`
	CompletionRate        int `json:"completionRate"`
}

// Counts tallies completed and pending tasks. The completed flag alone decides; a missing
// or inconsistent completedAt does not matter here.
func (e *Engine) Counts(tasks []models.Task) Counts {
	counts := Counts{Total: len(tasks)}
	for _, task := range tasks {
		if task.Completed {
			counts.Completed++
		}
		if task.Priority == models.PriorityHigh {
			counts.HighPriority++
			if task.Completed {
				counts.HighPriorityCompleted++
			}
		}
	}
	counts.Pending = counts.Total - counts.Completed
	counts.CompletionRate = utils.Percent(counts.Completed, counts.Total)
	return counts
}
