package analytics

import (
	"fmt"
	"time"

	"planmate/internal/models"
	"planmate/internal/utils"
)

// WeeklySeries is the current week's completion chart
type WeeklySeries struct {
	WeekStart      time.Time `json:"weekStart"`
	Days           [7]int    `json:"days"`   // Completions per day, Monday..Sunday
	Labels         [7]string `json:"labels"` // "Mon 13", "Tue 14", ...
	Completed      int       `json:"completed"`
	Total          int       `json:"total"` // Tasks due between weekStart and now, or all tasks when none are
	CompletionRate int       `json:"completionRate"`
}

// WeeklySeries counts completions since the start of the week containing now.
//
// The week starts on Monday at local midnight. Only tasks with a usable completedAt are
// counted. Total is the number of tasks due in [weekStart, now]; when there are none it
// falls back to len(tasks) so the rate is never 0/0.
func (e *Engine) WeeklySeries(tasks []models.Task, now time.Time) WeeklySeries {
	now = now.In(e.loc)
	weekStart, _ := utils.CalculateWeekRange(now)

	series := WeeklySeries{WeekStart: weekStart}
	for i := range series.Labels {
		day := weekStart.AddDate(0, 0, i)
		series.Labels[i] = fmt.Sprintf("%s %d", day.Format("Mon"), day.Day())
	}

	dueThisWeek := 0
	for _, task := range tasks {
		if completedAt, ok := completionTime(task); ok {
			completedAt = completedAt.In(e.loc)
			if !completedAt.Before(weekStart) {
				series.Days[utils.MondayIndex(completedAt.Weekday())]++
				series.Completed++
			}
		}

		if due, ok := dueTime(task); ok && !due.Before(weekStart) && !due.After(now) {
			dueThisWeek++
		}
	}

	series.Total = dueThisWeek
	if series.Total == 0 {
		series.Total = len(tasks)
	}
	series.CompletionRate = utils.Percent(series.Completed, series.Total)

	return series
}

// DayProgress is one day of the trailing seven-day chart
type DayProgress struct {
	Date           string `json:"date"` // YYYY-MM-DD
	Day            string `json:"day"`  // Mon, Tue, ...
	Completed      int    `json:"completed"`
	Total          int    `json:"total"`
	CompletionRate int    `json:"completionRate"`
}

// LastSevenDays groups tasks by the local calendar date of their dueDate for the seven
// days ending on now's date, oldest first.
func (e *Engine) LastSevenDays(tasks []models.Task, now time.Time) []DayProgress {
	today := utils.StartOfDay(now.In(e.loc))

	days := make([]DayProgress, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, i-6)
		days[i] = DayProgress{Date: utils.FormatDate(day), Day: day.Format("Mon")}
		index[days[i].Date] = i
	}

	for _, task := range tasks {
		due, ok := dueTime(task)
		if !ok {
			continue
		}
		i, ok := index[utils.FormatDate(due.In(e.loc))]
		if !ok {
			continue
		}
		days[i].Total++
		if task.Completed {
			days[i].Completed++
		}
	}

	for i := range days {
		days[i].CompletionRate = utils.Percent(days[i].Completed, days[i].Total)
	}
	return days
}
