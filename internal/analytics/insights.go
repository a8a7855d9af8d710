package analytics

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"planmate/internal/models"
	"planmate/internal/utils"
)

// TimeOfDay is a completion-hour bucket
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"   // [05:00, 12:00)
	Afternoon TimeOfDay = "afternoon" // [12:00, 17:00)
	Evening   TimeOfDay = "evening"   // [17:00, 21:00)
	Night     TimeOfDay = "night"     // [21:00, 05:00)
)

// TimeOfDayOrder is both the display order and the tie-break preference
var TimeOfDayOrder = [4]TimeOfDay{Morning, Afternoon, Evening, Night}

// DayNames is indexed by time.Weekday (Sunday = 0)
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// TimeOfDayFor buckets a local hour (0-23)
func TimeOfDayFor(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// PeriodCount is a time-of-day bucket and its completion count
type PeriodCount struct {
	Period TimeOfDay `json:"period"`
	Count  int       `json:"count"`
}

// DayCount is a day of the week and its completion count
type DayCount struct {
	Name  string `json:"name"`
	Index int    `json:"index"` // 0 = Sunday
	Count int    `json:"count"`
}

// ProductivityInsights summarizes when tasks get done
type ProductivityInsights struct {
	MostProductiveTime PeriodCount       `json:"mostProductiveTime"`
	BestDay            DayCount          `json:"bestDay"`
	TimeOfDayCounts    map[TimeOfDay]int `json:"timeOfDayCounts"`
	DayCounts          [7]int            `json:"dayCounts"` // Sunday..Saturday
	CompletedWithTime  int               `json:"completedWithTime"`

	AverageDuration time.Duration `json:"averageDuration"`
	MedianDuration  time.Duration `json:"medianDuration"`
	DurationSamples int           `json:"durationSamples"`
	AvgTimePerTask  string        `json:"avgTimePerTask"` // "1hr 30min" or "45min"
}

// DefaultInsights is the empty-state result used when nothing qualifies
func DefaultInsights() ProductivityInsights {
	return ProductivityInsights{
		MostProductiveTime: PeriodCount{Period: Morning, Count: 0},
		BestDay:            DayCount{Name: DayNames[time.Monday], Index: int(time.Monday), Count: 0},
		TimeOfDayCounts:    emptyTimeOfDayCounts(),
		AvgTimePerTask:     utils.FormatDuration(0),
	}
}

func emptyTimeOfDayCounts() map[TimeOfDay]int {
	counts := make(map[TimeOfDay]int, len(TimeOfDayOrder))
	for _, period := range TimeOfDayOrder {
		counts[period] = 0
	}
	return counts
}

// ProductivityInsights tallies completed tasks by local completion hour and weekday.
//
// A task qualifies when it is marked completed and has a completedAt. Ties resolve to the
// earliest bucket in TimeOfDayOrder and to the lowest weekday index. The duration average
// only uses tasks whose completedAt is strictly after createdAt.
func (e *Engine) ProductivityInsights(tasks []models.Task) ProductivityInsights {
	insights := DefaultInsights()

	var durations stats.Float64Data
	for _, task := range tasks {
		if !task.Completed || task.CompletedAt == nil || task.CompletedAt.IsZero() {
			continue
		}
		completedAt := task.CompletedAt.In(e.loc)

		insights.CompletedWithTime++
		insights.TimeOfDayCounts[TimeOfDayFor(completedAt.Hour())]++
		insights.DayCounts[completedAt.Weekday()]++

		if createdAt, ok := creationTime(task); ok && completedAt.After(createdAt) {
			durations = append(durations, float64(completedAt.Sub(createdAt)))
		}
	}

	if insights.CompletedWithTime == 0 {
		return insights
	}

	best := PeriodCount{Period: TimeOfDayOrder[0], Count: insights.TimeOfDayCounts[TimeOfDayOrder[0]]}
	for _, period := range TimeOfDayOrder[1:] {
		if count := insights.TimeOfDayCounts[period]; count > best.Count {
			best = PeriodCount{Period: period, Count: count}
		}
	}
	insights.MostProductiveTime = best

	bestDay := 0
	for day := 1; day < len(insights.DayCounts); day++ {
		if insights.DayCounts[day] > insights.DayCounts[bestDay] {
			bestDay = day
		}
	}
	insights.BestDay = DayCount{Name: DayNames[bestDay], Index: bestDay, Count: insights.DayCounts[bestDay]}

	insights.DurationSamples = len(durations)
	if mean, err := stats.Mean(durations); err == nil {
		insights.AverageDuration = clampDuration(mean)
	}
	if median, err := stats.Median(durations); err == nil {
		insights.MedianDuration = clampDuration(median)
	}
	insights.AvgTimePerTask = utils.FormatDuration(insights.AverageDuration)

	return insights
}

// clampDuration converts nanoseconds to a Duration, saturating instead of wrapping
func clampDuration(ns float64) time.Duration {
	switch {
	case math.IsNaN(ns) || ns <= 0:
		return 0
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
