package analytics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmate/internal/models"
)

// Monday 13 January 2025 is the week used throughout
var (
	monday    = time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	wednesday = monday.AddDate(0, 0, 2).Add(12 * time.Hour)
)

func at(t time.Time) *time.Time { return &t }

func completedTask(id string, priority models.Priority, completedAt time.Time) models.Task {
	return models.Task{
		ID:          id,
		Title:       "task " + id,
		Priority:    priority,
		Completed:   true,
		CompletedAt: at(completedAt),
	}
}

func newTestEngine() *Engine {
	return NewEngine(WithLocation(time.UTC))
}

func TestWorkedExampleMondayMorningAndAfternoon(t *testing.T) {
	e := newTestEngine()
	tasks := []models.Task{
		completedTask("1", models.PriorityHigh, monday.Add(9*time.Hour)),
		completedTask("2", models.PriorityLow, monday.Add(14*time.Hour)),
	}

	weekly := e.WeeklySeries(tasks, wednesday)
	assert.Equal(t, [7]int{2, 0, 0, 0, 0, 0, 0}, weekly.Days)
	assert.Equal(t, 2, weekly.Completed)
	assert.Equal(t, monday, weekly.WeekStart)

	dist := e.PriorityDistribution(tasks)
	assert.Equal(t, 1, dist.High.Completed)
	assert.Equal(t, 1, dist.Low.Completed)
	assert.Equal(t, 0, dist.Medium.Total)

	insights := e.ProductivityInsights(tasks)
	assert.Equal(t, PeriodCount{Period: Morning, Count: 1}, insights.MostProductiveTime)
	assert.Equal(t, "Monday", insights.BestDay.Name)
	assert.Equal(t, 2, insights.BestDay.Count)
}

func TestCompletedWithoutCompletedAt(t *testing.T) {
	e := newTestEngine()
	tasks := []models.Task{{ID: "1", Priority: models.PriorityMedium, Completed: true}}

	counts := e.Counts(tasks)
	assert.Equal(t, 1, counts.Completed)
	assert.Equal(t, 0, counts.Pending)

	insights := e.ProductivityInsights(tasks)
	assert.Equal(t, 0, insights.CompletedWithTime)
	assert.Equal(t, PeriodCount{Period: Morning, Count: 0}, insights.MostProductiveTime)

	weekly := e.WeeklySeries(tasks, wednesday)
	assert.Equal(t, 0, weekly.Completed)
}

func TestCompletedBeforeCreatedIsExcludedFromDuration(t *testing.T) {
	e := newTestEngine()
	task := completedTask("1", models.PriorityHigh, monday.Add(9*time.Hour))
	task.CreatedAt = at(monday.Add(10 * time.Hour))

	counts := e.Counts([]models.Task{task})
	assert.Equal(t, 1, counts.Completed)
	assert.Equal(t, 1, counts.HighPriorityCompleted)

	insights := e.ProductivityInsights([]models.Task{task})
	assert.Equal(t, 0, insights.DurationSamples)
	assert.Equal(t, "0min", insights.AvgTimePerTask)

	weekly := e.WeeklySeries([]models.Task{task}, wednesday)
	assert.Equal(t, 0, weekly.Completed)
}

func TestEmptyInputDefaults(t *testing.T) {
	e := newTestEngine()

	weekly := e.WeeklySeries(nil, wednesday)
	assert.Equal(t, [7]int{}, weekly.Days)
	assert.Equal(t, 0, weekly.Total)
	assert.Equal(t, 0, weekly.CompletionRate)

	assert.Equal(t, PriorityDistribution{}, e.PriorityDistribution(nil))

	insights := e.ProductivityInsights(nil)
	assert.Equal(t, PeriodCount{Period: Morning, Count: 0}, insights.MostProductiveTime)
	assert.Equal(t, DayCount{Name: "Monday", Index: 1, Count: 0}, insights.BestDay)
	assert.Equal(t, "0min", insights.AvgTimePerTask)

	assert.Equal(t, Counts{}, e.Counts(nil))
}

func TestWeeklySumMatchesCompleted(t *testing.T) {
	e := newTestEngine()
	var tasks []models.Task
	for i := 0; i < 20; i++ {
		tasks = append(tasks, completedTask(string(rune('a'+i)), models.PriorityMedium, monday.Add(time.Duration(i*7)*time.Hour)))
	}

	now := monday.AddDate(0, 0, 6).Add(23 * time.Hour)
	weekly := e.WeeklySeries(tasks, now)

	sum := 0
	for _, n := range weekly.Days {
		sum += n
	}
	assert.Equal(t, weekly.Completed, sum)
	assert.Equal(t, 20, weekly.Completed)
}

func TestWeeklySeries(t *testing.T) {
	e := newTestEngine()

	t.Run("sunday belongs to the week that started six days earlier", func(t *testing.T) {
		sunday := monday.AddDate(0, 0, 6).Add(18 * time.Hour)
		tasks := []models.Task{completedTask("1", models.PriorityLow, sunday.Add(-time.Hour))}

		weekly := e.WeeklySeries(tasks, sunday)
		assert.Equal(t, monday, weekly.WeekStart)
		assert.Equal(t, 1, weekly.Days[6])
	})

	t.Run("completions before the week start are ignored", func(t *testing.T) {
		tasks := []models.Task{
			completedTask("old", models.PriorityLow, monday.Add(-time.Minute)),
			completedTask("new", models.PriorityLow, monday),
		}
		weekly := e.WeeklySeries(tasks, wednesday)
		assert.Equal(t, 1, weekly.Completed)
		assert.Equal(t, 1, weekly.Days[0])
	})

	t.Run("total counts tasks due between week start and now", func(t *testing.T) {
		tasks := []models.Task{
			{ID: "due-mon", DueDate: at(monday.Add(9 * time.Hour))},
			{ID: "due-tue", DueDate: at(monday.AddDate(0, 0, 1))},
			{ID: "due-fri", DueDate: at(monday.AddDate(0, 0, 4))},
			{ID: "due-last-week", DueDate: at(monday.AddDate(0, 0, -3))},
			{ID: "no-due"},
		}
		tasks[0].Completed = true
		tasks[0].CompletedAt = at(monday.Add(10 * time.Hour))

		weekly := e.WeeklySeries(tasks, wednesday)
		assert.Equal(t, 2, weekly.Total)
		assert.Equal(t, 1, weekly.Completed)
		assert.Equal(t, 50, weekly.CompletionRate)
	})

	t.Run("total falls back to all tasks", func(t *testing.T) {
		tasks := []models.Task{
			completedTask("1", models.PriorityLow, monday.Add(time.Hour)),
			{ID: "2"},
			{ID: "3"},
			{ID: "4"},
		}
		weekly := e.WeeklySeries(tasks, wednesday)
		assert.Equal(t, 4, weekly.Total)
		assert.Equal(t, 25, weekly.CompletionRate)
	})

	t.Run("labels", func(t *testing.T) {
		weekly := e.WeeklySeries(nil, wednesday)
		assert.Equal(t, "Mon 13", weekly.Labels[0])
		assert.Equal(t, "Sun 19", weekly.Labels[6])
	})
}

func TestWeeklySeriesUsesEngineLocation(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	e := NewEngine(WithLocation(tokyo))

	// Sunday 22:00 UTC is Monday 07:00 in UTC+9
	completed := time.Date(2025, 1, 12, 22, 0, 0, 0, time.UTC)
	tasks := []models.Task{completedTask("1", models.PriorityHigh, completed)}

	weekly := e.WeeklySeries(tasks, wednesday)
	assert.Equal(t, 1, weekly.Days[0])

	insights := e.ProductivityInsights(tasks)
	assert.Equal(t, Morning, insights.MostProductiveTime.Period)
	assert.Equal(t, "Monday", insights.BestDay.Name)
}

func TestPriorityDistribution(t *testing.T) {
	e := newTestEngine()
	tasks := []models.Task{
		{Priority: models.PriorityHigh, Completed: true},
		{Priority: models.PriorityHigh},
		{Priority: models.PriorityMedium, Completed: true},
		{Priority: models.PriorityLow},
		{Priority: "urgent", Completed: true},
		{Priority: ""},
	}

	dist := e.PriorityDistribution(tasks)
	assert.Equal(t, PriorityCount{Total: 2, Completed: 1}, dist.High)
	assert.Equal(t, PriorityCount{Total: 1, Completed: 1}, dist.Medium)
	assert.Equal(t, PriorityCount{Total: 1, Completed: 0}, dist.Low)

	for _, p := range models.Priorities {
		bucket := dist.For(p)
		require.NotNil(t, bucket)
		assert.LessOrEqual(t, bucket.Completed, bucket.Total)
	}
	assert.Nil(t, dist.For("urgent"))

	counts := e.Counts(tasks)
	assert.Equal(t, 6, counts.Total)
	assert.Equal(t, 3, counts.Completed)
	assert.Equal(t, 3, counts.Pending)
	assert.Equal(t, 2, counts.HighPriority)
	assert.Equal(t, 1, counts.HighPriorityCompleted)
	assert.Equal(t, 50, counts.CompletionRate)
}

func TestTimeOfDayFor(t *testing.T) {
	tests := []struct {
		hour int
		want TimeOfDay
	}{
		{0, Night},
		{4, Night},
		{5, Morning},
		{11, Morning},
		{12, Afternoon},
		{16, Afternoon},
		{17, Evening},
		{20, Evening},
		{21, Night},
		{23, Night},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeOfDayFor(tt.hour), "hour %d", tt.hour)
	}
}

func TestProductivityInsightsTieBreaks(t *testing.T) {
	e := newTestEngine()
	sunday := monday.AddDate(0, 0, -1)
	tuesday := monday.AddDate(0, 0, 1)

	t.Run("best day prefers the lower day index", func(t *testing.T) {
		tasks := []models.Task{
			completedTask("tue", models.PriorityLow, tuesday.Add(9*time.Hour)),
			completedTask("sun", models.PriorityLow, sunday.Add(9*time.Hour)),
		}
		insights := e.ProductivityInsights(tasks)
		assert.Equal(t, DayCount{Name: "Sunday", Index: 0, Count: 1}, insights.BestDay)
	})

	t.Run("evening beats night on a tie", func(t *testing.T) {
		tasks := []models.Task{
			completedTask("night", models.PriorityLow, monday.Add(23*time.Hour)),
			completedTask("evening", models.PriorityLow, monday.Add(18*time.Hour)),
		}
		insights := e.ProductivityInsights(tasks)
		assert.Equal(t, PeriodCount{Period: Evening, Count: 1}, insights.MostProductiveTime)
	})

	t.Run("a strictly larger later bucket wins", func(t *testing.T) {
		tasks := []models.Task{
			completedTask("1", models.PriorityLow, monday.Add(8*time.Hour)),
			completedTask("2", models.PriorityLow, monday.Add(22*time.Hour)),
			completedTask("3", models.PriorityLow, tuesday.Add(2*time.Hour)),
		}
		insights := e.ProductivityInsights(tasks)
		assert.Equal(t, PeriodCount{Period: Night, Count: 2}, insights.MostProductiveTime)
		assert.Equal(t, 2, insights.DayCounts[time.Monday])
		assert.Equal(t, 1, insights.DayCounts[time.Tuesday])
	})

	t.Run("incomplete tasks with a completedAt do not qualify", func(t *testing.T) {
		task := completedTask("1", models.PriorityLow, monday.Add(20*time.Hour))
		task.Completed = false
		insights := e.ProductivityInsights([]models.Task{task})
		assert.Equal(t, 0, insights.CompletedWithTime)
	})
}

func TestAverageDuration(t *testing.T) {
	e := newTestEngine()
	created := monday.Add(8 * time.Hour)

	withDuration := func(id string, d time.Duration) models.Task {
		task := completedTask(id, models.PriorityMedium, created.Add(d))
		task.CreatedAt = at(created)
		return task
	}

	t.Run("hours and minutes", func(t *testing.T) {
		tasks := []models.Task{withDuration("1", 30*time.Minute), withDuration("2", 120*time.Minute)}
		insights := e.ProductivityInsights(tasks)
		assert.Equal(t, 2, insights.DurationSamples)
		assert.Equal(t, 75*time.Minute, insights.AverageDuration)
		assert.Equal(t, 75*time.Minute, insights.MedianDuration)
		assert.Equal(t, "1hr 15min", insights.AvgTimePerTask)
	})

	t.Run("exactly an hour stays in minutes", func(t *testing.T) {
		insights := e.ProductivityInsights([]models.Task{withDuration("1", time.Hour)})
		assert.Equal(t, "60min", insights.AvgTimePerTask)
	})

	t.Run("zero-length and missing createdAt are excluded", func(t *testing.T) {
		tasks := []models.Task{
			withDuration("zero", 0),
			completedTask("no-created", models.PriorityLow, created),
			withDuration("ok", 45*time.Minute),
		}
		insights := e.ProductivityInsights(tasks)
		assert.Equal(t, 1, insights.DurationSamples)
		assert.Equal(t, "45min", insights.AvgTimePerTask)
		assert.Equal(t, 3, insights.CompletedWithTime)
	})

	t.Run("spans beyond the duration range saturate", func(t *testing.T) {
		task := completedTask("ancient", models.PriorityMedium, created)
		task.CreatedAt = at(time.Date(1, 1, 2, 0, 0, 0, 0, time.UTC))
		insights := e.ProductivityInsights([]models.Task{task})
		assert.Equal(t, 1, insights.DurationSamples)
		assert.Equal(t, time.Duration(math.MaxInt64), insights.AverageDuration)
		assert.Equal(t, time.Duration(math.MaxInt64), insights.MedianDuration)
		assert.NotEqual(t, "0min", insights.AvgTimePerTask)
	})
}

func TestOutOfRangeTimestampsAreIgnored(t *testing.T) {
	raw := `[
		{"id": "a", "completed": true, "completedAt": 1e300},
		{"id": "b", "completed": true, "completedAt": {"seconds": 1e300}}
	]`
	tasks, err := DecodeTasks([]byte(raw), time.UTC)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	insights := newTestEngine().ProductivityInsights(tasks)
	assert.Equal(t, 0, insights.CompletedWithTime)
	assert.Equal(t, DefaultInsights().BestDay, insights.BestDay)
	assert.Equal(t, "0min", insights.AvgTimePerTask)
}

func TestComputationsDoNotMutateInput(t *testing.T) {
	e := newTestEngine()
	task := completedTask("1", models.PriorityHigh, monday.Add(9*time.Hour))
	task.CreatedAt = at(monday)
	task.DueDate = at(monday.Add(9 * time.Hour))
	tasks := []models.Task{task, {ID: "2", Priority: models.PriorityLow}}

	before, err := json.Marshal(tasks)
	require.NoError(t, err)

	first := e.Summarize(tasks, wednesday)
	second := e.Summarize(tasks, wednesday)
	assert.Equal(t, first, second)

	after, err := json.Marshal(tasks)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestRecentCompleted(t *testing.T) {
	var tasks []models.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, completedTask(string(rune('a'+i)), models.PriorityLow, monday.Add(time.Duration(i)*time.Hour)))
	}
	tasks = append(tasks, models.Task{ID: "flag-only", Completed: true}, models.Task{ID: "open"})

	recent := RecentCompleted(tasks, 5)
	require.Len(t, recent, 5)
	assert.Equal(t, "g", recent[0].ID)
	assert.Equal(t, "c", recent[4].ID)

	all := RecentCompleted(tasks, 100)
	require.Len(t, all, 8)
	assert.Equal(t, "flag-only", all[7].ID)
}

func TestLastSevenDays(t *testing.T) {
	e := newTestEngine()
	tasks := []models.Task{
		{ID: "today-done", DueDate: at(wednesday.Add(-2 * time.Hour)), Completed: true},
		{ID: "today-open", DueDate: at(wednesday)},
		{ID: "six-days-ago", DueDate: at(wednesday.AddDate(0, 0, -6))},
		{ID: "too-old", DueDate: at(wednesday.AddDate(0, 0, -7))},
		{ID: "tomorrow", DueDate: at(wednesday.AddDate(0, 0, 1))},
		{ID: "no-due"},
	}

	days := e.LastSevenDays(tasks, wednesday)
	require.Len(t, days, 7)
	assert.Equal(t, "2025-01-09", days[0].Date)
	assert.Equal(t, 1, days[0].Total)
	assert.Equal(t, "2025-01-15", days[6].Date)
	assert.Equal(t, "Wed", days[6].Day)
	assert.Equal(t, 2, days[6].Total)
	assert.Equal(t, 1, days[6].Completed)
	assert.Equal(t, 50, days[6].CompletionRate)
}

func TestSummarize(t *testing.T) {
	e := newTestEngine()
	tasks := []models.Task{
		completedTask("1", models.PriorityHigh, monday.Add(9*time.Hour)),
		completedTask("2", models.PriorityLow, monday.Add(14*time.Hour)),
		{ID: "3", Priority: models.PriorityMedium},
	}

	summary := e.Summarize(tasks, wednesday)
	assert.Equal(t, wednesday, summary.GeneratedAt)
	assert.Equal(t, 67, summary.Counts.CompletionRate)
	assert.Equal(t, 2, summary.Weekly.Completed)
	assert.Equal(t, 1, summary.Priorities.Medium.Total)
	assert.Equal(t, Morning, summary.Insights.MostProductiveTime.Period)
	require.Len(t, summary.RecentCompleted, 2)
	assert.Equal(t, "2", summary.RecentCompleted[0].ID)
	assert.Len(t, summary.LastSevenDays, 7)
}

func TestAsOf(t *testing.T) {
	cutoff := monday.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute)
	late := completedTask("late", models.PriorityHigh, cutoff.Add(time.Hour))
	early := completedTask("early", models.PriorityLow, monday.Add(time.Hour))
	future := models.Task{ID: "future", CreatedAt: at(cutoff.Add(time.Minute))}
	tasks := []models.Task{late, early, future}

	snapshot := AsOf(tasks, cutoff)
	require.Len(t, snapshot, 2)
	assert.False(t, snapshot[0].Completed)
	assert.Nil(t, snapshot[0].CompletedAt)
	assert.True(t, snapshot[1].Completed)

	assert.True(t, tasks[0].Completed, "input must not change")
	assert.NotNil(t, tasks[0].CompletedAt)
}
