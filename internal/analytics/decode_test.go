package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmate/internal/models"
)

func TestDecodeTasksRejectsNonLists(t *testing.T) {
	inputs := map[string]string{
		"empty":         "",
		"null":          "null",
		"object":        `{"tasks": []}`,
		"string":        `"tasks"`,
		"number":        `42`,
		"broken":        `[{"id": 1`,
		"trailing word": `[] trailing`,
		"second array":  `[][]`,
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			tasks, err := DecodeTasks([]byte(raw), time.UTC)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, tasks)
		})
	}
}

func TestDecodeTasksNormalizesTimestamps(t *testing.T) {
	completedAt := time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC)
	raw := `[
		{"id": "a", "title": "ISO", "priority": "high", "completed": true,
		 "completedAt": "2025-01-13T09:00:00Z", "createdAt": "2025-01-13T08:00:00.000Z",
		 "dueDate": "2025-01-13T09:00:00Z", "startTime": "09:00", "endTime": "10:00"},
		{"id": "b", "priority": "low", "completed": true, "completedAt": 1736758800000},
		{"id": "c", "priority": "medium", "completed": true, "completedAt": {"seconds": 1736758800, "nanoseconds": 0}},
		{"id": 7, "priority": "urgent", "completed": "yes", "completedAt": null},
		"not an object",
		42
	]`

	tasks, err := DecodeTasks([]byte(raw), time.UTC)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	for _, task := range tasks[:3] {
		require.NotNil(t, task.CompletedAt, task.ID)
		assert.True(t, completedAt.Equal(*task.CompletedAt), task.ID)
		assert.True(t, task.Completed)
	}

	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, "09:00", tasks[0].StartTime)
	require.NotNil(t, tasks[0].CreatedAt)
	require.NotNil(t, tasks[0].DueDate)

	assert.Equal(t, "7", tasks[3].ID)
	assert.False(t, tasks[3].Completed)
	assert.Nil(t, tasks[3].CompletedAt)
	assert.Equal(t, models.Priority("urgent"), tasks[3].Priority)
}

func TestSummarizeJSON(t *testing.T) {
	e := newTestEngine()

	summary, err := e.SummarizeJSON([]byte(`null`), wednesday)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, e.DefaultSummary(wednesday), summary)
	assert.Equal(t, Morning, summary.Insights.MostProductiveTime.Period)
	assert.Equal(t, "Monday", summary.Insights.BestDay.Name)

	raw := `[
		{"id": "1", "priority": "high", "completed": true, "completedAt": "2025-01-13T09:00:00Z"},
		{"id": "2", "priority": "low", "completed": true, "completedAt": "2025-01-13T14:00:00Z"}
	]`
	summary, err = e.SummarizeJSON([]byte(raw), wednesday)
	require.NoError(t, err)
	assert.Equal(t, [7]int{2, 0, 0, 0, 0, 0, 0}, summary.Weekly.Days)
	assert.Equal(t, 1, summary.Priorities.High.Completed)
	assert.Equal(t, 2, summary.Insights.BestDay.Count)
}
