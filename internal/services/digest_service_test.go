package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmate/internal/analytics"
	"planmate/internal/models"
	"planmate/internal/utils"
)

type sentDigest struct {
	to        string
	summary   *analytics.Summary
	weekStart time.Time
	pdf       []byte
}

type fakeMailer struct {
	sent []sentDigest
}

func (m *fakeMailer) SendDigestEmail(toEmail string, summary *analytics.Summary, weekStart time.Time, pdfData []byte) error {
	m.sent = append(m.sent, sentDigest{toEmail, summary, weekStart, pdfData})
	return nil
}

// Wednesday 22 January 2025; the previous week is 13-19 January
var digestNow = time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC)

func newTestDigestService(t *testing.T, mailer DigestMailer, archive ReportArchive) (*DigestService, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	tasks := NewTaskService(store, nil, utils.FixedClock{At: digestNow}, time.UTC)
	return NewDigestService(tasks, store, NewPDFService(), mailer, archive, time.UTC), store
}

func seedTask(t *testing.T, store *MemoryStore, task models.Task) {
	t.Helper()
	task.UserID = "alice"
	require.NoError(t, store.InsertTask(context.Background(), &task))
}

func TestDigestSchedule(t *testing.T) {
	assert.Equal(t, DefaultDigestSchedule, DigestSchedule(models.DigestSubscription{UserID: "a"}, time.UTC))

	trigger := time.Date(2025, 1, 15, 14, 30, 5, 0, time.UTC)
	assert.Equal(t, "5 30 14 * * 3", DigestSchedule(models.DigestSubscription{NextTriggerTime: &trigger}, time.UTC))

	assert.Equal(t, "CRON_TZ=America/New_York 5 30 9 * * 3",
		DigestSchedule(models.DigestSubscription{NextTriggerTime: &trigger, Timezone: "America/New_York"}, time.UTC))

	assert.Equal(t, "CRON_TZ=Europe/Paris 0 0 0 * * 1",
		DigestSchedule(models.DigestSubscription{Timezone: "Europe/Paris"}, time.UTC))

	// Without a subscription timezone the trigger is read in the scheduler's location
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "5 30 23 * * 3", DigestSchedule(models.DigestSubscription{NextTriggerTime: &trigger}, tokyo))
}

func TestScheduledTriggerFiresAtRequestedInstant(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	store := NewMemoryStore()
	tasks := NewTaskService(store, nil, utils.FixedClock{At: digestNow}, paris)
	svc := NewDigestService(tasks, store, NewPDFService(), nil, nil, paris)

	trigger := time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)
	id, err := svc.Schedule(models.DigestSubscription{UserID: "alice", Email: "alice@example.com", NextTriggerTime: &trigger})
	require.NoError(t, err)
	assert.Equal(t, "0 0 9 * * 1", svc.ScheduleFor(models.DigestSubscription{NextTriggerTime: &trigger}))

	// The scheduler evaluates entries in its own location
	next := svc.cron.Entry(id).Schedule.Next(time.Date(2025, 1, 19, 12, 0, 0, 0, paris))
	assert.True(t, next.Equal(trigger), "fires at %s, want %s", next.UTC(), trigger)
}

func TestPreviousWeekStart(t *testing.T) {
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), PreviousWeekStart(digestNow))
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), PreviousWeekStart(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)))
}

func TestOptInAndOptOut(t *testing.T) {
	svc, store := newTestDigestService(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.OptIn(ctx, models.DigestSubscription{UserID: "alice", Email: "alice@example.com"}))
	assert.True(t, svc.Scheduled("alice"))

	sub, err := store.FindSubscription(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, digestNow, sub.OptedInAt)

	// Opting in again replaces the job rather than adding another
	require.NoError(t, svc.OptIn(ctx, models.DigestSubscription{UserID: "alice", Email: "new@example.com"}))
	assert.Len(t, svc.cron.Entries(), 1)

	require.NoError(t, svc.OptOut(ctx, "alice"))
	assert.False(t, svc.Scheduled("alice"))
	assert.Empty(t, svc.cron.Entries())

	sub, err = store.FindSubscription(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, sub)

	err = svc.OptIn(ctx, models.DigestSubscription{UserID: "bob", Email: "bob@example.com", Timezone: "Nowhere/Special"})
	assert.Error(t, err)
}

func TestLoadAndScheduleSubscriptions(t *testing.T) {
	svc, store := newTestDigestService(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, store.UpsertSubscription(ctx, models.DigestSubscription{UserID: "alice", Email: "a@example.com"}))
	require.NoError(t, store.UpsertSubscription(ctx, models.DigestSubscription{UserID: "bob", Email: "b@example.com"}))

	require.NoError(t, svc.LoadAndScheduleSubscriptions(ctx))
	assert.True(t, svc.Scheduled("alice"))
	assert.True(t, svc.Scheduled("bob"))
}

func TestSendDigestUsesLastWeekAsItEnded(t *testing.T) {
	mailer := &fakeMailer{}
	dir := t.TempDir()
	archive, err := NewLocalArchive(dir, "http://localhost:8085/reports")
	require.NoError(t, err)

	svc, store := newTestDigestService(t, mailer, archive)

	created := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	seedTask(t, store, models.Task{ID: "done-last-week", Title: "Lab", Priority: models.PriorityHigh,
		CreatedAt: &created, Completed: true, CompletedAt: ptr(time.Date(2025, 1, 14, 9, 30, 0, 0, time.UTC))})
	seedTask(t, store, models.Task{ID: "done-this-week", Title: "Essay", Priority: models.PriorityLow,
		CreatedAt: &created, Completed: true, CompletedAt: ptr(time.Date(2025, 1, 21, 9, 30, 0, 0, time.UTC))})
	seedTask(t, store, models.Task{ID: "created-this-week", Title: "Later", Priority: models.PriorityMedium,
		CreatedAt: ptr(time.Date(2025, 1, 21, 8, 0, 0, 0, time.UTC))})

	weekStart := PreviousWeekStart(digestNow)
	require.NoError(t, svc.SendDigest(context.Background(), "alice", "alice@example.com", weekStart))

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "alice@example.com", sent.to)
	assert.Equal(t, weekStart, sent.weekStart)
	assert.Equal(t, 1, sent.summary.Weekly.Completed)
	assert.Equal(t, 1, sent.summary.Weekly.Days[1])
	assert.Equal(t, 2, sent.summary.Counts.Total)
	assert.True(t, bytes.HasPrefix(sent.pdf, []byte("%PDF")))

	archived, err := os.ReadFile(filepath.Join(dir, "reports", "alice", "2025-01-13.pdf"))
	require.NoError(t, err)
	assert.Equal(t, sent.pdf, archived)
}

func TestSendDigestWithoutMailer(t *testing.T) {
	svc, _ := newTestDigestService(t, nil, nil)
	assert.NoError(t, svc.SendDigest(context.Background(), "alice", "alice@example.com", PreviousWeekStart(digestNow)))
}

func TestGenerateProgressReportPDF(t *testing.T) {
	engine := analytics.NewEngine(analytics.WithLocation(time.UTC))
	completed := time.Date(2025, 1, 14, 9, 30, 0, 0, time.UTC)
	summary := engine.Summarize([]models.Task{
		{ID: "1", Title: strings.Repeat("Long title ", 10), Priority: models.PriorityHigh, Completed: true, CompletedAt: &completed},
		{ID: "2", Title: "Open", Priority: models.PriorityLow},
	}, digestNow)

	data, err := NewPDFService().GenerateProgressReportPDF(&summary, "Progress Report")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = NewPDFService().GenerateProgressReportPDF(nil, "Progress Report")
	assert.Error(t, err)
}

func TestDigestEmailBodies(t *testing.T) {
	engine := analytics.NewEngine(analytics.WithLocation(time.UTC))
	summary := engine.DefaultSummary(digestNow)
	weekStart := PreviousWeekStart(digestNow)

	htmlBody := buildDigestEmailHTML(&summary, weekStart)
	assert.Contains(t, htmlBody, "Week of 2025-01-13")
	assert.Contains(t, htmlBody, "<strong>morning</strong>")

	text := buildDigestEmailText(&summary, weekStart)
	assert.Contains(t, text, "You completed 0 of 0 tasks (0%).")
	assert.Contains(t, text, "Best day: Monday.")
	assert.Contains(t, text, "Average time per task: 0min.")
}

func TestReportStorage(t *testing.T) {
	weekStart := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "reports/alice/2025-01-13.pdf", ReportKey("alice", weekStart))

	s3 := &S3Service{bucket: "planmate", region: "eu-west-1"}
	assert.Equal(t, "https://planmate.s3.eu-west-1.amazonaws.com/reports/a.pdf", s3.GetFileURL("reports/a.pdf"))

	minio := &S3Service{bucket: "planmate", endpoint: "http://minio:9000"}
	assert.Equal(t, "http://minio:9000/planmate/reports/a.pdf", minio.GetFileURL("reports/a.pdf"))

	local, err := NewLocalArchive(t.TempDir(), "http://localhost:8085/reports")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8085/reports/reports/a.pdf", local.GetFileURL("reports/a.pdf"))
}
