package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"planmate/internal/analytics"
	"planmate/internal/models"
	"planmate/internal/utils"
)

// DefaultDigestSchedule fires every Monday at 00:00:00 (seconds precision)
const DefaultDigestSchedule = "0 0 0 * * 1"

// DigestMailer delivers a rendered digest
type DigestMailer interface {
	SendDigestEmail(toEmail string, summary *analytics.Summary, weekStart time.Time, pdfData []byte) error
}

// DigestService handles scheduled weekly progress digests
type DigestService struct {
	tasks   *TaskService
	subs    SubscriptionStore
	pdf     *PDFService
	mailer  DigestMailer  // nil disables email
	archive ReportArchive // nil disables archiving
	loc     *time.Location
	cron    *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewDigestService creates a new digest service
func NewDigestService(
	tasks *TaskService,
	subs SubscriptionStore,
	pdf *PDFService,
	mailer DigestMailer,
	archive ReportArchive,
	loc *time.Location,
) *DigestService {
	if loc == nil {
		loc = time.Local
	}
	return &DigestService{
		tasks:   tasks,
		subs:    subs,
		pdf:     pdf,
		mailer:  mailer,
		archive: archive,
		loc:     loc,
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		entries: make(map[string]cron.EntryID),
	}
}

// Start starts the cron scheduler
func (s *DigestService) Start() {
	s.cron.Start()
	log.Println("[DIGEST] Weekly digest cron scheduler started")
}

// Stop stops the cron scheduler
func (s *DigestService) Stop() {
	s.cron.Stop()
	log.Println("[DIGEST] Weekly digest cron scheduler stopped")
}

// DigestSchedule returns the cron spec for a subscription.
// With a trigger override it recurs weekly at that weekday and time, otherwise every Monday at midnight.
// A subscription timezone is applied with a CRON_TZ prefix; without one the spec is read in loc,
// the location the scheduler runs in, so the trigger is converted there first.
func DigestSchedule(sub models.DigestSubscription, loc *time.Location) string {
	schedule := DefaultDigestSchedule
	if sub.NextTriggerTime != nil {
		trigger := *sub.NextTriggerTime
		if tz, err := time.LoadLocation(sub.Timezone); err == nil && sub.Timezone != "" {
			trigger = trigger.In(tz)
		} else if loc != nil {
			trigger = trigger.In(loc)
		}
		// second minute hour day month weekday
		schedule = fmt.Sprintf("%d %d %d * * %d", trigger.Second(), trigger.Minute(), trigger.Hour(), int(trigger.Weekday()))
	}
	if sub.Timezone != "" {
		schedule = fmt.Sprintf("CRON_TZ=%s %s", sub.Timezone, schedule)
	}
	return schedule
}

// ScheduleFor returns the cron spec this service uses for sub
func (s *DigestService) ScheduleFor(sub models.DigestSubscription) string {
	return DigestSchedule(sub, s.loc)
}

// OptIn stores the subscription and (re)schedules its digest
func (s *DigestService) OptIn(ctx context.Context, sub models.DigestSubscription) error {
	if sub.Timezone != "" {
		if _, err := time.LoadLocation(sub.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", sub.Timezone, err)
		}
	}
	if sub.OptedInAt.IsZero() {
		sub.OptedInAt = s.tasks.Now()
	}

	if err := s.subs.UpsertSubscription(ctx, sub); err != nil {
		return err
	}

	if _, err := s.Schedule(sub); err != nil {
		return err
	}
	return nil
}

// OptOut removes the subscription and its scheduled digest
func (s *DigestService) OptOut(ctx context.Context, userID string) error {
	if err := s.subs.RemoveSubscription(ctx, userID); err != nil {
		return err
	}
	s.Unschedule(userID)
	return nil
}

// Schedule registers the weekly digest job for a subscription, replacing any previous one
func (s *DigestService) Schedule(sub models.DigestSubscription) (cron.EntryID, error) {
	schedule := s.ScheduleFor(sub)

	userID, email := sub.UserID, sub.Email
	entryID, err := s.cron.AddFunc(schedule, func() {
		s.sendScheduledDigest(userID, email)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to schedule weekly digest: %w", err)
	}

	s.mu.Lock()
	if previous, ok := s.entries[userID]; ok {
		s.cron.Remove(previous)
	}
	s.entries[userID] = entryID
	s.mu.Unlock()

	log.Printf("[DIGEST] Scheduled weekly digest for user %s with schedule: %s", userID, schedule)
	return entryID, nil
}

// Unschedule removes the user's digest job if one is registered
func (s *DigestService) Unschedule(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[userID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, userID)
		log.Printf("[DIGEST] Unscheduled weekly digest for user %s (entry ID: %d)", userID, entryID)
	}
}

// Scheduled reports whether the user has a digest job registered
func (s *DigestService) Scheduled(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[userID]
	return ok
}

// LoadAndScheduleSubscriptions schedules every stored subscription
func (s *DigestService) LoadAndScheduleSubscriptions(ctx context.Context) error {
	subs, err := s.subs.FindAllSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load digest subscriptions: %w", err)
	}

	log.Printf("[DIGEST] Loading %d digest subscriptions", len(subs))

	scheduled := 0
	for _, sub := range subs {
		if _, err := s.Schedule(sub); err != nil {
			log.Printf("[DIGEST] WARNING: Failed to schedule digest for user %s: %v", sub.UserID, err)
			continue
		}
		scheduled++
	}

	log.Printf("[DIGEST] Successfully scheduled %d weekly digests", scheduled)
	return nil
}

// PreviousWeekStart is the Monday of the week before the one containing now
func PreviousWeekStart(now time.Time) time.Time {
	monday, _ := utils.CalculateWeekRange(now.AddDate(0, 0, -7))
	return monday
}

// BuildDigest computes the summary for the week starting at weekStart as it stood when the
// week ended, and renders it.
func (s *DigestService) BuildDigest(ctx context.Context, userID string, weekStart time.Time) (*analytics.Summary, []byte, error) {
	_, weekEnd := utils.CalculateWeekRange(weekStart.In(s.loc))

	tasks, err := s.tasks.AllTasks(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	engine := analytics.NewEngine(analytics.WithLocation(s.loc))
	summary := engine.Summarize(analytics.AsOf(tasks, weekEnd), weekEnd)

	pdfData, err := s.pdf.GenerateProgressReportPDF(&summary, "Weekly Progress Report")
	if err != nil {
		log.Printf("[DIGEST] WARNING: Failed to generate PDF for user %s: %v, continuing without PDF", userID, err)
		pdfData = nil
	}

	return &summary, pdfData, nil
}

// SendDigest builds, archives and emails the digest for a given week (manual trigger)
func (s *DigestService) SendDigest(ctx context.Context, userID, email string, weekStart time.Time) error {
	log.Printf("[DIGEST] Generating digest for user %s, week: %s", userID, utils.FormatDate(weekStart))

	summary, pdfData, err := s.BuildDigest(ctx, userID, weekStart)
	if err != nil {
		return err
	}

	if s.archive != nil && len(pdfData) > 0 {
		key, err := s.archive.UploadReport(ctx, userID, weekStart, pdfData)
		if err != nil {
			log.Printf("[DIGEST] WARNING: Failed to archive report for user %s: %v", userID, err)
		} else {
			log.Printf("[DIGEST] Archived report for user %s at %s", userID, s.archive.GetFileURL(key))
		}
	}

	if s.mailer == nil {
		log.Printf("[DIGEST] Email not configured, skipping delivery for user %s", userID)
		return nil
	}
	if err := s.mailer.SendDigestEmail(email, summary, weekStart, pdfData); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("[DIGEST] Successfully sent digest to %s for user %s", email, userID)
	return nil
}

// sendScheduledDigest is the cron job body
func (s *DigestService) sendScheduledDigest(userID, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sub, err := s.subs.FindSubscription(ctx, userID)
	if err != nil {
		log.Printf("[DIGEST] ERROR: Failed to get subscription for user %s: %v", userID, err)
		return
	}
	if sub == nil {
		log.Printf("[DIGEST] WARNING: Subscription not found for user %s, skipping digest", userID)
		return
	}
	if sub.Email != "" {
		email = sub.Email
	}

	weekStart := PreviousWeekStart(s.tasks.Now().In(s.loc))
	if err := s.SendDigest(ctx, userID, email, weekStart); err != nil {
		log.Printf("[DIGEST] ERROR: Failed to send digest for user %s: %v", userID, err)
	}
}
