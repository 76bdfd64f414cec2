package app

import (
	"context"
	"fmt"
	"time"

	"contractor_engagement_bot/internal/domain/contractor"
	"contractor_engagement_bot/internal/domain/engagement"
	"contractor_engagement_bot/internal/domain/job"

	"github.com/sirupsen/logrus"
)

// ReminderService runs the two daily nudge batches: the morning "are you on
// site" check-in and the evening "file your report" prompt. Both are
// idempotent per calendar day per contractor.
type ReminderService struct {
	contractors contractor.Repository
	assignments job.Repository
	engagements engagement.Repository
	dispatcher  *Dispatcher
	logger      *logrus.Entry
	now         func() time.Time
}

func NewReminderService(
	cr contractor.Repository,
	ar job.Repository,
	er engagement.Repository,
	d *Dispatcher,
	logger *logrus.Entry,
) *ReminderService {
	return &ReminderService{
		contractors: cr,
		assignments: ar,
		engagements: er,
		dispatcher:  d,
		logger:      logger,
		now:         time.Now,
	}
}

// RunMorningCheckIns nudges every contractor with an active assignment and a
// linked chat who has no check-in record yet today.
func (s *ReminderService) RunMorningCheckIns(ctx context.Context) error {
	return s.run(ctx, engagement.ReminderMorningCheckIn)
}

// RunEveningReports nudges every eligible contractor who has not submitted a
// progress report today.
func (s *ReminderService) RunEveningReports(ctx context.Context) error {
	return s.run(ctx, engagement.ReminderDailyReport)
}

func (s *ReminderService) run(ctx context.Context, kind engagement.ReminderKind) error {
	now := s.now()
	dayStart, dayEnd := dayBounds(now)
	runLogger := s.logger.WithFields(logrus.Fields{
		"kind": kind,
		"day":  dayStart.Format("2006-01-02"),
	})
	runLogger.Info("Reminder run started")

	active, err := s.assignments.ListActiveOn(ctx, now)
	if err != nil {
		runLogger.WithError(err).Error("Failed to list active assignments")
		return fmt.Errorf("failed to list active assignments: %w", err)
	}

	linked, err := s.contractors.ListWithChatID(ctx)
	if err != nil {
		runLogger.WithError(err).Error("Failed to list linked contractors")
		return fmt.Errorf("failed to list linked contractors: %w", err)
	}
	byID := make(map[int64]*contractor.Profile, len(linked))
	for _, c := range linked {
		byID[c.ID] = c
	}

	// First pass: collect eligible recipients, then deliver them as one paced
	// batch so consecutive sends respect the transport rate limit.
	skipped, failed := 0, 0
	seen := make(map[int64]bool)
	var targets []*contractor.Profile
	var batch []Outbound
	for _, a := range active {
		if seen[a.ContractorID] {
			continue
		}
		seen[a.ContractorID] = true

		c, ok := byID[a.ContractorID]
		if !ok {
			runLogger.WithFields(logrus.Fields{
				"contractor_id": a.ContractorID,
				"outcome":       "skipped",
			}).Warn("Contractor has no linked chat; not retried")
			skipped++
			continue
		}
		entryLogger := runLogger.WithField("contractor_id", c.ID)

		done, err := s.alreadyEngagedToday(ctx, kind, c.ID, dayStart, dayEnd)
		if err != nil {
			entryLogger.WithError(err).Error("Failed to check today's records; continuing batch")
			failed++
			continue
		}
		if done {
			entryLogger.WithField("outcome", "skipped").Debug("Already engaged today; no reminder")
			skipped++
			continue
		}

		targets = append(targets, c)
		batch = append(batch, Outbound{ChatID: c.ChatID.Int64, Text: reminderText(kind, c.FirstName)})
	}

	sent := 0
	for i, res := range s.dispatcher.SendBatch(batch) {
		c := targets[i]
		entryLogger := runLogger.WithField("contractor_id", c.ID)
		if !res.Success {
			entryLogger.WithField("outcome", "failed").WithError(res.Err).Error("Reminder send failed; continuing batch")
			failed++
			continue
		}

		rec := &engagement.ReminderRecord{ContractorID: c.ID, Kind: kind, SentAt: now}
		if err := s.engagements.CreateReminder(ctx, rec); err != nil {
			entryLogger.WithError(err).Error("Failed to record sent reminder")
			failed++
			continue
		}
		entryLogger.WithField("outcome", "sent").Info("Reminder sent")
		sent++
	}

	runLogger.WithFields(logrus.Fields{
		"sent":    sent,
		"skipped": skipped,
		"failed":  failed,
	}).Info("Reminder run finished")
	return nil
}

// alreadyEngagedToday is the per-kind idempotency test: a check-in today
// satisfies the morning nudge, a progress report today satisfies the evening
// one.
func (s *ReminderService) alreadyEngagedToday(ctx context.Context, kind engagement.ReminderKind, contractorID int64, dayStart, dayEnd time.Time) (bool, error) {
	if kind == engagement.ReminderMorningCheckIn {
		return s.engagements.HasCheckInBetween(ctx, contractorID, dayStart, dayEnd)
	}
	return s.engagements.HasProgressReportBetween(ctx, contractorID, dayStart, dayEnd)
}

func reminderText(kind engagement.ReminderKind, firstName string) string {
	if kind == engagement.ReminderMorningCheckIn {
		return fmt.Sprintf("Good morning %s! Are you working today? Reply to confirm you're on site.", firstName)
	}
	return fmt.Sprintf("Hi %s, please submit your progress report for today. Send \"report\" to get started.", firstName)
}

// dayBounds returns [today 00:00, tomorrow 00:00) in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
