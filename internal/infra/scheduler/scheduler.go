package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contractor_engagement_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TriggerKind names one of the recurring triggers.
type TriggerKind string

const (
	TriggerMorningCheckIn  TriggerKind = "morning_checkin"
	TriggerEveningReport   TriggerKind = "evening_report"
	TriggerAssignmentSweep TriggerKind = "assignment_sweep"
)

const triggerBodyTimeout = 5 * time.Minute

// ReminderScheduler owns the recurring triggers. Entry ids are tracked per
// kind so rescheduling replaces the previous trigger; exactly one trigger of
// each kind is active at any time. No bare process-wide timer map.
type ReminderScheduler struct {
	cronEngine  *cron.Cron
	reminders   *app.ReminderService
	assignments *app.AssignmentService
	logger      *logrus.Entry

	mu      sync.Mutex
	entries map[TriggerKind]cron.EntryID
}

func NewReminderScheduler(
	reminders *app.ReminderService,
	assignments *app.AssignmentService,
	logger *logrus.Entry,
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:  cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		reminders:   reminders,
		assignments: assignments,
		logger:      logger,
		entries:     make(map[TriggerKind]cron.EntryID),
	}
}

// Start registers the three triggers and starts the cron engine.
func (s *ReminderScheduler) Start(morningSpec, eveningSpec, assignmentSpec string) error {
	s.logger.Info("Starting reminder scheduler...")

	if err := s.Reschedule(TriggerMorningCheckIn, morningSpec); err != nil {
		return fmt.Errorf("could not schedule morning check-in trigger: %w", err)
	}
	if err := s.Reschedule(TriggerEveningReport, eveningSpec); err != nil {
		return fmt.Errorf("could not schedule evening report trigger: %w", err)
	}
	if err := s.Reschedule(TriggerAssignmentSweep, assignmentSpec); err != nil {
		return fmt.Errorf("could not schedule assignment sweep trigger: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"morning_spec":    morningSpec,
		"evening_spec":    eveningSpec,
		"assignment_spec": assignmentSpec,
	}).Info("Reminder scheduler started with triggers.")
	return nil
}

// Reschedule atomically replaces the trigger of the given kind with one on
// the new cron spec. The spec is validated before the old entry is removed,
// so a bad spec leaves the running trigger untouched.
func (s *ReminderScheduler) Reschedule(kind TriggerKind, spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q for trigger %s: %w", spec, kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[kind]; ok {
		s.cronEngine.Remove(old)
		s.logger.WithField("trigger", kind).Info("Previous trigger removed for reschedule")
	}

	id, err := s.cronEngine.AddFunc(spec, s.jobFor(kind))
	if err != nil {
		delete(s.entries, kind)
		return fmt.Errorf("could not add trigger %s: %w", kind, err)
	}
	s.entries[kind] = id
	s.logger.WithFields(logrus.Fields{"trigger": kind, "spec": spec}).Info("Trigger scheduled")
	return nil
}

func (s *ReminderScheduler) jobFor(kind TriggerKind) func() {
	return func() {
		s.logger.WithField("trigger", kind).Info("Cron trigger fired")
		ctx, cancel := context.WithTimeout(context.Background(), triggerBodyTimeout)
		defer cancel()

		var err error
		switch kind {
		case TriggerMorningCheckIn:
			err = s.reminders.RunMorningCheckIns(ctx)
		case TriggerEveningReport:
			err = s.reminders.RunEveningReports(ctx)
		case TriggerAssignmentSweep:
			err = s.assignments.NotifyPending(ctx)
		}
		if err != nil {
			s.logger.WithField("trigger", kind).WithError(err).Error("Trigger run failed")
		}
	}
}

// Stop cancels all future firings and waits for any running trigger body to
// finish. In-flight batch sends are not interrupted mid-batch.
func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops new firings, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
