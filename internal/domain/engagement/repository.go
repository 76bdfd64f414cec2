package engagement

import (
	"context"
	"time"
)

// Repository defines persistence for reminders, check-ins and progress
// reports.
type Repository interface {
	// Reminder methods
	CreateReminder(ctx context.Context, r *ReminderRecord) error
	// LatestOpenReminder returns the most recent unanswered reminder for the
	// contractor sent at or after the given time, or ErrReminderNotFound.
	LatestOpenReminder(ctx context.Context, contractorID int64, sentAfter time.Time) (*ReminderRecord, error)
	MarkReminderResponded(ctx context.Context, id int64, at time.Time, responseText string) error

	// Check-in methods
	AppendCheckIn(ctx context.Context, c *CheckInRecord) error
	HasCheckInBetween(ctx context.Context, contractorID int64, from, to time.Time) (bool, error)
	LatestCheckIn(ctx context.Context, contractorID int64) (*CheckInRecord, error)
	CountCheckInsSince(ctx context.Context, contractorID int64, since time.Time) (int, error)

	// Progress report methods
	CreateProgressReport(ctx context.Context, p *ProgressReport) error
	HasProgressReportBetween(ctx context.Context, contractorID int64, from, to time.Time) (bool, error)
}
