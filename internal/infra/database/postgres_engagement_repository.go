package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"contractor_engagement_bot/internal/domain/engagement"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var ErrReminderNotFound = fmt.Errorf("reminder record not found")
var ErrCheckInNotFound = fmt.Errorf("check-in record not found")

type PostgresEngagementRepository struct {
	db *sql.DB
}

func NewPostgresEngagementRepository(db *sql.DB) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{db: db}
}

func (r *PostgresEngagementRepository) CreateReminder(ctx context.Context, rec *engagement.ReminderRecord) error {
	query := `INSERT INTO reminder_records (contractor_id, kind, sent_at, responded)
               VALUES ($1, $2, $3, FALSE)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, rec.ContractorID, rec.Kind, rec.SentAt).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("error creating reminder record: %w", err)
	}
	return nil
}

func (r *PostgresEngagementRepository) LatestOpenReminder(ctx context.Context, contractorID int64, sentAfter time.Time) (*engagement.ReminderRecord, error) {
	query := `SELECT id, contractor_id, kind, sent_at, responded, responded_at, response_text
               FROM reminder_records
               WHERE contractor_id = $1 AND responded = FALSE AND sent_at >= $2
               ORDER BY sent_at DESC LIMIT 1`
	rec := &engagement.ReminderRecord{}
	err := r.db.QueryRowContext(ctx, query, contractorID, sentAfter).Scan(
		&rec.ID, &rec.ContractorID, &rec.Kind, &rec.SentAt, &rec.Responded, &rec.RespondedAt, &rec.ResponseText)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("error getting open reminder: %w", err)
	}
	return rec, nil
}

func (r *PostgresEngagementRepository) MarkReminderResponded(ctx context.Context, id int64, at time.Time, responseText string) error {
	query := `UPDATE reminder_records
               SET responded = TRUE, responded_at = $1, response_text = $2
               WHERE id = $3 AND responded = FALSE`
	res, err := r.db.ExecContext(ctx, query, at, responseText, id)
	if err != nil {
		return fmt.Errorf("error marking reminder %d responded: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReminderNotFound
	}
	return nil
}

func (r *PostgresEngagementRepository) AppendCheckIn(ctx context.Context, c *engagement.CheckInRecord) error {
	query := `INSERT INTO check_in_records (contractor_id, time, kind, location, notes)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, c.ContractorID, c.Time, c.Kind, c.Location, c.Notes).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("error appending check-in record: %w", err)
	}
	return nil
}

func (r *PostgresEngagementRepository) HasCheckInBetween(ctx context.Context, contractorID int64, from, to time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM check_in_records
               WHERE contractor_id = $1 AND time >= $2 AND time < $3)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, contractorID, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking check-ins for contractor %d: %w", contractorID, err)
	}
	return exists, nil
}

func (r *PostgresEngagementRepository) LatestCheckIn(ctx context.Context, contractorID int64) (*engagement.CheckInRecord, error) {
	query := `SELECT id, contractor_id, time, kind, location, notes
               FROM check_in_records WHERE contractor_id = $1
               ORDER BY time DESC LIMIT 1`
	c := &engagement.CheckInRecord{}
	err := r.db.QueryRowContext(ctx, query, contractorID).Scan(
		&c.ID, &c.ContractorID, &c.Time, &c.Kind, &c.Location, &c.Notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("error getting latest check-in: %w", err)
	}
	return c, nil
}

func (r *PostgresEngagementRepository) CountCheckInsSince(ctx context.Context, contractorID int64, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM check_in_records WHERE contractor_id = $1 AND time >= $2`
	var count int
	if err := r.db.QueryRowContext(ctx, query, contractorID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting check-ins for contractor %d: %w", contractorID, err)
	}
	return count, nil
}

func (r *PostgresEngagementRepository) CreateProgressReport(ctx context.Context, p *engagement.ProgressReport) error {
	query := `INSERT INTO progress_reports
               (ref, contractor_id, assignment_id, job_id, body, transcribed_text, media_refs, status, created_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		p.Ref, p.ContractorID, p.AssignmentID, p.JobID, p.Body, p.TranscribedText, p.MediaRefs, p.Status, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("error creating progress report: %w", err)
	}
	return nil
}

func (r *PostgresEngagementRepository) HasProgressReportBetween(ctx context.Context, contractorID int64, from, to time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM progress_reports
               WHERE contractor_id = $1 AND created_at >= $2 AND created_at < $3)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, contractorID, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking progress reports for contractor %d: %w", contractorID, err)
	}
	return exists, nil
}
