package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"contractor_engagement_bot/internal/domain/job"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var ErrAssignmentNotFound = fmt.Errorf("assignment not found")

type PostgresAssignmentRepository struct {
	db *sql.DB
}

func NewPostgresAssignmentRepository(db *sql.DB) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{db: db}
}

const assignmentColumns = `id, job_id, contractor_id, start_date, end_date, notified_at, acknowledged, acknowledged_at, created_at`

func (r *PostgresAssignmentRepository) GetByID(ctx context.Context, id int64) (*job.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	a := &job.Assignment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.JobID, &a.ContractorID, &a.StartDate, &a.EndDate,
		&a.NotifiedAt, &a.Acknowledged, &a.AcknowledgedAt, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error getting assignment by ID: %w", err)
	}
	return a, nil
}

func (r *PostgresAssignmentRepository) ListActiveOn(ctx context.Context, day time.Time) ([]*job.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments
               WHERE start_date <= $1 AND end_date >= $1 ORDER BY contractor_id, created_at`
	return r.list(ctx, query, day)
}

func (r *PostgresAssignmentRepository) ActiveFor(ctx context.Context, contractorID int64, day time.Time) (*job.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments
               WHERE contractor_id = $1 AND start_date <= $2 AND end_date >= $2
               ORDER BY created_at LIMIT 1`
	a := &job.Assignment{}
	err := r.db.QueryRowContext(ctx, query, contractorID, day).Scan(
		&a.ID, &a.JobID, &a.ContractorID, &a.StartDate, &a.EndDate,
		&a.NotifiedAt, &a.Acknowledged, &a.AcknowledgedAt, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error getting active assignment for contractor %d: %w", contractorID, err)
	}
	return a, nil
}

// ListUnacknowledged orders oldest first so the acknowledgment handler
// consumes assignments in the order they were given out.
func (r *PostgresAssignmentRepository) ListUnacknowledged(ctx context.Context, contractorID int64) ([]*job.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments
               WHERE contractor_id = $1 AND acknowledged = FALSE ORDER BY created_at ASC`
	return r.list(ctx, query, contractorID)
}

func (r *PostgresAssignmentRepository) ListUnnotified(ctx context.Context) ([]*job.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments
               WHERE notified_at IS NULL ORDER BY created_at ASC`
	return r.list(ctx, query)
}

func (r *PostgresAssignmentRepository) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE assignments SET notified_at = $1 WHERE id = $2 AND notified_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("error marking assignment %d notified: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (r *PostgresAssignmentRepository) MarkAcknowledged(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE assignments SET acknowledged = TRUE, acknowledged_at = $1
               WHERE id = $2 AND acknowledged = FALSE`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("error marking assignment %d acknowledged: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (r *PostgresAssignmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*job.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]*job.Assignment, 0)
	for rows.Next() {
		a := &job.Assignment{}
		if err := rows.Scan(
			&a.ID, &a.JobID, &a.ContractorID, &a.StartDate, &a.EndDate,
			&a.NotifiedAt, &a.Acknowledged, &a.AcknowledgedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}
	return assignments, nil
}
