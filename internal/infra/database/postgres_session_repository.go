package database

import (
	"context"
	"database/sql"
	"fmt"

	"contractor_engagement_bot/internal/domain/session"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var ErrSessionNotFound = fmt.Errorf("conversation session not found")

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Get(ctx context.Context, chatID int64) (*session.Session, error) {
	query := `SELECT chat_id, step, work_completed, progress_percentage, issues, materials,
               started_at, last_activity_at, expires_at
               FROM conversation_sessions WHERE chat_id = $1`
	s := &session.Session{}
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&s.ChatID, &s.Step, &s.WorkCompleted, &s.ProgressPercentage, &s.Issues, &s.Materials,
		&s.StartedAt, &s.LastActivityAt, &s.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("error getting session for chat %d: %w", chatID, err)
	}
	return s, nil
}

// Save upserts on chat_id, so a fresh Start overwrites any leftover session
// instead of creating a second row.
func (r *PostgresSessionRepository) Save(ctx context.Context, s *session.Session) error {
	query := `INSERT INTO conversation_sessions
               (chat_id, step, work_completed, progress_percentage, issues, materials,
                started_at, last_activity_at, expires_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
               ON CONFLICT (chat_id) DO UPDATE SET
                 step = EXCLUDED.step,
                 work_completed = EXCLUDED.work_completed,
                 progress_percentage = EXCLUDED.progress_percentage,
                 issues = EXCLUDED.issues,
                 materials = EXCLUDED.materials,
                 started_at = EXCLUDED.started_at,
                 last_activity_at = EXCLUDED.last_activity_at,
                 expires_at = EXCLUDED.expires_at`
	_, err := r.db.ExecContext(ctx, query,
		s.ChatID, s.Step, s.WorkCompleted, s.ProgressPercentage, s.Issues, s.Materials,
		s.StartedAt, s.LastActivityAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("error saving session for chat %d: %w", s.ChatID, err)
	}
	return nil
}

func (r *PostgresSessionRepository) Delete(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM conversation_sessions WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("error deleting session for chat %d: %w", chatID, err)
	}
	return nil
}
