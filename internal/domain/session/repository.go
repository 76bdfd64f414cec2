package session

import "context"

// Repository persists conversation sessions keyed by chat id.
type Repository interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	// Save inserts the session, or fully replaces the existing row for the
	// same chat. Starting a new conversation therefore resets rather than
	// duplicates.
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, chatID int64) error
}
