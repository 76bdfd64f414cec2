package job

import (
	"context"
	"time"
)

// Repository defines the assignment operations used by the orchestrator.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Assignment, error)
	// ListActiveOn returns assignments whose date range covers the given day.
	ListActiveOn(ctx context.Context, day time.Time) ([]*Assignment, error)
	// ActiveFor returns the contractor's assignment covering the given day,
	// or ErrAssignmentNotFound.
	ActiveFor(ctx context.Context, contractorID int64, day time.Time) (*Assignment, error)
	// ListUnacknowledged returns a contractor's unacknowledged assignments
	// ordered oldest first (created_at ascending).
	ListUnacknowledged(ctx context.Context, contractorID int64) ([]*Assignment, error)
	// ListUnnotified returns assignments whose initial notification has not
	// been sent yet.
	ListUnnotified(ctx context.Context) ([]*Assignment, error)
	MarkNotified(ctx context.Context, id int64, at time.Time) error
	MarkAcknowledged(ctx context.Context, id int64, at time.Time) error
}
