package query

import "context"

// CallerScope is the visibility of the caller asking a free-text question.
// It is constructed once at the routing boundary and passed explicitly; role
// is never re-derived mid-call. Contractors see only their own records,
// admins see everything.
type CallerScope struct {
	IsAdmin      bool
	ContractorID int64
}

// Answerer answers a free-form question about tracked records.
type Answerer interface {
	Answer(ctx context.Context, message string, scope CallerScope) (string, error)
}
