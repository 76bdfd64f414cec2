package job

import (
	"database/sql"
	"time"
)

// Assignment links a contractor to a job for a date range.
// Rows are owned by the job-management subsystem; the orchestrator reads the
// linkage and writes only NotifiedAt and the acknowledgment pair.
type Assignment struct {
	ID             int64
	JobID          int64
	ContractorID   int64
	StartDate      time.Time
	EndDate        time.Time
	NotifiedAt     sql.NullTime // set once the initial assignment notification went out
	Acknowledged   bool
	AcknowledgedAt sql.NullTime
	CreatedAt      time.Time
}
