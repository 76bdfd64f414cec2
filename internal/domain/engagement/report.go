package engagement

import (
	"database/sql"
	"time"
)

// ProgressReport is the durable artifact produced when a report conversation
// completes. Ref is the external identifier surfaced to reviewers and other
// subsystems. Status changes after submission belong to the review flow.
type ProgressReport struct {
	ID              int64
	Ref             string // uuid
	ContractorID    int64
	AssignmentID    sql.NullInt64
	JobID           sql.NullInt64
	Body            string
	TranscribedText string
	MediaRefs       sql.NullString
	Status          ReportStatus
	CreatedAt       time.Time
}
