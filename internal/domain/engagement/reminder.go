package engagement

import (
	"database/sql"
	"time"
)

// ReminderRecord logs one outbound nudge to one contractor.
// Created exactly once per scheduler firing per eligible contractor, then
// mutated at most once to mark the contractor's reply. Append-only otherwise.
type ReminderRecord struct {
	ID           int64
	ContractorID int64
	Kind         ReminderKind
	SentAt       time.Time
	Responded    bool
	RespondedAt  sql.NullTime
	ResponseText sql.NullString
}
