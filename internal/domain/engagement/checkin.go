package engagement

import (
	"database/sql"
	"time"
)

// CheckInRecord is one entry in the append-only presence audit trail.
// Records are never mutated or deleted.
type CheckInRecord struct {
	ID           int64
	ContractorID int64
	Time         time.Time
	Kind         CheckInKind
	Location     sql.NullString
	Notes        sql.NullString
}
