package contractor

import (
	"database/sql"
	"time"
)

// Profile represents a contractor (or admin) registered in the system.
// Profiles are created by the registration flow and approved by an admin;
// the engagement orchestrator only reads them.
type Profile struct {
	ID        int64
	ChatID    sql.NullInt64 // Telegram chat id; null until the contractor links their account
	FirstName string
	LastName  sql.NullString
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the display name, including the last name when present.
func (p *Profile) FullName() string {
	if p.LastName.Valid && p.LastName.String != "" {
		return p.FirstName + " " + p.LastName.String
	}
	return p.FirstName
}
