package session

import "time"

// Step is the state of a report-collection conversation. The sequence is
// linear: each step waits for exactly one answer.
type Step string

const (
	StepWorkCompleted      Step = "waiting_work_completed"
	StepProgressPercentage Step = "waiting_progress_percentage"
	StepIssues             Step = "waiting_issues"
	StepMaterials          Step = "waiting_materials"
	StepComplete           Step = "complete"
)

// Next returns the step that follows s. StepComplete is terminal.
func (s Step) Next() Step {
	switch s {
	case StepWorkCompleted:
		return StepProgressPercentage
	case StepProgressPercentage:
		return StepIssues
	case StepIssues:
		return StepMaterials
	case StepMaterials:
		return StepComplete
	default:
		return StepComplete
	}
}

// Session holds the transient per-chat state while a progress report is being
// collected. At most one session exists per chat at any time.
type Session struct {
	ChatID             int64
	Step               Step
	WorkCompleted      string
	ProgressPercentage int
	Issues             string
	Materials          string
	StartedAt          time.Time
	LastActivityAt     time.Time
	ExpiresAt          time.Time
}

// Expired reports whether the session's lifetime has passed at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
