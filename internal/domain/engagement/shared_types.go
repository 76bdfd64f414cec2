package engagement

// ReminderKind identifies which daily nudge a reminder record belongs to.
type ReminderKind string

const (
	ReminderMorningCheckIn ReminderKind = "morning_checkin"
	ReminderDailyReport    ReminderKind = "daily_report"
)

// CheckInKind classifies how a presence signal was recorded.
type CheckInKind string

const (
	CheckInLogin            CheckInKind = "login"
	CheckInProgressReport   CheckInKind = "progress_report"
	CheckInVoiceMessage     CheckInKind = "voice_message"
	CheckInTelegramResponse CheckInKind = "telegram_response"
	CheckInTelegramConfirm  CheckInKind = "telegram_confirm"
)

// ReportStatus tracks a progress report through review.
type ReportStatus string

const (
	ReportSubmitted ReportStatus = "submitted"
	ReportReviewed  ReportStatus = "reviewed"
	ReportApproved  ReportStatus = "approved"
)
