package app

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"contractor_engagement_bot/internal/domain/contractor"
	"contractor_engagement_bot/internal/domain/engagement"
	"contractor_engagement_bot/internal/domain/job"
	"contractor_engagement_bot/internal/domain/session"
	idb "contractor_engagement_bot/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sessionTTL = 30 * time.Minute

var ErrNoActiveSession = fmt.Errorf("no active conversation session")

// stepSpec binds one conversation step to its prompt and target field.
// The slice below is the whole state machine: linear, no branching.
type stepSpec struct {
	step   session.Step
	prompt string
	apply  func(s *session.Session, answer string) (string, bool) // reply on rejection, ok
}

var conversationSteps = []stepSpec{
	{
		step:   session.StepWorkCompleted,
		prompt: "Let's file your progress report. First: what work did you complete today?",
		apply: func(s *session.Session, answer string) (string, bool) {
			s.WorkCompleted = answer
			return "", true
		},
	},
	{
		step:   session.StepProgressPercentage,
		prompt: "Got it. What's the overall progress on the job, as a percentage (0-100)?",
		apply: func(s *session.Session, answer string) (string, bool) {
			pct, err := parsePercentage(answer)
			if err != nil {
				return "Please send the progress as a number between 0 and 100, e.g. \"60\".", false
			}
			s.ProgressPercentage = pct
			return "", true
		},
	},
	{
		step:   session.StepIssues,
		prompt: "Any issues or blockers today? Reply \"none\" if everything went smoothly.",
		apply: func(s *session.Session, answer string) (string, bool) {
			s.Issues = answer
			return "", true
		},
	},
	{
		step:   session.StepMaterials,
		prompt: "Last one: do you need any materials delivered? Reply \"none\" if not.",
		apply: func(s *session.Session, answer string) (string, bool) {
			s.Materials = answer
			return "", true
		},
	},
}

// ConversationService owns the per-chat report-collection state machine.
type ConversationService struct {
	sessions    session.Repository
	engagements engagement.Repository
	assignments job.Repository
	logger      *logrus.Entry
	now         func() time.Time
}

func NewConversationService(
	sr session.Repository,
	er engagement.Repository,
	ar job.Repository,
	logger *logrus.Entry,
) *ConversationService {
	return &ConversationService{
		sessions:    sr,
		engagements: er,
		assignments: ar,
		logger:      logger,
		now:         time.Now,
	}
}

// Active reports whether a live session exists for the chat. An expired
// session is deleted on sight and treated as absent; the contractor has to
// restart explicitly.
func (s *ConversationService) Active(ctx context.Context, chatID int64) bool {
	sess, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		if err != idb.ErrSessionNotFound {
			s.logger.WithField("chat_id", chatID).WithError(err).Error("Failed to load session; treating as absent")
		}
		return false
	}
	if sess.Expired(s.now()) {
		s.logger.WithField("chat_id", chatID).Info("Session expired; discarding")
		if err := s.sessions.Delete(ctx, chatID); err != nil {
			s.logger.WithField("chat_id", chatID).WithError(err).Error("Failed to delete expired session")
		}
		return false
	}
	return true
}

// Start creates (or resets) the session for this chat and returns the first
// prompt. At most one session exists per chat; Save replaces any leftover.
func (s *ConversationService) Start(ctx context.Context, chatID int64) (string, error) {
	now := s.now()
	sess := &session.Session{
		ChatID:         chatID,
		Step:           conversationSteps[0].step,
		StartedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to start session for chat %d: %w", chatID, err)
	}
	s.logger.WithField("chat_id", chatID).Info("Report conversation started")
	return conversationSteps[0].prompt, nil
}

// HandleMessage advances the session with one answer. On validation failure
// the step stays put and the same prompt is re-issued with an error hint.
func (s *ConversationService) HandleMessage(ctx context.Context, c *contractor.Profile, chatID int64, text string) (string, error) {
	sess, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		if err == idb.ErrSessionNotFound {
			return "", ErrNoActiveSession
		}
		return "", fmt.Errorf("failed to load session for chat %d: %w", chatID, err)
	}
	now := s.now()
	if sess.Expired(now) {
		if err := s.sessions.Delete(ctx, chatID); err != nil {
			s.logger.WithField("chat_id", chatID).WithError(err).Error("Failed to delete expired session")
		}
		return "", ErrNoActiveSession
	}

	spec, idx := stepSpecFor(sess.Step)
	if spec == nil {
		// Terminal or unknown step should never be persisted; reset.
		if err := s.sessions.Delete(ctx, chatID); err != nil {
			s.logger.WithField("chat_id", chatID).WithError(err).Error("Failed to delete session in bad step")
		}
		return "", ErrNoActiveSession
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		return "I didn't catch that. " + spec.prompt, nil
	}
	if rejection, ok := spec.apply(sess, answer); !ok {
		return rejection, nil
	}

	sess.Step = sess.Step.Next()
	sess.LastActivityAt = now

	if sess.Step == session.StepComplete {
		reply, err := s.finalize(ctx, c, sess)
		if err != nil {
			return "", err
		}
		return reply, nil
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to save session for chat %d: %w", chatID, err)
	}
	return conversationSteps[idx+1].prompt, nil
}

// finalize turns the four collected answers into one ProgressReport, appends
// a check-in audit entry and deletes the session.
func (s *ConversationService) finalize(ctx context.Context, c *contractor.Profile, sess *session.Session) (string, error) {
	if c == nil {
		return "", fmt.Errorf("cannot finalize report for chat %d: no contractor linked", sess.ChatID)
	}
	now := s.now()

	report := &engagement.ProgressReport{
		Ref:          uuid.NewString(),
		ContractorID: c.ID,
		Body: fmt.Sprintf("Work completed: %s\nProgress: %d%%\nIssues: %s\nMaterials needed: %s",
			sess.WorkCompleted, sess.ProgressPercentage, sess.Issues, sess.Materials),
		TranscribedText: sess.WorkCompleted,
		Status:          engagement.ReportSubmitted,
		CreatedAt:       now,
	}
	if a, err := s.assignments.ActiveFor(ctx, c.ID, now); err == nil {
		report.AssignmentID = sql.NullInt64{Int64: a.ID, Valid: true}
		report.JobID = sql.NullInt64{Int64: a.JobID, Valid: true}
	} else if err != idb.ErrAssignmentNotFound {
		s.logger.WithField("contractor_id", c.ID).WithError(err).Error("Failed to resolve active assignment for report linkage")
	}

	if err := s.engagements.CreateProgressReport(ctx, report); err != nil {
		s.logger.WithField("contractor_id", c.ID).WithError(err).Error("Failed to persist progress report")
		return "", fmt.Errorf("failed to persist progress report: %w", err)
	}

	checkIn := &engagement.CheckInRecord{
		ContractorID: c.ID,
		Time:         now,
		Kind:         engagement.CheckInProgressReport,
		Notes:        sql.NullString{String: "Progress report " + report.Ref, Valid: true},
	}
	if err := s.engagements.AppendCheckIn(ctx, checkIn); err != nil {
		s.logger.WithField("contractor_id", c.ID).WithError(err).Error("Failed to append report check-in record")
	}

	if err := s.sessions.Delete(ctx, sess.ChatID); err != nil {
		s.logger.WithField("chat_id", sess.ChatID).WithError(err).Error("Failed to delete completed session")
	}

	s.logger.WithFields(logrus.Fields{
		"contractor_id": c.ID,
		"report_ref":    report.Ref,
	}).Info("Progress report submitted")
	return fmt.Sprintf("Thanks %s, your progress report is in. Have a good evening!", c.FirstName), nil
}

func stepSpecFor(step session.Step) (*stepSpec, int) {
	for i := range conversationSteps {
		if conversationSteps[i].step == step {
			return &conversationSteps[i], i
		}
	}
	return nil, -1
}

// parsePercentage strips non-digit characters and accepts integers in
// [0,100]. "  75%" parses to 75; "abc" and "150" are rejected.
func parsePercentage(raw string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, fmt.Errorf("no digits in %q", raw)
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q: %w", raw, err)
	}
	if v > 100 {
		return 0, fmt.Errorf("percentage %d out of range", v)
	}
	return v, nil
}
