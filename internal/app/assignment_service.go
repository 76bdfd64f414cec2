package app

import (
	"context"
	"fmt"
	"time"

	"contractor_engagement_bot/internal/domain/contractor"
	"contractor_engagement_bot/internal/domain/job"

	"github.com/sirupsen/logrus"
)

// AssignmentService sends initial assignment notifications and applies
// acknowledgment replies.
type AssignmentService struct {
	assignments job.Repository
	contractors contractor.Repository
	dispatcher  *Dispatcher
	logger      *logrus.Entry
	now         func() time.Time
}

func NewAssignmentService(
	ar job.Repository,
	cr contractor.Repository,
	d *Dispatcher,
	logger *logrus.Entry,
) *AssignmentService {
	return &AssignmentService{
		assignments: ar,
		contractors: cr,
		dispatcher:  d,
		logger:      logger,
		now:         time.Now,
	}
}

// NotifyPending sends the initial notification for every assignment that has
// not been announced yet, stamping NotifiedAt only after a successful send so
// a failed delivery is retried on the next sweep.
func (s *AssignmentService) NotifyPending(ctx context.Context) error {
	pending, err := s.assignments.ListUnnotified(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list unnotified assignments")
		return fmt.Errorf("failed to list unnotified assignments: %w", err)
	}

	// Collect deliverable notifications first, then send them as one paced
	// batch; NotifiedAt is stamped per item only after its send succeeds.
	var targets []*job.Assignment
	var batch []Outbound
	for _, a := range pending {
		entryLogger := s.logger.WithFields(logrus.Fields{
			"assignment_id": a.ID,
			"contractor_id": a.ContractorID,
			"job_id":        a.JobID,
		})

		c, err := s.contractors.GetByID(ctx, a.ContractorID)
		if err != nil {
			entryLogger.WithError(err).Error("Failed to load contractor for assignment notification; continuing")
			continue
		}
		if !c.ChatID.Valid {
			entryLogger.WithField("outcome", "skipped").Warn("Contractor has no chat handle; assignment notification deferred")
			continue
		}

		targets = append(targets, a)
		batch = append(batch, Outbound{
			ChatID: c.ChatID.Int64,
			Text: fmt.Sprintf(
				"Hi %s, you've been assigned to job #%d (%s to %s). Reply ACCEPT to confirm.",
				c.FirstName, a.JobID,
				a.StartDate.Format("Jan 2"), a.EndDate.Format("Jan 2"),
			),
		})
	}

	for i, res := range s.dispatcher.SendBatch(batch) {
		a := targets[i]
		entryLogger := s.logger.WithFields(logrus.Fields{
			"assignment_id": a.ID,
			"contractor_id": a.ContractorID,
			"job_id":        a.JobID,
		})
		if !res.Success {
			entryLogger.WithField("outcome", "failed").WithError(res.Err).Error("Assignment notification failed; will retry next sweep")
			continue
		}

		if err := s.assignments.MarkNotified(ctx, a.ID, s.now()); err != nil {
			entryLogger.WithError(err).Error("Failed to stamp assignment notified_at")
			continue
		}
		entryLogger.WithField("outcome", "sent").Info("Assignment notification sent")
	}
	return nil
}

// Acknowledge applies an affirmative reply to the contractor's oldest
// unacknowledged assignment (first assigned, first acknowledged). Having
// nothing pending is a normal outcome, answered with a friendly reply.
func (s *AssignmentService) Acknowledge(ctx context.Context, c *contractor.Profile) (string, error) {
	pending, err := s.assignments.ListUnacknowledged(ctx, c.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list unacknowledged assignments for contractor %d: %w", c.ID, err)
	}
	if len(pending) == 0 {
		return fmt.Sprintf("Thanks %s, you have no pending job assignments to confirm right now.", c.FirstName), nil
	}

	oldest := pending[0] // repository orders created_at ascending
	if err := s.assignments.MarkAcknowledged(ctx, oldest.ID, s.now()); err != nil {
		return "", fmt.Errorf("failed to acknowledge assignment %d: %w", oldest.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"contractor_id": c.ID,
		"assignment_id": oldest.ID,
		"job_id":        oldest.JobID,
	}).Info("Assignment acknowledged")
	return fmt.Sprintf("Great, %s! You're confirmed on job #%d starting %s.",
		c.FirstName, oldest.JobID, oldest.StartDate.Format("Jan 2")), nil
}
