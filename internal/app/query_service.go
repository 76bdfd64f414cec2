package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"contractor_engagement_bot/internal/domain/contractor"
	"contractor_engagement_bot/internal/domain/engagement"
	"contractor_engagement_bot/internal/domain/query"
	idb "contractor_engagement_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// queryTopic is what a direct lookup is about.
type queryTopic string

const (
	topicCheckIn queryTopic = "checkin"
	topicHours   queryTopic = "hours"
	topicPayment queryTopic = "payment"
)

var topicKeywords = []struct {
	topic    queryTopic
	keywords []string
}{
	{topicCheckIn, []string{"check-in", "checkin", "checked in", "check in", "clock"}},
	{topicHours, []string{"hours", "work"}},
	{topicPayment, []string{"payment", "paid", "pay", "owe"}},
}

// directQuery is a parsed simple lookup: another contractor plus a topic.
type directQuery struct {
	target *contractor.Profile
	topic  queryTopic
}

// QueryService answers ad-hoc questions. Simple "how is <name> doing"
// lookups are answered straight from records, cheaper and safer than the
// free-text collaborator; everything else falls through to it with an
// explicit caller scope.
type QueryService struct {
	contractors contractor.Repository
	engagements engagement.Repository
	answerer    query.Answerer
	timeout     time.Duration
	logger      *logrus.Entry
	now         func() time.Time
}

func NewQueryService(
	cr contractor.Repository,
	er engagement.Repository,
	a query.Answerer,
	logger *logrus.Entry,
) *QueryService {
	return &QueryService{
		contractors: cr,
		engagements: er,
		answerer:    a,
		timeout:     20 * time.Second,
		logger:      logger,
		now:         time.Now,
	}
}

// matchDirect parses the message into a direct lookup when it names another
// contractor together with a topical keyword. A storage failure degrades to
// "no match" so the message still gets the fallback answer.
func (s *QueryService) matchDirect(ctx context.Context, asker *contractor.Profile, text string) *directQuery {
	lowered := strings.ToLower(text)

	var topic queryTopic
	for _, t := range topicKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(lowered, kw) {
				topic = t.topic
				break
			}
		}
		if topic != "" {
			break
		}
	}
	if topic == "" {
		return nil
	}

	all, err := s.contractors.ListAll(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Contractor list unavailable for direct query matching; falling through")
		return nil
	}
	for _, c := range all {
		if c.ID == asker.ID {
			continue
		}
		if nameMentioned(lowered, c.FirstName) || (c.LastName.Valid && nameMentioned(lowered, c.LastName.String)) {
			return &directQuery{target: c, topic: topic}
		}
	}
	return nil
}

// answerDirect answers a parsed lookup from records. Reads degrade to a
// "nothing found" reply rather than an error.
func (s *QueryService) answerDirect(ctx context.Context, q *directQuery) string {
	name := q.target.FullName()
	switch q.topic {
	case topicCheckIn:
		latest, err := s.engagements.LatestCheckIn(ctx, q.target.ID)
		if err != nil {
			if err != idb.ErrCheckInNotFound {
				s.logger.WithField("contractor_id", q.target.ID).WithError(err).Warn("Check-in lookup failed; degrading to empty")
			}
			return fmt.Sprintf("I have no check-ins on record for %s.", name)
		}
		return fmt.Sprintf("%s last checked in %s (%s).",
			name, latest.Time.Format("Mon Jan 2 at 15:04"), latest.Kind)
	case topicHours:
		weekAgo := s.now().AddDate(0, 0, -7)
		count, err := s.engagements.CountCheckInsSince(ctx, q.target.ID, weekAgo)
		if err != nil {
			s.logger.WithField("contractor_id", q.target.ID).WithError(err).Warn("Check-in count failed; degrading to empty")
			return fmt.Sprintf("I couldn't find any recorded activity for %s this week.", name)
		}
		return fmt.Sprintf("%s has %d recorded check-ins over the last 7 days.", name, count)
	case topicPayment:
		// Payroll is computed by the office, not here; answer with the
		// activity that feeds it instead of guessing at amounts.
		weekAgo := s.now().AddDate(0, 0, -7)
		count, err := s.engagements.CountCheckInsSince(ctx, q.target.ID, weekAgo)
		if err != nil {
			s.logger.WithField("contractor_id", q.target.ID).WithError(err).Warn("Check-in count failed; degrading to empty")
			count = 0
		}
		return fmt.Sprintf("Payments are settled by the office. For reference, %s has %d check-ins on record this week.", name, count)
	}
	return fmt.Sprintf("I don't have records I can share about %s.", name)
}

// fallback hands the question to the free-text collaborator, bounded by a
// timeout, with the caller's visibility scope fixed up front.
func (s *QueryService) fallback(ctx context.Context, asker *contractor.Profile, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	scope := query.CallerScope{IsAdmin: asker.IsAdmin, ContractorID: asker.ID}
	answer, err := s.answerer.Answer(ctx, text, scope)
	if err != nil {
		return "", fmt.Errorf("free-text query failed: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "I couldn't find anything on that. Try rephrasing, or ask the office.", nil
	}
	return answer, nil
}

// nameMentioned matches a whole word, case already lowered. Short names are
// ignored to avoid matching inside common words.
func nameMentioned(loweredText, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return false
	}
	for _, word := range strings.FieldsFunc(loweredText, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if word == name {
			return true
		}
	}
	return false
}
