package app

import (
	"context"
	"strings"
	"time"

	"contractor_engagement_bot/internal/domain/chat"
	"contractor_engagement_bot/internal/domain/contractor"
	"contractor_engagement_bot/internal/domain/engagement"
	"contractor_engagement_bot/internal/domain/speech"
	idb "contractor_engagement_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

const (
	notRegisteredReply = "You're not registered yet. Ask the office to link your account, then message me again."
	retypeReply        = "Sorry, I couldn't make out that voice note. Please try again or type your message."
	genericErrorReply  = "Sorry, something went wrong on my end. Please try again in a moment."
	reportButtonLabel  = "📝 Daily Report"

	transcribeTimeout = 30 * time.Second
	reminderReplyAge  = 24 * time.Hour
)

var ackKeywords = []string{"accept", "accepted", "ok", "yes", "confirmed", "i accept"}

// routeContext accumulates per-message state as the rule chain runs:
// the resolved contractor, the normalized text, and whatever a predicate
// matched so its handler doesn't look it up twice.
type routeContext struct {
	inbound      chat.Inbound
	contractor   *contractor.Profile
	text         string
	openReminder *engagement.ReminderRecord
	direct       *directQuery
}

// routeRule is one (predicate, handler) pair. Rules are evaluated strictly
// top to bottom; the first match wins and its handler produces the reply.
type routeRule struct {
	name    string
	matches func(ctx context.Context, rc *routeContext) bool
	handle  func(ctx context.Context, rc *routeContext) string
}

// Router is the single entry point for every inbound message. It resolves
// identity, normalizes voice to text, then walks the ordered rule table.
// Every path returns a non-empty reply; silence is a protocol violation.
type Router struct {
	contractors   contractor.Repository
	engagements   engagement.Repository
	transport     chat.Client
	transcriber   speech.Transcriber
	conversations *ConversationService
	acks          *AssignmentService
	queries       *QueryService
	logger        *logrus.Entry
	now           func() time.Time
	locks         *chatLocks
	rules         []routeRule
}

func NewRouter(
	cr contractor.Repository,
	er engagement.Repository,
	transport chat.Client,
	transcriber speech.Transcriber,
	conversations *ConversationService,
	acks *AssignmentService,
	queries *QueryService,
	logger *logrus.Entry,
) *Router {
	r := &Router{
		contractors:   cr,
		engagements:   er,
		transport:     transport,
		transcriber:   transcriber,
		conversations: conversations,
		acks:          acks,
		queries:       queries,
		logger:        logger,
		now:           time.Now,
		locks:         newChatLocks(),
	}
	r.rules = []routeRule{
		{name: "conversation", matches: r.matchActiveConversation, handle: r.handleConversation},
		{name: "report_start", matches: r.matchReportKeyword, handle: r.handleReportStart},
		{name: "acknowledgment", matches: r.matchAckKeyword, handle: r.handleAcknowledgment},
		{name: "reminder_reply", matches: r.matchOpenReminder, handle: r.handleReminderReply},
		{name: "direct_query", matches: r.matchDirectQuery, handle: r.handleDirectQuery},
		{name: "fallback", matches: r.matchAlways, handle: r.handleFallback},
	}
	return r
}

// Route processes one inbound message and returns the reply text. Dispatch
// for a chat runs under that chat's mutex so rapid-fire messages can't race
// on the session or reminder state.
func (r *Router) Route(ctx context.Context, in chat.Inbound) string {
	lock := r.locks.forChat(in.ChatID)
	lock.Lock()
	defer lock.Unlock()

	msgLogger := r.logger.WithField("chat_id", in.ChatID)

	rc := &routeContext{inbound: in}

	// Identity first: unknown chats get a fixed reply and no state is touched.
	c, err := r.contractors.GetByChatID(ctx, in.ChatID)
	if err != nil {
		if err != idb.ErrContractorNotFound {
			msgLogger.WithError(err).Error("Contractor lookup failed; treating chat as unregistered")
		}
		msgLogger.WithFields(logrus.Fields{"branch": "unregistered", "outcome": "replied"}).Info("Inbound message processed")
		return notRegisteredReply
	}
	rc.contractor = c
	msgLogger = msgLogger.WithField("contractor_id", c.ID)

	// Normalize: voice notes become text before any intent matching.
	text, ok := r.normalize(ctx, msgLogger, in)
	if !ok {
		msgLogger.WithFields(logrus.Fields{"branch": "transcription_failed", "outcome": "replied"}).Info("Inbound message processed")
		return retypeReply
	}
	rc.text = text

	for _, rule := range r.rules {
		if !rule.matches(ctx, rc) {
			continue
		}
		reply := rule.handle(ctx, rc)
		msgLogger.WithFields(logrus.Fields{"branch": rule.name, "outcome": "replied"}).Info("Inbound message processed")
		return reply
	}

	// The fallback rule always matches; reaching here means the table was
	// mis-assembled. Still answer.
	msgLogger.WithField("branch", "none").Error("No routing rule matched")
	return genericErrorReply
}

func (r *Router) normalize(ctx context.Context, msgLogger *logrus.Entry, in chat.Inbound) (string, bool) {
	if in.Kind != chat.KindVoice {
		return in.Text, true
	}
	audioURL, err := r.transport.VoiceFileURL(in.VoiceFileID)
	if err != nil {
		msgLogger.WithError(err).Error("Failed to resolve voice file URL")
		return "", false
	}
	tctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()
	res, err := r.transcriber.Transcribe(tctx, audioURL, "")
	if err != nil {
		msgLogger.WithError(err).Warn("Voice transcription failed")
		return "", false
	}
	if strings.TrimSpace(res.Text) == "" {
		msgLogger.Warn("Voice transcription returned empty text")
		return "", false
	}
	msgLogger.WithField("detected_language", res.DetectedLanguage).Debug("Voice note transcribed")
	return res.Text, true
}

// --- rule predicates and handlers, in priority order ---

func (r *Router) matchActiveConversation(ctx context.Context, rc *routeContext) bool {
	return r.conversations.Active(ctx, rc.inbound.ChatID)
}

func (r *Router) handleConversation(ctx context.Context, rc *routeContext) string {
	reply, err := r.conversations.HandleMessage(ctx, rc.contractor, rc.inbound.ChatID, rc.text)
	if err != nil {
		if err == ErrNoActiveSession {
			// Session vanished between the predicate and here; have the
			// contractor restart explicitly.
			return "Your report session expired. Send \"report\" to start again."
		}
		r.logger.WithField("chat_id", rc.inbound.ChatID).WithError(err).Error("Conversation advance failed")
		return genericErrorReply
	}
	return reply
}

func (r *Router) matchReportKeyword(_ context.Context, rc *routeContext) bool {
	trimmed := strings.TrimSpace(rc.text)
	return strings.EqualFold(trimmed, "report") || trimmed == reportButtonLabel
}

func (r *Router) handleReportStart(ctx context.Context, rc *routeContext) string {
	prompt, err := r.conversations.Start(ctx, rc.inbound.ChatID)
	if err != nil {
		r.logger.WithField("chat_id", rc.inbound.ChatID).WithError(err).Error("Failed to start report conversation")
		return genericErrorReply
	}
	return prompt
}

func (r *Router) matchAckKeyword(_ context.Context, rc *routeContext) bool {
	normalized := strings.ToLower(strings.TrimSpace(rc.text))
	for _, kw := range ackKeywords {
		if normalized == kw {
			return true
		}
	}
	return strings.Contains(normalized, "accept")
}

func (r *Router) handleAcknowledgment(ctx context.Context, rc *routeContext) string {
	reply, err := r.acks.Acknowledge(ctx, rc.contractor)
	if err != nil {
		r.logger.WithField("contractor_id", rc.contractor.ID).WithError(err).Error("Acknowledgment write failed")
		return "Sorry, I couldn't record your confirmation just now. Please try again."
	}
	return reply
}

func (r *Router) matchOpenReminder(ctx context.Context, rc *routeContext) bool {
	since := r.now().Add(-reminderReplyAge)
	rec, err := r.engagements.LatestOpenReminder(ctx, rc.contractor.ID, since)
	if err != nil {
		if err != idb.ErrReminderNotFound {
			r.logger.WithField("contractor_id", rc.contractor.ID).WithError(err).Error("Open reminder lookup failed; falling through")
		}
		return false
	}
	rc.openReminder = rec
	return true
}

func (r *Router) handleReminderReply(ctx context.Context, rc *routeContext) string {
	now := r.now()
	rec := rc.openReminder
	if err := r.engagements.MarkReminderResponded(ctx, rec.ID, now, rc.text); err != nil {
		r.logger.WithField("reminder_id", rec.ID).WithError(err).Error("Failed to mark reminder responded")
		return genericErrorReply
	}

	kind := engagement.CheckInTelegramResponse
	if rec.Kind == engagement.ReminderMorningCheckIn {
		kind = engagement.CheckInTelegramConfirm
	}
	checkIn := &engagement.CheckInRecord{
		ContractorID: rc.contractor.ID,
		Time:         now,
		Kind:         kind,
	}
	if rc.inbound.Kind == chat.KindVoice {
		checkIn.Kind = engagement.CheckInVoiceMessage
	}
	checkIn.Notes.String, checkIn.Notes.Valid = rc.text, true
	if err := r.engagements.AppendCheckIn(ctx, checkIn); err != nil {
		r.logger.WithField("contractor_id", rc.contractor.ID).WithError(err).Error("Failed to append reminder-reply check-in")
	}

	if rec.Kind == engagement.ReminderMorningCheckIn {
		return "Thanks " + rc.contractor.FirstName + ", you're marked as on site today. Have a safe one!"
	}
	return "Thanks, I've noted your update. Send \"report\" any time to file a full progress report."
}

func (r *Router) matchDirectQuery(ctx context.Context, rc *routeContext) bool {
	rc.direct = r.queries.matchDirect(ctx, rc.contractor, rc.text)
	return rc.direct != nil
}

func (r *Router) handleDirectQuery(ctx context.Context, rc *routeContext) string {
	return r.queries.answerDirect(ctx, rc.direct)
}

func (r *Router) matchAlways(_ context.Context, _ *routeContext) bool { return true }

func (r *Router) handleFallback(ctx context.Context, rc *routeContext) string {
	answer, err := r.queries.fallback(ctx, rc.contractor, rc.text)
	if err != nil {
		r.logger.WithField("contractor_id", rc.contractor.ID).WithError(err).Warn("Free-text query collaborator failed")
		return "I couldn't look that up right now. Please try again in a few minutes."
	}
	return answer
}
