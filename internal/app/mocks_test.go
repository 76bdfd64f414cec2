package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"contractor_engagement_bot/internal/domain/chat"
	"contractor_engagement_bot/internal/domain/contractor"
	"contractor_engagement_bot/internal/domain/engagement"
	"contractor_engagement_bot/internal/domain/job"
	"contractor_engagement_bot/internal/domain/query"
	"contractor_engagement_bot/internal/domain/session"
	"contractor_engagement_bot/internal/domain/speech"
	idb "contractor_engagement_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l.WithField("component", "test")
}

// --- FakeContractorRepo ---

type FakeContractorRepo struct {
	Profiles []*contractor.Profile
	Err      error
}

func (f *FakeContractorRepo) GetByID(_ context.Context, id int64) (*contractor.Profile, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	for _, p := range f.Profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, idb.ErrContractorNotFound
}

func (f *FakeContractorRepo) GetByChatID(_ context.Context, chatID int64) (*contractor.Profile, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	for _, p := range f.Profiles {
		if p.ChatID.Valid && p.ChatID.Int64 == chatID {
			return p, nil
		}
	}
	return nil, idb.ErrContractorNotFound
}

func (f *FakeContractorRepo) ListWithChatID(_ context.Context) ([]*contractor.Profile, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]*contractor.Profile, 0)
	for _, p := range f.Profiles {
		if p.ChatID.Valid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeContractorRepo) ListAll(_ context.Context) ([]*contractor.Profile, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Profiles, nil
}

// --- FakeAssignmentRepo ---

type FakeAssignmentRepo struct {
	Assignments []*job.Assignment
	ListErr     error
	WriteErr    error
}

func (f *FakeAssignmentRepo) GetByID(_ context.Context, id int64) (*job.Assignment, error) {
	for _, a := range f.Assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, idb.ErrAssignmentNotFound
}

func (f *FakeAssignmentRepo) ListActiveOn(_ context.Context, day time.Time) ([]*job.Assignment, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]*job.Assignment, 0)
	for _, a := range f.Assignments {
		if !day.Before(a.StartDate) && !day.After(a.EndDate) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *FakeAssignmentRepo) ActiveFor(_ context.Context, contractorID int64, day time.Time) (*job.Assignment, error) {
	for _, a := range f.Assignments {
		if a.ContractorID == contractorID && !day.Before(a.StartDate) && !day.After(a.EndDate) {
			return a, nil
		}
	}
	return nil, idb.ErrAssignmentNotFound
}

func (f *FakeAssignmentRepo) ListUnacknowledged(_ context.Context, contractorID int64) ([]*job.Assignment, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]*job.Assignment, 0)
	for _, a := range f.Assignments {
		if a.ContractorID == contractorID && !a.Acknowledged {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeAssignmentRepo) ListUnnotified(_ context.Context) ([]*job.Assignment, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]*job.Assignment, 0)
	for _, a := range f.Assignments {
		if !a.NotifiedAt.Valid {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *FakeAssignmentRepo) MarkNotified(_ context.Context, id int64, at time.Time) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	for _, a := range f.Assignments {
		if a.ID == id && !a.NotifiedAt.Valid {
			a.NotifiedAt.Time, a.NotifiedAt.Valid = at, true
			return nil
		}
	}
	return idb.ErrAssignmentNotFound
}

func (f *FakeAssignmentRepo) MarkAcknowledged(_ context.Context, id int64, at time.Time) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	for _, a := range f.Assignments {
		if a.ID == id && !a.Acknowledged {
			a.Acknowledged = true
			a.AcknowledgedAt.Time, a.AcknowledgedAt.Valid = at, true
			return nil
		}
	}
	return idb.ErrAssignmentNotFound
}

// --- FakeEngagementRepo ---

type FakeEngagementRepo struct {
	Reminders []*engagement.ReminderRecord
	CheckIns  []*engagement.CheckInRecord
	Reports   []*engagement.ProgressReport

	ReadErr  error
	WriteErr error

	nextID int64
}

func (f *FakeEngagementRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *FakeEngagementRepo) CreateReminder(_ context.Context, r *engagement.ReminderRecord) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	r.ID = f.id()
	f.Reminders = append(f.Reminders, r)
	return nil
}

func (f *FakeEngagementRepo) LatestOpenReminder(_ context.Context, contractorID int64, sentAfter time.Time) (*engagement.ReminderRecord, error) {
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	var latest *engagement.ReminderRecord
	for _, r := range f.Reminders {
		if r.ContractorID != contractorID || r.Responded || r.SentAt.Before(sentAfter) {
			continue
		}
		if latest == nil || r.SentAt.After(latest.SentAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, idb.ErrReminderNotFound
	}
	return latest, nil
}

func (f *FakeEngagementRepo) MarkReminderResponded(_ context.Context, id int64, at time.Time, text string) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	for _, r := range f.Reminders {
		if r.ID == id && !r.Responded {
			r.Responded = true
			r.RespondedAt.Time, r.RespondedAt.Valid = at, true
			r.ResponseText.String, r.ResponseText.Valid = text, true
			return nil
		}
	}
	return idb.ErrReminderNotFound
}

func (f *FakeEngagementRepo) AppendCheckIn(_ context.Context, c *engagement.CheckInRecord) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	c.ID = f.id()
	f.CheckIns = append(f.CheckIns, c)
	return nil
}

func (f *FakeEngagementRepo) HasCheckInBetween(_ context.Context, contractorID int64, from, to time.Time) (bool, error) {
	if f.ReadErr != nil {
		return false, f.ReadErr
	}
	for _, c := range f.CheckIns {
		if c.ContractorID == contractorID && !c.Time.Before(from) && c.Time.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeEngagementRepo) LatestCheckIn(_ context.Context, contractorID int64) (*engagement.CheckInRecord, error) {
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	var latest *engagement.CheckInRecord
	for _, c := range f.CheckIns {
		if c.ContractorID != contractorID {
			continue
		}
		if latest == nil || c.Time.After(latest.Time) {
			latest = c
		}
	}
	if latest == nil {
		return nil, idb.ErrCheckInNotFound
	}
	return latest, nil
}

func (f *FakeEngagementRepo) CountCheckInsSince(_ context.Context, contractorID int64, since time.Time) (int, error) {
	if f.ReadErr != nil {
		return 0, f.ReadErr
	}
	count := 0
	for _, c := range f.CheckIns {
		if c.ContractorID == contractorID && !c.Time.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *FakeEngagementRepo) CreateProgressReport(_ context.Context, p *engagement.ProgressReport) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	p.ID = f.id()
	f.Reports = append(f.Reports, p)
	return nil
}

func (f *FakeEngagementRepo) HasProgressReportBetween(_ context.Context, contractorID int64, from, to time.Time) (bool, error) {
	if f.ReadErr != nil {
		return false, f.ReadErr
	}
	for _, p := range f.Reports {
		if p.ContractorID == contractorID && !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

// --- FakeSessionRepo ---

type FakeSessionRepo struct {
	Sessions map[int64]*session.Session
	SaveErr  error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{Sessions: make(map[int64]*session.Session)}
}

func (f *FakeSessionRepo) Get(_ context.Context, chatID int64) (*session.Session, error) {
	s, ok := f.Sessions[chatID]
	if !ok {
		return nil, idb.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *FakeSessionRepo) Save(_ context.Context, s *session.Session) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	cp := *s
	f.Sessions[s.ChatID] = &cp
	return nil
}

func (f *FakeSessionRepo) Delete(_ context.Context, chatID int64) error {
	delete(f.Sessions, chatID)
	return nil
}

// --- FakeChatClient ---

type SentMessage struct {
	ChatID int64
	Text   string
}

type FakeChatClient struct {
	mu      sync.Mutex
	Sent    []SentMessage
	FailFor map[int64]error
	nextID  int
}

func (f *FakeChatClient) SendMessage(chatID int64, text string, _ *chat.SendOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.FailFor[chatID]; ok {
		return "", err
	}
	f.Sent = append(f.Sent, SentMessage{ChatID: chatID, Text: text})
	f.nextID++
	return fmt.Sprintf("%d", f.nextID), nil
}

func (f *FakeChatClient) VoiceFileURL(fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

func (f *FakeChatClient) SentTo(chatID int64) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentMessage, 0)
	for _, m := range f.Sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// --- FakeTranscriber ---

type FakeTranscriber struct {
	Text string
	Err  error
}

func (f *FakeTranscriber) Transcribe(_ context.Context, _ string, _ string) (*speech.Result, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &speech.Result{Text: f.Text, DetectedLanguage: "en"}, nil
}

// --- FakeAnswerer ---

type FakeAnswerer struct {
	Reply     string
	Err       error
	LastScope query.CallerScope
	LastMsg   string
	Calls     int
}

func (f *FakeAnswerer) Answer(_ context.Context, message string, scope query.CallerScope) (string, error) {
	f.Calls++
	f.LastMsg = message
	f.LastScope = scope
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}
