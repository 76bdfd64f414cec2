package app

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"contractor_engagement_bot/internal/domain/contractor"
	"contractor_engagement_bot/internal/domain/job"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssignmentFixture(profiles []*contractor.Profile, assignments []*job.Assignment) (*AssignmentService, *FakeAssignmentRepo, *FakeChatClient) {
	client := &FakeChatClient{FailFor: map[int64]error{}}
	repo := &FakeAssignmentRepo{Assignments: assignments}
	svc := NewAssignmentService(
		repo,
		&FakeContractorRepo{Profiles: profiles},
		NewDispatcher(client, 0, testLogger()),
		testLogger(),
	)
	return svc, repo, client
}

func TestAcknowledgeOldestFirst(t *testing.T) {
	now := time.Now()
	dave := &contractor.Profile{ID: 1, ChatID: sql.NullInt64{Int64: 100, Valid: true}, FirstName: "Dave"}
	older := &job.Assignment{ID: 1, JobID: 10, ContractorID: 1, StartDate: now, EndDate: now.AddDate(0, 0, 5), CreatedAt: now.AddDate(0, 0, -3)}
	newer := &job.Assignment{ID: 2, JobID: 20, ContractorID: 1, StartDate: now, EndDate: now.AddDate(0, 0, 5), CreatedAt: now.AddDate(0, 0, -1)}
	svc, _, _ := newAssignmentFixture([]*contractor.Profile{dave}, []*job.Assignment{newer, older})
	ctx := context.Background()

	reply, err := svc.Acknowledge(ctx, dave)
	require.NoError(t, err)
	assert.Contains(t, reply, "job #10", "first assigned must be first acknowledged")

	assert.True(t, older.Acknowledged)
	assert.True(t, older.AcknowledgedAt.Valid)
	assert.False(t, newer.Acknowledged, "exactly one assignment marked per acknowledgment")

	reply, err = svc.Acknowledge(ctx, dave)
	require.NoError(t, err)
	assert.Contains(t, reply, "job #20")
	assert.True(t, newer.Acknowledged)
}

func TestAcknowledgeNothingPending(t *testing.T) {
	dave := &contractor.Profile{ID: 1, ChatID: sql.NullInt64{Int64: 100, Valid: true}, FirstName: "Dave"}
	svc, _, _ := newAssignmentFixture([]*contractor.Profile{dave}, nil)

	reply, err := svc.Acknowledge(context.Background(), dave)
	require.NoError(t, err, "nothing pending is a normal outcome, not a failure")
	assert.Contains(t, reply, "no pending job assignments")
}

func TestNotifyPendingStampsNotifiedAt(t *testing.T) {
	now := time.Now()
	dave := &contractor.Profile{ID: 1, ChatID: sql.NullInt64{Int64: 100, Valid: true}, FirstName: "Dave"}
	a := &job.Assignment{ID: 1, JobID: 10, ContractorID: 1, StartDate: now, EndDate: now.AddDate(0, 0, 5), CreatedAt: now}
	svc, _, client := newAssignmentFixture([]*contractor.Profile{dave}, []*job.Assignment{a})

	require.NoError(t, svc.NotifyPending(context.Background()))

	require.Len(t, client.Sent, 1)
	assert.Contains(t, client.Sent[0].Text, "job #10")
	assert.True(t, a.NotifiedAt.Valid, "notified_at stamped after successful send")

	// Second sweep: nothing left to announce.
	require.NoError(t, svc.NotifyPending(context.Background()))
	assert.Len(t, client.Sent, 1)
}

func TestNotifyPendingRetriesAfterSendFailure(t *testing.T) {
	now := time.Now()
	dave := &contractor.Profile{ID: 1, ChatID: sql.NullInt64{Int64: 100, Valid: true}, FirstName: "Dave"}
	a := &job.Assignment{ID: 1, JobID: 10, ContractorID: 1, StartDate: now, EndDate: now.AddDate(0, 0, 5), CreatedAt: now}
	svc, _, client := newAssignmentFixture([]*contractor.Profile{dave}, []*job.Assignment{a})
	client.FailFor[100] = fmt.Errorf("telegram: timeout")

	require.NoError(t, svc.NotifyPending(context.Background()))
	assert.False(t, a.NotifiedAt.Valid, "failed send leaves assignment unnotified for the next sweep")

	delete(client.FailFor, 100)
	require.NoError(t, svc.NotifyPending(context.Background()))
	assert.True(t, a.NotifiedAt.Valid)
}

func TestNotifyPendingPacesBatchSends(t *testing.T) {
	client := &FakeChatClient{FailFor: map[int64]error{}}
	svc := NewAssignmentService(
		&FakeAssignmentRepo{Assignments: []*job.Assignment{
			activeToday(1, 1), activeToday(2, 2), activeToday(3, 3),
		}},
		&FakeContractorRepo{Profiles: []*contractor.Profile{
			linkedContractor(1, 100, "Dave"),
			linkedContractor(2, 200, "Maria"),
			linkedContractor(3, 300, "Pete"),
		}},
		NewDispatcher(client, 25*time.Millisecond, testLogger()),
		testLogger(),
	)

	start := time.Now()
	require.NoError(t, svc.NotifyPending(context.Background()))
	elapsed := time.Since(start)

	require.Len(t, client.Sent, 3)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond, "consecutive notifications must be spaced by the pacing delay")
}

func TestNotifyPendingSkipsUnlinkedContractor(t *testing.T) {
	now := time.Now()
	unlinked := &contractor.Profile{ID: 1, FirstName: "Dave"}
	a := &job.Assignment{ID: 1, JobID: 10, ContractorID: 1, StartDate: now, EndDate: now.AddDate(0, 0, 5), CreatedAt: now}
	svc, _, client := newAssignmentFixture([]*contractor.Profile{unlinked}, []*job.Assignment{a})

	require.NoError(t, svc.NotifyPending(context.Background()))
	assert.Empty(t, client.Sent)
	assert.False(t, a.NotifiedAt.Valid)
}
