package scheduler

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

// The trigger bodies never fire in these tests, so the scheduler is wired
// with nil services.
func newTestScheduler() *ReminderScheduler {
	return NewReminderScheduler(nil, nil, testLogger())
}

func TestRescheduleReplacesEntry(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.Reschedule(TriggerMorningCheckIn, "15 8 * * *"))
	first := s.entries[TriggerMorningCheckIn]

	require.NoError(t, s.Reschedule(TriggerMorningCheckIn, "30 9 * * *"))
	second := s.entries[TriggerMorningCheckIn]

	assert.NotEqual(t, first, second)
	assert.Len(t, s.cronEngine.Entries(), 1, "rescheduling must not leak the old entry")
}

func TestRescheduleInvalidSpecKeepsOldTrigger(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Reschedule(TriggerEveningReport, "0 17 * * *"))
	old := s.entries[TriggerEveningReport]

	err := s.Reschedule(TriggerEveningReport, "not a cron spec")

	assert.Error(t, err)
	assert.Equal(t, old, s.entries[TriggerEveningReport], "a bad spec must leave the running trigger untouched")
	assert.Len(t, s.cronEngine.Entries(), 1)
}

func TestTriggersTrackedPerKind(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.Reschedule(TriggerMorningCheckIn, "15 8 * * *"))
	require.NoError(t, s.Reschedule(TriggerEveningReport, "0 17 * * *"))
	require.NoError(t, s.Reschedule(TriggerAssignmentSweep, "*/10 * * * *"))

	assert.Len(t, s.entries, 3)
	assert.Len(t, s.cronEngine.Entries(), 3)
}
