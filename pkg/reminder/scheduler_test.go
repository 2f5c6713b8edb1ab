package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/callboard-app/callboard/internal/utils"
	"github.com/callboard-app/callboard/pkg/event"
	"github.com/callboard-app/callboard/pkg/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifierStub struct {
	mu   sync.Mutex
	sent []notification.EventReminder
}

func (n *notifierStub) SendEventReminder(ctx context.Context, msg notification.EventReminder) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *notifierStub) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.RecipientEmail)
	}
	return out
}

var ctx = context.Background()
var now = time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)

var storeStub = NewStoreStub()
var notified *notifierStub
var clock = &utils.MockClock{FixedNow: now}
var scheduler *Scheduler

func setup(t *testing.T) func() {
	notified = &notifierStub{}
	clock.SetNow(now)
	scheduler = NewScheduler(storeStub, notified, clock, 15*time.Minute, 24*time.Hour)
	return func() {
		t.Log("Teardown after test")
		storeStub.Reset()
	}
}

func dueShow(id int) event.Event {
	call := time.Date(2025, 6, 20, 18, 0, 0, 0, time.UTC)
	return event.Event{
		Id:        id,
		Uid:       uuid.NewString(),
		GroupId:   1,
		Title:     "Autumn Showcase",
		Type:      event.TypeShow,
		StartTime: time.Date(2025, 6, 20, 20, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 20, 22, 0, 0, 0, time.UTC),
		Location:  "Main Hall",
		CallTime:  &call,
	}
}

func confirmedAttendees() []Attendee {
	return []Attendee{
		{UserId: 10, DisplayName: "Ola", Email: "ola@example.com", Timezone: "Europe/Warsaw", Preferences: notification.DefaultPreferences()},
		{UserId: 11, DisplayName: "Ben", Email: "ben@example.com", Timezone: "America/New_York", Preferences: notification.DefaultPreferences()},
	}
}

func TestTick(t *testing.T) {
	t.Run("sends once per attendee and never again", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		storeStub.AddEvent(dueShow(1))
		storeStub.SetAttendees(1, confirmedAttendees())

		require.NoError(t, scheduler.Tick(ctx))
		assert.Equal(t, []string{"ola@example.com", "ben@example.com"}, notified.recipients())
		require.NotNil(t, storeStub.Event(1).ReminderSentAt)
		assert.Equal(t, now, *storeStub.Event(1).ReminderSentAt)

		require.NoError(t, scheduler.Tick(ctx))
		assert.Len(t, notified.sent, 2, "second tick must not re-send")
	})

	t.Run("renders times in each attendee's zone", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		storeStub.AddEvent(dueShow(1))
		storeStub.SetAttendees(1, confirmedAttendees())

		require.NoError(t, scheduler.Tick(ctx))

		require.Len(t, notified.sent, 2)
		warsaw := notified.sent[0]
		assert.Equal(t, "22:00", warsaw.StartTime)
		assert.Equal(t, "20:00", warsaw.CallTime)
		newYork := notified.sent[1]
		assert.Equal(t, "16:00", newYork.StartTime)
		assert.Equal(t, "14:00", newYork.CallTime)
	})

	t.Run("event outside the window is left alone", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		distant := dueShow(1)
		distant.CallTime = nil
		distant.StartTime = now.Add(48 * time.Hour)
		distant.EndTime = distant.StartTime.Add(2 * time.Hour)
		storeStub.AddEvent(distant)

		require.NoError(t, scheduler.Tick(ctx))

		assert.Empty(t, notified.sent)
		assert.Nil(t, storeStub.Event(1).ReminderSentAt)
	})

	t.Run("past event is not reminded", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		past := dueShow(1)
		past.CallTime = nil
		past.StartTime = now.Add(-1 * time.Hour)
		past.EndTime = now.Add(1 * time.Hour)
		storeStub.AddEvent(past)

		require.NoError(t, scheduler.Tick(ctx))

		assert.Nil(t, storeStub.Event(1).ReminderSentAt)
	})

	t.Run("lock held by another replica means a silent no-op", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		storeStub.AddEvent(dueShow(1))
		storeStub.SetAttendees(1, confirmedAttendees())
		storeStub.HoldLock(true)

		require.NoError(t, scheduler.Tick(ctx))

		assert.Empty(t, notified.sent)
		assert.Nil(t, storeStub.Event(1).ReminderSentAt)
		assert.Equal(t, 1, storeStub.Commits, "tick commits an empty transaction")
	})

	t.Run("event with zero confirmed attendees is still marked", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		storeStub.AddEvent(dueShow(1))

		require.NoError(t, scheduler.Tick(ctx))

		assert.Empty(t, notified.sent)
		assert.NotNil(t, storeStub.Event(1).ReminderSentAt)
	})

	t.Run("attendee with a broken timezone is skipped, event still marked", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		storeStub.AddEvent(dueShow(1))
		storeStub.SetAttendees(1, []Attendee{
			{UserId: 10, DisplayName: "Ola", Email: "ola@example.com", Timezone: "Mars/Olympus_Mons", Preferences: notification.DefaultPreferences()},
			{UserId: 11, DisplayName: "Ben", Email: "ben@example.com", Timezone: "UTC", Preferences: notification.DefaultPreferences()},
		})

		require.NoError(t, scheduler.Tick(ctx))

		assert.Equal(t, []string{"ben@example.com"}, notified.recipients())
		assert.NotNil(t, storeStub.Event(1).ReminderSentAt)
	})

	t.Run("store failure rolls back the whole tick", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		storeStub.AddEvent(dueShow(1))
		storeStub.SetAttendees(1, confirmedAttendees())
		storeStub.FailMarkReminded(errors.New("connection reset"))

		require.Error(t, scheduler.Tick(ctx))
		assert.Nil(t, storeStub.Event(1).ReminderSentAt)
		assert.Equal(t, 1, storeStub.Rollbacks)

		// next tick retries cleanly
		storeStub.FailMarkReminded(nil)
		require.NoError(t, scheduler.Tick(ctx))
		assert.NotNil(t, storeStub.Event(1).ReminderSentAt)
	})

	t.Run("events ordered by effective reminder time", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		later := dueShow(1)
		earlier := dueShow(2)
		earlierCall := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
		earlier.CallTime = &earlierCall
		storeStub.AddEvent(later)
		storeStub.AddEvent(earlier)
		storeStub.SetAttendees(1, confirmedAttendees()[:1])
		storeStub.SetAttendees(2, confirmedAttendees()[:1])

		require.NoError(t, scheduler.Tick(ctx))

		require.Len(t, notified.sent, 2)
		// Warsaw renderings: 12:00 UTC call -> 14:00, 18:00 UTC call -> 20:00
		assert.Equal(t, "14:00", notified.sent[0].CallTime)
		assert.Equal(t, "20:00", notified.sent[1].CallTime)
	})
}

func TestStartStop(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	scheduler.Start(ctx)
	scheduler.Stop()

	// the immediate first tick ran before Stop returned
	assert.GreaterOrEqual(t, storeStub.Commits, 1)
}
