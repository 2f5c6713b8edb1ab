package event

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/callboard-app/callboard/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var container *postgres.PostgresContainer
var getDB func() *pgxpool.Pool

func TestMain(m *testing.M) {
	container, getDB = test_utils.TestWithDB()
	code := m.Run()
	_ = container.Terminate(context.Background())
	os.Exit(code)
}

func restoreDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	err := container.Restore(context.Background(), postgres.WithSnapshotName("postgres-test-snapshot"))
	require.NoError(t, err)
	db := getDB()
	t.Cleanup(db.Close)
	return db
}

func TestUpdateEventReminderMarker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	bg := context.Background()
	start := time.Date(2025, 6, 20, 18, 0, 0, 0, time.UTC)
	sentAt := time.Date(2025, 6, 19, 10, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, db *pgxpool.Pool) Event {
		repo := NewRepository(db)
		groupId := test_utils.InsertGroup(t, db, "The Ensemble")
		id := test_utils.InsertEvent(t, db, groupId, "Autumn Showcase", "show", start, start.Add(2*time.Hour), nil)
		_, err := db.Exec(bg, "UPDATE event SET reminder_sent_at = $1 WHERE id = $2", sentAt, id)
		require.NoError(t, err)
		stored, err := repo.GetEventByUid(bg, fetchUid(t, db, id))
		require.NoError(t, err)
		require.NotNil(t, stored.ReminderSentAt)
		return stored
	}

	t.Run("changing the start time clears the marker", func(t *testing.T) {
		db := restoreDB(t)
		repo := NewRepository(db)
		stored := seed(t, db)

		stored.StartTime = stored.StartTime.Add(time.Hour)
		stored.EndTime = stored.EndTime.Add(time.Hour)
		updated, err := repo.UpdateEvent(bg, stored)
		require.NoError(t, err)

		assert.Nil(t, updated.ReminderSentAt)
	})

	t.Run("editing other fields keeps the marker", func(t *testing.T) {
		db := restoreDB(t)
		repo := NewRepository(db)
		stored := seed(t, db)

		stored.Title = "Autumn Showcase (moved venue)"
		stored.Location = "Small Stage"
		updated, err := repo.UpdateEvent(bg, stored)
		require.NoError(t, err)

		require.NotNil(t, updated.ReminderSentAt)
		assert.True(t, updated.ReminderSentAt.Equal(sentAt))
	})

	t.Run("same start time round-tripped through UTC keeps the marker", func(t *testing.T) {
		db := restoreDB(t)
		repo := NewRepository(db)
		stored := seed(t, db)

		// identical instant in a different Go location must not count as a change
		warsaw, err := time.LoadLocation("Europe/Warsaw")
		require.NoError(t, err)
		stored.StartTime = stored.StartTime.In(warsaw)
		updated, err := repo.UpdateEvent(bg, stored)
		require.NoError(t, err)

		assert.NotNil(t, updated.ReminderSentAt)
	})
}

func TestAssignments(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	bg := context.Background()
	start := time.Date(2025, 6, 20, 18, 0, 0, 0, time.UTC)

	t.Run("upsert replaces role and status for the same user", func(t *testing.T) {
		db := restoreDB(t)
		repo := NewRepository(db)
		groupId := test_utils.InsertGroup(t, db, "The Ensemble")
		userId := test_utils.InsertUser(t, db, "ola", "Ola", "ola@example.com", "Europe/Warsaw")
		eventId := test_utils.InsertEvent(t, db, groupId, "Rehearsal", "rehearsal", start, start.Add(2*time.Hour), nil)

		require.NoError(t, repo.UpsertAssignment(bg, Assignment{EventId: eventId, UserId: userId, Role: "lead", Status: AssignmentPending}))
		require.NoError(t, repo.UpsertAssignment(bg, Assignment{EventId: eventId, UserId: userId, Role: "lead", Status: AssignmentConfirmed}))

		assignments, err := repo.ListAssignments(bg, eventId)
		require.NoError(t, err)
		require.Len(t, assignments, 1)
		assert.Equal(t, AssignmentConfirmed, assignments[0].Status)
	})
}

func fetchUid(t *testing.T, db *pgxpool.Pool, id int) string {
	t.Helper()
	var uid string
	err := db.QueryRow(context.Background(), "SELECT uid FROM event WHERE id = $1", id).Scan(&uid)
	require.NoError(t, err)
	return uid
}
