package test_utils

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InsertUser creates a user row and returns its id.
func InsertUser(t *testing.T, db *pgxpool.Pool, username string, displayName string, email string, timezone string) int {
	t.Helper()
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO users (uid, username, display_name, email, timezone)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		uuid.NewString(), username, displayName, email, timezone,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert user %s: %v", username, err)
	}
	return id
}

// InsertGroup creates a group row and returns its id.
func InsertGroup(t *testing.T, db *pgxpool.Pool, name string) int {
	t.Helper()
	var id int
	err := db.QueryRow(context.Background(),
		"INSERT INTO groups (uid, name) VALUES ($1, $2) RETURNING id",
		uuid.NewString(), name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert group %s: %v", name, err)
	}
	return id
}

// AddGroupMember links a user to a group.
func AddGroupMember(t *testing.T, db *pgxpool.Pool, groupId int, userId int, role string) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		"INSERT INTO group_member (group_id, user_id, role) VALUES ($1, $2, $3)",
		groupId, userId, role,
	)
	if err != nil {
		t.Fatalf("Failed to add user %d to group %d: %v", userId, groupId, err)
	}
}

// InsertEvent creates an event row and returns its id. callTime may be nil.
func InsertEvent(t *testing.T, db *pgxpool.Pool, groupId int, title string, eventType string, start time.Time, end time.Time, callTime *time.Time) int {
	t.Helper()
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO event (uid, group_id, title, event_type, start_time, end_time, call_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		uuid.NewString(), groupId, title, eventType, start, end, callTime,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert event %s: %v", title, err)
	}
	return id
}

// ConfirmAssignment inserts a confirmed assignment for the user.
func ConfirmAssignment(t *testing.T, db *pgxpool.Pool, eventId int, userId int, role string) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		"INSERT INTO event_assignment (event_id, user_id, role, status) VALUES ($1, $2, $3, 'confirmed')",
		eventId, userId, role,
	)
	if err != nil {
		t.Fatalf("Failed to confirm assignment for user %d on event %d: %v", userId, eventId, err)
	}
}
