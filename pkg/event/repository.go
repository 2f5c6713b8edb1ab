package event

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEventByUid(ctx context.Context, uid string) (Event, error)
	ListGroupEvents(ctx context.Context, groupId int, from time.Time, to time.Time) ([]Event, error)
	// UpdateEvent rewrites the event's mutable fields. A changed start time
	// clears reminder_sent_at so the event re-enters the reminder window;
	// any other edit leaves the marker untouched.
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id int) error
	UpsertAssignment(ctx context.Context, assignment Assignment) error
	ListAssignments(ctx context.Context, eventId int) ([]Assignment, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const eventColumns = `id, uid, group_id, title, event_type, start_time, end_time, COALESCE(location, ''), call_time, reminder_sent_at`

func (r *RepositoryImpl) CreateEvent(ctx context.Context, event Event) (Event, error) {
	query := `INSERT INTO event (uid, group_id, title, event_type, start_time, end_time, location, call_time)
			  VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
			  RETURNING id`
	err := r.db.QueryRow(ctx, query,
		event.Uid,
		event.GroupId,
		event.Title,
		event.Type,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.CallTime,
	).Scan(&event.Id)
	if err != nil {
		log.Errorf("failed to create event: %v", err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) GetEventByUid(ctx context.Context, uid string) (Event, error) {
	var event Event
	err := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM event WHERE uid = $1`, uid).Scan(
		&event.Id,
		&event.Uid,
		&event.GroupId,
		&event.Title,
		&event.Type,
		&event.StartTime,
		&event.EndTime,
		&event.Location,
		&event.CallTime,
		&event.ReminderSentAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		log.Errorf("failed to get event: %v", err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) ListGroupEvents(ctx context.Context, groupId int, from time.Time, to time.Time) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event
			  WHERE group_id = $1 AND start_time >= $2 AND start_time <= $3
			  ORDER BY start_time`
	rows, err := r.db.Query(ctx, query, groupId, from, to)
	if err != nil {
		log.Errorf("failed to list events: %v", err)
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(
			&event.Id,
			&event.Uid,
			&event.GroupId,
			&event.Title,
			&event.Type,
			&event.StartTime,
			&event.EndTime,
			&event.Location,
			&event.CallTime,
			&event.ReminderSentAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	// SET expressions read the pre-update row, so the CASE compares the
	// stored start_time against the incoming one.
	query := `UPDATE event SET
				title = $1,
				event_type = $2,
				start_time = $3,
				end_time = $4,
				location = NULLIF($5, ''),
				call_time = $6,
				reminder_sent_at = CASE WHEN start_time IS DISTINCT FROM $3 THEN NULL ELSE reminder_sent_at END
			  WHERE id = $7
			  RETURNING reminder_sent_at`
	err := r.db.QueryRow(ctx, query,
		event.Title,
		event.Type,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.CallTime,
		event.Id,
	).Scan(&event.ReminderSentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		log.Errorf("failed to update event: %v", err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM event WHERE id = $1`, id)
	if err != nil {
		log.Errorf("failed to delete event: %v", err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) UpsertAssignment(ctx context.Context, assignment Assignment) error {
	query := `INSERT INTO event_assignment (event_id, user_id, role, status) VALUES ($1, $2, $3, $4)
			  ON CONFLICT (event_id, user_id) DO UPDATE SET role = EXCLUDED.role, status = EXCLUDED.status`
	_, err := r.db.Exec(ctx, query, assignment.EventId, assignment.UserId, assignment.Role, assignment.Status)
	if err != nil {
		log.Errorf("failed to upsert assignment: %v", err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) ListAssignments(ctx context.Context, eventId int) ([]Assignment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_id, user_id, role, status FROM event_assignment WHERE event_id = $1 ORDER BY user_id`,
		eventId)
	if err != nil {
		log.Errorf("failed to list assignments: %v", err)
		return nil, err
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var assignment Assignment
		if err := rows.Scan(&assignment.EventId, &assignment.UserId, &assignment.Role, &assignment.Status); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}
