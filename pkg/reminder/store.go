package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/callboard-app/callboard/pkg/event"
	"github.com/callboard-app/callboard/pkg/notification"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Attendee is a confirmed event participant joined with the contact data and
// merged notification preferences needed to send a reminder.
type Attendee struct {
	UserId      int
	DisplayName string
	Email       string
	Timezone    string
	Preferences notification.Preferences
}

// Store is the persistence contract of the reminder job. All reads and the
// reminded marker happen inside one transaction per tick so that the job
// lock, the due-event snapshot, and the markers commit or roll back as a
// unit.
type Store interface {
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
	// TryAcquireJobLock attempts the transaction-scoped advisory lock that
	// serializes reminder ticks across replicas. Non-blocking; false means
	// another replica holds the current tick.
	TryAcquireJobLock(ctx context.Context) (bool, error)
	FindDueEvents(ctx context.Context, now time.Time, horizon time.Time) ([]event.Event, error)
	FindConfirmedAttendees(ctx context.Context, eventId int) ([]Attendee, error)
	MarkReminded(ctx context.Context, eventId int, at time.Time) error
}

// reminderJobLockKey is the advisory lock key shared by all replicas,
// derived from a stable name so independently deployed instances agree on it.
var reminderJobLockKey = func() int64 {
	h := fnv.New64a()
	h.Write([]byte("callboard.reminder-job"))
	return int64(h.Sum64())
}()

var errNoTransaction = errors.New("operation requires a transaction")

type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type StoreImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewStore(db *pgxpool.Pool) *StoreImpl {
	return &StoreImpl{db: db}
}

func (s *StoreImpl) getQueryer() queryer {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *StoreImpl) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning reminder transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Errorf("Error rolling back reminder transaction: %v", err)
		}
	}()

	if err := fn(&StoreImpl{db: s.db, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *StoreImpl) TryAcquireJobLock(ctx context.Context) (bool, error) {
	if s.tx == nil {
		return false, errNoTransaction
	}
	var acquired bool
	err := s.tx.QueryRow(ctx, "SELECT pg_try_advisory_xact_lock($1)", reminderJobLockKey).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("acquiring reminder job lock: %w", err)
	}
	return acquired, nil
}

func (s *StoreImpl) FindDueEvents(ctx context.Context, now time.Time, horizon time.Time) ([]event.Event, error) {
	query := `SELECT id, uid, group_id, title, event_type, start_time, end_time, COALESCE(location, ''), call_time, reminder_sent_at
			  FROM event
			  WHERE reminder_sent_at IS NULL
				AND COALESCE(call_time, start_time) BETWEEN $1 AND $2
			  ORDER BY COALESCE(call_time, start_time), id`
	rows, err := s.getQueryer().Query(ctx, query, now, horizon)
	if err != nil {
		log.Errorf("Error fetching due events: %v", err)
		return nil, fmt.Errorf("fetching due events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var e event.Event
		err := rows.Scan(&e.Id, &e.Uid, &e.GroupId, &e.Title, &e.Type, &e.StartTime, &e.EndTime, &e.Location, &e.CallTime, &e.ReminderSentAt)
		if err != nil {
			return nil, fmt.Errorf("scanning due event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *StoreImpl) FindConfirmedAttendees(ctx context.Context, eventId int) ([]Attendee, error) {
	query := `SELECT u.id, u.display_name, u.email, u.timezone, COALESCE(np.preferences, '{}'::jsonb)
			  FROM event_assignment ea
			  JOIN event e ON e.id = ea.event_id
			  JOIN users u ON u.id = ea.user_id
			  LEFT JOIN notification_preferences np ON np.user_id = u.id AND np.group_id = e.group_id
			  WHERE ea.event_id = $1 AND ea.status = 'confirmed'
			  ORDER BY u.id`
	rows, err := s.getQueryer().Query(ctx, query, eventId)
	if err != nil {
		log.Errorf("Error fetching confirmed attendees: %v", err)
		return nil, fmt.Errorf("fetching confirmed attendees: %w", err)
	}
	defer rows.Close()

	var attendees []Attendee
	for rows.Next() {
		var a Attendee
		var prefsDoc []byte
		err := rows.Scan(&a.UserId, &a.DisplayName, &a.Email, &a.Timezone, &prefsDoc)
		if err != nil {
			return nil, fmt.Errorf("scanning attendee: %w", err)
		}
		if err := json.Unmarshal(prefsDoc, &a.Preferences); err != nil {
			return nil, fmt.Errorf("decoding attendee preferences: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (s *StoreImpl) MarkReminded(ctx context.Context, eventId int, at time.Time) error {
	_, err := s.getQueryer().Exec(ctx, "UPDATE event SET reminder_sent_at = $2 WHERE id = $1", eventId, at)
	if err != nil {
		log.Errorf("Error marking event %d as reminded: %v", eventId, err)
		return fmt.Errorf("marking event as reminded: %w", err)
	}
	return nil
}
