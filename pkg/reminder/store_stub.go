package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/callboard-app/callboard/pkg/event"
)

// StoreStub keeps events in memory and simulates the transactional
// semantics of the real store: mutations made during WithTransaction are
// discarded when the callback returns an error.
type StoreStub struct {
	mu        sync.Mutex
	events    map[int]event.Event
	attendees map[int][]Attendee

	lockHeld    bool
	markErr     error
	inTx        bool
	markedInTx  map[int]time.Time
	Commits     int
	Rollbacks   int
	LockQueries int
}

func NewStoreStub() *StoreStub {
	return &StoreStub{
		events:    make(map[int]event.Event),
		attendees: make(map[int][]Attendee),
	}
}

func (s *StoreStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[int]event.Event)
	s.attendees = make(map[int][]Attendee)
	s.lockHeld = false
	s.markErr = nil
	s.Commits = 0
	s.Rollbacks = 0
	s.LockQueries = 0
}

func (s *StoreStub) AddEvent(e event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.Id] = e
}

func (s *StoreStub) SetAttendees(eventId int, attendees []Attendee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendees[eventId] = append([]Attendee(nil), attendees...)
}

// HoldLock makes subsequent lock attempts fail, as if another replica's
// tick were in flight.
func (s *StoreStub) HoldLock(held bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockHeld = held
}

// FailMarkReminded makes MarkReminded return the given error.
func (s *StoreStub) FailMarkReminded(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markErr = err
}

func (s *StoreStub) Event(id int) event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

func (s *StoreStub) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	s.inTx = true
	s.markedInTx = make(map[int]time.Time)
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = false
	if err != nil {
		s.Rollbacks++
		s.markedInTx = nil
		return err
	}
	for id, at := range s.markedInTx {
		e := s.events[id]
		sentAt := at
		e.ReminderSentAt = &sentAt
		s.events[id] = e
	}
	s.markedInTx = nil
	s.Commits++
	return nil
}

func (s *StoreStub) TryAcquireJobLock(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inTx {
		return false, errNoTransaction
	}
	s.LockQueries++
	return !s.lockHeld, nil
}

func (s *StoreStub) FindDueEvents(ctx context.Context, now time.Time, horizon time.Time) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []event.Event
	for _, e := range s.events {
		if e.ReminderSentAt != nil {
			continue
		}
		effective := e.EffectiveReminderTime()
		if !effective.Before(now) && !effective.After(horizon) {
			due = append(due, e)
		}
	}
	// map iteration order is random; callers expect a stable order
	for i := 1; i < len(due); i++ {
		for j := i; j > 0 && due[j].EffectiveReminderTime().Before(due[j-1].EffectiveReminderTime()); j-- {
			due[j], due[j-1] = due[j-1], due[j]
		}
	}
	return due, nil
}

func (s *StoreStub) FindConfirmedAttendees(ctx context.Context, eventId int) ([]Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Attendee(nil), s.attendees[eventId]...), nil
}

func (s *StoreStub) MarkReminded(ctx context.Context, eventId int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	s.markedInTx[eventId] = at
	return nil
}
