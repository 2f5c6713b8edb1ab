package event

import (
	"context"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu          sync.RWMutex
	events      map[int]Event
	assignments map[int][]Assignment // eventId -> assignments
	nextId      int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		events:      make(map[int]Event),
		assignments: make(map[int][]Assignment),
		nextId:      1,
	}
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(map[int]Event)
	r.assignments = make(map[int][]Assignment)
	r.nextId = 1
}

// SetReminderSentAt backfills the marker, standing in for a prior job run.
func (r *RepositoryStub) SetReminderSentAt(eventId int, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event := r.events[eventId]
	event.ReminderSentAt = &at
	r.events[eventId] = event
}

func (r *RepositoryStub) CreateEvent(ctx context.Context, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.Id = r.nextId
	r.nextId++
	r.events[event.Id] = event
	return event, nil
}

func (r *RepositoryStub) GetEventByUid(ctx context.Context, uid string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, event := range r.events {
		if event.Uid == uid {
			return event, nil
		}
	}
	return Event{}, ErrEventNotFound
}

func (r *RepositoryStub) ListGroupEvents(ctx context.Context, groupId int, from time.Time, to time.Time) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var events []Event
	for id := 1; id < r.nextId; id++ {
		event, ok := r.events[id]
		if !ok || event.GroupId != groupId {
			continue
		}
		if event.StartTime.Before(from) || event.StartTime.After(to) {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *RepositoryStub) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.Id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	// Mirrors the SQL: a changed start time clears the reminder marker.
	if stored.StartTime.Equal(event.StartTime) {
		event.ReminderSentAt = stored.ReminderSentAt
	} else {
		event.ReminderSentAt = nil
	}
	event.Uid = stored.Uid
	event.GroupId = stored.GroupId
	r.events[event.Id] = event
	return event, nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, id)
	delete(r.assignments, id)
	return nil
}

func (r *RepositoryStub) UpsertAssignment(ctx context.Context, assignment Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.assignments[assignment.EventId]
	for i, prev := range existing {
		if prev.UserId == assignment.UserId {
			existing[i] = assignment
			return nil
		}
	}
	r.assignments[assignment.EventId] = append(existing, assignment)
	return nil
}

func (r *RepositoryStub) ListAssignments(ctx context.Context, eventId int) ([]Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Assignment(nil), r.assignments[eventId]...), nil
}
