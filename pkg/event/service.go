package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/callboard-app/callboard/internal/event_bus"
	"github.com/callboard-app/callboard/pkg/group"
	"github.com/callboard-app/callboard/pkg/timezone"
	"github.com/callboard-app/callboard/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidTimeRange     = errors.New("event end time must be after start time")
	ErrInvalidCallTime      = errors.New("call time must be before start time")
	ErrCallTimeNotAShow     = errors.New("call time is only allowed for shows")
	ErrInvalidEventType     = errors.New("invalid event type")
	ErrInvalidAssignment    = errors.New("invalid assignment status")
	ErrNotAMember           = errors.New("user is not a member of the group")
	ErrUnknownEventTimezone = errors.New("cannot render event times")
)

// LocalTimes is an event's schedule rendered in one zone, used to prefill
// edit forms.
type LocalTimes struct {
	Start timezone.LocalParts
	End   timezone.LocalParts
	Call  *timezone.LocalParts
}

type Service interface {
	CreateEvent(ctx context.Context, groupUid string, event Event) (Event, error)
	GetEvent(ctx context.Context, eventUid string) (Event, error)
	ListGroupEvents(ctx context.Context, groupUid string, from time.Time, to time.Time) ([]Event, error)
	UpdateEvent(ctx context.Context, eventUid string, event Event) (Event, error)
	DeleteEvent(ctx context.Context, eventUid string) error
	SetOwnAssignment(ctx context.Context, eventUid string, role string, status AssignmentStatus) error
	ListAssignments(ctx context.Context, eventUid string) ([]Assignment, error)
	LocalTimes(ctx context.Context, eventUid string, zone string) (LocalTimes, error)
}

type ServiceImpl struct {
	repo      Repository
	groupRepo group.Repository
	bus       *event_bus.EventBus
}

func NewService(repo Repository, groupRepo group.Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, groupRepo: groupRepo, bus: bus}
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, groupUid string, event Event) (Event, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	g, err := s.groupRepo.GetGroupByUid(ctx, groupUid)
	if err != nil {
		return Event{}, err
	}
	isMember, err := s.groupRepo.IsMember(ctx, g.Id, currentUser.Id)
	if err != nil {
		return Event{}, err
	}
	if !isMember {
		return Event{}, ErrNotAMember
	}

	if err := validateEvent(event); err != nil {
		return Event{}, err
	}

	event.Uid = uuid.NewString()
	event.GroupId = g.Id
	event.ReminderSentAt = nil

	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}

	// The organizer is an attendee from the start.
	err = s.repo.UpsertAssignment(ctx, Assignment{
		EventId: created.Id,
		UserId:  currentUser.Id,
		Role:    "Organizer",
		Status:  AssignmentConfirmed,
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to assign organizer: %w", err)
	}

	err = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventScheduledType, event_bus.EventScheduled{
		EventId:   created.Id,
		EventUid:  created.Uid,
		GroupId:   created.GroupId,
		Title:     created.Title,
		EventType: string(created.Type),
		StartTime: created.StartTime,
		EndTime:   created.EndTime,
		Location:  created.Location,
		CallTime:  created.CallTime,
	}))
	if err != nil {
		log.Errorf("failed to publish event scheduled event: %v", err)
	}

	return created, nil
}

func validateEvent(event Event) error {
	switch event.Type {
	case TypeRehearsal, TypeShow, TypeOther:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEventType, event.Type)
	}
	if !event.EndTime.After(event.StartTime) {
		return ErrInvalidTimeRange
	}
	if event.CallTime != nil {
		if event.Type != TypeShow {
			return ErrCallTimeNotAShow
		}
		if !event.CallTime.Before(event.StartTime) {
			return ErrInvalidCallTime
		}
	}
	return nil
}

func (s *ServiceImpl) GetEvent(ctx context.Context, eventUid string) (Event, error) {
	return s.repo.GetEventByUid(ctx, eventUid)
}

func (s *ServiceImpl) ListGroupEvents(ctx context.Context, groupUid string, from time.Time, to time.Time) ([]Event, error) {
	g, err := s.groupRepo.GetGroupByUid(ctx, groupUid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListGroupEvents(ctx, g.Id, from, to)
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, eventUid string, event Event) (Event, error) {
	stored, err := s.repo.GetEventByUid(ctx, eventUid)
	if err != nil {
		return Event{}, err
	}
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}
	event.Id = stored.Id
	event.Uid = stored.Uid
	event.GroupId = stored.GroupId
	return s.repo.UpdateEvent(ctx, event)
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, eventUid string) error {
	stored, err := s.repo.GetEventByUid(ctx, eventUid)
	if err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, stored.Id)
}

func (s *ServiceImpl) SetOwnAssignment(ctx context.Context, eventUid string, role string, status AssignmentStatus) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	switch status {
	case AssignmentPending, AssignmentConfirmed, AssignmentDeclined:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAssignment, status)
	}
	stored, err := s.repo.GetEventByUid(ctx, eventUid)
	if err != nil {
		return err
	}
	isMember, err := s.groupRepo.IsMember(ctx, stored.GroupId, userId)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotAMember
	}
	return s.repo.UpsertAssignment(ctx, Assignment{
		EventId: stored.Id,
		UserId:  userId,
		Role:    role,
		Status:  status,
	})
}

func (s *ServiceImpl) ListAssignments(ctx context.Context, eventUid string) ([]Assignment, error) {
	stored, err := s.repo.GetEventByUid(ctx, eventUid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAssignments(ctx, stored.Id)
}

// LocalTimes renders the event's schedule in the given zone, defaulting to
// the current user's zone when none is given.
func (s *ServiceImpl) LocalTimes(ctx context.Context, eventUid string, zone string) (LocalTimes, error) {
	stored, err := s.repo.GetEventByUid(ctx, eventUid)
	if err != nil {
		return LocalTimes{}, err
	}
	if zone == "" {
		if currentUser, err := user.CurrentUser(ctx); err == nil {
			zone = currentUser.Timezone
		}
	}

	start, err := timezone.UTCToLocalParts(stored.StartTime, zone)
	if err != nil {
		return LocalTimes{}, fmt.Errorf("%w: %v", ErrUnknownEventTimezone, err)
	}
	end, err := timezone.UTCToLocalParts(stored.EndTime, zone)
	if err != nil {
		return LocalTimes{}, fmt.Errorf("%w: %v", ErrUnknownEventTimezone, err)
	}
	localTimes := LocalTimes{Start: start, End: end}
	if stored.CallTime != nil {
		call, err := timezone.UTCToLocalParts(*stored.CallTime, zone)
		if err != nil {
			return LocalTimes{}, fmt.Errorf("%w: %v", ErrUnknownEventTimezone, err)
		}
		localTimes.Call = &call
	}
	return localTimes, nil
}
