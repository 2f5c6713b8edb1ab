package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/callboard-app/callboard/internal/event_bus"
	"github.com/callboard-app/callboard/pkg/group"
	"github.com/callboard-app/callboard/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidDateRange    = errors.New("date range is invalid")
	ErrDateOutOfRange      = errors.New("requested date is outside the range")
	ErrIncompleteTimeRange = errors.New("requested start and end time must both be set or both be empty")
	ErrRequestClosed       = errors.New("availability request is closed")
	ErrInvalidStatus       = errors.New("invalid availability status")
	ErrUnknownDate         = errors.New("date was not requested in this poll")
)

const bestDatesCount = 3

// Results is the aggregated heatmap for one request.
type Results struct {
	Request Request
	Dates   []DateResult
	Best    []DateResult
}

type Service interface {
	CreateRequest(ctx context.Context, groupUid string, request Request) (Request, error)
	GetRequest(ctx context.Context, requestUid string) (Request, error)
	ListGroupRequests(ctx context.Context, groupUid string) ([]Request, error)
	SetStatus(ctx context.Context, requestUid string, status RequestStatus) (Request, error)
	SubmitResponse(ctx context.Context, requestUid string, statuses map[string]Status) error
	Results(ctx context.Context, requestUid string) (Results, error)
}

type ServiceImpl struct {
	repo      Repository
	groupRepo group.Repository
	bus       *event_bus.EventBus
}

func NewService(repo Repository, groupRepo group.Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, groupRepo: groupRepo, bus: bus}
}

func (s *ServiceImpl) CreateRequest(ctx context.Context, groupUid string, request Request) (Request, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("failed to get current user: %w", err)
	}
	g, err := s.groupRepo.GetGroupByUid(ctx, groupUid)
	if err != nil {
		return Request{}, err
	}

	if err := validateRequest(&request); err != nil {
		return Request{}, err
	}

	request.Uid = uuid.NewString()
	request.GroupId = g.Id
	request.Status = RequestOpen
	request.CreatedById = userId

	created, err := s.repo.CreateRequest(ctx, request)
	if err != nil {
		return Request{}, fmt.Errorf("failed to store availability request: %w", err)
	}

	err = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.AvailabilityRequestOpenedType, event_bus.AvailabilityRequestOpened{
		RequestId:      created.Id,
		RequestUid:     created.Uid,
		GroupId:        created.GroupId,
		Title:          created.Title,
		DateRangeStart: created.DateRangeStart,
		DateRangeEnd:   created.DateRangeEnd,
		CreatedById:    created.CreatedById,
	}))
	if err != nil {
		// Notification fan-out failures do not undo the stored request.
		log.Errorf("failed to publish availability request opened event: %v", err)
	}

	return created, nil
}

func validateRequest(request *Request) error {
	rangeStart, err := time.Parse("2006-01-02", request.DateRangeStart)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	rangeEnd, err := time.Parse("2006-01-02", request.DateRangeEnd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	if rangeEnd.Before(rangeStart) {
		return ErrInvalidDateRange
	}

	if len(request.RequestedDates) == 0 {
		return fmt.Errorf("%w: no dates requested", ErrInvalidDateRange)
	}
	seen := make(map[string]bool, len(request.RequestedDates))
	for _, dateStr := range request.RequestedDates {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDateOutOfRange, err)
		}
		if date.Before(rangeStart) || date.After(rangeEnd) {
			return fmt.Errorf("%w: %s", ErrDateOutOfRange, dateStr)
		}
		if seen[dateStr] {
			return fmt.Errorf("%w: duplicate date %s", ErrInvalidDateRange, dateStr)
		}
		seen[dateStr] = true
	}

	if (request.RequestedStartTime == "") != (request.RequestedEndTime == "") {
		return ErrIncompleteTimeRange
	}
	if request.RequestedStartTime != "" {
		if _, err := time.Parse("15:04", request.RequestedStartTime); err != nil {
			return fmt.Errorf("%w: %v", ErrIncompleteTimeRange, err)
		}
		if _, err := time.Parse("15:04", request.RequestedEndTime); err != nil {
			return fmt.Errorf("%w: %v", ErrIncompleteTimeRange, err)
		}
	}
	return nil
}

func (s *ServiceImpl) GetRequest(ctx context.Context, requestUid string) (Request, error) {
	return s.repo.GetRequestByUid(ctx, requestUid)
}

func (s *ServiceImpl) ListGroupRequests(ctx context.Context, groupUid string) ([]Request, error) {
	g, err := s.groupRepo.GetGroupByUid(ctx, groupUid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListGroupRequests(ctx, g.Id)
}

func (s *ServiceImpl) SetStatus(ctx context.Context, requestUid string, status RequestStatus) (Request, error) {
	if status != RequestOpen && status != RequestClosed {
		return Request{}, ErrInvalidStatus
	}
	request, err := s.repo.GetRequestByUid(ctx, requestUid)
	if err != nil {
		return Request{}, err
	}
	if err := s.repo.SetStatus(ctx, request.Id, status); err != nil {
		return Request{}, err
	}
	request.Status = status
	return request, nil
}

func (s *ServiceImpl) SubmitResponse(ctx context.Context, requestUid string, statuses map[string]Status) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	request, err := s.repo.GetRequestByUid(ctx, requestUid)
	if err != nil {
		return err
	}
	if request.Status != RequestOpen {
		return ErrRequestClosed
	}

	requested := make(map[string]bool, len(request.RequestedDates))
	for _, date := range request.RequestedDates {
		requested[date] = true
	}
	for date, status := range statuses {
		if !requested[date] {
			return fmt.Errorf("%w: %s", ErrUnknownDate, date)
		}
		switch status {
		case StatusAvailable, StatusMaybe, StatusNotAvailable, "":
		default:
			return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
	}

	return s.repo.UpsertResponse(ctx, Response{
		RequestId: request.Id,
		UserId:    userId,
		Statuses:  statuses,
	})
}

// Results aggregates all submitted responses into the per-date heatmap.
// Recomputed on every call; nothing is cached.
func (s *ServiceImpl) Results(ctx context.Context, requestUid string) (Results, error) {
	request, err := s.repo.GetRequestByUid(ctx, requestUid)
	if err != nil {
		return Results{}, err
	}
	responses, err := s.repo.ListResponses(ctx, request.Id)
	if err != nil {
		return Results{}, err
	}
	members, err := s.groupRepo.ListMembers(ctx, request.GroupId)
	if err != nil {
		return Results{}, err
	}

	// Responses scan in member order; answers from users no longer in the
	// group are appended so stale memberships stay visible in the tallies.
	byUser := make(map[int]Response, len(responses))
	for _, response := range responses {
		byUser[response.UserId] = response
	}
	summaries := make([]ResponseSummary, 0, len(responses))
	for _, member := range members {
		if response, ok := byUser[member.UserId]; ok {
			summaries = append(summaries, ResponseSummary{UserName: member.DisplayName, Statuses: response.Statuses})
			delete(byUser, member.UserId)
		}
	}
	for _, response := range responses {
		if _, stale := byUser[response.UserId]; stale {
			summaries = append(summaries, ResponseSummary{UserName: response.UserName, Statuses: response.Statuses})
		}
	}

	dateResults := Aggregate(request.RequestedDates, summaries, len(members))
	return Results{
		Request: request,
		Dates:   dateResults,
		Best:    BestDates(dateResults, bestDatesCount),
	}, nil
}
