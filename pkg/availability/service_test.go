package availability

import (
	"context"
	"testing"

	"github.com/callboard-app/callboard/internal/event_bus"
	"github.com/callboard-app/callboard/pkg/group"
	"github.com/callboard-app/callboard/pkg/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.WithValue(context.Background(), user.UserKey, user.User{
	Id:          10,
	Uid:         uuid.NewString(),
	Username:    "test-user-1",
	DisplayName: "Test User 1",
	Email:       "test1@example.com",
	Timezone:    "Europe/Warsaw",
})

var repoStub = NewRepositoryStub()
var groupStub = group.NewRepositoryStub()

var service Service

func setup(t *testing.T) func() {
	bus := event_bus.NewEventBus()
	service = NewService(repoStub, groupStub, bus)
	return func() {
		t.Log("Teardown after test")
		repoStub.Reset()
		groupStub.Reset()
	}
}

func setupGroup(t *testing.T) group.Group {
	t.Helper()
	g, err := groupStub.CreateGroup(ctx, group.Group{Uid: uuid.NewString(), Name: "The Ensemble"})
	require.NoError(t, err)
	groupStub.SetMembers(g.Id, []group.Member{
		{UserId: 10, DisplayName: "Test User 1", Email: "test1@example.com", Timezone: "Europe/Warsaw"},
		{UserId: 11, DisplayName: "Test User 2", Email: "test2@example.com", Timezone: "America/New_York"},
		{UserId: 12, DisplayName: "Test User 3", Email: "test3@example.com"},
	})
	return g
}

func validRequest() Request {
	return Request{
		Title:          "Spring rehearsal",
		DateRangeStart: "2025-05-01",
		DateRangeEnd:   "2025-05-31",
		RequestedDates: []string{"2025-05-10", "2025-05-11", "2025-05-17"},
	}
}

func TestServiceImpl_CreateRequest(t *testing.T) {
	t.Run("creates an open request with a generated uid", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)

		created, err := service.CreateRequest(ctx, g.Uid, validRequest())

		require.NoError(t, err)
		assert.NotEmpty(t, created.Uid)
		assert.Equal(t, RequestOpen, created.Status)
		assert.Equal(t, g.Id, created.GroupId)
		assert.Equal(t, 10, created.CreatedById)
	})

	t.Run("rejects a date outside the range", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)

		request := validRequest()
		request.RequestedDates = append(request.RequestedDates, "2025-06-01")

		_, err := service.CreateRequest(ctx, g.Uid, request)

		assert.ErrorIs(t, err, ErrDateOutOfRange)
	})

	t.Run("rejects an inverted date range", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)

		request := validRequest()
		request.DateRangeStart, request.DateRangeEnd = request.DateRangeEnd, request.DateRangeStart

		_, err := service.CreateRequest(ctx, g.Uid, request)

		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("rejects a start time without an end time", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)

		request := validRequest()
		request.RequestedStartTime = "19:00"

		_, err := service.CreateRequest(ctx, g.Uid, request)

		assert.ErrorIs(t, err, ErrIncompleteTimeRange)
	})

	t.Run("accepts both times together", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)

		request := validRequest()
		request.RequestedStartTime = "19:00"
		request.RequestedEndTime = "22:00"

		_, err := service.CreateRequest(ctx, g.Uid, request)

		require.NoError(t, err)
	})

	t.Run("publishes a request opened event", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)

		bus := event_bus.NewEventBus()
		service = NewService(repoStub, groupStub, bus)

		var received []event_bus.AvailabilityRequestOpened
		event_bus.SubscribeTyped(bus, event_bus.AvailabilityRequestOpenedType,
			func(e event_bus.EventT[event_bus.AvailabilityRequestOpened]) error {
				received = append(received, e.Data)
				return nil
			})

		created, err := service.CreateRequest(ctx, g.Uid, validRequest())

		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, created.Id, received[0].RequestId)
		assert.Equal(t, g.Id, received[0].GroupId)
	})
}

func TestServiceImpl_SubmitResponse(t *testing.T) {
	t.Run("stores a valid response", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)
		created, err := service.CreateRequest(ctx, g.Uid, validRequest())
		require.NoError(t, err)

		err = service.SubmitResponse(ctx, created.Uid, map[string]Status{
			"2025-05-10": StatusAvailable,
			"2025-05-11": StatusMaybe,
		})

		require.NoError(t, err)
		responses, err := repoStub.ListResponses(ctx, created.Id)
		require.NoError(t, err)
		require.Len(t, responses, 1)
		assert.Equal(t, StatusAvailable, responses[0].Statuses["2025-05-10"])
	})

	t.Run("last submission wins", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)
		created, err := service.CreateRequest(ctx, g.Uid, validRequest())
		require.NoError(t, err)

		require.NoError(t, service.SubmitResponse(ctx, created.Uid, map[string]Status{
			"2025-05-10": StatusAvailable,
			"2025-05-11": StatusAvailable,
		}))
		require.NoError(t, service.SubmitResponse(ctx, created.Uid, map[string]Status{
			"2025-05-10": StatusNotAvailable,
		}))

		responses, err := repoStub.ListResponses(ctx, created.Id)
		require.NoError(t, err)
		require.Len(t, responses, 1)
		assert.Equal(t, StatusNotAvailable, responses[0].Statuses["2025-05-10"])
		_, answered := responses[0].Statuses["2025-05-11"]
		assert.False(t, answered, "previous answers are replaced, not merged")
	})

	t.Run("rejects answers for dates not polled", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)
		created, err := service.CreateRequest(ctx, g.Uid, validRequest())
		require.NoError(t, err)

		err = service.SubmitResponse(ctx, created.Uid, map[string]Status{"2025-05-20": StatusAvailable})

		assert.ErrorIs(t, err, ErrUnknownDate)
	})

	t.Run("rejects responses to a closed request", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)
		created, err := service.CreateRequest(ctx, g.Uid, validRequest())
		require.NoError(t, err)
		_, err = service.SetStatus(ctx, created.Uid, RequestClosed)
		require.NoError(t, err)

		err = service.SubmitResponse(ctx, created.Uid, map[string]Status{"2025-05-10": StatusAvailable})

		assert.ErrorIs(t, err, ErrRequestClosed)
	})
}

func TestServiceImpl_Results(t *testing.T) {
	t.Run("aggregates responses in member order", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)
		created, err := service.CreateRequest(ctx, g.Uid, validRequest())
		require.NoError(t, err)

		repoStub.SetUserName(10, "Test User 1")
		repoStub.SetUserName(11, "Test User 2")
		// User 11 submits first, user 10 second; results still scan in
		// member order.
		require.NoError(t, repoStub.UpsertResponse(ctx, Response{
			RequestId: created.Id, UserId: 11,
			Statuses: map[string]Status{"2025-05-10": StatusMaybe},
		}))
		require.NoError(t, repoStub.UpsertResponse(ctx, Response{
			RequestId: created.Id, UserId: 10,
			Statuses: map[string]Status{"2025-05-10": StatusAvailable, "2025-05-11": StatusAvailable},
		}))

		results, err := service.Results(ctx, created.Uid)

		require.NoError(t, err)
		require.Len(t, results.Dates, 3)
		assert.Equal(t, "2025-05-10", results.Dates[0].Date)
		assert.Equal(t, 1, results.Dates[0].Available)
		assert.Equal(t, 1, results.Dates[0].Maybe)
		assert.Equal(t, 1, results.Dates[0].NoResponse)
		assert.Equal(t, 3, results.Dates[0].Total)
		assert.Equal(t, 3, results.Dates[0].Score)
		require.Len(t, results.Dates[0].Respondents, 2)
		assert.Equal(t, "Test User 1", results.Dates[0].Respondents[0].UserName)
		assert.Equal(t, "Test User 2", results.Dates[0].Respondents[1].UserName)
	})

	t.Run("ranks best dates by score with earliest-date tie-break", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)
		created, err := service.CreateRequest(ctx, g.Uid, validRequest())
		require.NoError(t, err)

		repoStub.SetUserName(10, "Test User 1")
		require.NoError(t, repoStub.UpsertResponse(ctx, Response{
			RequestId: created.Id, UserId: 10,
			Statuses: map[string]Status{
				"2025-05-11": StatusAvailable,
				"2025-05-10": StatusMaybe,
				"2025-05-17": StatusMaybe,
			},
		}))

		results, err := service.Results(ctx, created.Uid)

		require.NoError(t, err)
		require.NotEmpty(t, results.Best)
		assert.Equal(t, "2025-05-11", results.Best[0].Date)
		// 05-10 and 05-17 tie on score; the earlier date ranks higher.
		assert.Equal(t, "2025-05-10", results.Best[1].Date)
	})

	t.Run("keeps answers from users who left the group", func(t *testing.T) {
		defer setup(t)()
		g := setupGroup(t)
		created, err := service.CreateRequest(ctx, g.Uid, validRequest())
		require.NoError(t, err)

		repoStub.SetUserName(99, "Former Member")
		require.NoError(t, repoStub.UpsertResponse(ctx, Response{
			RequestId: created.Id, UserId: 99,
			Statuses: map[string]Status{"2025-05-10": StatusAvailable},
		}))

		results, err := service.Results(ctx, created.Uid)

		require.NoError(t, err)
		assert.Equal(t, 1, results.Dates[0].Available)
		require.Len(t, results.Dates[0].Respondents, 1)
		assert.Equal(t, "Former Member", results.Dates[0].Respondents[0].UserName)
	})
}
