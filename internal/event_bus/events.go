package event_bus

import "time"

const (
	AvailabilityRequestOpenedType EventType = "availability_request.opened"
	EventScheduledType            EventType = "event.scheduled"
)

// AvailabilityRequestOpened is published when a new availability poll is
// created for a group, so members can be notified to respond.
type AvailabilityRequestOpened struct {
	RequestId      int
	RequestUid     string
	GroupId        int
	Title          string
	DateRangeStart string
	DateRangeEnd   string
	CreatedById    int
}

// EventScheduled is published when a new event is added to a group's calendar.
type EventScheduled struct {
	EventId   int
	EventUid  string
	GroupId   int
	Title     string
	EventType string
	StartTime time.Time
	EndTime   time.Time
	Location  string
	CallTime  *time.Time
}
