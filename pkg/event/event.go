package event

import "time"

type Type string

const (
	TypeRehearsal Type = "rehearsal"
	TypeShow      Type = "show"
	TypeOther     Type = "other"
)

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentConfirmed AssignmentStatus = "confirmed"
	AssignmentDeclined  AssignmentStatus = "declined"
)

// Event is a scheduled group activity. Times are UTC instants; rendering in a
// member's zone happens at the edges.
type Event struct {
	Id        int
	Uid       string
	GroupId   int
	Title     string
	Type      Type
	StartTime time.Time
	EndTime   time.Time
	Location  string
	// CallTime is when performers must arrive, before StartTime. Only shows
	// carry one.
	CallTime *time.Time
	// ReminderSentAt marks the event as already reminded. Null means the
	// reminder job still owes this event a dispatch.
	ReminderSentAt *time.Time
}

// EffectiveReminderTime is the instant a reminder anchors to: the call time
// when present, otherwise the start time.
func (e Event) EffectiveReminderTime() time.Time {
	if e.CallTime != nil {
		return *e.CallTime
	}
	return e.StartTime
}

// Assignment links a user to an event with a role. Only confirmed
// assignments receive reminders.
type Assignment struct {
	EventId int
	UserId  int
	Role    string
	Status  AssignmentStatus
}
