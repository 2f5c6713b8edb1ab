package availability

import "time"

type RequestStatus string

const (
	RequestOpen   RequestStatus = "open"
	RequestClosed RequestStatus = "closed"
)

// Status is a member's answer for a single polled date.
type Status string

const (
	StatusAvailable    Status = "available"
	StatusMaybe        Status = "maybe"
	StatusNotAvailable Status = "not_available"
)

// Request is an availability poll sent to a group to pick a meeting date.
// Everything except Status is immutable after creation.
type Request struct {
	Id             int
	Uid            string
	GroupId        int
	Title          string
	DateRangeStart string // "2006-01-02"
	DateRangeEnd   string
	// RequestedDates are the polled dates, ordered, all within the range.
	RequestedDates []string
	// RequestedStartTime/EndTime are optional "15:04" wall-clock hints for
	// the eventual meeting; both set or both empty.
	RequestedStartTime string
	RequestedEndTime   string
	Status             RequestStatus
	CreatedById        int
	ExpiresAt          *time.Time
}

// Response is one user's answers to a request; one row per (request, user),
// replaced wholesale on each submission.
type Response struct {
	RequestId int
	UserId    int
	UserName  string
	Statuses  map[string]Status // date -> answer; missing date = no answer
}
