package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/callboard-app/callboard/internal/rest"
	"github.com/callboard-app/callboard/pkg/group"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	Uid       string `json:"uid,omitempty"`
	Title     string `json:"title"`
	EventType string `json:"eventType"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location,omitempty"`
	CallTime  string `json:"callTime,omitempty"`
}

type AssignmentDTO struct {
	UserId int    `json:"userId,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type LocalTimesDTO struct {
	StartDate string `json:"startDate"`
	StartTime string `json:"startTime"`
	EndDate   string `json:"endDate"`
	EndTime   string `json:"endTime"`
	CallDate  string `json:"callDate,omitempty"`
	CallTime  string `json:"callTime,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateEvent godoc
// @Summary Schedule a new event
// @Tags Event
// @Accept json
// @Produce json
// @Param groupUid path string true "Group UID"
// @Param event body EventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Router /api/group/{groupUid}/event [post]
// @Security XUserId
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groupUid := mux.Vars(r)["groupUid"]

	event, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateEvent(r.Context(), groupUid, event)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toEventDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListEvents godoc
// @Summary List a group's events in a time range
// @Tags Event
// @Produce json
// @Param groupUid path string true "Group UID"
// @Param from query string true "Range start in RFC3339 format"
// @Param to query string true "Range end in RFC3339 format"
// @Success 200 {array} EventDTO
// @Router /api/group/{groupUid}/event [get]
// @Security XUserId
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groupUid := mux.Vars(r)["groupUid"]

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Incorrect date format", "from must be in RFC3339 format")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Incorrect date format", "to must be in RFC3339 format")
		return
	}

	events, err := h.service.ListGroupEvents(r.Context(), groupUid, from, to)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetEvent godoc
// @Summary Get an event
// @Tags Event
// @Produce json
// @Param eventUid path string true "Event UID"
// @Success 200 {object} EventDTO
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/event/{eventUid} [get]
// @Security XUserId
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventUid := mux.Vars(r)["eventUid"]

	event, err := h.service.GetEvent(r.Context(), eventUid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(toEventDTO(event)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Rescheduling the start time makes the event eligible for a fresh reminder
// @Tags Event
// @Accept json
// @Produce json
// @Param eventUid path string true "Event UID"
// @Param event body EventDTO true "Event"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Router /api/event/{eventUid} [put]
// @Security XUserId
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventUid := mux.Vars(r)["eventUid"]

	event, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}

	updated, err := h.service.UpdateEvent(r.Context(), eventUid, event)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(toEventDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Event
// @Param eventUid path string true "Event UID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/event/{eventUid} [delete]
// @Security XUserId
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventUid := mux.Vars(r)["eventUid"]

	if err := h.service.DeleteEvent(r.Context(), eventUid); err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetAssignment godoc
// @Summary Set the current user's attendance for an event
// @Tags Event
// @Accept json
// @Param eventUid path string true "Event UID"
// @Param assignment body AssignmentDTO true "Assignment"
// @Success 204
// @Failure 400 {object} rest.ErrorResponse "Invalid assignment"
// @Router /api/event/{eventUid}/assignment [put]
// @Security XUserId
func (h *Handler) SetAssignment(w http.ResponseWriter, r *http.Request) {
	eventUid := mux.Vars(r)["eventUid"]

	var dto AssignmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	err := h.service.SetOwnAssignment(r.Context(), eventUid, dto.Role, AssignmentStatus(dto.Status))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAssignments godoc
// @Summary List attendance statuses for an event
// @Tags Event
// @Produce json
// @Param eventUid path string true "Event UID"
// @Success 200 {array} AssignmentDTO
// @Router /api/event/{eventUid}/assignment [get]
// @Security XUserId
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventUid := mux.Vars(r)["eventUid"]

	assignments, err := h.service.ListAssignments(r.Context(), eventUid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]AssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		dtos = append(dtos, AssignmentDTO{UserId: a.UserId, Role: a.Role, Status: string(a.Status)})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// LocalTimes godoc
// @Summary Get event times rendered in a zone
// @Description Prefills edit forms with the wall-clock values for the given zone
// @Tags Event
// @Produce json
// @Param eventUid path string true "Event UID"
// @Param timezone query string false "IANA timezone; defaults to the current user's"
// @Success 200 {object} LocalTimesDTO
// @Failure 400 {object} rest.ErrorResponse "Unknown timezone"
// @Router /api/event/{eventUid}/local-times [get]
// @Security XUserId
func (h *Handler) LocalTimes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventUid := mux.Vars(r)["eventUid"]
	zone := r.URL.Query().Get("timezone")

	localTimes, err := h.service.LocalTimes(r.Context(), eventUid, zone)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto := LocalTimesDTO{
		StartDate: localTimes.Start.Date,
		StartTime: localTimes.Start.Time,
		EndDate:   localTimes.End.Date,
		EndTime:   localTimes.End.Time,
	}
	if localTimes.Call != nil {
		dto.CallDate = localTimes.Call.Date
		dto.CallTime = localTimes.Call.Time
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) decodeEvent(w http.ResponseWriter, r *http.Request) (Event, bool) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return Event{}, false
	}
	event, err := fromEventDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Incorrect date format", "startTime, endTime, and callTime must be in RFC3339 format")
		return Event{}, false
	}
	return event, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound), errors.Is(err, group.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, ErrNotAMember):
		writeError(w, http.StatusForbidden, err.Error(), "")
	case errors.Is(err, ErrInvalidTimeRange),
		errors.Is(err, ErrInvalidCallTime),
		errors.Is(err, ErrCallTimeNotAShow),
		errors.Is(err, ErrInvalidEventType),
		errors.Is(err, ErrInvalidAssignment),
		errors.Is(err, ErrUnknownEventTimezone):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		log.Errorf("event handler error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func writeError(w http.ResponseWriter, status int, message string, details string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}

func fromEventDTO(dto EventDTO) (Event, error) {
	start, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		return Event{}, err
	}
	end, err := time.Parse(time.RFC3339, dto.EndTime)
	if err != nil {
		return Event{}, err
	}
	event := Event{
		Title:     dto.Title,
		Type:      Type(dto.EventType),
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Location:  dto.Location,
	}
	if dto.CallTime != "" {
		call, err := time.Parse(time.RFC3339, dto.CallTime)
		if err != nil {
			return Event{}, err
		}
		callUTC := call.UTC()
		event.CallTime = &callUTC
	}
	return event, nil
}

func toEventDTO(event Event) EventDTO {
	dto := EventDTO{
		Uid:       event.Uid,
		Title:     event.Title,
		EventType: string(event.Type),
		StartTime: event.StartTime.UTC().Format(time.RFC3339),
		EndTime:   event.EndTime.UTC().Format(time.RFC3339),
		Location:  event.Location,
	}
	if event.CallTime != nil {
		dto.CallTime = event.CallTime.UTC().Format(time.RFC3339)
	}
	return dto
}
