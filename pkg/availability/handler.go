package availability

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

type RequestDTO struct {
	Uid                string   `json:"uid,omitempty"`
	Title              string   `json:"title"`
	DateRangeStart     string   `json:"dateRangeStart"`
	DateRangeEnd       string   `json:"dateRangeEnd"`
	RequestedDates     []string `json:"requestedDates"`
	RequestedStartTime string   `json:"requestedStartTime,omitempty"`
	RequestedEndTime   string   `json:"requestedEndTime,omitempty"`
	Status             string   `json:"status,omitempty"`
	ExpiresAt          string   `json:"expiresAt,omitempty"`
}

type ResponseDTO struct {
	Statuses map[string]Status `json:"statuses"`
}

type StatusDTO struct {
	Status string `json:"status"`
}

type ResultsDTO struct {
	Request RequestDTO   `json:"request"`
	Dates   []DateResult `json:"dates"`
	Best    []DateResult `json:"bestDates"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateRequest godoc
// @Summary Create an availability request
// @Description Open a new availability poll for a group
// @Tags Availability
// @Accept json
// @Produce json
// @Param groupUid path string true "Group UID"
// @Param request body RequestDTO true "Availability request"
// @Success 201 {object} RequestDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/group/{groupUid}/availability [post]
// @Security XUserId
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groupUid := mux.Vars(r)["groupUid"]

	var dto RequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	request, err := fromDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expiration timestamp", "expiresAt must be in RFC3339 format")
		return
	}

	created, err := h.service.CreateRequest(r.Context(), groupUid, request)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toRequestDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListRequests godoc
// @Summary List a group's availability requests
// @Tags Availability
// @Produce json
// @Param groupUid path string true "Group UID"
// @Success 200 {array} RequestDTO
// @Router /api/group/{groupUid}/availability [get]
// @Security XUserId
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groupUid := mux.Vars(r)["groupUid"]

	requests, err := h.service.ListGroupRequests(r.Context(), groupUid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]RequestDTO, 0, len(requests))
	for _, request := range requests {
		dtos = append(dtos, toRequestDTO(request))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetRequest godoc
// @Summary Get an availability request
// @Tags Availability
// @Produce json
// @Param requestUid path string true "Request UID"
// @Success 200 {object} RequestDTO
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/availability/{requestUid} [get]
// @Security XUserId
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	requestUid := mux.Vars(r)["requestUid"]

	request, err := h.service.GetRequest(r.Context(), requestUid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(toRequestDTO(request)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetStatus godoc
// @Summary Open or close an availability request
// @Tags Availability
// @Accept json
// @Produce json
// @Param requestUid path string true "Request UID"
// @Param status body StatusDTO true "New status"
// @Success 200 {object} RequestDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid status"
// @Router /api/availability/{requestUid}/status [patch]
// @Security XUserId
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	requestUid := mux.Vars(r)["requestUid"]

	var dto StatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	updated, err := h.service.SetStatus(r.Context(), requestUid, RequestStatus(dto.Status))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(toRequestDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SubmitResponse godoc
// @Summary Submit or replace the current user's availability answers
// @Tags Availability
// @Accept json
// @Param requestUid path string true "Request UID"
// @Param response body ResponseDTO true "Per-date answers"
// @Success 204
// @Failure 400 {object} rest.ErrorResponse "Invalid response"
// @Router /api/availability/{requestUid}/response [put]
// @Security XUserId
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	requestUid := mux.Vars(r)["requestUid"]

	var dto ResponseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	if err := h.service.SubmitResponse(r.Context(), requestUid, dto.Statuses); err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Results godoc
// @Summary Get aggregated availability results
// @Description The per-date heatmap with counts, scores, and respondents
// @Tags Availability
// @Produce json
// @Param requestUid path string true "Request UID"
// @Success 200 {object} ResultsDTO
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/availability/{requestUid}/results [get]
// @Security XUserId
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	requestUid := mux.Vars(r)["requestUid"]

	results, err := h.service.Results(r.Context(), requestUid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto := ResultsDTO{
		Request: toRequestDTO(results.Request),
		Dates:   results.Dates,
		Best:    results.Best,
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRequestNotFound), errors.Is(err, group.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrDateOutOfRange),
		errors.Is(err, ErrIncompleteTimeRange),
		errors.Is(err, ErrRequestClosed),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrUnknownDate):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		log.Errorf("availability handler error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func writeError(w http.ResponseWriter, status int, message string, details string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}

func fromDTO(dto RequestDTO) (Request, error) {
	request := Request{
		Title:              dto.Title,
		DateRangeStart:     dto.DateRangeStart,
		DateRangeEnd:       dto.DateRangeEnd,
		RequestedDates:     dto.RequestedDates,
		RequestedStartTime: dto.RequestedStartTime,
		RequestedEndTime:   dto.RequestedEndTime,
	}
	if dto.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, dto.ExpiresAt)
		if err != nil {
			return Request{}, err
		}
		request.ExpiresAt = &expiresAt
	}
	return request, nil
}

func toRequestDTO(request Request) RequestDTO {
	dto := RequestDTO{
		Uid:                request.Uid,
		Title:              request.Title,
		DateRangeStart:     request.DateRangeStart,
		DateRangeEnd:       request.DateRangeEnd,
		RequestedDates:     request.RequestedDates,
		RequestedStartTime: request.RequestedStartTime,
		RequestedEndTime:   request.RequestedEndTime,
		Status:             string(request.Status),
	}
	if request.ExpiresAt != nil {
		dto.ExpiresAt = request.ExpiresAt.Format(time.RFC3339)
	}
	return dto
}
