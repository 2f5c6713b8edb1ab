package group

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/callboard-app/callboard/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type GroupDTO struct {
	Uid  string `json:"uid,omitempty"`
	Name string `json:"name"`
}

type MemberDTO struct {
	UserId      int    `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateGroup godoc
// @Summary Create a group with the current user as its first member
// @Tags Group
// @Accept json
// @Produce json
// @Param group body GroupDTO true "Group"
// @Success 201 {object} GroupDTO
// @Router /api/group [post]
// @Security XUserId
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto GroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if dto.Name == "" {
		writeError(w, http.StatusBadRequest, "Group name is required", "")
		return
	}

	created, err := h.service.CreateGroup(r.Context(), dto.Name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(GroupDTO{Uid: created.Uid, Name: created.Name}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetGroup godoc
// @Summary Get a group
// @Tags Group
// @Produce json
// @Param groupUid path string true "Group UID"
// @Success 200 {object} GroupDTO
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/group/{groupUid} [get]
// @Security XUserId
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groupUid := mux.Vars(r)["groupUid"]

	g, err := h.service.GetGroup(r.Context(), groupUid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(GroupDTO{Uid: g.Uid, Name: g.Name}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// AddMember godoc
// @Summary Add a member to a group
// @Tags Group
// @Accept json
// @Param groupUid path string true "Group UID"
// @Param member body MemberDTO true "Member"
// @Success 204
// @Router /api/group/{groupUid}/member [post]
// @Security XUserId
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupUid := mux.Vars(r)["groupUid"]

	var dto MemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if dto.Role == "" {
		dto.Role = "member"
	}

	if err := h.service.AddMember(r.Context(), groupUid, dto.UserId, dto.Role); err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers godoc
// @Summary List a group's members in joining order
// @Tags Group
// @Produce json
// @Param groupUid path string true "Group UID"
// @Success 200 {array} MemberDTO
// @Router /api/group/{groupUid}/member [get]
// @Security XUserId
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groupUid := mux.Vars(r)["groupUid"]

	members, err := h.service.ListMembers(r.Context(), groupUid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, MemberDTO{UserId: m.UserId, DisplayName: m.DisplayName, Role: m.Role})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, ErrNotAMember):
		writeError(w, http.StatusForbidden, err.Error(), "")
	default:
		log.Errorf("group handler error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func writeError(w http.ResponseWriter, status int, message string, details string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}
