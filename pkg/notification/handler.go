package notification

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/callboard-app/callboard/internal/rest"
	"github.com/callboard-app/callboard/pkg/group"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetPreferences godoc
// @Summary Get the current user's notification preferences for a group
// @Tags Notification
// @Produce json
// @Param groupUid path string true "Group UID"
// @Success 200 {object} Preferences
// @Failure 404 {object} rest.ErrorResponse "Group not found"
// @Router /api/group/{groupUid}/notifications [get]
// @Security XUserId
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groupUid := mux.Vars(r)["groupUid"]

	prefs, err := h.service.GetPreferences(r.Context(), groupUid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(prefs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdatePreferences godoc
// @Summary Replace the current user's notification preferences for a group
// @Tags Notification
// @Accept json
// @Produce json
// @Param groupUid path string true "Group UID"
// @Param preferences body Preferences true "Preferences"
// @Success 200 {object} Preferences
// @Failure 400 {object} rest.ErrorResponse "Invalid preferences"
// @Router /api/group/{groupUid}/notifications [put]
// @Security XUserId
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groupUid := mux.Vars(r)["groupUid"]

	var prefs Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	saved, err := h.service.UpdatePreferences(r.Context(), groupUid, prefs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(saved); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, group.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, ErrNotAMember):
		writeError(w, http.StatusForbidden, err.Error(), "")
	default:
		log.Errorf("notification handler error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func writeError(w http.ResponseWriter, status int, message string, details string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}
