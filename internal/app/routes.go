package app

import (
	"github.com/callboard-app/callboard/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")

	// Groups
	r.HandleFunc("/api/group", deps.GroupHandler.CreateGroup).Methods("POST")
	r.HandleFunc("/api/group/{groupUid}", deps.GroupHandler.GetGroup).Methods("GET")
	r.HandleFunc("/api/group/{groupUid}/member", deps.GroupHandler.AddMember).Methods("POST")
	r.HandleFunc("/api/group/{groupUid}/member", deps.GroupHandler.ListMembers).Methods("GET")

	// Availability polls
	r.HandleFunc("/api/group/{groupUid}/availability", deps.AvailabilityHandler.CreateRequest).Methods("POST")
	r.HandleFunc("/api/group/{groupUid}/availability", deps.AvailabilityHandler.ListRequests).Methods("GET")
	r.HandleFunc("/api/availability/{requestUid}", deps.AvailabilityHandler.GetRequest).Methods("GET")
	r.HandleFunc("/api/availability/{requestUid}/status", deps.AvailabilityHandler.SetStatus).Methods("PATCH")
	r.HandleFunc("/api/availability/{requestUid}/response", deps.AvailabilityHandler.SubmitResponse).Methods("PUT")
	r.HandleFunc("/api/availability/{requestUid}/results", deps.AvailabilityHandler.Results).Methods("GET")

	// Events
	r.HandleFunc("/api/group/{groupUid}/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/group/{groupUid}/event", deps.EventHandler.ListEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/event/{eventUid}", deps.EventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventUid}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventUid}", deps.EventHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/event/{eventUid}/assignment", deps.EventHandler.SetAssignment).Methods("PUT")
	r.HandleFunc("/api/event/{eventUid}/assignment", deps.EventHandler.ListAssignments).Methods("GET")
	r.HandleFunc("/api/event/{eventUid}/local-times", deps.EventHandler.LocalTimes).Methods("GET")

	// Notification preferences
	r.HandleFunc("/api/group/{groupUid}/notifications", deps.NotificationHandler.GetPreferences).Methods("GET")
	r.HandleFunc("/api/group/{groupUid}/notifications", deps.NotificationHandler.UpdatePreferences).Methods("PUT")
}
