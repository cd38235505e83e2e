package routes

import (
	"eventfriend_server/controllers"
	"eventfriend_server/services"

	"github.com/gorilla/mux"
)

// RegisterEventRoutes sets up routes for events under /api/events
func RegisterEventRoutes(r *mux.Router, eventService *services.EventService, interestService *services.InterestService, requireAuth mux.MiddlewareFunc) {
	controller := controllers.NewEventController(eventService, interestService)

	eventRouter := r.PathPrefix("/api/events").Subrouter()
	eventRouter.Use(requireAuth)

	eventRouter.HandleFunc("", controller.ListEvents).Methods("GET")
	eventRouter.HandleFunc("", controller.CreateEvent).Methods("POST")
	eventRouter.HandleFunc("/{eventId}", controller.GetEvent).Methods("GET")
	eventRouter.HandleFunc("/{eventId}/interest", controller.AddInterest).Methods("POST")
	eventRouter.HandleFunc("/{eventId}/interest", controller.RemoveInterest).Methods("DELETE")
	eventRouter.HandleFunc("/{eventId}/attendees", controller.ListAttendees).Methods("GET")
}
