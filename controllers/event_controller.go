package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"eventfriend_server/auth"
	"eventfriend_server/services"
	"eventfriend_server/utils"
)

// EventController handles event listing, posting and attendance.
type EventController struct {
	EventService    *services.EventService
	InterestService *services.InterestService
}

func NewEventController(eventService *services.EventService, interestService *services.InterestService) *EventController {
	return &EventController{EventService: eventService, InterestService: interestService}
}

// ListEvents handles GET /api/events?category=&mine=
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	mine, _ := strconv.ParseBool(r.URL.Query().Get("mine"))
	filter := services.EventFilter{Category: r.URL.Query().Get("category"), Mine: mine}

	events, err := c.EventService.ListEvents(r.Context(), auth.FromContext(r.Context()), filter)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"events": events})
}

// GetEvent handles GET /api/events/{eventId}
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.EventService.GetEvent(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, event)
}

// CreateEvent handles POST /api/events
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req services.CreateEventRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	event, err := c.EventService.CreateEvent(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, event)
}

// AddInterest handles POST /api/events/{eventId}/interest
func (c *EventController) AddInterest(w http.ResponseWriter, r *http.Request) {
	event, err := c.EventService.AddEventInterest(r.Context(), auth.FromContext(r.Context()), mux.Vars(r)["eventId"])
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, event)
}

// RemoveInterest handles DELETE /api/events/{eventId}/interest
func (c *EventController) RemoveInterest(w http.ResponseWriter, r *http.Request) {
	result, err := c.InterestService.RemoveEventInterest(r.Context(), auth.FromContext(r.Context()), mux.Vars(r)["eventId"])
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// ListAttendees handles GET /api/events/{eventId}/attendees
func (c *EventController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := c.EventService.ListAttendees(r.Context(), auth.FromContext(r.Context()), mux.Vars(r)["eventId"])
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"attendees": attendees})
}
