package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventfriend_server/auth"
	"eventfriend_server/models"
	"eventfriend_server/storage"
)

// EventService lists, posts and joins events.
type EventService struct {
	Store storage.Store
	now   func() time.Time
}

func NewEventService(store storage.Store) *EventService {
	return &EventService{Store: store, now: time.Now}
}

// CreateEventRequest is the body of a user "Post" action.
type CreateEventRequest struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Location  string `json:"location"`
	Category  string `json:"category,omitempty"`
	MaxPeople int    `json:"maxPeople,omitempty"`
}

// Attendee is another user interested in an event.
type Attendee struct {
	*models.User
	// AlreadyInterested is true when the viewer has shown interest in this
	// attendee for the event.
	AlreadyInterested bool `json:"alreadyInterested"`
}

// EventFilter narrows ListEvents.
type EventFilter struct {
	Category string
	// Mine keeps only events the caller is interested in.
	Mine bool
}

// ListEvents returns events ordered by id.
func (s *EventService) ListEvents(ctx context.Context, sess auth.Session, filter EventFilter) ([]models.Event, error) {
	if filter.Mine && !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if filter.Category != "" && !models.IsCategory(filter.Category) {
		return nil, invalid(fmt.Sprintf("unknown category %q", filter.Category))
	}

	events, err := s.Store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	out := make([]models.Event, 0, len(events))
	for _, event := range events {
		if filter.Category != "" && event.Category != filter.Category {
			continue
		}
		if filter.Mine && !event.HasInterested(sess.UserID) {
			continue
		}
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].EventID, out[j].EventID) })
	return out, nil
}

// lessID orders numeric ids numerically and everything else lexically.
func lessID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.Store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return event, nil
}

// CreateEvent posts a user-created event.
func (s *EventService) CreateEvent(ctx context.Context, sess auth.Session, req CreateEventRequest) (*models.Event, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Date = strings.TrimSpace(req.Date)
	req.Location = strings.TrimSpace(req.Location)
	if req.Title == "" || req.Date == "" || req.Location == "" {
		return nil, invalid("title, date and location are required")
	}
	if req.Category != "" && !models.IsCategory(req.Category) {
		return nil, invalid(fmt.Sprintf("unknown category %q", req.Category))
	}
	if req.MaxPeople < 0 {
		return nil, invalid("maxPeople cannot be negative")
	}

	event := &models.Event{
		EventID:   uuid.New().String(),
		Title:     req.Title,
		Date:      req.Date,
		Location:  req.Location,
		Category:  req.Category,
		MaxPeople: req.MaxPeople,
		CreatedBy: sess.UserID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Store.PutEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to save event: %w", err)
	}
	slog.Info("✅ Event posted", "eventId", event.EventID, "createdBy", sess.UserID)
	return event, nil
}

// AddEventInterest adds the caller to the event's interested set.
func (s *EventService) AddEventInterest(ctx context.Context, sess auth.Session, eventID string) (*models.Event, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.HasInterested(sess.UserID) {
		return event, nil
	}
	if event.MaxPeople > 0 && len(event.PeopleInterested) >= event.MaxPeople {
		return nil, ErrEventFull
	}

	if err := s.Store.AddEventInterest(ctx, eventID, sess.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to add event interest: %w", err)
	}
	slog.Info("✅ Added event interest", "eventId", eventID, "userId", sess.UserID)
	return s.GetEvent(ctx, eventID)
}

// ListAttendees returns the profiles of the other users interested in the
// event. Users without a profile are skipped.
func (s *EventService) ListAttendees(ctx context.Context, sess auth.Session, eventID string) ([]Attendee, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	sent, err := s.Store.ListInterestsFrom(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	interested := map[string]bool{}
	for _, interest := range sent {
		if interest.EventID == eventID {
			interested[interest.ToUser] = true
		}
	}

	attendees := []Attendee{}
	for _, userID := range event.PeopleInterested {
		if userID == sess.UserID {
			continue
		}
		user, err := s.Store.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load attendee: %w", err)
		}
		attendees = append(attendees, Attendee{User: user, AlreadyInterested: interested[userID]})
	}
	return attendees, nil
}
