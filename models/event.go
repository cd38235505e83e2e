package models

import "time"

// Event is a discoverable activity users can declare interest in attending.
type Event struct {
	EventID          string    `dynamodbav:"eventId" json:"eventId"` // ✅ Partition Key
	Title            string    `dynamodbav:"title" json:"title"`
	Date             string    `dynamodbav:"date" json:"date"` // display string, e.g. "Saturday, Dec 21, 2024 at 2:00 PM"
	Location         string    `dynamodbav:"location" json:"location"`
	Category         string    `dynamodbav:"category,omitempty" json:"category,omitempty"`
	MaxPeople        int       `dynamodbav:"maxPeople,omitempty" json:"maxPeople,omitempty"` // 0 = unlimited
	CreatedBy        string    `dynamodbav:"createdBy" json:"createdBy"`
	PeopleInterested []string  `dynamodbav:"peopleInterested,stringset,omitempty" json:"peopleInterested"`
	CreatedAt        time.Time `dynamodbav:"createdAt" json:"createdAt"`
}

// HasInterested reports whether userID is in PeopleInterested.
func (e *Event) HasInterested(userID string) bool {
	for _, id := range e.PeopleInterested {
		if id == userID {
			return true
		}
	}
	return false
}

// EventsTable is the DynamoDB table name for events
const EventsTable = "Events"
