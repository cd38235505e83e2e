package models

import "time"

// Interest is a one-directional declaration: FromUser is interested in
// ToUser in the context of EventID.
type Interest struct {
	InterestID string    `dynamodbav:"interestId" json:"interestId"` // ✅ Partition Key: from_to_event
	FromUser   string    `dynamodbav:"fromUser" json:"fromUser"`     // ✅ GSI fromUser-index
	ToUser     string    `dynamodbav:"toUser" json:"toUser"`         // ✅ GSI toUser-index
	EventID    string    `dynamodbav:"eventId" json:"eventId"`
	Timestamp  time.Time `dynamodbav:"timestamp" json:"timestamp"`
}

// InterestID is the key of the ordered (from, to, event) triple.
func InterestID(fromUser, toUser, eventID string) string {
	return fromUser + "_" + toUser + "_" + eventID
}

// NewInterest builds an Interest with its key filled in.
func NewInterest(fromUser, toUser, eventID string, at time.Time) *Interest {
	return &Interest{
		InterestID: InterestID(fromUser, toUser, eventID),
		FromUser:   fromUser,
		ToUser:     toUser,
		EventID:    eventID,
		Timestamp:  at,
	}
}

// ✅ Define table name
const InterestsTable = "Interests"

// ✅ GSIs for querying interests by either side
const (
	FromUserIndex = "fromUser-index"
	ToUserIndex   = "toUser-index"
)
