package models

import "time"

// Match is the symmetric record derived from two reciprocal Interests.
type Match struct {
	MatchID      string    `dynamodbav:"matchId" json:"matchId"` // ✅ Partition Key: sorted pair + event
	UserA        string    `dynamodbav:"userA" json:"userA"`     // ✅ GSI userA-index
	UserB        string    `dynamodbav:"userB" json:"userB"`     // ✅ GSI userB-index
	EventID      string    `dynamodbav:"eventId" json:"eventId"`
	Status       string    `dynamodbav:"status" json:"status"`
	CreatedAt    time.Time `dynamodbav:"createdAt" json:"createdAt"`
	LastActivity time.Time `dynamodbav:"lastActivity" json:"lastActivity"`
}

// MatchID returns the deterministic id for the unordered pair {a, b} under
// eventID. The result does not depend on argument order.
func MatchID(a, b, eventID string) string {
	a, b = SortPair(a, b)
	return a + "_" + b + "_" + eventID
}

// SortPair orders two user ids lexically.
func SortPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// NewMatch builds a pending Match for the pair.
func NewMatch(a, b, eventID string, at time.Time) *Match {
	userA, userB := SortPair(a, b)
	return &Match{
		MatchID:      MatchID(a, b, eventID),
		UserA:        userA,
		UserB:        userB,
		EventID:      eventID,
		Status:       MatchStatusPending,
		CreatedAt:    at,
		LastActivity: at,
	}
}

// Involves reports whether userID is one of the two parties.
func (m *Match) Involves(userID string) bool {
	return userID != "" && (m.UserA == userID || m.UserB == userID)
}

// Other returns the party that is not userID.
func (m *Match) Other(userID string) string {
	if m.UserA == userID {
		return m.UserB
	}
	return m.UserA
}

// MatchWithProfile is a Match enriched for the dashboard.
type MatchWithProfile struct {
	Match
	OtherUser   *User  `json:"otherUser,omitempty"`
	EventTitle  string `json:"eventTitle,omitempty"`
	LastMessage string `json:"lastMessage,omitempty"`
}

// MatchesTable is the DynamoDB table name for matches
const MatchesTable = "Matches"

// ✅ GSIs for the two role fields
const (
	UserAIndex = "userA-index"
	UserBIndex = "userB-index"
)
