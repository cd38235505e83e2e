package models

import (
	"strings"
	"time"
)

// User is the profile document stored under the auth identity.
type User struct {
	UserID             string   `dynamodbav:"userId" json:"userId"` // ✅ Partition Key (auth identity)
	Name               string   `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Age                int      `dynamodbav:"age,omitempty" json:"age,omitempty"`
	Location           string   `dynamodbav:"location,omitempty" json:"location,omitempty"`
	Bio                string   `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	ProfileImageURL    string   `dynamodbav:"profileImageUrl,omitempty" json:"profileImageUrl,omitempty"`
	EventPreferences   []string `dynamodbav:"eventPreferences,omitempty" json:"eventPreferences,omitempty"`
	DistancePreference int      `dynamodbav:"distancePreference,omitempty" json:"distancePreference,omitempty"` // miles
	AgePreference      int      `dynamodbav:"agePreference,omitempty" json:"agePreference,omitempty"`
	// Legacy inverse-interest list, superseded by Interest records.
	PeopleInterestedInMe []string  `dynamodbav:"peopleInterestedInMe,omitempty" json:"peopleInterestedInMe,omitempty"`
	UpdatedAt            time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Complete reports whether the profile has been filled in far enough to be
// shown to other attendees.
func (u *User) Complete() bool {
	return strings.TrimSpace(u.Bio) != ""
}

// UsersTable is the DynamoDB table name for user profiles
const UsersTable = "Users"
