package models

import "time"

// Account holds the sign-in credential for a user.
type Account struct {
	EmailID        string    `dynamodbav:"emailId" json:"emailId"` // ✅ Partition Key
	UserID         string    `dynamodbav:"userId" json:"userId"`
	DisplayName    string    `dynamodbav:"displayName,omitempty" json:"displayName,omitempty"`
	PasswordHash   string    `dynamodbav:"passwordHash" json:"-"`
	ResetCodeHash  string    `dynamodbav:"resetCodeHash,omitempty" json:"-"`
	ResetExpiresAt time.Time `dynamodbav:"resetExpiresAt,omitempty" json:"-"`
	ResetAttempts  int       `dynamodbav:"resetAttempts,omitempty" json:"-"`
	CreatedAt      time.Time `dynamodbav:"createdAt" json:"createdAt"`
}

// AccountsTable is the DynamoDB table name for credentials
const AccountsTable = "Accounts"
