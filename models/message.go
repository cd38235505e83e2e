package models

import "time"

// Message is a chat line scoped to a Match.
type Message struct {
	MatchID    string    `dynamodbav:"matchId" json:"matchId"` // ✅ Partition Key
	SortKey    string    `dynamodbav:"SK" json:"-"`            // ✅ Sort Key: timestamp#messageId
	MessageID  string    `dynamodbav:"messageId" json:"id"`
	SenderID   string    `dynamodbav:"senderId" json:"senderId"`
	SenderName string    `dynamodbav:"senderName" json:"senderName"`
	Text       string    `dynamodbav:"text" json:"text"`
	Timestamp  time.Time `dynamodbav:"timestamp" json:"timestamp"`
}

// MessageSortKey orders messages by server timestamp, then id.
func MessageSortKey(ts time.Time, messageID string) string {
	return ts.UTC().Format("2006-01-02T15:04:05.000000000Z") + "#" + messageID
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
