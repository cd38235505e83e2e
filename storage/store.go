// Package storage defines the document-store contract the services run on.
// Backends: storage/dynamo (DynamoDB) and storage/sqlstore (SQLite, Postgres).
package storage

import (
	"context"
	"errors"
	"time"

	"eventfriend_server/models"
)

var (
	// ErrNotFound is returned when a keyed record does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrAlreadyExists is returned by create-if-absent writes.
	ErrAlreadyExists = errors.New("item already exists")
)

// UserStore persists profiles.
type UserStore interface {
	PutUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// AccountStore persists credentials keyed by email.
type AccountStore interface {
	// CreateAccount fails with ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	// IncrementResetAttempts atomically bumps the failed reset counter.
	IncrementResetAttempts(ctx context.Context, email string) (int, error)
}

// EventStore persists events and their peopleInterested set.
type EventStore interface {
	PutEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	// AddEventInterest and RemoveEventInterest have set semantics.
	AddEventInterest(ctx context.Context, eventID, userID string) error
	RemoveEventInterest(ctx context.Context, eventID, userID string) error
}

// InterestStore persists directed interests.
type InterestStore interface {
	// CreateInterest fails with ErrAlreadyExists when the triple exists.
	CreateInterest(ctx context.Context, interest *models.Interest) error
	GetInterest(ctx context.Context, fromUser, toUser, eventID string) (*models.Interest, error)
	// DeleteInterest is a no-op when the interest does not exist.
	DeleteInterest(ctx context.Context, fromUser, toUser, eventID string) error
	ListInterestsFrom(ctx context.Context, userID string) ([]models.Interest, error)
	ListInterestsTo(ctx context.Context, userID string) ([]models.Interest, error)
}

// MatchStore persists matches.
type MatchStore interface {
	// CreateMatch writes the match only if its id is unused and reports
	// whether this call created it.
	CreateMatch(ctx context.Context, match *models.Match) (bool, error)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	ListMatchesAsUserA(ctx context.Context, userID string) ([]models.Match, error)
	ListMatchesAsUserB(ctx context.Context, userID string) ([]models.Match, error)
	// DeleteMatch is a no-op when the match does not exist.
	DeleteMatch(ctx context.Context, matchID string) error
	TouchMatch(ctx context.Context, matchID string, at time.Time) error
}

// MessageStore persists chat messages.
type MessageStore interface {
	// PutMessage may return ErrNotFound when the match no longer exists.
	PutMessage(ctx context.Context, message *models.Message) error
	// DeleteMessage removes one message; missing messages are ignored.
	DeleteMessage(ctx context.Context, message *models.Message) error
	// ListMessages returns the latest limit messages in ascending order.
	ListMessages(ctx context.Context, matchID string, limit int) ([]models.Message, error)
	DeleteMessages(ctx context.Context, matchID string) error
}

// Store is the full backend contract.
type Store interface {
	UserStore
	AccountStore
	EventStore
	InterestStore
	MatchStore
	MessageStore

	// Close releases any resources held by the store.
	Close() error
}
