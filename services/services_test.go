package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"eventfriend_server/auth"
	"eventfriend_server/models"
	"eventfriend_server/storage/sqlstore"
)

type testEnv struct {
	store     *sqlstore.SQLStore
	broker    *Broker
	interests *InterestService
	chat      *ChatService
	events    *EventService
	profiles  *UserProfileService
}

var (
	alice = auth.Session{UserID: "alice", Email: "alice@example.com"}
	bob   = auth.Session{UserID: "bob", Email: "bob@example.com"}
	carol = auth.Session{UserID: "carol", Email: "carol@example.com"}
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlstore.NewSQLite(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	for _, e := range []models.Event{
		{EventID: "evt-1", Title: "Cooking Class", Date: "Saturday", Location: "Austin", Category: models.CategoryFood, CreatedBy: models.CreatedByAdmin, CreatedAt: now},
		{EventID: "evt-2", Title: "Sunset Hike", Date: "Sunday", Location: "Austin", Category: models.CategoryOutdoors, CreatedBy: models.CreatedByAdmin, CreatedAt: now},
	} {
		event := e
		if err := store.PutEvent(ctx, &event); err != nil {
			t.Fatalf("PutEvent failed: %v", err)
		}
	}
	for _, u := range []models.User{
		{UserID: "alice", Name: "Alice", Bio: "hi", UpdatedAt: now},
		{UserID: "bob", Name: "Bob", Bio: "hey", UpdatedAt: now},
		{UserID: "carol", Name: "Carol", Bio: "yo", UpdatedAt: now},
	} {
		user := u
		if err := store.PutUser(ctx, &user); err != nil {
			t.Fatalf("PutUser failed: %v", err)
		}
	}

	broker := NewBroker()
	return &testEnv{
		store:     store,
		broker:    broker,
		interests: NewInterestService(store, broker, nil),
		chat:      NewChatService(store, broker, nil),
		events:    NewEventService(store),
		profiles:  NewUserProfileService(store),
	}
}

// declare fails the test on error.
func (e *testEnv) declare(t *testing.T, sess auth.Session, to, eventID string) *DeclareResult {
	t.Helper()
	result, err := e.interests.DeclareInterest(context.Background(), sess, to, eventID)
	if err != nil {
		t.Fatalf("DeclareInterest(%s -> %s, %s) failed: %v", sess.UserID, to, eventID, err)
	}
	return result
}

func (e *testEnv) join(t *testing.T, sess auth.Session, eventID string) {
	t.Helper()
	if _, err := e.events.AddEventInterest(context.Background(), sess, eventID); err != nil {
		t.Fatalf("AddEventInterest(%s, %s) failed: %v", sess.UserID, eventID, err)
	}
}

func (e *testEnv) matchCount(t *testing.T, userID string) int {
	t.Helper()
	ctx := context.Background()
	asA, err := e.store.ListMatchesAsUserA(ctx, userID)
	if err != nil {
		t.Fatalf("ListMatchesAsUserA failed: %v", err)
	}
	asB, err := e.store.ListMatchesAsUserB(ctx, userID)
	if err != nil {
		t.Fatalf("ListMatchesAsUserB failed: %v", err)
	}
	return len(asA) + len(asB)
}
