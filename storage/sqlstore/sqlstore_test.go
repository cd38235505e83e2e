package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"eventfriend_server/models"
	"eventfriend_server/storage"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: Postgres}
	if got := pg.rebind("SELECT 1 WHERE a = ? AND b = ?"); got != "SELECT 1 WHERE a = $1 AND b = $2" {
		t.Errorf("rebind = %q", got)
	}
	lite := &SQLStore{dialect: SQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
}

func TestSQLStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 12, 21, 14, 0, 0, 0, time.UTC)

	t.Run("users round trip", func(t *testing.T) {
		if _, err := store.GetUser(ctx, "alice"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		user := &models.User{
			UserID:           "alice",
			Name:             "Alice",
			Age:              27,
			Bio:              "likes hikes",
			EventPreferences: []string{models.CategoryOutdoors, models.CategoryFood},
			UpdatedAt:        now,
		}
		if err := store.PutUser(ctx, user); err != nil {
			t.Fatalf("PutUser failed: %v", err)
		}
		user.Location = "Austin"
		if err := store.PutUser(ctx, user); err != nil {
			t.Fatalf("PutUser (update) failed: %v", err)
		}

		got, err := store.GetUser(ctx, "alice")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Location != "Austin" || got.Age != 27 || len(got.EventPreferences) != 2 {
			t.Errorf("unexpected user: %+v", got)
		}
		if got.PeopleInterestedInMe != nil {
			t.Errorf("expected nil legacy list, got %v", got.PeopleInterestedInMe)
		}
		if !got.UpdatedAt.Equal(now) {
			t.Errorf("updatedAt = %v, want %v", got.UpdatedAt, now)
		}
	})

	t.Run("accounts are unique by email", func(t *testing.T) {
		account := &models.Account{EmailID: "a@example.com", UserID: "alice", PasswordHash: "x", CreatedAt: now}
		if err := store.CreateAccount(ctx, account); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
		dup := &models.Account{EmailID: "a@example.com", UserID: "other", PasswordHash: "y", CreatedAt: now}
		if err := store.CreateAccount(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}

		account.ResetCodeHash = "hash"
		account.ResetExpiresAt = now.Add(15 * time.Minute)
		if err := store.UpdateAccount(ctx, account); err != nil {
			t.Fatalf("UpdateAccount failed: %v", err)
		}
		got, err := store.GetAccountByEmail(ctx, "a@example.com")
		if err != nil {
			t.Fatalf("GetAccountByEmail failed: %v", err)
		}
		if got.UserID != "alice" || got.ResetCodeHash != "hash" || !got.ResetExpiresAt.Equal(account.ResetExpiresAt) {
			t.Errorf("unexpected account: %+v", got)
		}
		if err := store.UpdateAccount(ctx, &models.Account{EmailID: "nobody@example.com"}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("event interest set semantics", func(t *testing.T) {
		event := &models.Event{EventID: "1", Title: "Cooking Class", CreatedBy: models.CreatedByAdmin, CreatedAt: now}
		if err := store.PutEvent(ctx, event); err != nil {
			t.Fatalf("PutEvent failed: %v", err)
		}
		for _, u := range []string{"bob", "alice", "bob"} {
			if err := store.AddEventInterest(ctx, "1", u); err != nil {
				t.Fatalf("AddEventInterest failed: %v", err)
			}
		}
		got, err := store.GetEvent(ctx, "1")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if len(got.PeopleInterested) != 2 || got.PeopleInterested[0] != "alice" || got.PeopleInterested[1] != "bob" {
			t.Errorf("peopleInterested = %v", got.PeopleInterested)
		}

		if err := store.RemoveEventInterest(ctx, "1", "bob"); err != nil {
			t.Fatalf("RemoveEventInterest failed: %v", err)
		}
		events, err := store.ListEvents(ctx)
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(events) != 1 || len(events[0].PeopleInterested) != 1 {
			t.Errorf("unexpected events: %+v", events)
		}
		if err := store.AddEventInterest(ctx, "missing", "bob"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("interests are unique per triple", func(t *testing.T) {
		interest := models.NewInterest("alice", "bob", "1", now)
		if err := store.CreateInterest(ctx, interest); err != nil {
			t.Fatalf("CreateInterest failed: %v", err)
		}
		if err := store.CreateInterest(ctx, interest); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		// Reverse direction is a different triple.
		if err := store.CreateInterest(ctx, models.NewInterest("bob", "alice", "1", now)); err != nil {
			t.Fatalf("CreateInterest (reverse) failed: %v", err)
		}

		got, err := store.GetInterest(ctx, "alice", "bob", "1")
		if err != nil {
			t.Fatalf("GetInterest failed: %v", err)
		}
		if got.InterestID != "alice_bob_1" {
			t.Errorf("interestId = %s", got.InterestID)
		}

		from, _ := store.ListInterestsFrom(ctx, "alice")
		to, _ := store.ListInterestsTo(ctx, "alice")
		if len(from) != 1 || len(to) != 1 {
			t.Errorf("from=%d to=%d, want 1 and 1", len(from), len(to))
		}

		if err := store.DeleteInterest(ctx, "alice", "bob", "1"); err != nil {
			t.Fatalf("DeleteInterest failed: %v", err)
		}
		if err := store.DeleteInterest(ctx, "alice", "bob", "1"); err != nil {
			t.Fatalf("DeleteInterest on missing row failed: %v", err)
		}
		if _, err := store.GetInterest(ctx, "alice", "bob", "1"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateMatch is create-if-absent", func(t *testing.T) {
		match := models.NewMatch("bob", "alice", "1", now)
		created, err := store.CreateMatch(ctx, match)
		if err != nil || !created {
			t.Fatalf("first CreateMatch: created=%v err=%v", created, err)
		}
		created, err = store.CreateMatch(ctx, models.NewMatch("alice", "bob", "1", now))
		if err != nil || created {
			t.Fatalf("second CreateMatch: created=%v err=%v", created, err)
		}

		asA, _ := store.ListMatchesAsUserA(ctx, "alice")
		asB, _ := store.ListMatchesAsUserB(ctx, "alice")
		if len(asA) != 1 || len(asB) != 0 {
			t.Errorf("asA=%d asB=%d", len(asA), len(asB))
		}

		later := now.Add(time.Hour)
		if err := store.TouchMatch(ctx, match.MatchID, later); err != nil {
			t.Fatalf("TouchMatch failed: %v", err)
		}
		got, err := store.GetMatch(ctx, match.MatchID)
		if err != nil {
			t.Fatalf("GetMatch failed: %v", err)
		}
		if !got.LastActivity.Equal(later) || !got.CreatedAt.Equal(now) {
			t.Errorf("unexpected timestamps: %+v", got)
		}

		if err := store.DeleteMatch(ctx, match.MatchID); err != nil {
			t.Fatalf("DeleteMatch failed: %v", err)
		}
		if _, err := store.GetMatch(ctx, match.MatchID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := store.TouchMatch(ctx, match.MatchID, later); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("messages come back oldest first", func(t *testing.T) {
		if _, err := store.CreateMatch(ctx, models.NewMatch("alice", "bob", "1", now)); err != nil {
			t.Fatalf("CreateMatch failed: %v", err)
		}
		texts := []string{"one", "two", "three", "four"}
		for i, text := range texts {
			msg := &models.Message{
				MatchID:   "alice_bob_1",
				MessageID: text,
				SenderID:  "alice",
				Text:      text,
				Timestamp: now.Add(time.Duration(i) * time.Millisecond),
			}
			if err := store.PutMessage(ctx, msg); err != nil {
				t.Fatalf("PutMessage failed: %v", err)
			}
		}

		msgs, err := store.ListMessages(ctx, "alice_bob_1", 3)
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(msgs) != 3 || msgs[0].Text != "two" || msgs[2].Text != "four" {
			t.Fatalf("unexpected messages: %+v", msgs)
		}

		if err := store.DeleteMessages(ctx, "alice_bob_1"); err != nil {
			t.Fatalf("DeleteMessages failed: %v", err)
		}
		msgs, _ = store.ListMessages(ctx, "alice_bob_1", 10)
		if len(msgs) != 0 {
			t.Errorf("expected no messages, got %d", len(msgs))
		}
	})
	t.Run("PutMessage refuses a missing match", func(t *testing.T) {
		msg := &models.Message{MatchID: "ghost_match_9", MessageID: "m-ghost", SenderID: "alice", Text: "hi", Timestamp: now}
		if err := store.PutMessage(ctx, msg); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if msgs, _ := store.ListMessages(ctx, "ghost_match_9", 10); len(msgs) != 0 {
			t.Errorf("expected no stored messages, got %d", len(msgs))
		}
	})

	t.Run("DeleteMatch cascades to messages", func(t *testing.T) {
		match := models.NewMatch("carol", "dave", "2", now)
		if _, err := store.CreateMatch(ctx, match); err != nil {
			t.Fatalf("CreateMatch failed: %v", err)
		}
		for i, text := range []string{"keep", "drop"} {
			msg := &models.Message{MatchID: match.MatchID, MessageID: "cascade-" + text, SenderID: "carol", Text: text, Timestamp: now.Add(time.Duration(i) * time.Millisecond)}
			if err := store.PutMessage(ctx, msg); err != nil {
				t.Fatalf("PutMessage failed: %v", err)
			}
		}

		if err := store.DeleteMessage(ctx, &models.Message{MatchID: match.MatchID, MessageID: "cascade-drop"}); err != nil {
			t.Fatalf("DeleteMessage failed: %v", err)
		}
		msgs, _ := store.ListMessages(ctx, match.MatchID, 10)
		if len(msgs) != 1 || msgs[0].Text != "keep" {
			t.Fatalf("unexpected messages after DeleteMessage: %+v", msgs)
		}

		if err := store.DeleteMatch(ctx, match.MatchID); err != nil {
			t.Fatalf("DeleteMatch failed: %v", err)
		}
		if _, err := store.CreateMatch(ctx, models.NewMatch("carol", "dave", "2", now)); err != nil {
			t.Fatalf("CreateMatch failed: %v", err)
		}
		if msgs, _ := store.ListMessages(ctx, match.MatchID, 10); len(msgs) != 0 {
			t.Errorf("expected recreated match to start empty, got %d messages", len(msgs))
		}
	})

	t.Run("IncrementResetAttempts counts failures", func(t *testing.T) {
		if _, err := store.IncrementResetAttempts(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		for want := 1; want <= 3; want++ {
			got, err := store.IncrementResetAttempts(ctx, "a@example.com")
			if err != nil {
				t.Fatalf("IncrementResetAttempts failed: %v", err)
			}
			if got != want {
				t.Errorf("attempt %d: got %d", want, got)
			}
		}
		account, err := store.GetAccountByEmail(ctx, "a@example.com")
		if err != nil {
			t.Fatalf("GetAccountByEmail failed: %v", err)
		}
		if account.ResetAttempts != 3 {
			t.Errorf("ResetAttempts = %d, want 3", account.ResetAttempts)
		}
		account.ResetAttempts = 0
		if err := store.UpdateAccount(ctx, account); err != nil {
			t.Fatalf("UpdateAccount failed: %v", err)
		}
		if got, _ := store.IncrementResetAttempts(ctx, "a@example.com"); got != 1 {
			t.Errorf("expected counter to restart at 1, got %d", got)
		}
	})
}
