package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"eventfriend_server/auth"
	"eventfriend_server/models"
	"eventfriend_server/storage"
)

func matchedEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	env.declare(t, alice, "bob", "evt-1")
	env.declare(t, bob, "alice", "evt-1")
	return env
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	env := matchedEnv(t)

	feed, cancel := env.broker.Subscribe(MatchTopic("alice_bob_evt-1"))
	defer cancel()

	msg, err := env.chat.SendMessage(ctx, alice, "alice_bob_evt-1", "  hi  ")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.Text != "hi" || msg.SenderName != "Alice" || msg.MessageID == "" || msg.Timestamp.IsZero() {
		t.Errorf("unexpected message: %+v", msg)
	}

	select {
	case ev := <-feed:
		if ev.Type != EventMessage || ev.Message.MessageID != msg.MessageID {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected message event")
	}

	match, _ := env.store.GetMatch(ctx, "alice_bob_evt-1")
	if !match.LastActivity.Equal(msg.Timestamp) {
		t.Errorf("lastActivity = %v, want %v", match.LastActivity, msg.Timestamp)
	}

	cases := []struct {
		name  string
		sess  auth.Session
		match string
		text  string
		want  error
	}{
		{"unauthenticated", auth.Session{}, "alice_bob_evt-1", "hi", ErrUnauthenticated},
		{"not a party", carol, "alice_bob_evt-1", "hi", ErrForbidden},
		{"missing match", alice, "alice_bob_evt-9", "hi", ErrMatchNotFound},
		{"blank text", alice, "alice_bob_evt-1", "   ", ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.chat.SendMessage(ctx, tc.sess, tc.match, tc.text); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMessagesKeepSendOrderOnClockTies(t *testing.T) {
	ctx := context.Background()
	env := matchedEnv(t)

	frozen := time.Date(2024, 12, 21, 14, 0, 0, 0, time.UTC)
	env.chat.now = func() time.Time { return frozen }

	var sent []string
	for i := 0; i < 5; i++ {
		sess := alice
		if i%2 == 1 {
			sess = bob
		}
		text := fmt.Sprintf("message %d", i)
		if _, err := env.chat.SendMessage(ctx, sess, "alice_bob_evt-1", text); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		sent = append(sent, text)
	}

	for _, sess := range []auth.Session{alice, bob} {
		msgs, err := env.chat.GetMessages(ctx, sess, "alice_bob_evt-1", 0)
		if err != nil {
			t.Fatalf("GetMessages failed: %v", err)
		}
		if len(msgs) != len(sent) {
			t.Fatalf("got %d messages, want %d", len(msgs), len(sent))
		}
		for i := range sent {
			if msgs[i].Text != sent[i] {
				t.Errorf("position %d: got %q, want %q", i, msgs[i].Text, sent[i])
			}
			if i > 0 && !msgs[i].Timestamp.After(msgs[i-1].Timestamp) {
				t.Errorf("timestamps not strictly increasing at %d", i)
			}
		}
	}

	msgs, _ := env.chat.GetMessages(ctx, alice, "alice_bob_evt-1", 2)
	if len(msgs) != 2 || msgs[1].Text != "message 4" {
		t.Errorf("limit should keep the latest messages, got %+v", msgs)
	}
	if _, err := env.chat.GetMessages(ctx, carol, "alice_bob_evt-1", 10); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestNormalizeLimit(t *testing.T) {
	for in, want := range map[int]int{0: 50, -1: 50, 10: 10, 200: 200, 500: 200} {
		if got := NormalizeLimit(in); got != want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

// hookedStore runs callbacks just before the chat write path reaches the store.
type hookedStore struct {
	storage.Store
	beforePut   func()
	beforeTouch func()
	deleted     []string
}

func (s *hookedStore) PutMessage(ctx context.Context, message *models.Message) error {
	if s.beforePut != nil {
		s.beforePut()
	}
	return s.Store.PutMessage(ctx, message)
}

func (s *hookedStore) TouchMatch(ctx context.Context, matchID string, at time.Time) error {
	if s.beforeTouch != nil {
		s.beforeTouch()
	}
	return s.Store.TouchMatch(ctx, matchID, at)
}

func (s *hookedStore) DeleteMessage(ctx context.Context, message *models.Message) error {
	s.deleted = append(s.deleted, message.MessageID)
	return s.Store.DeleteMessage(ctx, message)
}

func TestSendMessageRacingUnmatch(t *testing.T) {
	ctx := context.Background()
	unmatch := func(t *testing.T, env *testEnv) func() {
		return func() {
			err := env.interests.Unmatch(ctx, bob, UnmatchRequest{MatchID: "alice_bob_evt-1", OtherUserID: "alice", EventID: "evt-1"})
			if err != nil {
				t.Errorf("Unmatch failed: %v", err)
			}
		}
	}
	rematch := func(t *testing.T, env *testEnv) {
		env.declare(t, alice, "bob", "evt-1")
		if result := env.declare(t, bob, "alice", "evt-1"); !result.Matched {
			t.Fatal("expected a fresh match")
		}
		msgs, err := env.chat.GetMessages(ctx, alice, "alice_bob_evt-1", 0)
		if err != nil {
			t.Fatalf("GetMessages failed: %v", err)
		}
		if len(msgs) != 0 {
			t.Errorf("fresh match inherited %d messages", len(msgs))
		}
	}

	t.Run("unmatched before the write", func(t *testing.T) {
		env := matchedEnv(t)
		hooked := &hookedStore{Store: env.store}
		hooked.beforePut = unmatch(t, env)
		chat := NewChatService(hooked, env.broker, nil)

		if _, err := chat.SendMessage(ctx, alice, "alice_bob_evt-1", "still there?"); !errors.Is(err, ErrMatchNotFound) {
			t.Fatalf("expected ErrMatchNotFound, got %v", err)
		}
		rematch(t, env)
	})

	t.Run("unmatched between write and activity update", func(t *testing.T) {
		env := matchedEnv(t)
		hooked := &hookedStore{Store: env.store}
		hooked.beforeTouch = unmatch(t, env)
		chat := NewChatService(hooked, env.broker, nil)

		feed, cancel := env.broker.Subscribe(MatchTopic("alice_bob_evt-1"))
		defer cancel()

		if _, err := chat.SendMessage(ctx, alice, "alice_bob_evt-1", "still there?"); !errors.Is(err, ErrMatchNotFound) {
			t.Fatalf("expected ErrMatchNotFound, got %v", err)
		}
		if len(hooked.deleted) != 1 {
			t.Errorf("expected the stray message to be removed, deleted=%v", hooked.deleted)
		}
		for drained := false; !drained; {
			select {
			case ev := <-feed:
				if ev.Type == EventMessage {
					t.Errorf("message should not be published: %+v", ev)
				}
			default:
				drained = true
			}
		}
		rematch(t, env)
	})
}
