package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"eventfriend_server/auth"
	"eventfriend_server/metrics"
	"eventfriend_server/models"
	"eventfriend_server/services"
	"eventfriend_server/storage/sqlstore"
)

type feedEnv struct {
	srv       *httptest.Server
	jwt       *auth.JWTManager
	interests *services.InterestService
	chat      *services.ChatService
	matchID   string
}

var (
	alice = auth.Session{UserID: "alice", Email: "alice@example.com"}
	bob   = auth.Session{UserID: "bob", Email: "bob@example.com"}
)

func newFeedEnv(t *testing.T) *feedEnv {
	t.Helper()
	store, err := sqlstore.NewSQLite(filepath.Join(t.TempDir(), "feed.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if err := store.PutEvent(ctx, &models.Event{EventID: "1", Title: "Live Music Concert", CreatedBy: models.CreatedByAdmin, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("PutEvent failed: %v", err)
	}

	m := metrics.New()
	broker := services.NewBroker()
	env := &feedEnv{
		jwt:       auth.NewJWTManager("test-secret", time.Hour),
		interests: services.NewInterestService(store, broker, m),
		chat:      services.NewChatService(store, broker, m),
	}
	if _, err := env.interests.DeclareInterest(ctx, alice, "bob", "1"); err != nil {
		t.Fatalf("DeclareInterest failed: %v", err)
	}
	result, err := env.interests.DeclareInterest(ctx, bob, "alice", "1")
	if err != nil || !result.Matched {
		t.Fatalf("expected match, got %+v err=%v", result, err)
	}
	env.matchID = result.Match.MatchID

	r := mux.NewRouter()
	NewFeeds(env.interests, env.chat, broker, env.jwt, m, nil).RegisterRoutes(r)
	env.srv = httptest.NewServer(r)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *feedEnv) dial(t *testing.T, sess auth.Session, path string) *websocket.Conn {
	t.Helper()
	token, err := e.jwt.Generate(sess.UserID, sess.Email)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + path + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial %s failed: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type testFrame struct {
	Type     string                    `json:"type"`
	MatchID  string                    `json:"matchId"`
	Matches  []models.MatchWithProfile `json:"matches"`
	Messages []models.Message          `json:"messages"`
}

func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	var frame testFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return frame
}

func TestMessageFeed(t *testing.T) {
	env := newFeedEnv(t)
	ctx := context.Background()
	conn := env.dial(t, bob, "/ws/matches/"+env.matchID+"/messages")

	if frame := readFrame(t, conn); frame.Type != FrameSnapshot || len(frame.Messages) != 0 {
		t.Fatalf("unexpected initial frame: %+v", frame)
	}

	for _, text := range []string{"hi", "how are you?"} {
		if _, err := env.chat.SendMessage(ctx, alice, env.matchID, text); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		frame := readFrame(t, conn)
		last := frame.Messages[len(frame.Messages)-1]
		if frame.Type != FrameSnapshot || last.Text != text {
			t.Fatalf("unexpected frame after %q: %+v", text, frame)
		}
	}

	if err := env.interests.Unmatch(ctx, alice, services.UnmatchRequest{MatchID: env.matchID}); err != nil {
		t.Fatalf("Unmatch failed: %v", err)
	}
	if frame := readFrame(t, conn); frame.Type != FrameRemoved || frame.MatchID != env.matchID {
		t.Fatalf("expected removed frame, got %+v", frame)
	}
}

func TestMatchFeed(t *testing.T) {
	env := newFeedEnv(t)
	conn := env.dial(t, alice, "/ws/matches")

	frame := readFrame(t, conn)
	if frame.Type != FrameSnapshot || len(frame.Matches) != 1 || frame.Matches[0].MatchID != env.matchID {
		t.Fatalf("unexpected initial frame: %+v", frame)
	}

	if _, err := env.chat.SendMessage(context.Background(), bob, env.matchID, "see you there"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	frame = readFrame(t, conn)
	if len(frame.Matches) != 1 || frame.Matches[0].LastMessage != "see you there" {
		t.Fatalf("unexpected frame after message: %+v", frame)
	}

	if err := env.interests.Unmatch(context.Background(), bob, services.UnmatchRequest{MatchID: env.matchID}); err != nil {
		t.Fatalf("Unmatch failed: %v", err)
	}
	if frame = readFrame(t, conn); len(frame.Matches) != 0 {
		t.Fatalf("expected empty match list, got %+v", frame)
	}
}

func TestFeedRejectsOutsiders(t *testing.T) {
	env := newFeedEnv(t)
	token, _ := env.jwt.Generate("carol", "carol@example.com")
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/matches/" + env.matchID + "/messages?token=" + token

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}

	_, resp, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(env.srv.URL, "http")+"/ws/matches", nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got resp=%v err=%v", resp, err)
	}
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest("GET", "/ws/matches", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	open := originChecker([]string{"*"})
	if !open(req("https://evil.example")) {
		t.Error("wildcard should allow any origin")
	}

	strict := originChecker([]string{"https://eventfriend.app/"})
	if !strict(req("https://eventfriend.app")) {
		t.Error("listed origin should be allowed")
	}
	if strict(req("https://evil.example")) {
		t.Error("unlisted origin should be rejected")
	}
	if !strict(req("")) {
		t.Error("same-origin requests without Origin should be allowed")
	}
}
