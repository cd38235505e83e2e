package socket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"eventfriend_server/auth"
	"eventfriend_server/controllers"
	"eventfriend_server/metrics"
	"eventfriend_server/middleware"
	"eventfriend_server/services"
	"eventfriend_server/utils"
)

const (
	transportFeed = "websocket"
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
)

// Frame is one message pushed to a feed client.
type Frame struct {
	Type     string      `json:"type"`
	Matches  interface{} `json:"matches,omitempty"`
	Messages interface{} `json:"messages,omitempty"`
	MatchID  string      `json:"matchId,omitempty"`
}

const (
	FrameSnapshot = "snapshot"
	FrameRemoved  = "removed"
)

// Feeds serves live snapshot subscriptions over websockets. Every change
// pushes the full ordered list again.
type Feeds struct {
	interests *services.InterestService
	chat      *services.ChatService
	broker    *services.Broker
	jwt       *auth.JWTManager
	metrics   *metrics.Metrics
	upgrader  websocket.Upgrader
}

func NewFeeds(interests *services.InterestService, chat *services.ChatService, broker *services.Broker, jwtManager *auth.JWTManager, m *metrics.Metrics, allowedOrigins []string) *Feeds {
	return &Feeds{
		interests: interests,
		chat:      chat,
		broker:    broker,
		jwt:       jwtManager,
		metrics:   m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// RegisterRoutes mounts the feeds under /ws
func (f *Feeds) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws/matches", f.HandleMatches).Methods("GET")
	r.HandleFunc("/ws/matches/{matchId}/messages", f.HandleMessages).Methods("GET")
}

func (f *Feeds) authenticate(r *http.Request) (auth.Session, error) {
	token, err := middleware.TokenFromRequest(r)
	if err != nil {
		return auth.Session{}, err
	}
	return f.jwt.Validate(token)
}

// HandleMatches streams the caller's match list.
func (f *Feeds) HandleMatches(w http.ResponseWriter, r *http.Request) {
	sess, err := f.authenticate(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, auth.Message(err))
		return
	}
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	snapshot := func(ctx context.Context) (Frame, bool) {
		matches, err := f.interests.ListMatches(ctx, sess)
		if err != nil {
			slog.Error("❌ Failed to build match snapshot", "userId", sess.UserID, "error", err)
			return Frame{}, false
		}
		return Frame{Type: FrameSnapshot, Matches: matches}, true
	}
	f.stream(r.Context(), conn, services.UserTopic(sess.UserID), snapshot)
}

// HandleMessages streams the latest messages of one match, oldest first.
// The feed ends with a removed frame when the match is deleted.
func (f *Feeds) HandleMessages(w http.ResponseWriter, r *http.Request) {
	sess, err := f.authenticate(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, auth.Message(err))
		return
	}
	matchID := mux.Vars(r)["matchId"]
	if _, err := f.chat.Authorize(r.Context(), sess, matchID); err != nil {
		controllers.WriteServiceError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	snapshot := func(ctx context.Context) (Frame, bool) {
		messages, err := f.chat.GetMessages(ctx, sess, matchID, limit)
		if errors.Is(err, services.ErrMatchNotFound) {
			return Frame{Type: FrameRemoved, MatchID: matchID}, false
		}
		if err != nil {
			slog.Error("❌ Failed to build message snapshot", "matchId", matchID, "error", err)
			return Frame{}, false
		}
		return Frame{Type: FrameSnapshot, MatchID: matchID, Messages: messages}, true
	}
	f.stream(r.Context(), conn, services.MatchTopic(matchID), snapshot)
}

// stream writes a snapshot on subscribe and after every event on topic
// until the client goes away or snapshot reports the feed is over.
func (f *Feeds) stream(ctx context.Context, conn *websocket.Conn, topic string, snapshot func(context.Context) (Frame, bool)) {
	defer conn.Close()

	events, cancel := f.broker.Subscribe(topic)
	defer cancel()
	f.metrics.SubscriberDelta(transportFeed, 1)
	defer f.metrics.SubscriberDelta(transportFeed, -1)

	closed := make(chan struct{})
	go readLoop(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	push := func() bool {
		frame, more := snapshot(ctx)
		if frame.Type != "" {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				return false
			}
		}
		return more
	}

	if !push() {
		return
	}
	for {
		select {
		case <-closed:
			return
		case _, ok := <-events:
			if !ok || !push() {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards client frames and closes done when the peer is gone.
func readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(4 * 1024)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
