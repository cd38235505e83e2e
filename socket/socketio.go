package socket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"

	"eventfriend_server/auth"
	"eventfriend_server/metrics"
	"eventfriend_server/middleware"
	"eventfriend_server/services"
)

const (
	namespace       = "/"
	transportSocket = "socketio"
)

var errNoSession = errors.New("socket has no session")

type joinRequest struct {
	MatchID string `json:"matchId"`
}

type sendRequest struct {
	MatchID string `json:"matchId"`
	Text    string `json:"text"`
}

// ChatRooms is the socket.io server behind the chat room UI. Each match is
// a room; stored messages and unmatches are pushed to it from the broker.
type ChatRooms struct {
	Server  *socketio.Server
	chat    *services.ChatService
	jwt     *auth.JWTManager
	metrics *metrics.Metrics
}

// NewChatRooms initializes the socket.io server and hooks it to the broker
func NewChatRooms(chat *services.ChatService, broker *services.Broker, jwtManager *auth.JWTManager, m *metrics.Metrics, allowedOrigins []string) *ChatRooms {
	checkOrigin := originChecker(allowedOrigins)
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{CheckOrigin: checkOrigin},
			&websocket.Transport{CheckOrigin: checkOrigin},
		},
	})
	rooms := &ChatRooms{Server: server, chat: chat, jwt: jwtManager, metrics: m}

	server.OnConnect(namespace, rooms.onConnect)
	server.OnEvent(namespace, "join", rooms.onJoin)
	server.OnEvent(namespace, "leave", rooms.onLeave)
	server.OnEvent(namespace, "sendMessage", rooms.onSendMessage)
	server.OnError(namespace, func(c socketio.Conn, err error) {
		slog.Warn("⚠️ Socket error", "error", err)
	})
	server.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		if _, ok := c.Context().(auth.Session); ok {
			rooms.metrics.SubscriberDelta(transportSocket, -1)
		}
		slog.Info("❌ Socket disconnected", "socketId", c.ID(), "reason", reason)
	})

	broker.Listen(rooms.relay)
	return rooms
}

func (cr *ChatRooms) onConnect(c socketio.Conn) error {
	u := c.URL()
	req := &http.Request{Header: c.RemoteHeader(), URL: &u}
	token, err := middleware.TokenFromRequest(req)
	if err != nil {
		return err
	}
	sess, err := cr.jwt.Validate(token)
	if err != nil {
		return err
	}
	c.SetContext(sess)
	cr.metrics.SubscriberDelta(transportSocket, 1)
	slog.Info("✅ Socket connected", "socketId", c.ID(), "userId", sess.UserID)
	return nil
}

func session(c socketio.Conn) (auth.Session, error) {
	sess, ok := c.Context().(auth.Session)
	if !ok || !sess.Authenticated() {
		return auth.Session{}, errNoSession
	}
	return sess, nil
}

func (cr *ChatRooms) onJoin(c socketio.Conn, req joinRequest) {
	sess, err := session(c)
	if err != nil {
		c.Emit("error", auth.Message(auth.ErrMissingToken))
		return
	}
	if _, err := cr.chat.Authorize(context.Background(), sess, req.MatchID); err != nil {
		slog.Warn("❌ Rejected join", "socketId", c.ID(), "matchId", req.MatchID, "error", err)
		c.Emit("error", err.Error())
		return
	}
	c.Join(req.MatchID)
	slog.Info("👥 User joined match", "userId", sess.UserID, "matchId", req.MatchID)
	c.Emit("joined", req.MatchID)
}

func (cr *ChatRooms) onLeave(c socketio.Conn, req joinRequest) {
	c.Leave(req.MatchID)
}

func (cr *ChatRooms) onSendMessage(c socketio.Conn, req sendRequest) {
	sess, err := session(c)
	if err != nil {
		c.Emit("error", auth.Message(auth.ErrMissingToken))
		return
	}
	// The stored message reaches the room through relay.
	if _, err := cr.chat.SendMessage(context.Background(), sess, req.MatchID, req.Text); err != nil {
		slog.Warn("❌ Failed to send socket message", "matchId", req.MatchID, "error", err)
		c.Emit("error", err.Error())
	}
}

// relay forwards match topic events to the match's room.
func (cr *ChatRooms) relay(topic string, ev services.LiveEvent) {
	if topic != services.MatchTopic(ev.MatchID) {
		return
	}
	switch ev.Type {
	case services.EventMessage:
		cr.Server.BroadcastToRoom(namespace, ev.MatchID, "newMessage", ev.Message)
	case services.EventMatchRemoved:
		cr.Server.BroadcastToRoom(namespace, ev.MatchID, "matchRemoved", ev)
		cr.Server.ClearRoom(namespace, ev.MatchID)
	}
}
