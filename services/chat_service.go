package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"eventfriend_server/auth"
	"eventfriend_server/metrics"
	"eventfriend_server/models"
	"eventfriend_server/storage"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
	MaxMessageLength    = 2000
)

// ChatService appends and reads the messages of a match.
type ChatService struct {
	Store   storage.Store
	Broker  *Broker
	Metrics *metrics.Metrics

	now  func() time.Time
	mu   sync.Mutex
	last time.Time
}

func NewChatService(store storage.Store, broker *Broker, m *metrics.Metrics) *ChatService {
	return &ChatService{Store: store, Broker: broker, Metrics: m, now: time.Now}
}

// nextTimestamp returns a server time strictly after every earlier one
// handed out by this service.
func (s *ChatService) nextTimestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC().Truncate(time.Microsecond)
	if !ts.After(s.last) {
		ts = s.last.Add(time.Microsecond)
	}
	s.last = ts
	return ts
}

// Authorize loads the match and checks the caller is a party to it.
func (s *ChatService) Authorize(ctx context.Context, sess auth.Session, matchID string) (*models.Match, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if matchID == "" {
		return nil, invalid("matchId is required")
	}
	match, err := s.Store.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	if !match.Involves(sess.UserID) {
		return nil, ErrForbidden
	}
	return match, nil
}

// SendMessage stores text in the match's chat with a server timestamp.
func (s *ChatService) SendMessage(ctx context.Context, sess auth.Session, matchID, text string) (*models.Message, error) {
	match, err := s.Authorize(ctx, sess, matchID)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("message text is required")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, invalid(fmt.Sprintf("messages are limited to %d characters", MaxMessageLength))
	}

	message := &models.Message{
		MatchID:    match.MatchID,
		MessageID:  uuid.New().String(),
		SenderID:   sess.UserID,
		SenderName: s.senderName(ctx, sess),
		Text:       text,
		Timestamp:  s.nextTimestamp(),
	}
	slog.Info("📩 Storing message", "matchId", match.MatchID, "sender", sess.UserID)

	if err := s.Store.PutMessage(ctx, message); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if err := s.Store.TouchMatch(ctx, match.MatchID, message.Timestamp); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Unmatched while the message was being written.
			if err := s.Store.DeleteMessage(ctx, message); err != nil {
				slog.Error("❌ Failed to remove message for deleted match", "matchId", match.MatchID, "messageId", message.MessageID, "error", err)
			}
			return nil, ErrMatchNotFound
		}
		slog.Warn("⚠️ Failed to update match activity", "matchId", match.MatchID, "error", err)
	}

	s.Metrics.MessageSent()
	s.Broker.Publish(LiveEvent{Type: EventMessage, MatchID: match.MatchID, Message: message},
		MatchTopic(match.MatchID), UserTopic(match.UserA), UserTopic(match.UserB))
	return message, nil
}

func (s *ChatService) senderName(ctx context.Context, sess auth.Session) string {
	if user, err := s.Store.GetUser(ctx, sess.UserID); err == nil && user.Name != "" {
		return user.Name
	}
	if sess.Email != "" {
		return sess.Email
	}
	return "Anonymous"
}

// GetMessages returns up to limit of the latest messages, oldest first.
func (s *ChatService) GetMessages(ctx context.Context, sess auth.Session, matchID string, limit int) ([]models.Message, error) {
	if _, err := s.Authorize(ctx, sess, matchID); err != nil {
		return nil, err
	}
	messages, err := s.Store.ListMessages(ctx, matchID, NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// NormalizeLimit clamps a requested page size.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultMessageLimit
	case limit > MaxMessageLimit:
		return MaxMessageLimit
	default:
		return limit
	}
}
