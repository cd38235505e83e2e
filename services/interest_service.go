package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"eventfriend_server/auth"
	"eventfriend_server/metrics"
	"eventfriend_server/models"
	"eventfriend_server/storage"
)

// InterestService maintains directed interests and the matches derived
// from them.
type InterestService struct {
	Store   storage.Store
	Broker  *Broker
	Metrics *metrics.Metrics
	now     func() time.Time
}

func NewInterestService(store storage.Store, broker *Broker, m *metrics.Metrics) *InterestService {
	return &InterestService{Store: store, Broker: broker, Metrics: m, now: time.Now}
}

// DeclareResult is the outcome of DeclareInterest. Matched is true only for
// the call that created the match record.
type DeclareResult struct {
	Interest *models.Interest `json:"interest"`
	Match    *models.Match    `json:"match,omitempty"`
	Matched  bool             `json:"matched"`
}

// RemovalResult lists the matches deleted by RemoveEventInterest.
type RemovalResult struct {
	EventID        string   `json:"eventId"`
	RemovedMatches []string `json:"removedMatches"`
}

// UnmatchRequest identifies the match to delete. OtherUserID and EventID
// are optional and only checked against the stored match.
type UnmatchRequest struct {
	MatchID     string `json:"matchId"`
	OtherUserID string `json:"otherUserId,omitempty"`
	EventID     string `json:"eventId,omitempty"`
}

// DeclareInterest records that the caller is interested in toUser for
// eventID and creates the match when the reciprocal interest exists.
func (s *InterestService) DeclareInterest(ctx context.Context, sess auth.Session, toUser, eventID string) (*DeclareResult, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	toUser, eventID = strings.TrimSpace(toUser), strings.TrimSpace(eventID)
	if toUser == "" || eventID == "" {
		return nil, invalid("toUser and eventId are required")
	}
	if toUser == sess.UserID {
		return nil, ErrSelfInterest
	}
	if _, err := s.Store.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	slog.Info("🔄 Declaring interest", "from", sess.UserID, "to", toUser, "event", eventID)

	interest := models.NewInterest(sess.UserID, toUser, eventID, s.now().UTC())
	if err := s.Store.CreateInterest(ctx, interest); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.Metrics.InterestDeclared("duplicate")
			return nil, ErrDuplicateInterest
		}
		return nil, fmt.Errorf("failed to save interest: %w", err)
	}

	result := &DeclareResult{Interest: interest}
	if _, err := s.Store.GetInterest(ctx, toUser, sess.UserID, eventID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.Metrics.InterestDeclared("created")
			return result, nil
		}
		return nil, fmt.Errorf("failed to check reciprocal interest: %w", err)
	}

	match, created, err := s.CreateMatch(ctx, sess.UserID, toUser, eventID)
	if err != nil {
		return nil, err
	}
	s.Metrics.InterestDeclared("matched")
	result.Match = match
	result.Matched = created
	return result, nil
}

// CreateMatch writes the match for the pair unless it already exists. Only
// the creating call publishes the match notification.
func (s *InterestService) CreateMatch(ctx context.Context, a, b, eventID string) (*models.Match, bool, error) {
	match := models.NewMatch(a, b, eventID, s.now().UTC())

	created, err := s.Store.CreateMatch(ctx, match)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create match: %w", err)
	}
	if !created {
		slog.Debug("ℹ️ Match already exists", "matchId", match.MatchID)
		existing, err := s.Store.GetMatch(ctx, match.MatchID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load existing match: %w", err)
		}
		return existing, false, nil
	}

	slog.Info("✅ It's a match", "matchId", match.MatchID)
	s.Metrics.MatchCreated()
	s.Broker.Publish(LiveEvent{Type: EventMatchCreated, MatchID: match.MatchID, Match: match},
		UserTopic(match.UserA), UserTopic(match.UserB))
	return match, true, nil
}

// RemoveEventInterest takes the caller off the event's interested list and
// deletes the caller's matches and interests for that event.
func (s *InterestService) RemoveEventInterest(ctx context.Context, sess auth.Session, eventID string) (*RemovalResult, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if err := s.Store.RemoveEventInterest(ctx, eventID, sess.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to remove event interest: %w", err)
	}

	result := &RemovalResult{EventID: eventID, RemovedMatches: []string{}}

	// Two queries, one per role field.
	asA, err := s.Store.ListMatchesAsUserA(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	asB, err := s.Store.ListMatchesAsUserB(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	for _, match := range append(asA, asB...) {
		if match.EventID != eventID {
			continue
		}
		if err := s.deleteMatch(ctx, &match, models.RemovalEventInterest); err != nil {
			return nil, err
		}
		result.RemovedMatches = append(result.RemovedMatches, match.MatchID)
	}

	sent, err := s.Store.ListInterestsFrom(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	received, err := s.Store.ListInterestsTo(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	for _, interest := range append(sent, received...) {
		if interest.EventID != eventID {
			continue
		}
		if err := s.Store.DeleteInterest(ctx, interest.FromUser, interest.ToUser, interest.EventID); err != nil {
			return nil, fmt.Errorf("failed to delete interest: %w", err)
		}
	}

	slog.Info("✅ Removed event interest", "user", sess.UserID, "event", eventID, "matchesRemoved", len(result.RemovedMatches))
	return result, nil
}

// WithdrawInterest deletes the caller's interest in toUser for eventID and
// the match derived from it, if any.
func (s *InterestService) WithdrawInterest(ctx context.Context, sess auth.Session, toUser, eventID string) error {
	if !sess.Authenticated() {
		return ErrUnauthenticated
	}
	toUser, eventID = strings.TrimSpace(toUser), strings.TrimSpace(eventID)
	if toUser == "" || eventID == "" {
		return invalid("toUser and eventId are required")
	}

	if err := s.Store.DeleteInterest(ctx, sess.UserID, toUser, eventID); err != nil {
		return fmt.Errorf("failed to delete interest: %w", err)
	}

	match, err := s.Store.GetMatch(ctx, models.MatchID(sess.UserID, toUser, eventID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load match: %w", err)
	}
	return s.deleteMatch(ctx, match, models.RemovalInterestWithdrawn)
}

// Unmatch deletes a match the caller is party to. Cleanup of the underlying
// interests and messages is best effort.
func (s *InterestService) Unmatch(ctx context.Context, sess auth.Session, req UnmatchRequest) error {
	if !sess.Authenticated() {
		return ErrUnauthenticated
	}
	match, err := s.Store.GetMatch(ctx, req.MatchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to load match: %w", err)
	}
	if !match.Involves(sess.UserID) {
		return ErrForbidden
	}
	other := match.Other(sess.UserID)
	if (req.OtherUserID != "" && req.OtherUserID != other) || (req.EventID != "" && req.EventID != match.EventID) {
		return invalid("otherUserId and eventId do not belong to this match")
	}

	if err := s.deleteMatch(ctx, match, models.RemovalUnmatch); err != nil {
		return err
	}

	for _, pair := range [][2]string{{sess.UserID, other}, {other, sess.UserID}} {
		if err := s.Store.DeleteInterest(ctx, pair[0], pair[1], match.EventID); err != nil {
			slog.Warn("⚠️ Failed to clean up interest after unmatch", "from", pair[0], "to", pair[1], "event", match.EventID, "error", err)
		}
	}
	return nil
}

// deleteMatch removes the match, drops its messages and notifies both
// parties.
func (s *InterestService) deleteMatch(ctx context.Context, match *models.Match, reason string) error {
	if err := s.Store.DeleteMatch(ctx, match.MatchID); err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if err := s.Store.DeleteMessages(ctx, match.MatchID); err != nil {
		slog.Warn("⚠️ Failed to delete messages for removed match", "matchId", match.MatchID, "error", err)
	}

	slog.Info("🗑️ Match removed", "matchId", match.MatchID, "reason", reason)
	s.Metrics.MatchRemoved(reason)
	s.Broker.Publish(LiveEvent{Type: EventMatchRemoved, MatchID: match.MatchID, Match: match, Reason: reason},
		UserTopic(match.UserA), UserTopic(match.UserB), MatchTopic(match.MatchID))
	return nil
}

// ListMatches returns the caller's matches, most recently active first,
// with the other party's profile and the event title filled in.
func (s *InterestService) ListMatches(ctx context.Context, sess auth.Session) ([]models.MatchWithProfile, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	asA, err := s.Store.ListMatchesAsUserA(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	asB, err := s.Store.ListMatchesAsUserB(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	all := append(asA, asB...)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].LastActivity.Equal(all[j].LastActivity) {
			return all[i].LastActivity.After(all[j].LastActivity)
		}
		return all[i].MatchID < all[j].MatchID
	})

	titles := map[string]string{}
	out := make([]models.MatchWithProfile, 0, len(all))
	for i := range all {
		out = append(out, s.enrich(ctx, &all[i], sess.UserID, titles))
	}
	return out, nil
}

// GetMatch returns one match the caller is party to.
func (s *InterestService) GetMatch(ctx context.Context, sess auth.Session, matchID string) (*models.MatchWithProfile, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
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
	enriched := s.enrich(ctx, match, sess.UserID, map[string]string{})
	return &enriched, nil
}

// enrich fills in the dashboard fields. Lookup failures leave them empty.
func (s *InterestService) enrich(ctx context.Context, match *models.Match, viewer string, titles map[string]string) models.MatchWithProfile {
	out := models.MatchWithProfile{Match: *match}

	if user, err := s.Store.GetUser(ctx, match.Other(viewer)); err == nil {
		out.OtherUser = user
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("⚠️ Failed to load matched profile", "userId", match.Other(viewer), "error", err)
	}

	title, ok := titles[match.EventID]
	if !ok {
		if event, err := s.Store.GetEvent(ctx, match.EventID); err == nil {
			title = event.Title
		}
		titles[match.EventID] = title
	}
	out.EventTitle = title

	if last, err := s.Store.ListMessages(ctx, match.MatchID, 1); err == nil && len(last) > 0 {
		out.LastMessage = last[0].Text
	}
	return out
}

// ListInterests returns the interests the caller has declared.
func (s *InterestService) ListInterests(ctx context.Context, sess auth.Session) ([]models.Interest, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	interests, err := s.Store.ListInterestsFrom(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	if interests == nil {
		interests = []models.Interest{}
	}
	return interests, nil
}
