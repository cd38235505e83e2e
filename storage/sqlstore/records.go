package sqlstore

import (
	"context"
	"fmt"
	"time"

	"eventfriend_server/models"
	"eventfriend_server/storage"
)

// Events

// PutEvent inserts or replaces an event. PeopleInterested is replaced too.
func (s *SQLStore) PutEvent(ctx context.Context, event *models.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO events (id, title, date, location, category, max_people, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			location = excluded.location,
			category = excluded.category,
			max_people = excluded.max_people,
			created_by = excluded.created_by`),
		event.EventID, event.Title, event.Date, event.Location, event.Category, event.MaxPeople,
		event.CreatedBy, toNanos(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM event_interests WHERE event_id = ?`), event.EventID); err != nil {
		return fmt.Errorf("failed to reset event interests: %w", err)
	}
	now := time.Now().UnixNano()
	for _, userID := range event.PeopleInterested {
		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO event_interests (event_id, user_id, added_at) VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING`), event.EventID, userID, now)
		if err != nil {
			return fmt.Errorf("failed to save event interest: %w", err)
		}
	}

	return tx.Commit()
}

const eventColumns = `id, title, date, location, category, max_people, created_by, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row scanner) (*models.Event, error) {
	var (
		event   models.Event
		created int64
	)
	if err := row.Scan(&event.EventID, &event.Title, &event.Date, &event.Location, &event.Category,
		&event.MaxPeople, &event.CreatedBy, &created); err != nil {
		return nil, err
	}
	event.CreatedAt = fromNanos(created)
	return &event, nil
}

// GetEvent retrieves an event with its sorted peopleInterested set.
func (s *SQLStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := scanEvent(s.queryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, eventID))
	if err != nil {
		return nil, notFound(err)
	}

	people, err := s.eventInterests(ctx, `WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, err
	}
	event.PeopleInterested = people[eventID]
	return event, nil
}

// ListEvents returns every event.
func (s *SQLStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	people, err := s.eventInterests(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].PeopleInterested = people[events[i].EventID]
	}
	return events, nil
}

func (s *SQLStore) eventInterests(ctx context.Context, where string, args ...interface{}) (map[string][]string, error) {
	rows, err := s.query(ctx, `SELECT event_id, user_id FROM event_interests `+where+` ORDER BY event_id, user_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load event interests: %w", err)
	}
	defer rows.Close()

	people := map[string][]string{}
	for rows.Next() {
		var eventID, userID string
		if err := rows.Scan(&eventID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan event interest: %w", err)
		}
		people[eventID] = append(people[eventID], userID)
	}
	return people, rows.Err()
}

func (s *SQLStore) eventExists(ctx context.Context, eventID string) error {
	var one int
	if err := s.queryRow(ctx, `SELECT 1 FROM events WHERE id = ?`, eventID).Scan(&one); err != nil {
		return notFound(err)
	}
	return nil
}

// AddEventInterest adds userID to the event's peopleInterested set.
func (s *SQLStore) AddEventInterest(ctx context.Context, eventID, userID string) error {
	if err := s.eventExists(ctx, eventID); err != nil {
		return err
	}
	_, err := s.exec(ctx, `
		INSERT INTO event_interests (event_id, user_id, added_at) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`, eventID, userID, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to add event interest: %w", err)
	}
	return nil
}

// RemoveEventInterest removes userID from the event's peopleInterested set.
func (s *SQLStore) RemoveEventInterest(ctx context.Context, eventID, userID string) error {
	if err := s.eventExists(ctx, eventID); err != nil {
		return err
	}
	if _, err := s.exec(ctx, `DELETE FROM event_interests WHERE event_id = ? AND user_id = ?`, eventID, userID); err != nil {
		return fmt.Errorf("failed to remove event interest: %w", err)
	}
	return nil
}

// Interests

// CreateInterest inserts the interest unless the triple already exists.
func (s *SQLStore) CreateInterest(ctx context.Context, interest *models.Interest) error {
	res, err := s.exec(ctx, `
		INSERT INTO interests (from_user, to_user, event_id, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		interest.FromUser, interest.ToUser, interest.EventID, toNanos(interest.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to create interest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrAlreadyExists
	}
	return nil
}

func scanInterest(row scanner) (*models.Interest, error) {
	var (
		from, to, eventID string
		created           int64
	)
	if err := row.Scan(&from, &to, &eventID, &created); err != nil {
		return nil, err
	}
	return models.NewInterest(from, to, eventID, fromNanos(created)), nil
}

// GetInterest retrieves one directed interest.
func (s *SQLStore) GetInterest(ctx context.Context, fromUser, toUser, eventID string) (*models.Interest, error) {
	interest, err := scanInterest(s.queryRow(ctx, `
		SELECT from_user, to_user, event_id, created_at FROM interests
		WHERE from_user = ? AND to_user = ? AND event_id = ?`, fromUser, toUser, eventID))
	if err != nil {
		return nil, notFound(err)
	}
	return interest, nil
}

// DeleteInterest removes one directed interest if present.
func (s *SQLStore) DeleteInterest(ctx context.Context, fromUser, toUser, eventID string) error {
	_, err := s.exec(ctx, `DELETE FROM interests WHERE from_user = ? AND to_user = ? AND event_id = ?`, fromUser, toUser, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete interest: %w", err)
	}
	return nil
}

// ListInterestsFrom returns the interests userID declared.
func (s *SQLStore) ListInterestsFrom(ctx context.Context, userID string) ([]models.Interest, error) {
	return s.listInterests(ctx, "from_user", userID)
}

// ListInterestsTo returns the interests declared in userID.
func (s *SQLStore) ListInterestsTo(ctx context.Context, userID string) ([]models.Interest, error) {
	return s.listInterests(ctx, "to_user", userID)
}

func (s *SQLStore) listInterests(ctx context.Context, column, userID string) ([]models.Interest, error) {
	rows, err := s.query(ctx, `
		SELECT from_user, to_user, event_id, created_at FROM interests
		WHERE `+column+` = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	defer rows.Close()

	var interests []models.Interest
	for rows.Next() {
		interest, err := scanInterest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interest: %w", err)
		}
		interests = append(interests, *interest)
	}
	return interests, rows.Err()
}

// Matches

// CreateMatch inserts the match unless its id is taken.
func (s *SQLStore) CreateMatch(ctx context.Context, match *models.Match) (bool, error) {
	res, err := s.exec(ctx, `
		INSERT INTO matches (id, user_a, user_b, event_id, status, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		match.MatchID, match.UserA, match.UserB, match.EventID, match.Status,
		toNanos(match.CreatedAt), toNanos(match.LastActivity))
	if err != nil {
		return false, fmt.Errorf("failed to create match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to create match: %w", err)
	}
	return n == 1, nil
}

const matchColumns = `id, user_a, user_b, event_id, status, created_at, last_activity`

func scanMatch(row scanner) (*models.Match, error) {
	var (
		match            models.Match
		created, touched int64
	)
	if err := row.Scan(&match.MatchID, &match.UserA, &match.UserB, &match.EventID, &match.Status, &created, &touched); err != nil {
		return nil, err
	}
	match.CreatedAt = fromNanos(created)
	match.LastActivity = fromNanos(touched)
	return &match, nil
}

// GetMatch retrieves a match by id.
func (s *SQLStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := scanMatch(s.queryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, matchID))
	if err != nil {
		return nil, notFound(err)
	}
	return match, nil
}

// ListMatchesAsUserA returns matches where userID is userA.
func (s *SQLStore) ListMatchesAsUserA(ctx context.Context, userID string) ([]models.Match, error) {
	return s.listMatches(ctx, "user_a", userID)
}

// ListMatchesAsUserB returns matches where userID is userB.
func (s *SQLStore) ListMatchesAsUserB(ctx context.Context, userID string) ([]models.Match, error) {
	return s.listMatches(ctx, "user_b", userID)
}

func (s *SQLStore) listMatches(ctx context.Context, column, userID string) ([]models.Match, error) {
	rows, err := s.query(ctx, `SELECT `+matchColumns+` FROM matches WHERE `+column+` = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, *match)
	}
	return matches, rows.Err()
}

// DeleteMatch removes a match if present.
func (s *SQLStore) DeleteMatch(ctx context.Context, matchID string) error {
	if _, err := s.exec(ctx, `DELETE FROM matches WHERE id = ?`, matchID); err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return nil
}

// TouchMatch sets lastActivity.
func (s *SQLStore) TouchMatch(ctx context.Context, matchID string, at time.Time) error {
	res, err := s.exec(ctx, `UPDATE matches SET last_activity = ? WHERE id = ?`, toNanos(at), matchID)
	if err != nil {
		return fmt.Errorf("failed to update match activity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Messages

// PutMessage stores a message. It returns storage.ErrNotFound when the
// match does not exist.
func (s *SQLStore) PutMessage(ctx context.Context, message *models.Message) error {
	message.SortKey = models.MessageSortKey(message.Timestamp, message.MessageID)
	res, err := s.exec(ctx, `
		INSERT INTO messages (id, match_id, sender_id, sender_name, text, created_at)
		SELECT ?, ?, ?, ?, ?, CAST(? AS BIGINT)
		WHERE EXISTS (SELECT 1 FROM matches WHERE id = ?)`,
		message.MessageID, message.MatchID, message.SenderID, message.SenderName, message.Text, toNanos(message.Timestamp),
		message.MatchID)
	if err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteMessage removes one message. Missing messages are ignored.
func (s *SQLStore) DeleteMessage(ctx context.Context, message *models.Message) error {
	if _, err := s.exec(ctx, `DELETE FROM messages WHERE id = ? AND match_id = ?`, message.MessageID, message.MatchID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// ListMessages returns the latest limit messages, oldest first.
func (s *SQLStore) ListMessages(ctx context.Context, matchID string, limit int) ([]models.Message, error) {
	rows, err := s.query(ctx, `
		SELECT id, match_id, sender_id, sender_name, text, created_at FROM messages
		WHERE match_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var (
			msg     models.Message
			created int64
		)
		if err := rows.Scan(&msg.MessageID, &msg.MatchID, &msg.SenderID, &msg.SenderName, &msg.Text, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Timestamp = fromNanos(created)
		msg.SortKey = models.MessageSortKey(msg.Timestamp, msg.MessageID)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// DeleteMessages removes every message of a match.
func (s *SQLStore) DeleteMessages(ctx context.Context, matchID string) error {
	if _, err := s.exec(ctx, `DELETE FROM messages WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}
