// Package dynamo implements storage.Store on DynamoDB.
//
// Table layout (names take an optional prefix):
//
//	Users      PK userId
//	Accounts   PK emailId
//	Events     PK eventId (peopleInterested is a string set)
//	Interests  PK interestId, GSIs fromUser-index, toUser-index
//	Matches    PK matchId, GSIs userA-index, userB-index
//	Messages   PK matchId, SK "<timestamp>#<messageId>"
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"eventfriend_server/models"
	"eventfriend_server/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on top of DynamoService.
type Store struct {
	Dynamo      *DynamoService
	TablePrefix string
}

// New creates a Store over client.
func New(client DynamoAPI, tablePrefix string) *Store {
	return &Store{Dynamo: &DynamoService{Client: client}, TablePrefix: tablePrefix}
}

func (s *Store) table(name string) string {
	return s.TablePrefix + name
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close() error {
	return nil
}

func stringKey(attr, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attr: &types.AttributeValueMemberS{Value: value},
	}
}

// Users

func (s *Store) PutUser(ctx context.Context, user *models.User) error {
	return s.Dynamo.PutItem(ctx, s.table(models.UsersTable), user)
}

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.Dynamo.GetItem(ctx, s.table(models.UsersTable), stringKey("userId", userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Accounts

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	return s.Dynamo.PutItemIfAbsent(ctx, s.table(models.AccountsTable), "emailId", account)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := s.Dynamo.GetItem(ctx, s.table(models.AccountsTable), stringKey("emailId", email), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Store) UpdateAccount(ctx context.Context, account *models.Account) error {
	return s.Dynamo.PutItem(ctx, s.table(models.AccountsTable), account)
}

func (s *Store) IncrementResetAttempts(ctx context.Context, email string) (int, error) {
	return s.Dynamo.IncrementCounter(ctx, s.table(models.AccountsTable), stringKey("emailId", email), "resetAttempts", "attribute_exists(emailId)")
}

// Events

func (s *Store) PutEvent(ctx context.Context, event *models.Event) error {
	return s.Dynamo.PutItem(ctx, s.table(models.EventsTable), event)
}

func (s *Store) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	if err := s.Dynamo.GetItem(ctx, s.table(models.EventsTable), stringKey("eventId", eventID), &event); err != nil {
		return nil, err
	}
	sort.Strings(event.PeopleInterested)
	return &event, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	items, err := s.Dynamo.ScanAll(ctx, s.table(models.EventsTable))
	if err != nil {
		return nil, err
	}
	var events []models.Event
	if err := attributevalue.UnmarshalListOfMaps(items, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %w", err)
	}
	for i := range events {
		sort.Strings(events[i].PeopleInterested)
	}
	return events, nil
}

func (s *Store) AddEventInterest(ctx context.Context, eventID, userID string) error {
	return s.Dynamo.UpdateItem(ctx, s.table(models.EventsTable), stringKey("eventId", eventID),
		"ADD #people :user",
		map[string]string{"#people": "peopleInterested"},
		map[string]types.AttributeValue{":user": &types.AttributeValueMemberSS{Value: []string{userID}}},
		"attribute_exists(eventId)",
	)
}

func (s *Store) RemoveEventInterest(ctx context.Context, eventID, userID string) error {
	return s.Dynamo.UpdateItem(ctx, s.table(models.EventsTable), stringKey("eventId", eventID),
		"DELETE #people :user",
		map[string]string{"#people": "peopleInterested"},
		map[string]types.AttributeValue{":user": &types.AttributeValueMemberSS{Value: []string{userID}}},
		"attribute_exists(eventId)",
	)
}

// Interests

func (s *Store) CreateInterest(ctx context.Context, interest *models.Interest) error {
	return s.Dynamo.PutItemIfAbsent(ctx, s.table(models.InterestsTable), "interestId", interest)
}

func (s *Store) GetInterest(ctx context.Context, fromUser, toUser, eventID string) (*models.Interest, error) {
	var interest models.Interest
	key := stringKey("interestId", models.InterestID(fromUser, toUser, eventID))
	if err := s.Dynamo.GetItem(ctx, s.table(models.InterestsTable), key, &interest); err != nil {
		return nil, err
	}
	return &interest, nil
}

func (s *Store) DeleteInterest(ctx context.Context, fromUser, toUser, eventID string) error {
	key := stringKey("interestId", models.InterestID(fromUser, toUser, eventID))
	return s.Dynamo.DeleteItem(ctx, s.table(models.InterestsTable), key)
}

func (s *Store) ListInterestsFrom(ctx context.Context, userID string) ([]models.Interest, error) {
	return s.queryInterests(ctx, models.FromUserIndex, "fromUser", userID)
}

func (s *Store) ListInterestsTo(ctx context.Context, userID string) ([]models.Interest, error) {
	return s.queryInterests(ctx, models.ToUserIndex, "toUser", userID)
}

func (s *Store) queryInterests(ctx context.Context, index, attr, userID string) ([]models.Interest, error) {
	items, err := s.Dynamo.QueryItemsWithIndex(ctx, s.table(models.InterestsTable), index, attr, userID)
	if err != nil {
		return nil, err
	}
	var interests []models.Interest
	if err := attributevalue.UnmarshalListOfMaps(items, &interests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interests: %w", err)
	}
	return interests, nil
}

// Matches

func (s *Store) CreateMatch(ctx context.Context, match *models.Match) (bool, error) {
	err := s.Dynamo.PutItemIfAbsent(ctx, s.table(models.MatchesTable), "matchId", match)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	var match models.Match
	if err := s.Dynamo.GetItem(ctx, s.table(models.MatchesTable), stringKey("matchId", matchID), &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Store) ListMatchesAsUserA(ctx context.Context, userID string) ([]models.Match, error) {
	return s.queryMatches(ctx, models.UserAIndex, "userA", userID)
}

func (s *Store) ListMatchesAsUserB(ctx context.Context, userID string) ([]models.Match, error) {
	return s.queryMatches(ctx, models.UserBIndex, "userB", userID)
}

func (s *Store) queryMatches(ctx context.Context, index, attr, userID string) ([]models.Match, error) {
	items, err := s.Dynamo.QueryItemsWithIndex(ctx, s.table(models.MatchesTable), index, attr, userID)
	if err != nil {
		return nil, err
	}
	var matches []models.Match
	if err := attributevalue.UnmarshalListOfMaps(items, &matches); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matches: %w", err)
	}
	return matches, nil
}

func (s *Store) DeleteMatch(ctx context.Context, matchID string) error {
	return s.Dynamo.DeleteItem(ctx, s.table(models.MatchesTable), stringKey("matchId", matchID))
}

func (s *Store) TouchMatch(ctx context.Context, matchID string, at time.Time) error {
	ts, err := attributevalue.Marshal(at)
	if err != nil {
		return fmt.Errorf("failed to marshal lastActivity: %w", err)
	}
	return s.Dynamo.UpdateItem(ctx, s.table(models.MatchesTable), stringKey("matchId", matchID),
		"SET #lastActivity = :ts",
		map[string]string{"#lastActivity": "lastActivity"},
		map[string]types.AttributeValue{":ts": ts},
		"attribute_exists(matchId)",
	)
}

// Messages

func (s *Store) PutMessage(ctx context.Context, message *models.Message) error {
	message.SortKey = models.MessageSortKey(message.Timestamp, message.MessageID)
	return s.Dynamo.PutItem(ctx, s.table(models.MessagesTable), message)
}

func (s *Store) ListMessages(ctx context.Context, matchID string, limit int) ([]models.Message, error) {
	items, err := s.Dynamo.QueryItemsWithOptions(ctx, s.table(models.MessagesTable), "matchId", matchID, int32(limit), true)
	if err != nil {
		return nil, err
	}
	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	// ✅ Reverse so the latest message comes last
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *Store) DeleteMessages(ctx context.Context, matchID string) error {
	table := s.table(models.MessagesTable)
	items, err := s.Dynamo.QueryAll(ctx, messageKeysQuery(table, matchID))
	if err != nil {
		return err
	}

	requests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
				"matchId": item["matchId"],
				"SK":      item["SK"],
			}},
		})
	}
	return s.Dynamo.BatchWriteItems(ctx, table, requests)
}

func (s *Store) DeleteMessage(ctx context.Context, message *models.Message) error {
	sk := message.SortKey
	if sk == "" {
		sk = models.MessageSortKey(message.Timestamp, message.MessageID)
	}
	return s.Dynamo.DeleteItem(ctx, s.table(models.MessagesTable), map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: message.MatchID},
		"SK":      &types.AttributeValueMemberS{Value: sk},
	})
}
