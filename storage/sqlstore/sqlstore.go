// Package sqlstore provides a database/sql implementation of storage.Store.
// It runs on SQLite (pure Go driver) for local development and tests, and on
// Postgres through pgx.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver "pgx"
	_ "modernc.org/sqlite"             // Pure Go SQLite driver (no CGO)

	"eventfriend_server/models"
	"eventfriend_server/storage"
)

// Ensure SQLStore implements storage.Store
var _ storage.Store = (*SQLStore)(nil)

// Dialect selects placeholder style and connection setup.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// SQLStore implements storage.Store on a *sql.DB.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLite opens (creating if needed) the SQLite database at dbPath and runs
// migrations.
func NewSQLite(dbPath string) (*SQLStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps PRAGMAs in effect and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return newStore(db, SQLite)
}

// NewPostgres connects to the Postgres database at dsn and runs migrations.
func NewPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return newStore(db, Postgres)
}

func newStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	return string(b), err
}

func decodeList(raw string) ([]string, error) {
	var values []string
	if raw == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// Users

// PutUser inserts or replaces a profile.
func (s *SQLStore) PutUser(ctx context.Context, user *models.User) error {
	prefs, err := encodeList(user.EventPreferences)
	if err != nil {
		return fmt.Errorf("failed to encode event preferences: %w", err)
	}
	legacy, err := encodeList(user.PeopleInterestedInMe)
	if err != nil {
		return fmt.Errorf("failed to encode peopleInterestedInMe: %w", err)
	}

	_, err = s.exec(ctx, `
		INSERT INTO users (id, name, age, location, bio, profile_image_url, event_preferences,
			distance_preference, age_preference, people_interested_in_me, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			location = excluded.location,
			bio = excluded.bio,
			profile_image_url = excluded.profile_image_url,
			event_preferences = excluded.event_preferences,
			distance_preference = excluded.distance_preference,
			age_preference = excluded.age_preference,
			people_interested_in_me = excluded.people_interested_in_me,
			updated_at = excluded.updated_at`,
		user.UserID, user.Name, user.Age, user.Location, user.Bio, user.ProfileImageURL, prefs,
		user.DistancePreference, user.AgePreference, legacy, toNanos(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser retrieves a profile by user id.
func (s *SQLStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var (
		user          models.User
		prefs, legacy string
		updatedAt     int64
	)
	err := s.queryRow(ctx, `
		SELECT id, name, age, location, bio, profile_image_url, event_preferences,
			distance_preference, age_preference, people_interested_in_me, updated_at
		FROM users WHERE id = ?`, userID,
	).Scan(&user.UserID, &user.Name, &user.Age, &user.Location, &user.Bio, &user.ProfileImageURL, &prefs,
		&user.DistancePreference, &user.AgePreference, &legacy, &updatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	if user.EventPreferences, err = decodeList(prefs); err != nil {
		return nil, fmt.Errorf("failed to decode event preferences: %w", err)
	}
	if user.PeopleInterestedInMe, err = decodeList(legacy); err != nil {
		return nil, fmt.Errorf("failed to decode peopleInterestedInMe: %w", err)
	}
	user.UpdatedAt = fromNanos(updatedAt)
	return &user, nil
}

// Accounts

// CreateAccount inserts a credential row; the email must be unused.
func (s *SQLStore) CreateAccount(ctx context.Context, account *models.Account) error {
	res, err := s.exec(ctx, `
		INSERT INTO accounts (email, user_id, display_name, password_hash, reset_code_hash, reset_expires_at, reset_attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		account.EmailID, account.UserID, account.DisplayName, account.PasswordHash,
		account.ResetCodeHash, toNanos(account.ResetExpiresAt), account.ResetAttempts, toNanos(account.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrAlreadyExists
	}
	return nil
}

// GetAccountByEmail retrieves the credential row for email.
func (s *SQLStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var (
		account          models.Account
		resetAt, created int64
	)
	err := s.queryRow(ctx, `
		SELECT email, user_id, display_name, password_hash, reset_code_hash, reset_expires_at, reset_attempts, created_at
		FROM accounts WHERE email = ?`, email,
	).Scan(&account.EmailID, &account.UserID, &account.DisplayName, &account.PasswordHash,
		&account.ResetCodeHash, &resetAt, &account.ResetAttempts, &created)
	if err != nil {
		return nil, notFound(err)
	}
	account.ResetExpiresAt = fromNanos(resetAt)
	account.CreatedAt = fromNanos(created)
	return &account, nil
}

// UpdateAccount rewrites the mutable credential fields.
func (s *SQLStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	res, err := s.exec(ctx, `
		UPDATE accounts SET display_name = ?, password_hash = ?, reset_code_hash = ?, reset_expires_at = ?, reset_attempts = ?
		WHERE email = ?`,
		account.DisplayName, account.PasswordHash, account.ResetCodeHash, toNanos(account.ResetExpiresAt),
		account.ResetAttempts, account.EmailID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// IncrementResetAttempts bumps the failed reset counter and returns its new value.
func (s *SQLStore) IncrementResetAttempts(ctx context.Context, email string) (int, error) {
	var attempts int
	err := s.queryRow(ctx, `
		UPDATE accounts SET reset_attempts = reset_attempts + 1
		WHERE email = ?
		RETURNING reset_attempts`, email,
	).Scan(&attempts)
	if err != nil {
		return 0, notFound(err)
	}
	return attempts, nil
}
