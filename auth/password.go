package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"eventfriend_server/models"
	"eventfriend_server/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidResetCode   = errors.New("invalid reset code")
	ErrExpiredResetCode   = errors.New("reset code expired")
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	// MaxResetAttempts is how many confirmations a reset code allows
	// before it is discarded.
	MaxResetAttempts = 5
)

// ResetMailer delivers password reset codes.
type ResetMailer interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// LogMailer stands in for email delivery. The code itself is only logged
// at debug level.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendResetCode(ctx context.Context, email, code string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "📧 Password reset code issued", "email", email)
	logger.DebugContext(ctx, "📧 Password reset code", "email", email, "code", code)
	return nil
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	accounts storage.AccountStore
	mailer   ResetMailer
	resetTTL time.Duration
	cost     int
	now      func() time.Time
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(accounts storage.AccountStore, mailer ResetMailer, resetTTL time.Duration) *PasswordAuthenticator {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &PasswordAuthenticator{
		accounts: accounts,
		mailer:   mailer,
		resetTTL: resetTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account with a hashed password and a fresh user id.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string) (*models.Account, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		EmailID:      email,
		UserID:       uuid.New().String(),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hashed),
		CreatedAt:    a.now().UTC(),
	}
	if err := a.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Authenticate verifies the email and password, returning the account if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.Account, error) {
	account, err := a.accounts.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// RequestPasswordReset issues a six-digit code for the account. Unknown
// emails succeed without sending anything.
func (a *PasswordAuthenticator) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := a.accounts.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Debug("🔍 Password reset requested for unknown email", "email", email)
			return nil
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	code, err := newResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), a.cost)
	if err != nil {
		return fmt.Errorf("failed to hash reset code: %w", err)
	}

	account.ResetCodeHash = string(hashed)
	account.ResetExpiresAt = a.now().UTC().Add(a.resetTTL)
	account.ResetAttempts = 0
	if err := a.accounts.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to save reset code: %w", err)
	}

	return a.mailer.SendResetCode(ctx, account.EmailID, code)
}

// ConfirmPasswordReset sets a new password if code matches the pending reset.
// A code works once.
func (a *PasswordAuthenticator) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	account, err := a.accounts.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidResetCode
		}
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account.ResetCodeHash == "" {
		return ErrInvalidResetCode
	}
	if a.now().After(account.ResetExpiresAt) {
		return ErrExpiredResetCode
	}

	attempts, err := a.accounts.IncrementResetAttempts(ctx, account.EmailID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidResetCode
		}
		return fmt.Errorf("failed to record reset attempt: %w", err)
	}
	if attempts > MaxResetAttempts {
		a.discardResetCode(ctx, account)
		return ErrInvalidResetCode
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.ResetCodeHash), []byte(code)); err != nil {
		if attempts >= MaxResetAttempts {
			a.discardResetCode(ctx, account)
		}
		return ErrInvalidResetCode
	}
	if err := a.ValidateCredential(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), a.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.PasswordHash = string(hashed)
	account.ResetCodeHash = ""
	account.ResetExpiresAt = time.Time{}
	account.ResetAttempts = 0
	if err := a.accounts.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// discardResetCode drops a pending code once its attempts are used up.
func (a *PasswordAuthenticator) discardResetCode(ctx context.Context, account *models.Account) {
	slog.Warn("🔒 Reset code discarded after too many attempts", "email", account.EmailID)
	account.ResetCodeHash = ""
	account.ResetExpiresAt = time.Time{}
	account.ResetAttempts = 0
	if err := a.accounts.UpdateAccount(ctx, account); err != nil {
		slog.Error("❌ Failed to discard reset code", "email", account.EmailID, "error", err)
	}
}

func newResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
