package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventfriend_server/auth"
	"eventfriend_server/models"
	"eventfriend_server/storage"
)

const (
	MinAge = 18
	MaxAge = 120
)

type UserProfileService struct {
	Store storage.Store
	now   func() time.Time
}

func NewUserProfileService(store storage.Store) *UserProfileService {
	return &UserProfileService{Store: store, now: time.Now}
}

// ProfileUpdate carries editable profile fields. Nil fields are left alone
// by UpdateProfile and cleared by SaveProfile.
type ProfileUpdate struct {
	Name               *string   `json:"name,omitempty"`
	Age                *int      `json:"age,omitempty"`
	Location           *string   `json:"location,omitempty"`
	Bio                *string   `json:"bio,omitempty"`
	ProfileImageURL    *string   `json:"profileImageUrl,omitempty"`
	EventPreferences   *[]string `json:"eventPreferences,omitempty"`
	DistancePreference *int      `json:"distancePreference,omitempty"`
	AgePreference      *int      `json:"agePreference,omitempty"`
}

// ProfileView is a profile plus whether it is complete enough to be shown.
type ProfileView struct {
	*models.User
	ProfileComplete bool `json:"profileComplete"`
}

func (u *ProfileUpdate) validate() error {
	if u.Age != nil && *u.Age != 0 && (*u.Age < MinAge || *u.Age > MaxAge) {
		return invalid(fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge))
	}
	if u.DistancePreference != nil && *u.DistancePreference < 0 {
		return invalid("distancePreference cannot be negative")
	}
	if u.AgePreference != nil && *u.AgePreference < 0 {
		return invalid("agePreference cannot be negative")
	}
	if u.EventPreferences != nil {
		for _, tag := range *u.EventPreferences {
			if !models.IsCategory(tag) {
				return invalid(fmt.Sprintf("unknown event preference %q", tag))
			}
		}
	}
	return nil
}

func (u *ProfileUpdate) apply(user *models.User) {
	if u.Name != nil {
		user.Name = strings.TrimSpace(*u.Name)
	}
	if u.Age != nil {
		user.Age = *u.Age
	}
	if u.Location != nil {
		user.Location = strings.TrimSpace(*u.Location)
	}
	if u.Bio != nil {
		user.Bio = strings.TrimSpace(*u.Bio)
	}
	if u.ProfileImageURL != nil {
		user.ProfileImageURL = strings.TrimSpace(*u.ProfileImageURL)
	}
	if u.EventPreferences != nil {
		user.EventPreferences = dedupe(*u.EventPreferences)
	}
	if u.DistancePreference != nil {
		user.DistancePreference = *u.DistancePreference
	}
	if u.AgePreference != nil {
		user.AgePreference = *u.AgePreference
	}
}

func dedupe(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// SaveProfile creates or replaces the caller's profile.
func (s *UserProfileService) SaveProfile(ctx context.Context, sess auth.Session, input ProfileUpdate) (*ProfileView, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	user := &models.User{UserID: sess.UserID}
	if existing, err := s.Store.GetUser(ctx, sess.UserID); err == nil {
		user.PeopleInterestedInMe = existing.PeopleInterestedInMe
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	input.apply(user)
	return s.put(ctx, user)
}

// UpdateProfile changes only the fields set in update.
func (s *UserProfileService) UpdateProfile(ctx context.Context, sess auth.Session, update ProfileUpdate) (*ProfileView, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if err := update.validate(); err != nil {
		return nil, err
	}

	user, err := s.Store.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	update.apply(user)
	return s.put(ctx, user)
}

func (s *UserProfileService) put(ctx context.Context, user *models.User) (*ProfileView, error) {
	user.UpdatedAt = s.now().UTC()
	if err := s.Store.PutUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	slog.Info("✅ Profile saved", "userId", user.UserID)
	return &ProfileView{User: user, ProfileComplete: user.Complete()}, nil
}

// GetOwnProfile returns the caller's profile. A caller without one gets an
// empty, incomplete profile so the client can send them to profile setup.
func (s *UserProfileService) GetOwnProfile(ctx context.Context, sess auth.Session) (*ProfileView, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	user, err := s.Store.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &ProfileView{User: &models.User{UserID: sess.UserID}}, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &ProfileView{User: user, ProfileComplete: user.Complete()}, nil
}

// GetProfile returns another user's profile.
func (s *UserProfileService) GetProfile(ctx context.Context, sess auth.Session, userID string) (*models.User, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}
