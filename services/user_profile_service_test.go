package services

import (
	"context"
	"errors"
	"testing"

	"eventfriend_server/auth"
	"eventfriend_server/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestUserProfileService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	dave := auth.Session{UserID: "dave", Email: "dave@example.com"}

	t.Run("new user has an incomplete empty profile", func(t *testing.T) {
		view, err := env.profiles.GetOwnProfile(ctx, dave)
		if err != nil {
			t.Fatalf("GetOwnProfile failed: %v", err)
		}
		if view.ProfileComplete || view.UserID != "dave" {
			t.Errorf("unexpected view: %+v", view)
		}
		if _, err := env.profiles.UpdateProfile(ctx, dave, ProfileUpdate{Bio: strPtr("x")}); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("save then partial update", func(t *testing.T) {
		prefs := []string{models.CategoryFood, models.CategoryFood, models.CategoryParty}
		view, err := env.profiles.SaveProfile(ctx, dave, ProfileUpdate{
			Name: strPtr("Dave"), Age: intPtr(30), Bio: strPtr("new here"), EventPreferences: &prefs,
		})
		if err != nil {
			t.Fatalf("SaveProfile failed: %v", err)
		}
		if !view.ProfileComplete || len(view.EventPreferences) != 2 {
			t.Errorf("unexpected view: %+v", view)
		}

		view, err = env.profiles.UpdateProfile(ctx, dave, ProfileUpdate{Location: strPtr("Austin")})
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if view.Name != "Dave" || view.Location != "Austin" || view.Age != 30 {
			t.Errorf("partial update lost fields: %+v", view.User)
		}

		other, err := env.profiles.GetProfile(ctx, alice, "dave")
		if err != nil || other.Name != "Dave" {
			t.Errorf("GetProfile = %+v, %v", other, err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		bad := []string{"karaoke"}
		for name, update := range map[string]ProfileUpdate{
			"too young":     {Age: intPtr(17)},
			"too old":       {Age: intPtr(121)},
			"bad category":  {EventPreferences: &bad},
			"negative dist": {DistancePreference: intPtr(-1)},
		} {
			if _, err := env.profiles.UpdateProfile(ctx, dave, update); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
			}
		}
		if _, err := env.profiles.GetProfile(ctx, alice, "nobody"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
		if _, err := env.profiles.GetOwnProfile(ctx, auth.Session{}); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})
}
