package users_test

import (
	"context"
	"testing"

	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/memory"
	"recipeshare.me/recipes/internal/users"
)

func TestEnsureProfile(t *testing.T) {
	store := memory.NewStore()
	service := users.NewService(store, auth.ContextProvider{})
	photo := "https://example.com/u1.png"
	ctx := auth.WithIdentity(context.TODO(), auth.Identity{Id: "u1", DisplayName: "Budi", PhotoURL: &photo})

	user, err := service.EnsureProfile(ctx, data.UserInputDTO{})
	if err != nil {
		t.Fatalf("Failed to ensure profile: %s", err)
	}
	if user.DisplayName != "Budi" || user.PhotoURL == nil || *user.PhotoURL != photo {
		t.Fatalf("expected claims to seed the profile, got %v", user)
	}
	renamed := "Budi S."
	user, err = service.EnsureProfile(ctx, data.UserInputDTO{DisplayName: &renamed})
	if err != nil || user.DisplayName != renamed {
		t.Fatalf("expected rename, got %v: %v", user, err)
	}
	if _, err := service.EnsureProfile(context.TODO(), data.UserInputDTO{}); !exceptions.IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	blank := "  "
	if _, err := service.EnsureProfile(ctx, data.UserInputDTO{DisplayName: &blank}); !exceptions.IsInvalidInput(err) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}
