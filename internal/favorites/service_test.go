package favorites_test

import (
	"context"
	"testing"

	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/favorites"
	"recipeshare.me/recipes/internal/memory"
)

func TestFavorites(t *testing.T) {
	store := memory.NewStore()
	service := favorites.NewService(store, store, auth.ContextProvider{})
	ctx := auth.WithIdentity(context.TODO(), auth.Identity{Id: "u1"})
	title := "Gado-gado"
	author := "author"
	recipe, err := store.CreateRecipe(context.TODO(), data.RecipeInputDTO{Title: &title, AuthorId: &author})
	if err != nil {
		t.Fatalf("Failed to create recipe: %s", err)
	}

	t.Run("Toggle", func(t *testing.T) {
		for i, expected := range []bool{true, false, true} {
			present, err := service.ToggleFavorite(ctx, recipe.Id())
			if err != nil {
				t.Fatalf("Failed to toggle: %s", err)
			}
			if present != expected {
				t.Fatalf("toggle %d: expected %v, got %v", i, expected, present)
			}
		}
	})

	t.Run("Anonymous", func(t *testing.T) {
		if _, err := service.ToggleFavorite(context.TODO(), recipe.Id()); !exceptions.IsUnauthorized(err) {
			t.Fatalf("expected Unauthorized, got %v", err)
		}
	})

	t.Run("DanglingDropped", func(t *testing.T) {
		if _, err := service.ToggleFavorite(ctx, "deleted-recipe"); err != nil {
			t.Fatalf("Failed to toggle: %s", err)
		}
		listed, err := service.ListMine(ctx)
		if err != nil {
			t.Fatalf("Failed to list: %s", err)
		}
		if len(listed) != 1 || listed[0].Id() != recipe.Id() {
			t.Fatalf("expected only the live recipe, got %v", listed)
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		listed, err := service.ListFavorites(context.TODO(), "nobody")
		if err != nil || len(listed) != 0 {
			t.Fatalf("expected an empty list, got %v: %v", listed, err)
		}
	})
}
