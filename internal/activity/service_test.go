package activity_test

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/activity"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/memory"
)

func TestPrepend(t *testing.T) {
	var log []data.ActivityDTO
	for i := 1; i <= 7; i++ {
		log = activity.Prepend(log, data.ActivityDTO{RecipeId: fmt.Sprintf("r%d", i)})
	}
	if len(log) != activity.MaxEntries {
		t.Fatalf("expected %d entries, got %d", activity.MaxEntries, len(log))
	}
	for i, expected := range []string{"r7", "r6", "r5", "r4", "r3"} {
		if log[i].RecipeId != expected {
			t.Fatalf("position %d: expected %s, got %s", i, expected, log[i].RecipeId)
		}
	}
}

func TestService(t *testing.T) {
	store := memory.NewStore()
	service := activity.NewService(store, zap.NewNop())
	ctx := context.TODO()

	t.Run("SixCreationsKeepFive", func(t *testing.T) {
		for i := 1; i <= 6; i++ {
			if _, err := service.RecordRecipeCreated(ctx, "u1", fmt.Sprintf("r%d", i), fmt.Sprintf("Recipe %d", i)); err != nil {
				t.Fatalf("Failed to record: %s", err)
			}
		}
		recent, err := service.ListRecent(ctx, "u1")
		if err != nil {
			t.Fatalf("Failed to list: %s", err)
		}
		if len(recent) != 5 || recent[0].RecipeId != "r6" || recent[4].RecipeId != "r2" {
			t.Fatalf("unexpected log %v", recent)
		}
		if recent[0].RecipeName != "Recipe 6" {
			t.Fatalf("expected title snapshot, got %s", recent[0].RecipeName)
		}
	})

	t.Run("RemoveRecipe", func(t *testing.T) {
		if err := service.RemoveRecipe(ctx, "u1", "r4"); err != nil {
			t.Fatalf("Failed to remove: %s", err)
		}
		recent, _ := service.ListRecent(ctx, "u1")
		if len(recent) != 4 {
			t.Fatalf("expected 4 entries, got %v", recent)
		}
		for _, entry := range recent {
			if entry.RecipeId == "r4" {
				t.Fatalf("r4 should be gone: %v", recent)
			}
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		if _, err := service.ListRecent(ctx, "nobody"); !exceptions.IsNotFound(err) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})
}
