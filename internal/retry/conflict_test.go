package retry_test

import (
	"context"
	"errors"
	"testing"

	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/retry"
)

func TestOnConflict(t *testing.T) {
	t.Run("RetriesOnce", func(t *testing.T) {
		calls := 0
		value, err := retry.OnConflict(context.Background(), func() (int, error) {
			calls++
			if calls == 1 {
				return 0, exceptions.Conflict("recipe", "r1")
			}
			return 42, nil
		})
		if err != nil || value != 42 {
			t.Fatalf("expected 42, got %d %v", value, err)
		}
		if calls != 2 {
			t.Fatalf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("SurfacesConflict", func(t *testing.T) {
		calls := 0
		_, err := retry.OnConflict(context.Background(), func() (int, error) {
			calls++
			return 0, exceptions.Conflict("recipe", "r1")
		})
		if !exceptions.IsConflict(err) {
			t.Fatalf("expected Conflict, got %v", err)
		}
		if calls != retry.ConflictAttempts {
			t.Fatalf("expected %d calls, got %d", retry.ConflictAttempts, calls)
		}
	})

	t.Run("OtherErrorsAreTerminal", func(t *testing.T) {
		calls := 0
		cause := exceptions.NotFound("recipe", "r1")
		_, err := retry.OnConflict(context.Background(), func() (int, error) {
			calls++
			return 0, cause
		})
		if !errors.Is(err, cause) {
			t.Fatalf("expected the NotFound cause, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected a single call, got %d", calls)
		}
	})
}
