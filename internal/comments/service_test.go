package comments_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/comments"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/memory"
	"recipeshare.me/recipes/internal/ratings"
)

func as(userId string) context.Context {
	return auth.WithIdentity(context.TODO(), auth.Identity{Id: userId, DisplayName: "User " + userId})
}

func newService(store *memory.Store) *comments.Service {
	logger := zap.NewNop()
	rating := ratings.NewService(store, auth.ContextProvider{}, logger)
	service := comments.NewService(store, store, rating, auth.ContextProvider{}, logger)
	service.PageSize = 2
	return service
}

// tickingClock advances a second on every read so creation order is strict.
func tickingClock() func() time.Time {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

// flakyComments fails the next CreateComment calls with a store outage.
type flakyComments struct {
	data.CommentRepository
	failures int
}

func (f *flakyComments) CreateComment(ctx context.Context, input data.CommentInputDTO) (data.CommentDTO, error) {
	if f.failures > 0 {
		f.failures--
		return data.CommentDTO{}, exceptions.Unavailable(errors.New("table throttled"))
	}
	return f.CommentRepository.CreateComment(ctx, input)
}

func TestPostCommentRetry(t *testing.T) {
	store := memory.NewStoreWithClock(tickingClock())
	logger := zap.NewNop()
	flaky := &flakyComments{CommentRepository: store, failures: 1}
	rating := ratings.NewService(store, auth.ContextProvider{}, logger)
	service := comments.NewService(flaky, store, rating, auth.ContextProvider{}, logger)
	title := "Gado Gado"
	author := "author"
	recipe, err := store.CreateRecipe(context.TODO(), data.RecipeInputDTO{Title: &title, AuthorId: &author})
	if err != nil {
		t.Fatalf("Failed to create recipe: %s", err)
	}

	four := 4
	if _, err := service.PostComment(as("u1"), recipe.Id(), "mantap", &four); !exceptions.IsRetryable(err) {
		t.Fatalf("expected a retryable error, got %v", err)
	}
	stored, _ := store.GetRecipe(context.TODO(), recipe.Id())
	if stored.RatingsCount != 1 {
		t.Fatalf("expected the rating to be kept, got %v", stored.Aggregate())
	}

	comment, err := service.PostComment(as("u1"), recipe.Id(), "mantap", &four)
	if err != nil {
		t.Fatalf("Failed to retry: %s", err)
	}
	if comment.Rating == nil || *comment.Rating != 4 {
		t.Fatalf("expected the kept rating on the comment, got %v", comment.Rating)
	}
	stored, _ = store.GetRecipe(context.TODO(), recipe.Id())
	if stored.RatingsCount != 1 || stored.Rating != 4.0 {
		t.Fatalf("expected the retry to leave the aggregate alone, got %v", stored.Aggregate())
	}
}

func TestComments(t *testing.T) {
	store := memory.NewStoreWithClock(tickingClock())
	service := newService(store)
	title := "Soto"
	author := "author"
	recipe, err := store.CreateRecipe(context.TODO(), data.RecipeInputDTO{Title: &title, AuthorId: &author})
	if err != nil {
		t.Fatalf("Failed to create recipe: %s", err)
	}

	t.Run("Anonymous", func(t *testing.T) {
		if _, err := service.PostComment(context.TODO(), recipe.Id(), "hello", nil); !exceptions.IsUnauthorized(err) {
			t.Fatalf("expected Unauthorized, got %v", err)
		}
		results, _ := store.ListComments(context.TODO(), recipe.Id(), data.QueryParams{})
		if len(results.Items) != 0 {
			t.Fatalf("expected no comment to be created, got %v", results.Items)
		}
	})

	t.Run("EmptyContent", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "<b> </b>", "\n\t"} {
			if _, err := service.PostComment(as("u1"), recipe.Id(), raw, nil); !exceptions.IsInvalidInput(err) {
				t.Fatalf("expected InvalidInput for %q, got %v", raw, err)
			}
		}
	})

	t.Run("MissingRecipe", func(t *testing.T) {
		if _, err := service.PostComment(as("u1"), "missing", "hi", nil); !exceptions.IsNotFound(err) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("ReplyToMissingComment", func(t *testing.T) {
		if _, err := service.PostReply(as("u1"), "missing", "hi"); !exceptions.IsNotFound(err) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("RatingSideEffect", func(t *testing.T) {
		five := 5
		comment, err := service.PostComment(as("rater"), recipe.Id(), "<p>Enak!</p>", &five)
		if err != nil {
			t.Fatalf("Failed to post: %s", err)
		}
		if comment.Content != "Enak!" || comment.Rating == nil || *comment.Rating != 5 {
			t.Fatalf("unexpected comment %v", comment)
		}
		if comment.Author.DisplayName != "User rater" || comment.LikeCount() != 0 {
			t.Fatalf("unexpected author or likes %v", comment)
		}
		one := 1
		again, err := service.PostComment(as("rater"), recipe.Id(), "still good", &one)
		if err != nil {
			t.Fatalf("Failed to post: %s", err)
		}
		if *again.Rating != 5 {
			t.Fatalf("expected the first rating to be recorded, got %d", *again.Rating)
		}
		stored, _ := store.GetRecipe(context.TODO(), recipe.Id())
		if stored.RatingsCount != 1 || stored.Rating != 5.0 {
			t.Fatalf("unexpected aggregate %v", stored.Aggregate())
		}
	})

	t.Run("ToggleLike", func(t *testing.T) {
		comment, err := service.PostComment(as("u1"), recipe.Id(), "like me", nil)
		if err != nil {
			t.Fatalf("Failed to post: %s", err)
		}
		steps := []struct {
			liker string
			liked bool
			count int
		}{
			{"u1", true, 1},
			{"u2", true, 2},
			{"u1", false, 1},
		}
		for _, step := range steps {
			result, err := service.ToggleLike(as(step.liker), comment.Id())
			if err != nil {
				t.Fatalf("Failed to toggle: %s", err)
			}
			if result.Liked != step.liked || result.Count != step.count {
				t.Fatalf("after %s toggled expected %v/%d, got %v", step.liker, step.liked, step.count, result)
			}
		}
		stored, _ := store.GetComment(context.TODO(), comment.Id())
		if len(stored.Likes) != 1 || stored.Likes[0] != "u2" {
			t.Fatalf("expected likes={u2}, got %v", stored.Likes)
		}
		if _, err := service.ToggleLike(context.TODO(), comment.Id()); !exceptions.IsUnauthorized(err) {
			t.Fatalf("expected Unauthorized, got %v", err)
		}
		if _, err := service.ToggleLike(as("u1"), "missing"); !exceptions.IsNotFound(err) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("ListComments", func(t *testing.T) {
		other, err := store.CreateRecipe(context.TODO(), data.RecipeInputDTO{Title: &title, AuthorId: &author})
		if err != nil {
			t.Fatalf("Failed to create recipe: %s", err)
		}
		var posted []string
		for _, text := range []string{"first", "second", "third"} {
			comment, err := service.PostComment(as("u1"), other.Id(), text, nil)
			if err != nil {
				t.Fatalf("Failed to post: %s", err)
			}
			posted = append(posted, comment.Id())
		}
		for _, text := range []string{"r1", "r2", "r3"} {
			if _, err := service.PostReply(as("u2"), posted[0], text); err != nil {
				t.Fatalf("Failed to reply: %s", err)
			}
		}
		threads := service.ListComments(context.TODO(), other.Id())
		for round := 0; round < 2; round++ {
			var seen []string
			for thread, err := range threads {
				if err != nil {
					t.Fatalf("Failed to list: %s", err)
				}
				seen = append(seen, thread.Id())
				if thread.Id() == posted[0] {
					if len(thread.Replies) != 3 || thread.Replies[0].Content != "r1" || thread.Replies[2].Content != "r3" {
						t.Fatalf("unexpected replies %v", thread.Replies)
					}
				}
			}
			if len(seen) != 3 || seen[0] != posted[0] || seen[2] != posted[2] {
				t.Fatalf("round %d: expected %v, got %v", round, posted, seen)
			}
		}
		for thread := range threads {
			if thread.Id() != posted[0] {
				t.Fatalf("expected early stop on the first comment, got %s", thread.Id())
			}
			break
		}
	})
}
