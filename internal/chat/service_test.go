package chat_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/chat"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/memory"
)

func TestChat(t *testing.T) {
	store := memory.NewStore()
	service := chat.NewService(store, auth.ContextProvider{}, zap.NewNop())
	service.PollInterval = 10 * time.Millisecond
	ctx := auth.WithIdentity(context.TODO(), auth.Identity{Id: "u1", DisplayName: "Sari"})

	t.Run("Post", func(t *testing.T) {
		message, err := service.Post(ctx, "  <script>x</script>halo  ")
		if err != nil {
			t.Fatalf("Failed to post: %s", err)
		}
		if message.Message != "halo" || message.Sender.DisplayName != "Sari" {
			t.Fatalf("unexpected message %v", message)
		}
		if _, err := service.Post(context.TODO(), "halo"); !exceptions.IsUnauthorized(err) {
			t.Fatalf("expected Unauthorized, got %v", err)
		}
		if _, err := service.Post(ctx, strings.Repeat("a", chat.MaxMessageLength+1)); !exceptions.IsInvalidInput(err) {
			t.Fatalf("expected InvalidInput, got %v", err)
		}
	})

	t.Run("Recent", func(t *testing.T) {
		for i := 0; i < chat.RecentLimit+5; i++ {
			if _, err := store.PostMessage(context.TODO(), data.ChatMessageInputDTO{Message: "m"}); err != nil {
				t.Fatalf("Failed to post: %s", err)
			}
		}
		recent, err := service.Recent(context.TODO())
		if err != nil || len(recent) != chat.RecentLimit {
			t.Fatalf("expected %d messages, got %d: %v", chat.RecentLimit, len(recent), err)
		}
		for i := 1; i < len(recent); i++ {
			if recent[i-1].Id() >= recent[i].Id() {
				t.Fatalf("messages are not ascending at %d", i)
			}
		}
	})

	t.Run("Subscribe", func(t *testing.T) {
		messages, cancel := service.Subscribe(context.TODO(), "")
		defer cancel()
		var posted []string
		for _, text := range []string{"satu", "dua"} {
			message, err := service.Post(ctx, text)
			if err != nil {
				t.Fatalf("Failed to post: %s", err)
			}
			posted = append(posted, message.Id())
		}
		for _, expected := range posted {
			select {
			case message := <-messages:
				if message.Id() != expected {
					t.Fatalf("expected %s, got %s", expected, message.Id())
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("timed out waiting for %s", expected)
			}
		}
		cancel()
		cancel()
		select {
		case _, open := <-messages:
			if open {
				t.Fatal("expected no further messages after cancel")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("channel was not closed after cancel")
		}
	})
}
