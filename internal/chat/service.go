// Package chat backs the site wide chat widget.
package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/content"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
)

const (
	MaxMessageLength    = 500
	RecentLimit         = 50
	defaultPollInterval = 2 * time.Second
)

type Service struct {
	Messages     data.ChatRepository
	Identity     auth.Provider
	Sanitizer    *content.Sanitizer
	Logger       *zap.Logger
	PollInterval time.Duration
}

func NewService(messages data.ChatRepository, identity auth.Provider, logger *zap.Logger) *Service {
	return &Service{
		Messages:     messages,
		Identity:     identity,
		Sanitizer:    content.NewSanitizer(),
		Logger:       logger,
		PollInterval: defaultPollInterval,
	}
}

func (s *Service) Post(ctx context.Context, raw string) (data.ChatMessageDTO, error) {
	identity, err := auth.Require(ctx, s.Identity, "chat")
	if err != nil {
		return data.ChatMessageDTO{}, err
	}
	text, err := s.Sanitizer.Require("message", raw, MaxMessageLength)
	if err != nil {
		return data.ChatMessageDTO{}, err
	}
	return s.Messages.PostMessage(ctx, data.ChatMessageInputDTO{
		Message: text,
		Sender:  identity.Snapshot(),
	})
}

// Recent returns the latest messages, oldest first.
func (s *Service) Recent(ctx context.Context) ([]data.ChatMessageDTO, error) {
	messages, err := s.Messages.RecentMessages(ctx, RecentLimit)
	if messages == nil && err == nil {
		messages = []data.ChatMessageDTO{}
	}
	return messages, err
}

// Subscribe delivers messages newer than since, in order, until ctx is done
// or cancel is called. An empty since starts after the newest stored
// message. The channel is closed when the subscription ends, including when
// the store fails with a non retryable error.
func (s *Service) Subscribe(ctx context.Context, since string) (<-chan data.ChatMessageDTO, func()) {
	out := make(chan data.ChatMessageDTO)
	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(stop)
		})
	}
	cursor := since
	if cursor == "" {
		latest, err := s.Messages.RecentMessages(ctx, 1)
		if err != nil {
			s.Logger.Error("chat subscription failed", zap.Error(err))
			close(out)
			return out, cancel
		}
		if len(latest) > 0 {
			cursor = latest[len(latest)-1].Id()
		}
	}
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.pollInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
			}
			messages, err := s.Messages.MessagesAfter(ctx, cursor, RecentLimit)
			if err != nil {
				if exceptions.IsRetryable(err) {
					s.Logger.Warn("chat poll failed", zap.Error(err))
					continue
				}
				s.Logger.Error("chat subscription failed", zap.Error(err))
				return
			}
			for _, message := range messages {
				select {
				case out <- message:
					cursor = message.Id()
				case <-ctx.Done():
					return
				case <-stop:
					return
				}
			}
		}
	}()
	return out, cancel
}

func (s *Service) pollInterval() time.Duration {
	if s.PollInterval <= 0 {
		return defaultPollInterval
	}
	return s.PollInterval
}
