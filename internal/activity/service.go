// Package activity keeps each user's short feed of recently created recipes.
package activity

import (
	"context"
	"time"

	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/retry"
)

// MaxEntries bounds the log. Older entries are evicted on insert.
const MaxEntries = 5

type Service struct {
	Users  data.UserRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewService(users data.UserRepository, logger *zap.Logger) *Service {
	return &Service{
		Users:  users,
		Logger: logger,
		Now:    time.Now,
	}
}

// Prepend puts entry first and truncates to MaxEntries.
func Prepend(current []data.ActivityDTO, entry data.ActivityDTO) []data.ActivityDTO {
	next := make([]data.ActivityDTO, 0, MaxEntries)
	next = append(next, entry)
	for _, existing := range current {
		if len(next) == MaxEntries {
			break
		}
		next = append(next, existing)
	}
	return next
}

// Without drops every entry for recipeId, keeping order.
func Without(current []data.ActivityDTO, recipeId string) []data.ActivityDTO {
	next := make([]data.ActivityDTO, 0, len(current))
	for _, existing := range current {
		if existing.RecipeId != recipeId {
			next = append(next, existing)
		}
	}
	return next
}

// RecordRecipeCreated logs title as it reads now. Renaming the recipe later
// does not touch the entry.
func (s *Service) RecordRecipeCreated(ctx context.Context, userId string, recipeId string, title string) ([]data.ActivityDTO, error) {
	entry := data.ActivityDTO{
		RecipeId:   recipeId,
		RecipeName: title,
		Date:       s.Now().UTC(),
	}
	return retry.OnConflict(ctx, func() ([]data.ActivityDTO, error) {
		return s.Users.UpdateActivity(ctx, userId, func(current []data.ActivityDTO) []data.ActivityDTO {
			return Prepend(current, entry)
		})
	})
}

// ListRecent returns the stored log as is.
func (s *Service) ListRecent(ctx context.Context, userId string) ([]data.ActivityDTO, error) {
	user, err := s.Users.GetUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user.Activity == nil {
		return []data.ActivityDTO{}, nil
	}
	return user.Activity, nil
}

// RemoveRecipe strips a deleted recipe from its author's log.
func (s *Service) RemoveRecipe(ctx context.Context, userId string, recipeId string) error {
	_, err := retry.OnConflict(ctx, func() ([]data.ActivityDTO, error) {
		return s.Users.UpdateActivity(ctx, userId, func(current []data.ActivityDTO) []data.ActivityDTO {
			return Without(current, recipeId)
		})
	})
	if err == nil {
		s.Logger.Debug("removed recipe from activity",
			zap.String("userId", userId),
			zap.String("recipeId", recipeId))
	}
	return err
}
