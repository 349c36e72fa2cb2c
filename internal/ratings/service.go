// Package ratings records one star rating per user per recipe and keeps the
// recipe's displayed average in step with the stored entries.
package ratings

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/retry"
)

type Service struct {
	Ratings  data.RatingRepository
	Identity auth.Provider
	Logger   *zap.Logger
}

func NewService(ratings data.RatingRepository, identity auth.Provider, logger *zap.Logger) *Service {
	return &Service{
		Ratings:  ratings,
		Identity: identity,
		Logger:   logger,
	}
}

func Validate(value int) error {
	if value < data.MinRating || value > data.MaxRating {
		return exceptions.InvalidInput(fmt.Sprintf("rating must be between %d and %d", data.MinRating, data.MaxRating))
	}
	return nil
}

// SubmitRating records the caller's rating. The first rating a user gives a
// recipe is final, later calls read it back and leave the average alone.
func (s *Service) SubmitRating(ctx context.Context, recipeId string, value int) (data.RatingResult, error) {
	identity, err := auth.Require(ctx, s.Identity, "rate a recipe")
	if err != nil {
		return data.RatingResult{}, err
	}
	return s.SubmitAs(ctx, identity, recipeId, value)
}

// SubmitAs is the shared path for callers that already resolved the identity.
func (s *Service) SubmitAs(ctx context.Context, identity auth.Identity, recipeId string, value int) (data.RatingResult, error) {
	if err := Validate(value); err != nil {
		return data.RatingResult{}, err
	}
	result, err := retry.OnConflict(ctx, func() (data.RatingResult, error) {
		return s.Ratings.SubmitRating(ctx, recipeId, identity.Id, value)
	})
	if err != nil {
		return data.RatingResult{}, err
	}
	if !result.Created {
		s.Logger.Debug("rating already recorded",
			zap.String("recipeId", recipeId),
			zap.String("userId", identity.Id),
			zap.Int("rating", result.Rating))
	}
	return result, nil
}

// GetUserRating returns the caller's stored rating for a recipe.
func (s *Service) GetUserRating(ctx context.Context, recipeId string) (data.RatingDTO, error) {
	identity, err := auth.Require(ctx, s.Identity, "read a rating")
	if err != nil {
		return data.RatingDTO{}, err
	}
	return s.Ratings.GetRating(ctx, recipeId, identity.Id)
}
