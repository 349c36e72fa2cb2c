// Package favorites manages the per user set of saved recipes.
package favorites

import (
	"context"

	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/retry"
)

type Service struct {
	Users    data.UserRepository
	Recipes  data.RecipeRepository
	Identity auth.Provider
}

func NewService(users data.UserRepository, recipes data.RecipeRepository, identity auth.Provider) *Service {
	return &Service{
		Users:    users,
		Recipes:  recipes,
		Identity: identity,
	}
}

// ToggleFavorite flips recipeId in the caller's favorites and reports
// whether it is now a favorite.
func (s *Service) ToggleFavorite(ctx context.Context, recipeId string) (bool, error) {
	identity, err := auth.Require(ctx, s.Identity, "favorite a recipe")
	if err != nil {
		return false, err
	}
	if recipeId == "" {
		return false, exceptions.InvalidInput("recipeId is required")
	}
	return retry.OnConflict(ctx, func() (bool, error) {
		return s.Users.ToggleFavorite(ctx, identity.Id, recipeId)
	})
}

// ListFavorites resolves a user's favorites, dropping ids whose recipe is gone.
func (s *Service) ListFavorites(ctx context.Context, userId string) ([]data.RecipeDTO, error) {
	user, err := s.Users.GetUser(ctx, userId)
	if exceptions.IsNotFound(err) {
		return []data.RecipeDTO{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(user.Favorites) == 0 {
		return []data.RecipeDTO{}, nil
	}
	return s.Recipes.GetRecipes(ctx, user.Favorites)
}

// ListMine is ListFavorites for the caller.
func (s *Service) ListMine(ctx context.Context) ([]data.RecipeDTO, error) {
	identity, err := auth.Require(ctx, s.Identity, "list favorites")
	if err != nil {
		return nil, err
	}
	return s.ListFavorites(ctx, identity.Id)
}
