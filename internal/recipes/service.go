// Package recipes implements recipe authoring: create, edit, delete and the
// read paths that list them.
package recipes

import (
	"context"
	"slices"
	"sort"

	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/activity"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/content"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	trendingWindow       = 100
)

var Categories = []string{
	"Sarapan",
	"Makan Siang",
	"Makan Malam",
	"Camilan",
	"Seafood",
	"Hidangan Pembuka",
	"Hidangan Utama",
	"Hidangan Penutup",
	"Kue/Roti",
	"Minuman",
	"Hidangan Tradisional",
	"Hidangan Sehat",
	"Hidangan Vegetarian",
}

func ValidCategory(category string) bool {
	return slices.Contains(Categories, category)
}

type Service struct {
	Recipes   data.RecipeRepository
	Activity  *activity.Service
	Identity  auth.Provider
	Sanitizer *content.Sanitizer
	Logger    *zap.Logger
	// Cascade, when set, cleans up dependents inline on delete. Deployments
	// with a table stream leave it nil and clean up from the stream instead.
	Cascade *Cascade
}

func NewService(recipes data.RecipeRepository, activity *activity.Service, identity auth.Provider, logger *zap.Logger) *Service {
	return &Service{
		Recipes:   recipes,
		Activity:  activity,
		Identity:  identity,
		Sanitizer: content.NewSanitizer(),
		Logger:    logger,
	}
}

func (s *Service) cleanLines(lines []string) []string {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := s.Sanitizer.Clean(line); text != "" {
			cleaned = append(cleaned, text)
		}
	}
	return cleaned
}

// normalize sanitizes every present field of input in place.
func (s *Service) normalize(input *data.RecipeInputDTO) error {
	if input.Title != nil {
		title, err := s.Sanitizer.Require("title", *input.Title, MaxTitleLength)
		if err != nil {
			return err
		}
		input.Title = &title
	}
	if input.Description != nil {
		description := s.Sanitizer.Clean(*input.Description)
		if len([]rune(description)) > MaxDescriptionLength {
			return exceptions.InvalidInput("description is too long")
		}
		input.Description = &description
	}
	if input.Category != nil && !ValidCategory(*input.Category) {
		return exceptions.InvalidInput("category is not one of the known categories")
	}
	if input.Ingredients != nil {
		ingredients := s.cleanLines(*input.Ingredients)
		input.Ingredients = &ingredients
	}
	if input.Instructions != nil {
		instructions := s.cleanLines(*input.Instructions)
		input.Instructions = &instructions
	}
	return nil
}

// CreateRecipe stores a recipe authored by the caller and records it in
// the caller's activity log.
func (s *Service) CreateRecipe(ctx context.Context, input data.RecipeInputDTO) (data.RecipeDTO, error) {
	identity, err := auth.Require(ctx, s.Identity, "create a recipe")
	if err != nil {
		return data.RecipeDTO{}, err
	}
	if input.Title == nil {
		return data.RecipeDTO{}, exceptions.InvalidInput("title is required")
	}
	if input.Category == nil {
		return data.RecipeDTO{}, exceptions.InvalidInput("category is required")
	}
	if err := s.normalize(&input); err != nil {
		return data.RecipeDTO{}, err
	}
	input.AuthorId = &identity.Id
	recipe, err := s.Recipes.CreateRecipe(ctx, input)
	if err != nil {
		return data.RecipeDTO{}, err
	}
	if _, err := s.Activity.RecordRecipeCreated(ctx, identity.Id, recipe.Id(), recipe.Title); err != nil {
		s.Logger.Error("failed to record activity",
			zap.String("recipeId", recipe.Id()),
			zap.String("userId", identity.Id),
			zap.Error(err))
		return recipe, err
	}
	return recipe, nil
}

func (s *Service) GetRecipe(ctx context.Context, recipeId string) (data.RecipeDTO, error) {
	return s.Recipes.GetRecipe(ctx, recipeId)
}

func (s *Service) ListRecipes(ctx context.Context, filter data.RecipeFilter, params data.QueryParams) (data.QueryResults[data.RecipeDTO], error) {
	if filter.Category != "" && !ValidCategory(filter.Category) {
		return data.QueryResults[data.RecipeDTO]{}, exceptions.InvalidInput("category is not one of the known categories")
	}
	return s.Recipes.ListRecipes(ctx, filter, params)
}

// authorize loads the recipe and fails unless the caller wrote it.
func (s *Service) authorize(ctx context.Context, recipeId string, action string) (data.RecipeDTO, error) {
	identity, err := auth.Require(ctx, s.Identity, action)
	if err != nil {
		return data.RecipeDTO{}, err
	}
	recipe, err := s.Recipes.GetRecipe(ctx, recipeId)
	if err != nil {
		return data.RecipeDTO{}, err
	}
	if recipe.AuthorId != identity.Id {
		return data.RecipeDTO{}, exceptions.Unauthorized(action)
	}
	return recipe, nil
}

func (s *Service) UpdateRecipe(ctx context.Context, recipeId string, input data.RecipeInputDTO) (data.RecipeDTO, error) {
	if _, err := s.authorize(ctx, recipeId, "edit this recipe"); err != nil {
		return data.RecipeDTO{}, err
	}
	input.AuthorId = nil
	if err := s.normalize(&input); err != nil {
		return data.RecipeDTO{}, err
	}
	return s.Recipes.UpdateRecipe(ctx, recipeId, input)
}

func (s *Service) DeleteRecipe(ctx context.Context, recipeId string) error {
	recipe, err := s.authorize(ctx, recipeId, "delete this recipe")
	if err != nil {
		return err
	}
	if err := s.Recipes.DeleteRecipe(ctx, recipeId); err != nil {
		return err
	}
	if s.Cascade != nil {
		return s.Cascade.RecipeDeleted(ctx, recipe)
	}
	return nil
}

// Trending ranks the first window of recipes by average rating, then by
// number of ratings, then newest first.
func (s *Service) Trending(ctx context.Context, limit int) ([]data.RecipeDTO, error) {
	results, err := s.Recipes.ListRecipes(ctx, data.RecipeFilter{}, data.QueryParams{Limit: trendingWindow})
	if err != nil {
		return nil, err
	}
	ranked := results.Items
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.RatingsCount != b.RatingsCount {
			return a.RatingsCount > b.RatingsCount
		}
		return a.CreateTime.After(b.CreateTime)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
