package recipes

import (
	"context"

	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/activity"
	"recipeshare.me/recipes/internal/data"
)

// Cascade removes what a deleted recipe leaves behind: its rating entries,
// its comments with their replies, and the author's activity entry.
// Favorites are left alone and resolve lazily. Every step is idempotent so
// a redelivered stream record is harmless.
type Cascade struct {
	Ratings  data.RatingRepository
	Comments data.CommentRepository
	Activity *activity.Service
	Logger   *zap.Logger
}

func (c *Cascade) RecipeDeleted(ctx context.Context, recipe data.RecipeDTO) error {
	if err := c.Ratings.DeleteRatings(ctx, recipe.Id()); err != nil {
		return err
	}
	if err := c.Comments.DeleteComments(ctx, recipe.Id()); err != nil {
		return err
	}
	if recipe.AuthorId != "" {
		if err := c.Activity.RemoveRecipe(ctx, recipe.AuthorId, recipe.Id()); err != nil {
			return err
		}
	}
	c.Logger.Info("cascaded recipe delete", zap.String("recipeId", recipe.Id()))
	return nil
}
