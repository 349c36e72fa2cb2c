package data

import (
	"context"
	"time"
)

type RecipeDTO struct {
	PK             string    `dynamodbav:"PK"`
	SK             string    `dynamodbav:"SK"`
	FirstIndex     string    `dynamodbav:"GS1-PK"`
	FirstIndexSort string    `dynamodbav:"GS1-SK"`
	Title          string    `dynamodbav:"title"`
	Description    string    `dynamodbav:"description"`
	Ingredients    []string  `dynamodbav:"ingredients"`
	Instructions   []string  `dynamodbav:"instructions"`
	AuthorId       string    `dynamodbav:"authorId"`
	Category       string    `dynamodbav:"category"`
	ImageURL       *string   `dynamodbav:"imageURL"`
	VideoURL       *string   `dynamodbav:"videoURL"`
	Rating         float64   `dynamodbav:"rating"`
	RatingSum      int       `dynamodbav:"ratingSum"`
	RatingsCount   int       `dynamodbav:"ratingsCount"`
	Version        int       `dynamodbav:"version"`
	CreateTime     time.Time `dynamodbav:"createTime"`
	UpdateTime     time.Time `dynamodbav:"updateTime"`
}

func (r RecipeDTO) Id() string {
	return r.SK
}

func (r RecipeDTO) Aggregate() RatingAggregate {
	return RatingAggregate{
		Sum:     r.RatingSum,
		Count:   r.RatingsCount,
		Average: r.Rating,
	}
}

type RecipeInputDTO struct {
	Title        *string   `dynamodbav:"title"`
	Description  *string   `dynamodbav:"description"`
	Ingredients  *[]string `dynamodbav:"ingredients"`
	Instructions *[]string `dynamodbav:"instructions"`
	Category     *string   `dynamodbav:"category"`
	ImageURL     *string   `dynamodbav:"imageURL"`
	VideoURL     *string   `dynamodbav:"videoURL"`
	AuthorId     *string   `dynamodbav:"authorId"`
}

// RecipeFilter narrows ListRecipes. Empty fields match everything.
type RecipeFilter struct {
	AuthorId string
	Category string
}

type RecipeRepository interface {
	GetRecipe(ctx context.Context, recipeId string) (RecipeDTO, error)
	// GetRecipes resolves ids in order, silently skipping ids that no longer exist.
	GetRecipes(ctx context.Context, recipeIds []string) ([]RecipeDTO, error)
	CreateRecipe(ctx context.Context, input RecipeInputDTO) (RecipeDTO, error)
	UpdateRecipe(ctx context.Context, recipeId string, input RecipeInputDTO) (RecipeDTO, error)
	ListRecipes(ctx context.Context, filter RecipeFilter, params QueryParams) (QueryResults[RecipeDTO], error)
	DeleteRecipe(ctx context.Context, recipeId string) error
}
