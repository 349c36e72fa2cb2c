package recipes

import (
	"time"

	"recipeshare.me/recipes/internal/data"
)

type RecipeInput struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Ingredients  *[]string `json:"ingredients"`
	Instructions *[]string `json:"instructions"`
	Category     *string   `json:"category"`
	ImageURL     *string   `json:"imageURL"`
	VideoURL     *string   `json:"videoURL"`
}

func (r *RecipeInput) ToData() data.RecipeInputDTO {
	return data.RecipeInputDTO{
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Category:     r.Category,
		ImageURL:     r.ImageURL,
		VideoURL:     r.VideoURL,
	}
}

type Recipe struct {
	Id           string    `json:"recipeId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	Category     string    `json:"category"`
	AuthorId     string    `json:"authorId"`
	ImageURL     *string   `json:"imageURL,omitempty"`
	VideoURL     *string   `json:"videoURL,omitempty"`
	Rating       float64   `json:"rating"`
	RatingsCount int       `json:"ratingsCount"`
	CreateTime   time.Time `json:"createTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

func NewRecipe(recipe data.RecipeDTO) Recipe {
	ingredients := recipe.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	instructions := recipe.Instructions
	if instructions == nil {
		instructions = []string{}
	}
	return Recipe{
		Id:           recipe.Id(),
		Title:        recipe.Title,
		Description:  recipe.Description,
		Ingredients:  ingredients,
		Instructions: instructions,
		Category:     recipe.Category,
		AuthorId:     recipe.AuthorId,
		ImageURL:     recipe.ImageURL,
		VideoURL:     recipe.VideoURL,
		Rating:       recipe.Rating,
		RatingsCount: recipe.RatingsCount,
		CreateTime:   recipe.CreateTime,
		UpdateTime:   recipe.UpdateTime,
	}
}

type RatingInput struct {
	Rating int `json:"rating"`
}

type Rating struct {
	RecipeId     string  `json:"recipeId"`
	Rating       int     `json:"rating"`
	Created      bool    `json:"created"`
	Average      float64 `json:"average"`
	RatingsCount int     `json:"ratingsCount"`
}

func NewRating(recipeId string) func(data.RatingResult) Rating {
	return func(result data.RatingResult) Rating {
		return Rating{
			RecipeId:     recipeId,
			Rating:       result.Rating,
			Created:      result.Created,
			Average:      result.Aggregate.Average,
			RatingsCount: result.Aggregate.Count,
		}
	}
}

type UserRating struct {
	RecipeId   string    `json:"recipeId"`
	Rating     int       `json:"rating"`
	CreateTime time.Time `json:"createTime"`
}

func NewUserRating(rating data.RatingDTO) UserRating {
	return UserRating{
		RecipeId:   rating.RecipeId,
		Rating:     rating.Rating,
		CreateTime: rating.CreateTime,
	}
}
