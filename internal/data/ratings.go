package data

import (
	"context"
	"math"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

type RatingDTO struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	RecipeId   string    `dynamodbav:"recipeId"`
	UserId     string    `dynamodbav:"userId"`
	Rating     int       `dynamodbav:"rating"`
	CreateTime time.Time `dynamodbav:"createTime"`
}

// RatingAggregate is the running state kept on the recipe document.
// Sum and Count are authoritative, Average is derived from them.
type RatingAggregate struct {
	Sum     int     `json:"sum"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Fold returns the aggregate after one more rating is counted.
func (a RatingAggregate) Fold(value int) RatingAggregate {
	sum := a.Sum + value
	count := a.Count + 1
	return RatingAggregate{
		Sum:     sum,
		Count:   count,
		Average: RoundAverage(sum, count),
	}
}

// RoundAverage is the arithmetic mean rounded to one decimal place.
func RoundAverage(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

type RatingResult struct {
	// Rating is the caller's stored value, which is the existing one when Created is false.
	Rating    int
	Created   bool
	Aggregate RatingAggregate
}

type RatingRepository interface {
	GetRating(ctx context.Context, recipeId string, userId string) (RatingDTO, error)
	// SubmitRating persists the entry and the recipe aggregate as one transaction.
	// An existing entry for the pair is left untouched and reported with Created false.
	SubmitRating(ctx context.Context, recipeId string, userId string, value int) (RatingResult, error)
	DeleteRatings(ctx context.Context, recipeId string) error
}
