package data

import (
	"context"
	"time"
)

type ActivityDTO struct {
	RecipeId   string    `dynamodbav:"recipeId"`
	RecipeName string    `dynamodbav:"recipeName"`
	Date       time.Time `dynamodbav:"date"`
}

type UserDTO struct {
	PK          string        `dynamodbav:"PK"`
	SK          string        `dynamodbav:"SK"`
	DisplayName string        `dynamodbav:"displayName"`
	PhotoURL    *string       `dynamodbav:"photoURL"`
	Activity    []ActivityDTO `dynamodbav:"activity"`
	Favorites   []string      `dynamodbav:"favorites,stringset,omitempty"`
	Version     int           `dynamodbav:"version"`
	CreateTime  time.Time     `dynamodbav:"createTime"`
	UpdateTime  time.Time     `dynamodbav:"updateTime"`
}

func (u UserDTO) Id() string {
	return u.SK
}

type UserInputDTO struct {
	DisplayName *string `dynamodbav:"displayName"`
	PhotoURL    *string `dynamodbav:"photoURL"`
}

// ActivityMutator computes the next activity log from the current one.
// It may be invoked more than once when an update races.
type ActivityMutator func(current []ActivityDTO) []ActivityDTO

type UserRepository interface {
	GetUser(ctx context.Context, userId string) (UserDTO, error)
	PutProfile(ctx context.Context, userId string, input UserInputDTO) (UserDTO, error)
	// UpdateActivity applies mutate as a compare-and-swap on the user's version.
	// A lost race is reported as Conflict.
	UpdateActivity(ctx context.Context, userId string, mutate ActivityMutator) ([]ActivityDTO, error)
	// ToggleFavorite returns the membership of recipeId after the toggle.
	ToggleFavorite(ctx context.Context, userId string, recipeId string) (bool, error)
}
