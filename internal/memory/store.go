// Package memory is an in-process implementation of every repository.
// It backs tests and STORE=memory runs; each method holds the store lock
// for its whole read-modify-write, which gives the same atomicity the
// DynamoDB adapters get from conditional writes and transactions.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
)

type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	recipes  map[string]data.RecipeDTO
	ratings  map[string]map[string]data.RatingDTO // recipeId -> userId -> rating
	comments map[string]data.CommentDTO
	replies  map[string]data.ReplyDTO
	users    map[string]data.UserDTO
	messages []data.ChatMessageDTO
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		now:      now,
		recipes:  make(map[string]data.RecipeDTO),
		ratings:  make(map[string]map[string]data.RatingDTO),
		comments: make(map[string]data.CommentDTO),
		replies:  make(map[string]data.ReplyDTO),
		users:    make(map[string]data.UserDTO),
	}
}

func (s *Store) newId() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// page slices items using NextToken as a plain offset.
func page[T any](items []T, params data.QueryParams) (data.QueryResults[T], error) {
	offset := 0
	if len(params.NextToken) > 0 {
		parsed, err := strconv.Atoi(string(params.NextToken))
		if err != nil || parsed < 0 {
			return data.QueryResults[T]{}, exceptions.InvalidInput("nextToken is invalid")
		}
		offset = parsed
	}
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + int(*params.GetLimit())
	var next []byte
	if end < len(items) {
		next = []byte(strconv.Itoa(end))
	} else {
		end = len(items)
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return data.QueryResults[T]{Items: out, NextToken: next}, nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return exceptions.Unavailable(err)
	}
	return nil
}

func (s *Store) GetRecipe(ctx context.Context, recipeId string) (data.RecipeDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.RecipeDTO{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipe, ok := s.recipes[recipeId]
	if !ok {
		return data.RecipeDTO{}, exceptions.NotFound("recipe", recipeId)
	}
	return recipe, nil
}

func (s *Store) GetRecipes(ctx context.Context, recipeIds []string) ([]data.RecipeDTO, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipes := make([]data.RecipeDTO, 0, len(recipeIds))
	for _, id := range recipeIds {
		if recipe, ok := s.recipes[id]; ok {
			recipes = append(recipes, recipe)
		}
	}
	return recipes, nil
}

func (s *Store) CreateRecipe(ctx context.Context, input data.RecipeInputDTO) (data.RecipeDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.RecipeDTO{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.timestamp()
	recipe := data.RecipeDTO{
		PK:          "Global:Recipe",
		SK:          s.newId(),
		ImageURL:    input.ImageURL,
		VideoURL:    input.VideoURL,
		CreateTime:  now,
		UpdateTime:  now,
		Ingredients: []string{},
	}
	applyRecipeInput(&recipe, input)
	recipe.FirstIndex = recipe.AuthorId + ":Recipe"
	recipe.FirstIndexSort = data.SortKey(&now, recipe.SK)
	if _, ok := s.recipes[recipe.SK]; ok {
		return recipe, exceptions.Conflict("recipe", recipe.SK)
	}
	s.recipes[recipe.SK] = recipe
	return recipe, nil
}

func applyRecipeInput(recipe *data.RecipeDTO, input data.RecipeInputDTO) {
	if input.Title != nil {
		recipe.Title = *input.Title
	}
	if input.Description != nil {
		recipe.Description = *input.Description
	}
	if input.Ingredients != nil {
		recipe.Ingredients = append([]string{}, *input.Ingredients...)
	}
	if input.Instructions != nil {
		recipe.Instructions = append([]string{}, *input.Instructions...)
	}
	if input.Category != nil {
		recipe.Category = *input.Category
	}
	if input.ImageURL != nil {
		recipe.ImageURL = input.ImageURL
	}
	if input.VideoURL != nil {
		recipe.VideoURL = input.VideoURL
	}
	if input.AuthorId != nil {
		recipe.AuthorId = *input.AuthorId
	}
}

func (s *Store) UpdateRecipe(ctx context.Context, recipeId string, input data.RecipeInputDTO) (data.RecipeDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.RecipeDTO{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recipe, ok := s.recipes[recipeId]
	if !ok {
		return data.RecipeDTO{}, exceptions.NotFound("recipe", recipeId)
	}
	// authorship never moves through an update
	input.AuthorId = nil
	applyRecipeInput(&recipe, input)
	recipe.UpdateTime = s.timestamp()
	s.recipes[recipeId] = recipe
	return recipe, nil
}

func (s *Store) ListRecipes(ctx context.Context, filter data.RecipeFilter, params data.QueryParams) (data.QueryResults[data.RecipeDTO], error) {
	if err := checkContext(ctx); err != nil {
		return data.QueryResults[data.RecipeDTO]{}, err
	}
	s.mu.RLock()
	recipes := make([]data.RecipeDTO, 0, len(s.recipes))
	for _, recipe := range s.recipes {
		if filter.AuthorId != "" && recipe.AuthorId != filter.AuthorId {
			continue
		}
		if filter.Category != "" && recipe.Category != filter.Category {
			continue
		}
		recipes = append(recipes, recipe)
	}
	s.mu.RUnlock()
	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].SK < recipes[j].SK
	})
	return page(recipes, params)
}

func (s *Store) DeleteRecipe(ctx context.Context, recipeId string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recipes, recipeId)
	return nil
}
