package recipes

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/google/uuid"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/dynamodb/services"
	"recipeshare.me/recipes/internal/dynamodb/token"
	"recipeshare.me/recipes/internal/exceptions"
)

const PartitionKey = "Global:Recipe"

type RecipeDynamoDBService struct {
	services.RepositoryDynamoDBService[data.RecipeDTO]
}

func NewRecipeService(tableName string, client services.Client, marshaler token.TokenMarshaler) data.RecipeRepository {
	return &RecipeDynamoDBService{
		RepositoryDynamoDBService: services.RepositoryDynamoDBService[data.RecipeDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "Recipe",
		},
	}
}

func Key(recipeId string) services.Key {
	return services.Key{PK: PartitionKey, SK: recipeId}
}

func authorIndex(authorId string) string {
	return authorId + ":Recipe"
}

func (rs *RecipeDynamoDBService) GetRecipe(ctx context.Context, recipeId string) (data.RecipeDTO, error) {
	return rs.Get(ctx, Key(recipeId), false)
}

func (rs *RecipeDynamoDBService) GetRecipes(ctx context.Context, recipeIds []string) ([]data.RecipeDTO, error) {
	keys := make([]services.Key, 0, len(recipeIds))
	seen := make(map[string]bool, len(recipeIds))
	for _, id := range recipeIds {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, Key(id))
	}
	return rs.BatchGet(ctx, keys, data.RecipeDTO.Id)
}

func (rs *RecipeDynamoDBService) CreateRecipe(ctx context.Context, input data.RecipeInputDTO) (data.RecipeDTO, error) {
	gid, err := uuid.NewV7()
	if err != nil {
		return data.RecipeDTO{}, err
	}
	now := time.Now().UTC()
	recipe := data.RecipeDTO{
		PK:           PartitionKey,
		SK:           gid.String(),
		Ingredients:  []string{},
		Instructions: []string{},
		CreateTime:   now,
		UpdateTime:   now,
	}
	if input.Title != nil {
		recipe.Title = *input.Title
	}
	if input.Description != nil {
		recipe.Description = *input.Description
	}
	if input.Ingredients != nil {
		recipe.Ingredients = *input.Ingredients
	}
	if input.Instructions != nil {
		recipe.Instructions = *input.Instructions
	}
	if input.Category != nil {
		recipe.Category = *input.Category
	}
	if input.AuthorId != nil {
		recipe.AuthorId = *input.AuthorId
	}
	recipe.ImageURL = input.ImageURL
	recipe.VideoURL = input.VideoURL
	recipe.FirstIndex = authorIndex(recipe.AuthorId)
	recipe.FirstIndexSort = data.SortKey(&now, recipe.SK)
	return rs.Create(ctx, recipe, recipe.SK)
}

func (rs *RecipeDynamoDBService) UpdateRecipe(ctx context.Context, recipeId string, input data.RecipeInputDTO) (data.RecipeDTO, error) {
	update := expression.Set(expression.Name("updateTime"), expression.Value(time.Now().UTC()))
	if input.Title != nil {
		update = update.Set(expression.Name("title"), expression.Value(input.Title))
	}
	if input.Description != nil {
		update = update.Set(expression.Name("description"), expression.Value(input.Description))
	}
	if input.Ingredients != nil {
		update = update.Set(expression.Name("ingredients"), expression.Value(input.Ingredients))
	}
	if input.Instructions != nil {
		update = update.Set(expression.Name("instructions"), expression.Value(input.Instructions))
	}
	if input.Category != nil {
		update = update.Set(expression.Name("category"), expression.Value(input.Category))
	}
	if input.ImageURL != nil {
		update = update.Set(expression.Name("imageURL"), expression.Value(input.ImageURL))
	}
	if input.VideoURL != nil {
		update = update.Set(expression.Name("videoURL"), expression.Value(input.VideoURL))
	}
	condition := expression.Name("PK").AttributeExists().And(expression.Name("SK").AttributeExists())
	recipe, err := rs.Update(ctx, Key(recipeId), update, &condition)
	if services.IsConditionFailed(err) {
		return recipe, exceptions.NotFound("recipe", recipeId)
	}
	return recipe, err
}

func (rs *RecipeDynamoDBService) ListRecipes(ctx context.Context, filter data.RecipeFilter, params data.QueryParams) (data.QueryResults[data.RecipeDTO], error) {
	input := services.QueryInput{
		Key:    expression.Key("PK").Equal(expression.Value(PartitionKey)),
		Scope:  PartitionKey,
		Params: params,
	}
	if filter.AuthorId != "" {
		input.Index = services.FirstIndex
		input.Scope = authorIndex(filter.AuthorId)
		input.Key = expression.Key("GS1-PK").Equal(expression.Value(input.Scope))
		input.Newest = true
	}
	if filter.Category != "" {
		category := expression.Name("category").Equal(expression.Value(filter.Category))
		input.Filter = &category
		input.Scope += ":" + filter.Category
	}
	return rs.Query(ctx, input)
}

func (rs *RecipeDynamoDBService) DeleteRecipe(ctx context.Context, recipeId string) error {
	return rs.Delete(ctx, Key(recipeId))
}
