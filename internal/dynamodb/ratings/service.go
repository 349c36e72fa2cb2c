package ratings

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/dynamodb/recipes"
	"recipeshare.me/recipes/internal/dynamodb/services"
	"recipeshare.me/recipes/internal/dynamodb/token"
	"recipeshare.me/recipes/internal/exceptions"
)

const (
	entryIndex  = 0
	recipeIndex = 1
)

type RatingDynamoDBService struct {
	services.RepositoryDynamoDBService[data.RatingDTO]
	Recipes services.RepositoryDynamoDBService[data.RecipeDTO]
}

func NewRatingService(tableName string, client services.Client, marshaler token.TokenMarshaler) data.RatingRepository {
	return &RatingDynamoDBService{
		RepositoryDynamoDBService: services.RepositoryDynamoDBService[data.RatingDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "Rating",
		},
		Recipes: services.RepositoryDynamoDBService[data.RecipeDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "Recipe",
		},
	}
}

// PartitionSuffix ends the partition key of every rating entry of a recipe.
const PartitionSuffix = ":Rating"

func partition(recipeId string) string {
	return recipeId + PartitionSuffix
}

func (rs *RatingDynamoDBService) GetRating(ctx context.Context, recipeId string, userId string) (data.RatingDTO, error) {
	return rs.Get(ctx, services.Key{PK: partition(recipeId), SK: userId}, true)
}

// SubmitRating writes the entry and folds it into the recipe aggregate in one
// transaction. The aggregate update is guarded by the recipe version read
// just before, so a concurrent rating cancels the transaction as a Conflict.
func (rs *RatingDynamoDBService) SubmitRating(ctx context.Context, recipeId string, userId string, value int) (data.RatingResult, error) {
	recipe, err := rs.Recipes.Get(ctx, recipes.Key(recipeId), true)
	if err != nil {
		return data.RatingResult{}, err
	}
	existing, err := rs.GetRating(ctx, recipeId, userId)
	if err == nil {
		return data.RatingResult{Rating: existing.Rating, Aggregate: recipe.Aggregate()}, nil
	}
	if !exceptions.IsNotFound(err) {
		return data.RatingResult{}, err
	}
	now := time.Now().UTC()
	aggregate := recipe.Aggregate().Fold(value)
	entry, err := attributevalue.MarshalMap(data.RatingDTO{
		PK:         partition(recipeId),
		SK:         userId,
		RecipeId:   recipeId,
		UserId:     userId,
		Rating:     value,
		CreateTime: now,
	})
	if err != nil {
		return data.RatingResult{}, err
	}
	entryExpr, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeNotExists()).Build()
	if err != nil {
		return data.RatingResult{}, err
	}
	update := expression.Set(expression.Name("ratingSum"), expression.Value(aggregate.Sum)).
		Set(expression.Name("ratingsCount"), expression.Value(aggregate.Count)).
		Set(expression.Name("rating"), expression.Value(aggregate.Average)).
		Set(expression.Name("version"), expression.Value(recipe.Version+1)).
		Set(expression.Name("updateTime"), expression.Value(now))
	var versionCheck expression.ConditionBuilder
	if recipe.Version == 0 {
		versionCheck = expression.Name("version").AttributeNotExists().Or(expression.Name("version").Equal(expression.Value(0)))
	} else {
		versionCheck = expression.Name("version").Equal(expression.Value(recipe.Version))
	}
	recipeExpr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeExists().And(versionCheck)).
		WithUpdate(update).
		Build()
	if err != nil {
		return data.RatingResult{}, err
	}
	recipeKey, err := recipes.Key(recipeId).AttributeValues()
	if err != nil {
		return data.RatingResult{}, err
	}
	_, err = rs.DynamoDB.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                aws.String(rs.TableName),
					Item:                     entry,
					ConditionExpression:      entryExpr.Condition(),
					ExpressionAttributeNames: entryExpr.Names(),
				},
			},
			{
				Update: &types.Update{
					TableName:                 aws.String(rs.TableName),
					Key:                       recipeKey,
					UpdateExpression:          recipeExpr.Update(),
					ConditionExpression:       recipeExpr.Condition(),
					ExpressionAttributeNames:  recipeExpr.Names(),
					ExpressionAttributeValues: recipeExpr.Values(),
				},
			},
		},
	})
	if err != nil {
		return data.RatingResult{}, rs.cancellation(ctx, err, recipeId, userId)
	}
	return data.RatingResult{Rating: value, Created: true, Aggregate: aggregate}, nil
}

// cancellation resolves which half of the transaction lost its condition.
func (rs *RatingDynamoDBService) cancellation(ctx context.Context, err error, recipeId string, userId string) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return services.Translate(err)
	}
	failed := func(index int) bool {
		return index < len(tce.CancellationReasons) &&
			aws.ToString(tce.CancellationReasons[index].Code) == "ConditionalCheckFailed"
	}
	switch {
	case failed(entryIndex):
		// a retry reads back the entry that won
		return exceptions.Conflict("rating", recipeId+":"+userId)
	case failed(recipeIndex):
		if _, getErr := rs.Recipes.Get(ctx, recipes.Key(recipeId), true); exceptions.IsNotFound(getErr) {
			return getErr
		}
		return exceptions.Conflict("recipe", recipeId)
	}
	return exceptions.Unavailable(err)
}

func (rs *RatingDynamoDBService) DeleteRatings(ctx context.Context, recipeId string) error {
	entries, err := rs.QueryAll(ctx, services.QueryInput{
		Key:        expression.Key("PK").Equal(expression.Value(partition(recipeId))),
		Scope:      partition(recipeId),
		Consistent: true,
	})
	if err != nil {
		return err
	}
	keys := make([]services.Key, len(entries))
	for i, entry := range entries {
		keys[i] = services.Key{PK: entry.PK, SK: entry.SK}
	}
	return rs.BatchDelete(ctx, keys)
}
