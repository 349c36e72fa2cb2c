package services

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/dynamodb/token"
	"recipeshare.me/recipes/internal/exceptions"
)

const (
	FirstIndex      = "GS1"
	batchGetLimit   = 100
	batchWriteLimit = 25
)

// Client is the subset of *dynamodb.Client the repositories call.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type Key struct {
	PK string
	SK string
}

func (k Key) AttributeValues() (map[string]types.AttributeValue, error) {
	pk, err := attributevalue.Marshal(k.PK)
	if err != nil {
		return nil, err
	}
	sk, err := attributevalue.Marshal(k.SK)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{"PK": pk, "SK": sk}, nil
}

// IsConditionFailed reports whether a single item write lost its condition.
func IsConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// Translate maps raw SDK failures to Unavailable, leaving domain errors alone.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var re exceptions.RequestError
	if errors.As(err, &re) {
		return err
	}
	return exceptions.Unavailable(err)
}

type QueryInput struct {
	Index      string
	Key        expression.KeyConditionBuilder
	Filter     *expression.ConditionBuilder
	Scope      string
	Params     data.QueryParams
	Newest     bool
	Consistent bool
}

// RepositoryDynamoDBService holds the item level plumbing shared by every
// repository in the single table.
type RepositoryDynamoDBService[T interface{}] struct {
	DynamoDB       Client
	TableName      string
	TokenMarshaler token.TokenMarshaler
	Name           string
}

func (rs *RepositoryDynamoDBService[T]) resource() string {
	return strings.ToLower(rs.Name)
}

func (rs *RepositoryDynamoDBService[T]) Get(ctx context.Context, key Key, consistent bool) (T, error) {
	var item T
	av, err := key.AttributeValues()
	if err != nil {
		return item, err
	}
	response, err := rs.DynamoDB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(rs.TableName),
		Key:            av,
		ConsistentRead: aws.Bool(consistent),
	})
	if err != nil {
		return item, Translate(err)
	}
	if response.Item == nil {
		return item, exceptions.NotFound(rs.resource(), key.SK)
	}
	err = attributevalue.UnmarshalMap(response.Item, &item)
	return item, err
}

// Create writes item only if its key is unused.
func (rs *RepositoryDynamoDBService[T]) Create(ctx context.Context, item T, id string) (T, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return item, err
	}
	expr, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeNotExists().And(expression.Name("SK").AttributeNotExists())).Build()
	if err != nil {
		return item, err
	}
	_, err = rs.DynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		Item:                     av,
		TableName:                aws.String(rs.TableName),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if IsConditionFailed(err) {
			return item, exceptions.Conflict(rs.resource(), id)
		}
		return item, Translate(err)
	}
	return item, nil
}

// Update applies update to the item at key, creating it when condition is nil.
// A failed condition is returned untranslated so callers can decide between
// NotFound and Conflict.
func (rs *RepositoryDynamoDBService[T]) Update(ctx context.Context, key Key, update expression.UpdateBuilder, condition *expression.ConditionBuilder) (T, error) {
	var item T
	av, err := key.AttributeValues()
	if err != nil {
		return item, err
	}
	builder := expression.NewBuilder().WithUpdate(update)
	if condition != nil {
		builder = builder.WithCondition(*condition)
	}
	expr, err := builder.Build()
	if err != nil {
		return item, err
	}
	response, err := rs.DynamoDB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(rs.TableName),
		Key:                       av,
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if IsConditionFailed(err) {
			return item, err
		}
		return item, Translate(err)
	}
	err = attributevalue.UnmarshalMap(response.Attributes, &item)
	return item, err
}

func (rs *RepositoryDynamoDBService[T]) Query(ctx context.Context, input QueryInput) (data.QueryResults[T], error) {
	builder := expression.NewBuilder().WithKeyCondition(input.Key)
	if input.Filter != nil {
		builder = builder.WithFilter(*input.Filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	startKey, err := rs.TokenMarshaler.Unmarshal(input.Scope, input.Params.NextToken)
	if err != nil {
		return data.QueryResults[T]{}, exceptions.InvalidInput("nextToken is invalid")
	}
	query := &dynamodb.QueryInput{
		TableName:                 aws.String(rs.TableName),
		Limit:                     input.Params.GetLimit(),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         startKey,
		ScanIndexForward:          aws.Bool(!input.Newest),
	}
	if input.Index != "" {
		query.IndexName = aws.String(input.Index)
	} else {
		query.ConsistentRead = aws.Bool(input.Consistent)
	}
	output, err := rs.DynamoDB.Query(ctx, query)
	if err != nil {
		return data.QueryResults[T]{}, Translate(err)
	}
	items := make([]T, 0, len(output.Items))
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &items); err != nil {
		return data.QueryResults[T]{}, err
	}
	nextToken, err := rs.TokenMarshaler.Marshal(input.Scope, output.LastEvaluatedKey)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	return data.QueryResults[T]{
		Items:     items,
		NextToken: nextToken,
	}, nil
}

// QueryAll drains every page of a query. Only used for bounded partitions.
func (rs *RepositoryDynamoDBService[T]) QueryAll(ctx context.Context, input QueryInput) ([]T, error) {
	var items []T
	for {
		results, err := rs.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, results.Items...)
		if results.NextToken == nil {
			return items, nil
		}
		input.Params.NextToken = results.NextToken
	}
}

func (rs *RepositoryDynamoDBService[T]) Delete(ctx context.Context, key Key) error {
	av, err := key.AttributeValues()
	if err != nil {
		return err
	}
	_, err = rs.DynamoDB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		Key:       av,
		TableName: aws.String(rs.TableName),
	})
	return Translate(err)
}

// BatchGet resolves keys in chunks, returning found items in key order.
func (rs *RepositoryDynamoDBService[T]) BatchGet(ctx context.Context, keys []Key, id func(T) string) ([]T, error) {
	found := make(map[string]T, len(keys))
	for start := 0; start < len(keys); start += batchGetLimit {
		end := min(start+batchGetLimit, len(keys))
		requested := make([]map[string]types.AttributeValue, 0, end-start)
		for _, key := range keys[start:end] {
			av, err := key.AttributeValues()
			if err != nil {
				return nil, err
			}
			requested = append(requested, av)
		}
		for len(requested) > 0 {
			output, err := rs.DynamoDB.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: map[string]types.KeysAndAttributes{
					rs.TableName: {Keys: requested},
				},
			})
			if err != nil {
				return nil, Translate(err)
			}
			var items []T
			if err := attributevalue.UnmarshalListOfMaps(output.Responses[rs.TableName], &items); err != nil {
				return nil, err
			}
			for _, item := range items {
				found[id(item)] = item
			}
			requested = output.UnprocessedKeys[rs.TableName].Keys
		}
	}
	items := make([]T, 0, len(found))
	for _, key := range keys {
		if item, ok := found[key.SK]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// BatchDelete removes keys in chunks, resubmitting unprocessed writes.
func (rs *RepositoryDynamoDBService[T]) BatchDelete(ctx context.Context, keys []Key) error {
	for start := 0; start < len(keys); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(keys))
		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			av, err := key.AttributeValues()
			if err != nil {
				return err
			}
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: av},
			})
		}
		for len(requests) > 0 {
			output, err := rs.DynamoDB.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					rs.TableName: requests,
				},
			})
			if err != nil {
				return Translate(err)
			}
			requests = output.UnprocessedItems[rs.TableName]
		}
	}
	return nil
}

// StringSet marshals as a DynamoDB SS, for ADD and DELETE set updates.
type StringSet []string

func (s StringSet) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberSS{Value: s}, nil
}

// ToggleMember flips member in the string set attribute of the item at key
// without reading the whole set back first. Each branch is conditional on
// the current membership so concurrent toggles from other members are never
// lost. When both branches miss, a concurrent toggle of the same member won
// and the call reports Conflict. touch, when set, seeds each update with
// extra assignments; builders share state so it must return a fresh one.
func (rs *RepositoryDynamoDBService[T]) ToggleMember(ctx context.Context, key Key, attribute string, member string, touch func() expression.UpdateBuilder) (T, bool, error) {
	if touch == nil {
		touch = func() expression.UpdateBuilder {
			return expression.UpdateBuilder{}
		}
	}
	exists := expression.Name("PK").AttributeExists()
	set := expression.Value(StringSet{member})
	absent := exists.And(expression.Name(attribute).Contains(member).Not())
	added, err := rs.Update(ctx, key, touch().Add(expression.Name(attribute), set), &absent)
	if err == nil {
		return added, true, nil
	}
	if !IsConditionFailed(err) {
		return added, false, err
	}
	present := exists.And(expression.Name(attribute).Contains(member))
	removed, err := rs.Update(ctx, key, touch().Delete(expression.Name(attribute), set), &present)
	if err == nil {
		return removed, false, nil
	}
	if IsConditionFailed(err) {
		return removed, false, exceptions.Conflict(rs.resource(), key.PK)
	}
	return removed, false, err
}
