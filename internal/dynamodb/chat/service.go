package chat

import (
	"context"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/google/uuid"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/dynamodb/services"
	"recipeshare.me/recipes/internal/dynamodb/token"
)

const PartitionKey = "Global:Chat"

// ChatDynamoDBService keeps every message in one partition sorted by its
// UUIDv7 id, which orders by creation time.
type ChatDynamoDBService struct {
	services.RepositoryDynamoDBService[data.ChatMessageDTO]
}

func NewChatService(tableName string, client services.Client, marshaler token.TokenMarshaler) data.ChatRepository {
	return &ChatDynamoDBService{
		RepositoryDynamoDBService: services.RepositoryDynamoDBService[data.ChatMessageDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "Chat",
		},
	}
}

func (cs *ChatDynamoDBService) PostMessage(ctx context.Context, input data.ChatMessageInputDTO) (data.ChatMessageDTO, error) {
	gid, err := uuid.NewV7()
	if err != nil {
		return data.ChatMessageDTO{}, err
	}
	message := data.ChatMessageDTO{
		PK:        PartitionKey,
		SK:        gid.String(),
		Message:   input.Message,
		Sender:    input.Sender,
		Timestamp: time.Now().UTC(),
	}
	return cs.Create(ctx, message, message.SK)
}

func (cs *ChatDynamoDBService) RecentMessages(ctx context.Context, limit int) ([]data.ChatMessageDTO, error) {
	results, err := cs.Query(ctx, services.QueryInput{
		Key:    expression.Key("PK").Equal(expression.Value(PartitionKey)),
		Scope:  PartitionKey,
		Params: data.QueryParams{Limit: limit},
		Newest: true,
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(results.Items)
	return results.Items, nil
}

func (cs *ChatDynamoDBService) MessagesAfter(ctx context.Context, afterId string, limit int) ([]data.ChatMessageDTO, error) {
	key := expression.Key("PK").Equal(expression.Value(PartitionKey)).
		And(expression.Key("SK").GreaterThan(expression.Value(afterId)))
	results, err := cs.Query(ctx, services.QueryInput{
		Key:    key,
		Scope:  PartitionKey,
		Params: data.QueryParams{Limit: limit},
	})
	if err != nil {
		return nil, err
	}
	return results.Items, nil
}
