package comments

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

type CommentDynamoDBService struct {
	Comments services.RepositoryDynamoDBService[data.CommentDTO]
	Replies  services.RepositoryDynamoDBService[data.ReplyDTO]
}

func NewCommentService(tableName string, client services.Client, marshaler token.TokenMarshaler) data.CommentRepository {
	return &CommentDynamoDBService{
		Comments: services.RepositoryDynamoDBService[data.CommentDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           data.CommentKind,
		},
		Replies: services.RepositoryDynamoDBService[data.ReplyDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           data.ReplyKind,
		},
	}
}

func commentIndex(recipeId string) string {
	return recipeId + ":" + data.CommentKind
}

func replyIndex(commentId string) string {
	return commentId + ":" + data.ReplyKind
}

func byIndex(partition string, params data.QueryParams) services.QueryInput {
	return services.QueryInput{
		Index:  services.FirstIndex,
		Key:    expression.Key("GS1-PK").Equal(expression.Value(partition)),
		Scope:  partition,
		Params: params,
	}
}

func (cs *CommentDynamoDBService) CreateComment(ctx context.Context, input data.CommentInputDTO) (data.CommentDTO, error) {
	gid, err := uuid.NewV7()
	if err != nil {
		return data.CommentDTO{}, err
	}
	now := time.Now().UTC()
	comment := data.CommentDTO{
		PK:         gid.String(),
		SK:         data.CommentKind,
		FirstIndex: commentIndex(input.RecipeId),
		RecipeId:   input.RecipeId,
		Content:    input.Content,
		Author:     input.Author,
		Rating:     input.Rating,
		Timestamp:  &now,
	}
	comment.FirstIndexSort = data.SortKey(comment.Timestamp, comment.PK)
	return cs.Comments.Create(ctx, comment, comment.PK)
}

func (cs *CommentDynamoDBService) CreateReply(ctx context.Context, input data.ReplyInputDTO) (data.ReplyDTO, error) {
	if _, err := cs.GetComment(ctx, input.CommentId); err != nil {
		return data.ReplyDTO{}, err
	}
	gid, err := uuid.NewV7()
	if err != nil {
		return data.ReplyDTO{}, err
	}
	now := time.Now().UTC()
	reply := data.ReplyDTO{
		PK:         gid.String(),
		SK:         data.ReplyKind,
		FirstIndex: replyIndex(input.CommentId),
		CommentId:  input.CommentId,
		Content:    input.Content,
		Author:     input.Author,
		Timestamp:  &now,
	}
	reply.FirstIndexSort = data.SortKey(reply.Timestamp, reply.PK)
	return cs.Replies.Create(ctx, reply, reply.PK)
}

func (cs *CommentDynamoDBService) GetComment(ctx context.Context, commentId string) (data.CommentDTO, error) {
	return cs.Comments.Get(ctx, services.Key{PK: commentId, SK: data.CommentKind}, false)
}

func (cs *CommentDynamoDBService) ListComments(ctx context.Context, recipeId string, params data.QueryParams) (data.QueryResults[data.CommentDTO], error) {
	return cs.Comments.Query(ctx, byIndex(commentIndex(recipeId), params))
}

func (cs *CommentDynamoDBService) ListReplies(ctx context.Context, commentId string, params data.QueryParams) (data.QueryResults[data.ReplyDTO], error) {
	return cs.Replies.Query(ctx, byIndex(replyIndex(commentId), params))
}

func (cs *CommentDynamoDBService) ToggleLike(ctx context.Context, id string, liker string) (data.LikeResult, error) {
	comment, err := cs.GetComment(ctx, id)
	if err == nil {
		updated, liked, err := cs.Comments.ToggleMember(ctx, services.Key{PK: comment.PK, SK: comment.SK}, "likes", liker, nil)
		if err != nil {
			return data.LikeResult{}, err
		}
		return data.LikeResult{Id: id, Liked: liked, Count: updated.LikeCount()}, nil
	}
	if !exceptions.IsNotFound(err) {
		return data.LikeResult{}, err
	}
	key := services.Key{PK: id, SK: data.ReplyKind}
	if _, err := cs.Replies.Get(ctx, key, false); err != nil {
		if exceptions.IsNotFound(err) {
			return data.LikeResult{}, exceptions.NotFound("comment", id)
		}
		return data.LikeResult{}, err
	}
	updated, liked, err := cs.Replies.ToggleMember(ctx, key, "likes", liker, nil)
	if err != nil {
		return data.LikeResult{}, err
	}
	return data.LikeResult{Id: id, Liked: liked, Count: updated.LikeCount()}, nil
}

// DeleteComments removes every comment on a recipe along with its replies.
func (cs *CommentDynamoDBService) DeleteComments(ctx context.Context, recipeId string) error {
	comments, err := cs.Comments.QueryAll(ctx, byIndex(commentIndex(recipeId), data.QueryParams{}))
	if err != nil {
		return err
	}
	var keys []services.Key
	for _, comment := range comments {
		replies, err := cs.Replies.QueryAll(ctx, byIndex(replyIndex(comment.PK), data.QueryParams{}))
		if err != nil {
			return err
		}
		for _, reply := range replies {
			keys = append(keys, services.Key{PK: reply.PK, SK: reply.SK})
		}
		keys = append(keys, services.Key{PK: comment.PK, SK: comment.SK})
	}
	return cs.Comments.BatchDelete(ctx, keys)
}
