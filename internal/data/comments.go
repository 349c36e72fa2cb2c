package data

import (
	"context"
	"time"
)

const (
	CommentKind = "Comment"
	ReplyKind   = "Reply"
)

type CommentDTO struct {
	PK             string     `dynamodbav:"PK"`
	SK             string     `dynamodbav:"SK"`
	FirstIndex     string     `dynamodbav:"GS1-PK"`
	FirstIndexSort string     `dynamodbav:"GS1-SK"`
	RecipeId       string     `dynamodbav:"recipeId"`
	Content        string     `dynamodbav:"content"`
	Author         AuthorDTO  `dynamodbav:"author"`
	Likes          []string   `dynamodbav:"likes,stringset,omitempty"`
	Rating         *int       `dynamodbav:"rating"`
	Timestamp      *time.Time `dynamodbav:"timestamp"`
}

func (c CommentDTO) Id() string {
	return c.PK
}

func (c CommentDTO) LikeCount() int {
	return len(c.Likes)
}

type ReplyDTO struct {
	PK             string     `dynamodbav:"PK"`
	SK             string     `dynamodbav:"SK"`
	FirstIndex     string     `dynamodbav:"GS1-PK"`
	FirstIndexSort string     `dynamodbav:"GS1-SK"`
	CommentId      string     `dynamodbav:"commentId"`
	Content        string     `dynamodbav:"content"`
	Author         AuthorDTO  `dynamodbav:"author"`
	Likes          []string   `dynamodbav:"likes,stringset,omitempty"`
	Timestamp      *time.Time `dynamodbav:"timestamp"`
}

func (r ReplyDTO) Id() string {
	return r.PK
}

func (r ReplyDTO) LikeCount() int {
	return len(r.Likes)
}

type CommentInputDTO struct {
	RecipeId string
	Content  string
	Author   AuthorDTO
	Rating   *int
}

type ReplyInputDTO struct {
	CommentId string
	Content   string
	Author    AuthorDTO
}

type LikeResult struct {
	Id    string `json:"id"`
	Liked bool   `json:"liked"`
	Count int    `json:"count"`
}

type CommentRepository interface {
	CreateComment(ctx context.Context, input CommentInputDTO) (CommentDTO, error)
	// CreateReply fails with NotFound when the parent comment does not exist.
	CreateReply(ctx context.Context, input ReplyInputDTO) (ReplyDTO, error)
	GetComment(ctx context.Context, commentId string) (CommentDTO, error)
	// ListComments pages through a recipe's comments in ascending creation order.
	ListComments(ctx context.Context, recipeId string, params QueryParams) (QueryResults[CommentDTO], error)
	ListReplies(ctx context.Context, commentId string, params QueryParams) (QueryResults[ReplyDTO], error)
	// ToggleLike flips membership of liker in the likes set of a comment or reply.
	ToggleLike(ctx context.Context, id string, liker string) (LikeResult, error)
	DeleteComments(ctx context.Context, recipeId string) error
}
