// Package comments manages recipe comments, their replies and like sets.
package comments

import (
	"context"
	"iter"

	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/content"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/ratings"
	"recipeshare.me/recipes/internal/retry"
)

const (
	MaxContentLength = 2000
	defaultPageSize  = 25
)

// Thread is a comment with its replies attached in creation order.
type Thread struct {
	data.CommentDTO
	Replies []data.ReplyDTO
}

type Service struct {
	Comments  data.CommentRepository
	Recipes   data.RecipeRepository
	Ratings   *ratings.Service
	Identity  auth.Provider
	Sanitizer *content.Sanitizer
	Logger    *zap.Logger
	PageSize  int
}

func NewService(comments data.CommentRepository, recipes data.RecipeRepository, ratings *ratings.Service, identity auth.Provider, logger *zap.Logger) *Service {
	return &Service{
		Comments:  comments,
		Recipes:   recipes,
		Ratings:   ratings,
		Identity:  identity,
		Sanitizer: content.NewSanitizer(),
		Logger:    logger,
		PageSize:  defaultPageSize,
	}
}

// PostComment adds a comment to a recipe. A rating given alongside the
// comment goes through the rating service, so a user who already rated
// keeps their first value and the comment records that value.
// The rating is committed before the comment. If the comment write fails the
// rating stays, and posting again only adds the comment.
func (s *Service) PostComment(ctx context.Context, recipeId string, raw string, rating *int) (data.CommentDTO, error) {
	identity, err := auth.Require(ctx, s.Identity, "comment")
	if err != nil {
		return data.CommentDTO{}, err
	}
	text, err := s.Sanitizer.Require("content", raw, MaxContentLength)
	if err != nil {
		return data.CommentDTO{}, err
	}
	if rating != nil {
		if err := ratings.Validate(*rating); err != nil {
			return data.CommentDTO{}, err
		}
	}
	if _, err := s.Recipes.GetRecipe(ctx, recipeId); err != nil {
		return data.CommentDTO{}, err
	}
	var stored *int
	if rating != nil {
		result, err := s.Ratings.SubmitAs(ctx, identity, recipeId, *rating)
		if err != nil {
			return data.CommentDTO{}, err
		}
		stored = &result.Rating
	}
	return s.Comments.CreateComment(ctx, data.CommentInputDTO{
		RecipeId: recipeId,
		Content:  text,
		Author:   identity.Snapshot(),
		Rating:   stored,
	})
}

func (s *Service) PostReply(ctx context.Context, commentId string, raw string) (data.ReplyDTO, error) {
	identity, err := auth.Require(ctx, s.Identity, "reply")
	if err != nil {
		return data.ReplyDTO{}, err
	}
	text, err := s.Sanitizer.Require("content", raw, MaxContentLength)
	if err != nil {
		return data.ReplyDTO{}, err
	}
	return s.Comments.CreateReply(ctx, data.ReplyInputDTO{
		CommentId: commentId,
		Content:   text,
		Author:    identity.Snapshot(),
	})
}

// ListComments yields a recipe's comments oldest first, each with its
// replies. Pages are fetched as the sequence is consumed and every range
// over the result queries the store again. Comments still waiting on a
// timestamp are held back until the timestamped ones are done.
func (s *Service) ListComments(ctx context.Context, recipeId string) iter.Seq2[Thread, error] {
	return func(yield func(Thread, error) bool) {
		var pending []data.CommentDTO
		params := data.QueryParams{Limit: s.pageSize()}
		for {
			page, err := s.Comments.ListComments(ctx, recipeId, params)
			if err != nil {
				yield(Thread{}, err)
				return
			}
			for _, comment := range page.Items {
				if comment.Timestamp == nil {
					pending = append(pending, comment)
					continue
				}
				if !s.yieldThread(ctx, comment, yield) {
					return
				}
			}
			if page.NextToken == nil {
				break
			}
			params.NextToken = page.NextToken
		}
		if len(pending) > 0 {
			s.Logger.Debug("comments without timestamp listed last",
				zap.String("recipeId", recipeId),
				zap.Int("count", len(pending)))
		}
		for _, comment := range pending {
			if !s.yieldThread(ctx, comment, yield) {
				return
			}
		}
	}
}

func (s *Service) yieldThread(ctx context.Context, comment data.CommentDTO, yield func(Thread, error) bool) bool {
	replies, err := s.replies(ctx, comment.Id())
	if err != nil {
		yield(Thread{}, err)
		return false
	}
	return yield(Thread{CommentDTO: comment, Replies: replies}, nil)
}

func (s *Service) replies(ctx context.Context, commentId string) ([]data.ReplyDTO, error) {
	replies := []data.ReplyDTO{}
	params := data.QueryParams{Limit: s.pageSize()}
	for {
		page, err := s.Comments.ListReplies(ctx, commentId, params)
		if err != nil {
			return nil, err
		}
		replies = append(replies, page.Items...)
		if page.NextToken == nil {
			return replies, nil
		}
		params.NextToken = page.NextToken
	}
}

// ToggleLike flips the caller's like on a comment or reply.
func (s *Service) ToggleLike(ctx context.Context, id string) (data.LikeResult, error) {
	identity, err := auth.Require(ctx, s.Identity, "like")
	if err != nil {
		return data.LikeResult{}, err
	}
	return retry.OnConflict(ctx, func() (data.LikeResult, error) {
		return s.Comments.ToggleLike(ctx, id, identity.Id)
	})
}

func (s *Service) pageSize() int {
	if s.PageSize <= 0 {
		return defaultPageSize
	}
	return s.PageSize
}
