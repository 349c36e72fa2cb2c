package comments

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"recipeshare.me/recipes/internal/comments"
	"recipeshare.me/recipes/internal/routes"
	"recipeshare.me/recipes/internal/routes/util"
)

type CommentService struct {
	comments *comments.Service
}

func NewRoute(comments *comments.Service) routes.Service {
	return &CommentService{
		comments: comments,
	}
}

func (cs *CommentService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/recipes/:id/comments":  cs.ListComments,
		"POST:/recipes/:id/comments": cs.PostComment,
		"POST:/comments/:id/replies": cs.PostReply,
		"POST:/comments/:id/like":    cs.ToggleLike,
	}
}

func (cs *CommentService) ListComments(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	threads := []comments.Thread{}
	for thread, err := range cs.comments.ListComments(ctx, util.RequestParam(ctx, "id")) {
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		threads = append(threads, thread)
	}
	return util.SerializeResponseOK(util.ConvertListPartial(NewThread(util.Viewer(ctx))), threads, nil)
}

func (cs *CommentService) PostComment(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[CommentInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := cs.comments.PostComment(ctx, util.RequestParam(ctx, "id"), input.Content, input.Rating)
	return util.SerializeResponseCreated(NewComment(util.Viewer(ctx)), created, err)
}

func (cs *CommentService) PostReply(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[ReplyInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := cs.comments.PostReply(ctx, util.RequestParam(ctx, "id"), input.Content)
	return util.SerializeResponseCreated(NewReply(util.Viewer(ctx)), created, err)
}

func (cs *CommentService) ToggleLike(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	result, err := cs.comments.ToggleLike(ctx, util.RequestParam(ctx, "id"))
	return util.SerializeResponseOK(NewLike, result, err)
}
