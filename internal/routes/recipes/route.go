package recipes

import (
	"context"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/ratings"
	recipeService "recipeshare.me/recipes/internal/recipes"
	"recipeshare.me/recipes/internal/routes"
	"recipeshare.me/recipes/internal/routes/util"
)

const defaultTrendingLimit = 10

type RecipeService struct {
	recipes *recipeService.Service
	ratings *ratings.Service
}

func NewRoute(recipes *recipeService.Service, ratings *ratings.Service) routes.Service {
	return &RecipeService{
		recipes: recipes,
		ratings: ratings,
	}
}

func (rs *RecipeService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/recipes":                rs.ListRecipes,
		"GET:/recipes/trending":       rs.Trending,
		"GET:/recipes/:id":            rs.GetRecipe,
		"POST:/recipes":               rs.CreateRecipe,
		"PUT:/recipes/:id":            rs.UpdateRecipe,
		"DELETE:/recipes/:id":         rs.DeleteRecipe,
		"POST:/recipes/:id/ratings":   rs.SubmitRating,
		"GET:/recipes/:id/ratings/me": rs.GetMyRating,
	}
}

func (rs *RecipeService) ListRecipes(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	filter := data.RecipeFilter{
		AuthorId: event.QueryStringParameters["authorId"],
		Category: event.QueryStringParameters["category"],
	}
	items, err := rs.recipes.ListRecipes(ctx, filter, params)
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewRecipe), items, err)
}

func (rs *RecipeService) Trending(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	limit := defaultTrendingLimit
	if sLimit, ok := event.QueryStringParameters["limit"]; ok {
		parsed, err := strconv.Atoi(sLimit)
		if err != nil || parsed <= 0 {
			return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput("Limit parameter was not a positive number.")
		}
		limit = parsed
	}
	items, err := rs.recipes.Trending(ctx, limit)
	return util.SerializeResponseOK(util.ConvertListPartial(NewRecipe), items, err)
}

func (rs *RecipeService) GetRecipe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	item, err := rs.recipes.GetRecipe(ctx, util.RequestParam(ctx, "id"))
	return util.SerializeResponseOK(NewRecipe, item, err)
}

func (rs *RecipeService) CreateRecipe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[RecipeInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := rs.recipes.CreateRecipe(ctx, input.ToData())
	return util.SerializeResponseCreated(NewRecipe, created, err)
}

func (rs *RecipeService) UpdateRecipe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[RecipeInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	item, err := rs.recipes.UpdateRecipe(ctx, util.RequestParam(ctx, "id"), input.ToData())
	return util.SerializeResponseOK(NewRecipe, item, err)
}

func (rs *RecipeService) DeleteRecipe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	err := rs.recipes.DeleteRecipe(ctx, util.RequestParam(ctx, "id"))
	return util.SerializeResponseNoContent(err)
}

func (rs *RecipeService) SubmitRating(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[RatingInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	recipeId := util.RequestParam(ctx, "id")
	result, err := rs.ratings.SubmitRating(ctx, recipeId, input.Rating)
	return util.SerializeResponseOK(NewRating(recipeId), result, err)
}

func (rs *RecipeService) GetMyRating(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	item, err := rs.ratings.GetUserRating(ctx, util.RequestParam(ctx, "id"))
	return util.SerializeResponseOK(NewUserRating, item, err)
}
