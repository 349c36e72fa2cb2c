package users

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"recipeshare.me/recipes/internal/activity"
	"recipeshare.me/recipes/internal/favorites"
	"recipeshare.me/recipes/internal/routes"
	"recipeshare.me/recipes/internal/routes/recipes"
	"recipeshare.me/recipes/internal/routes/util"
	userService "recipeshare.me/recipes/internal/users"
)

type UserService struct {
	users     *userService.Service
	activity  *activity.Service
	favorites *favorites.Service
}

func NewRoute(users *userService.Service, activity *activity.Service, favorites *favorites.Service) routes.Service {
	return &UserService{
		users:     users,
		activity:  activity,
		favorites: favorites,
	}
}

func (us *UserService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"PUT:/users/me":                      us.EnsureProfile,
		"GET:/users/:id":                     us.GetProfile,
		"GET:/users/:id/activity":            us.ListActivity,
		"GET:/users/me/favorites":            us.ListMyFavorites,
		"GET:/users/:id/favorites":           us.ListFavorites,
		"POST:/users/me/favorites/:recipeId": us.ToggleFavorite,
	}
}

func (us *UserService) EnsureProfile(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := ProfileInput{}
	if event.Body != "" {
		decoded, err := util.DecodeBody[ProfileInput](event)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		input = decoded
	}
	user, err := us.users.EnsureProfile(ctx, input.ToData())
	return util.SerializeResponseOK(NewProfile, user, err)
}

func (us *UserService) GetProfile(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	userId, err := util.ResolveUserId(ctx, util.RequestParam(ctx, "id"))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	user, err := us.users.GetProfile(ctx, userId)
	return util.SerializeResponseOK(NewProfile, user, err)
}

func (us *UserService) ListActivity(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	userId, err := util.ResolveUserId(ctx, util.RequestParam(ctx, "id"))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	entries, err := us.activity.ListRecent(ctx, userId)
	return util.SerializeResponseOK(util.ConvertListPartial(NewActivity), entries, err)
}

func (us *UserService) ListMyFavorites(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	items, err := us.favorites.ListMine(ctx)
	return util.SerializeResponseOK(util.ConvertListPartial(recipes.NewRecipe), items, err)
}

func (us *UserService) ListFavorites(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	items, err := us.favorites.ListFavorites(ctx, util.RequestParam(ctx, "id"))
	return util.SerializeResponseOK(util.ConvertListPartial(recipes.NewRecipe), items, err)
}

func (us *UserService) ToggleFavorite(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	recipeId := util.RequestParam(ctx, "recipeId")
	present, err := us.favorites.ToggleFavorite(ctx, recipeId)
	return util.SerializeResponseOK(func(present bool) Favorite {
		return Favorite{RecipeId: recipeId, Favorite: present}
	}, present, err)
}
