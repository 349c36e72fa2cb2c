// Package app wires repositories into the services and routes shared by the
// Lambda handlers and the local server.
package app

import (
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/activity"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/chat"
	"recipeshare.me/recipes/internal/comments"
	"recipeshare.me/recipes/internal/data"
	chatData "recipeshare.me/recipes/internal/dynamodb/chat"
	commentData "recipeshare.me/recipes/internal/dynamodb/comments"
	ratingData "recipeshare.me/recipes/internal/dynamodb/ratings"
	recipeData "recipeshare.me/recipes/internal/dynamodb/recipes"
	"recipeshare.me/recipes/internal/dynamodb/services"
	"recipeshare.me/recipes/internal/dynamodb/token"
	userData "recipeshare.me/recipes/internal/dynamodb/users"
	"recipeshare.me/recipes/internal/favorites"
	"recipeshare.me/recipes/internal/memory"
	"recipeshare.me/recipes/internal/ratings"
	"recipeshare.me/recipes/internal/recipes"
	"recipeshare.me/recipes/internal/routes"
	chatRoutes "recipeshare.me/recipes/internal/routes/chat"
	commentRoutes "recipeshare.me/recipes/internal/routes/comments"
	recipeRoutes "recipeshare.me/recipes/internal/routes/recipes"
	userRoutes "recipeshare.me/recipes/internal/routes/users"
	"recipeshare.me/recipes/internal/users"
)

type Repositories struct {
	Recipes  data.RecipeRepository
	Ratings  data.RatingRepository
	Comments data.CommentRepository
	Users    data.UserRepository
	Chat     data.ChatRepository
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Recipes:  store,
		Ratings:  store,
		Comments: store,
		Users:    store,
		Chat:     store,
	}
}

func DynamoDBRepositories(tableName string, client services.Client, marshaler token.TokenMarshaler) Repositories {
	return Repositories{
		Recipes:  recipeData.NewRecipeService(tableName, client, marshaler),
		Ratings:  ratingData.NewRatingService(tableName, client, marshaler),
		Comments: commentData.NewCommentService(tableName, client, marshaler),
		Users:    userData.NewUserService(tableName, client, marshaler),
		Chat:     chatData.NewChatService(tableName, client, marshaler),
	}
}

type Services struct {
	Recipes   *recipes.Service
	Ratings   *ratings.Service
	Comments  *comments.Service
	Activity  *activity.Service
	Favorites *favorites.Service
	Users     *users.Service
	Chat      *chat.Service
	Cascade   *recipes.Cascade
}

// NewServices builds every service over repos. The identity of each call is
// read from the context the router prepares.
func NewServices(repos Repositories, logger *zap.Logger) Services {
	identity := auth.ContextProvider{}
	activityService := activity.NewService(repos.Users, logger)
	ratingService := ratings.NewService(repos.Ratings, identity, logger)
	return Services{
		Recipes:   recipes.NewService(repos.Recipes, activityService, identity, logger),
		Ratings:   ratingService,
		Comments:  comments.NewService(repos.Comments, repos.Recipes, ratingService, identity, logger),
		Activity:  activityService,
		Favorites: favorites.NewService(repos.Users, repos.Recipes, identity),
		Users:     users.NewService(repos.Users, identity),
		Chat:      chat.NewService(repos.Chat, identity, logger),
		Cascade: &recipes.Cascade{
			Ratings:  repos.Ratings,
			Comments: repos.Comments,
			Activity: activityService,
			Logger:   logger,
		},
	}
}

// CascadeInline makes recipe deletes clean up synchronously. Deployments
// backed by DynamoDB leave this to the stream handler instead.
func (s Services) CascadeInline() Services {
	s.Recipes.Cascade = s.Cascade
	return s
}

func (s Services) Routes() []routes.Service {
	return []routes.Service{
		recipeRoutes.NewRoute(s.Recipes, s.Ratings),
		commentRoutes.NewRoute(s.Comments),
		userRoutes.NewRoute(s.Users, s.Activity, s.Favorites),
		chatRoutes.NewRoute(s.Chat),
	}
}

func (s Services) NewRouter(logger *zap.Logger) *routes.Router {
	router := routes.NewRouter(s.Routes()...)
	router.Logger = logger
	return router
}
