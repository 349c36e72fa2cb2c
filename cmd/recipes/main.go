package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/app"
	"recipeshare.me/recipes/internal/config"
	"recipeshare.me/recipes/internal/dynamodb/token"
	"recipeshare.me/recipes/internal/logging"
	"recipeshare.me/recipes/internal/routes"
	"recipeshare.me/recipes/internal/routes/filters"
)

type App struct {
	Router *routes.Router
	Logger *zap.Logger
}

func NewApp(ctx context.Context) App {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %s", err))
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %s", err))
	}
	awsCfg, err := app.LoadAWS(ctx)
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}
	client := app.NewDynamoDBClient(awsCfg, cfg)
	repos := app.DynamoDBRepositories(cfg.TableName, client, token.NewGCM())
	router := app.NewServices(repos, logger).NewRouter(logger)
	if cfg.RateLimitPerMinute > 0 {
		router.Use(filters.NewRateLimitFilter(cfg.RateLimitPerMinute))
	}
	return App{
		Router: router,
		Logger: logger,
	}
}

func (app *App) HandleRequest(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return app.Router.Invoke(request, ctx), nil
}

func main() {
	app := NewApp(context.Background())
	defer app.Logger.Sync()
	lambda.Start(app.HandleRequest)
}
