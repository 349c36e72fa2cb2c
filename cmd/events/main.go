package main

import (
	"context"
	"fmt"

	lambdaEvents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/app"
	"recipeshare.me/recipes/internal/config"
	"recipeshare.me/recipes/internal/dynamodb/token"
	"recipeshare.me/recipes/internal/events"
	"recipeshare.me/recipes/internal/logging"
)

func NewDispatcher(ctx context.Context) *events.Dispatcher {
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
	services := app.NewServices(app.DynamoDBRepositories(cfg.TableName, client, token.NewGCM()), logger)
	return events.NewDispatcher(logger,
		events.DefaultCascadeHandler(services.Cascade),
		events.DefaultPublishHandler(app.NewPublisher(awsCfg, cfg, logger)),
	)
}

func main() {
	dispatcher := NewDispatcher(context.Background())
	lambda.Start(func(ctx context.Context, event lambdaEvents.DynamoDBEvent) (lambdaEvents.DynamoDBEventResponse, error) {
		return dispatcher.Handle(ctx, event)
	})
}
