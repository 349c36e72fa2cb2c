package app

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/config"
	"recipeshare.me/recipes/internal/notifications"
	snsServices "recipeshare.me/recipes/internal/sns/services"
)

func LoadAWS(ctx context.Context) (aws.Config, error) {
	return awsConfig.LoadDefaultConfig(ctx)
}

// NewDynamoDBClient honors DYNAMODB_ENDPOINT so local runs can target
// DynamoDB Local.
func NewDynamoDBClient(awsCfg aws.Config, cfg config.AppConfig) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.EndpointResolver = dynamodb.EndpointResolverFromURL(cfg.DynamoDBEndpoint)
		}
	})
}

// NewPublisher publishes to TOPIC_ARN, or drops events when no topic is set.
func NewPublisher(awsCfg aws.Config, cfg config.AppConfig, logger *zap.Logger) notifications.Publisher {
	if cfg.TopicArn == "" {
		logger.Warn("TOPIC_ARN is not set, domain events are dropped")
		return notifications.NopPublisher{}
	}
	return snsServices.NewNotificationService(sns.NewFromConfig(awsCfg), cfg.TopicArn)
}
