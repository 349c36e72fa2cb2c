package services

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/notifications"
)

type Client interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type NotificationSNSService struct {
	Sns      Client
	TopicArn string
}

func NewNotificationService(client Client, topicArn string) notifications.Publisher {
	return &NotificationSNSService{
		Sns:      client,
		TopicArn: topicArn,
	}
}

// Publish sends the event as JSON, tagged with its type so subscriptions
// can filter on the eventType message attribute.
func (n *NotificationSNSService) Publish(ctx context.Context, event notifications.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = n.Sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.TopicArn),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Type)),
			},
		},
	})
	if err != nil {
		return exceptions.Unavailable(err)
	}
	return nil
}
