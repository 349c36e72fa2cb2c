package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/notifications"
	"recipeshare.me/recipes/internal/sns/services"
)

type fakeClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestNotificationSNSService(t *testing.T) {
	client := &fakeClient{}
	publisher := services.NewNotificationService(client, "arn:aws:sns:us-east-1:000000000000:recipes")
	event := notifications.Event{
		Type:       notifications.RecipeRated,
		ResourceId: "r-1",
		ActorId:    "u-1",
		Attributes: map[string]string{"rating": "4"},
		Time:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := publisher.Publish(context.TODO(), event); err != nil {
		t.Fatalf("Failed to publish: %s", err)
	}
	if aws.ToString(client.input.TopicArn) != "arn:aws:sns:us-east-1:000000000000:recipes" {
		t.Errorf("unexpected topic %s", aws.ToString(client.input.TopicArn))
	}
	if attr := client.input.MessageAttributes["eventType"]; aws.ToString(attr.StringValue) != "recipe.rated" {
		t.Errorf("unexpected event type attribute %v", attr)
	}
	var decoded notifications.Event
	if err := json.Unmarshal([]byte(aws.ToString(client.input.Message)), &decoded); err != nil {
		t.Fatalf("Failed to decode message: %s", err)
	}
	if decoded.ResourceId != "r-1" || decoded.Attributes["rating"] != "4" {
		t.Errorf("unexpected message %v", decoded)
	}

	client.err = errors.New("throttled")
	if err := publisher.Publish(context.TODO(), event); !exceptions.IsRetryable(err) {
		t.Fatalf("expected a retryable error, got %v", err)
	}
}
