package events

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
)

const (
	Insert = "INSERT"
	Modify = "MODIFY"
	Remove = "REMOVE"
)

type EventFilter interface {
	Filter(record events.DynamoDBEventRecord) bool
	Apply(ctx context.Context, record events.DynamoDBEventRecord) error
}
