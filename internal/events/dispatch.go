package events

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// Dispatcher runs every matching handler for each stream record. Records
// with a failing handler are reported back so the stream retries only them.
type Dispatcher struct {
	Handlers []EventFilter
	Logger   *zap.Logger
}

func NewDispatcher(logger *zap.Logger, handlers ...EventFilter) *Dispatcher {
	return &Dispatcher{
		Handlers: handlers,
		Logger:   logger,
	}
}

func (d *Dispatcher) apply(ctx context.Context, record events.DynamoDBEventRecord) error {
	for _, handler := range d.Handlers {
		if !handler.Filter(record) {
			continue
		}
		if err := handler.Apply(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) Handle(ctx context.Context, event events.DynamoDBEvent) (events.DynamoDBEventResponse, error) {
	response := events.DynamoDBEventResponse{
		BatchItemFailures: []events.DynamoDBBatchItemFailure{},
	}
	for _, record := range event.Records {
		if err := d.apply(ctx, record); err != nil {
			d.Logger.Error("failed to handle stream record",
				zap.String("eventId", record.EventID),
				zap.String("eventName", record.EventName),
				zap.String("kind", RecordKind(record)),
				zap.Error(err))
			response.BatchItemFailures = append(response.BatchItemFailures, events.DynamoDBBatchItemFailure{
				ItemIdentifier: record.Change.SequenceNumber,
			})
		}
	}
	return response, nil
}
