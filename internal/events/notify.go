package events

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"recipeshare.me/recipes/internal/data"
	ratingData "recipeshare.me/recipes/internal/dynamodb/ratings"
	recipeData "recipeshare.me/recipes/internal/dynamodb/recipes"
	"recipeshare.me/recipes/internal/notifications"
)

const (
	KindRecipe  = "Recipe"
	KindRating  = "Rating"
	KindComment = data.CommentKind
	KindReply   = data.ReplyKind
)

// RecordKind names the document type a stream record carries, empty for
// documents no handler cares about.
func RecordKind(record events.DynamoDBEventRecord) string {
	pk := recordKey(record, "PK")
	sk := recordKey(record, "SK")
	switch {
	case pk == recipeData.PartitionKey:
		return KindRecipe
	case sk == data.CommentKind:
		return KindComment
	case sk == data.ReplyKind:
		return KindReply
	case strings.HasSuffix(pk, ratingData.PartitionSuffix):
		return KindRating
	}
	return ""
}

// EventFormat builds the event for a record, nil when it produces none.
type EventFormat func(record events.DynamoDBEventRecord) (*notifications.Event, error)

func eventTime(record events.DynamoDBEventRecord) time.Time {
	created := record.Change.ApproximateCreationDateTime.Time
	if created.IsZero() {
		return time.Now().UTC()
	}
	return created.UTC()
}

func formatRecipe(record events.DynamoDBEventRecord) (*notifications.Event, error) {
	var eventType notifications.EventType
	switch record.EventName {
	case Insert:
		eventType = notifications.RecipeCreated
	case Remove:
		eventType = notifications.RecipeDeleted
	default:
		return nil, nil
	}
	recipe, err := UnmarshalImage[data.RecipeDTO](RecordImage(record))
	if err != nil {
		return nil, err
	}
	return &notifications.Event{
		Type:       eventType,
		ResourceId: recipe.Id(),
		ActorId:    recipe.AuthorId,
		Attributes: map[string]string{
			"title":    recipe.Title,
			"category": recipe.Category,
		},
		Time: eventTime(record),
	}, nil
}

func formatRating(record events.DynamoDBEventRecord) (*notifications.Event, error) {
	if record.EventName != Insert {
		return nil, nil
	}
	rating, err := UnmarshalImage[data.RatingDTO](RecordImage(record))
	if err != nil {
		return nil, err
	}
	return &notifications.Event{
		Type:       notifications.RecipeRated,
		ResourceId: rating.RecipeId,
		ActorId:    rating.UserId,
		Attributes: map[string]string{
			"rating": strconv.Itoa(rating.Rating),
		},
		Time: eventTime(record),
	}, nil
}

func formatComment(record events.DynamoDBEventRecord) (*notifications.Event, error) {
	if record.EventName != Insert {
		return nil, nil
	}
	comment, err := UnmarshalImage[data.CommentDTO](RecordImage(record))
	if err != nil {
		return nil, err
	}
	return &notifications.Event{
		Type:       notifications.CommentPosted,
		ResourceId: comment.Id(),
		ActorId:    comment.Author.Id,
		Attributes: map[string]string{
			"recipeId": comment.RecipeId,
		},
		Time: eventTime(record),
	}, nil
}

func formatReply(record events.DynamoDBEventRecord) (*notifications.Event, error) {
	if record.EventName != Insert {
		return nil, nil
	}
	reply, err := UnmarshalImage[data.ReplyDTO](RecordImage(record))
	if err != nil {
		return nil, err
	}
	return &notifications.Event{
		Type:       notifications.ReplyPosted,
		ResourceId: reply.Id(),
		ActorId:    reply.Author.Id,
		Attributes: map[string]string{
			"commentId": reply.CommentId,
		},
		Time: eventTime(record),
	}, nil
}

type PublishDomainEventHandler struct {
	Publisher notifications.Publisher
	Formats   map[string]EventFormat
}

func (ph *PublishDomainEventHandler) Filter(record events.DynamoDBEventRecord) bool {
	_, ok := ph.Formats[RecordKind(record)]
	return ok
}

func (ph *PublishDomainEventHandler) Apply(ctx context.Context, record events.DynamoDBEventRecord) error {
	format := ph.Formats[RecordKind(record)]
	event, err := format(record)
	if err != nil || event == nil {
		return err
	}
	return ph.Publisher.Publish(ctx, *event)
}

func DefaultPublishHandler(publisher notifications.Publisher) *PublishDomainEventHandler {
	return &PublishDomainEventHandler{
		Publisher: publisher,
		Formats: map[string]EventFormat{
			KindRecipe:  formatRecipe,
			KindRating:  formatRating,
			KindComment: formatComment,
			KindReply:   formatReply,
		},
	}
}
