package events

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/recipes"
)

// CascadeDeleteHandler cleans up after a removed recipe document.
type CascadeDeleteHandler struct {
	Cascade *recipes.Cascade
}

func (ch *CascadeDeleteHandler) Filter(record events.DynamoDBEventRecord) bool {
	return record.EventName == Remove && RecordKind(record) == KindRecipe
}

func (ch *CascadeDeleteHandler) Apply(ctx context.Context, record events.DynamoDBEventRecord) error {
	recipe, err := UnmarshalImage[data.RecipeDTO](record.Change.OldImage)
	if err != nil {
		return err
	}
	if recipe.SK == "" {
		recipe.SK = recordKey(record, "SK")
	}
	return ch.Cascade.RecipeDeleted(ctx, recipe)
}

func DefaultCascadeHandler(cascade *recipes.Cascade) *CascadeDeleteHandler {
	return &CascadeDeleteHandler{
		Cascade: cascade,
	}
}
