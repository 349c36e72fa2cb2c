package data

import (
	"context"
	"time"
)

type ChatMessageDTO struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	Message   string    `dynamodbav:"message"`
	Sender    AuthorDTO `dynamodbav:"sender"`
	Timestamp time.Time `dynamodbav:"timestamp"`
}

func (m ChatMessageDTO) Id() string {
	return m.SK
}

type ChatMessageInputDTO struct {
	Message string
	Sender  AuthorDTO
}

type ChatRepository interface {
	PostMessage(ctx context.Context, input ChatMessageInputDTO) (ChatMessageDTO, error)
	// RecentMessages returns the newest limit messages in ascending order.
	RecentMessages(ctx context.Context, limit int) ([]ChatMessageDTO, error)
	// MessagesAfter returns messages strictly newer than afterId in ascending order.
	MessagesAfter(ctx context.Context, afterId string, limit int) ([]ChatMessageDTO, error)
}
