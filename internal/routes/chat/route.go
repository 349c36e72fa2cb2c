package chat

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"recipeshare.me/recipes/internal/chat"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/routes"
	"recipeshare.me/recipes/internal/routes/comments"
	"recipeshare.me/recipes/internal/routes/util"
)

type MessageInput struct {
	Message string `json:"message"`
}

type Message struct {
	Id        string          `json:"messageId"`
	Message   string          `json:"message"`
	Sender    comments.Author `json:"sender"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewMessage(message data.ChatMessageDTO) Message {
	return Message{
		Id:        message.Id(),
		Message:   message.Message,
		Sender:    comments.NewAuthor(message.Sender),
		Timestamp: message.Timestamp,
	}
}

type ChatService struct {
	chat *chat.Service
}

func NewRoute(chat *chat.Service) routes.Service {
	return &ChatService{
		chat: chat,
	}
}

func (cs *ChatService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/chat/messages":  cs.RecentMessages,
		"POST:/chat/messages": cs.PostMessage,
	}
}

func (cs *ChatService) RecentMessages(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	messages, err := cs.chat.Recent(ctx)
	return util.SerializeResponseOK(util.ConvertListPartial(NewMessage), messages, err)
}

func (cs *ChatService) PostMessage(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[MessageInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := cs.chat.Post(ctx, input.Message)
	return util.SerializeResponseCreated(NewMessage, created, err)
}
