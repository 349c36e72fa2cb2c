package util

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/routes"
)

// Page is the transfer shape of a paged listing.
type Page[T interface{}] struct {
	Items     []T     `json:"items"`
	NextToken *string `json:"nextToken,omitempty"`
}

func RequestParam(ctx context.Context, name string) string {
	return routes.Params(ctx)[name]
}

// Viewer is the caller's user id, empty when anonymous.
func Viewer(ctx context.Context) string {
	if identity, ok := auth.FromContext(ctx); ok {
		return identity.Id
	}
	return ""
}

// ResolveUserId maps the "me" alias onto the caller's id.
func ResolveUserId(ctx context.Context, userId string) (string, error) {
	if userId != "me" {
		return userId, nil
	}
	if viewer := Viewer(ctx); viewer != "" {
		return viewer, nil
	}
	return "", exceptions.Unauthorized("resolve the current user")
}

func DecodeBody[T interface{}](event events.APIGatewayV2HTTPRequest) (T, error) {
	var input T
	if strings.TrimSpace(event.Body) == "" {
		return input, exceptions.InvalidInput("request body is required")
	}
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return input, exceptions.InvalidInput(err.Error())
	}
	return input, nil
}

func QueryParams(event events.APIGatewayV2HTTPRequest) (data.QueryParams, error) {
	var params data.QueryParams
	if sLimit, ok := event.QueryStringParameters["limit"]; ok {
		limit, err := strconv.Atoi(sLimit)
		if err != nil {
			return params, exceptions.InvalidInput("Limit parameter was not a number type.")
		}
		params.Limit = limit
	}
	if token, ok := event.QueryStringParameters["nextToken"]; ok && token != "" {
		params.NextToken = []byte(token)
	}
	return params, nil
}

func SerializeResponse[T interface{}, R interface{}](delayed func(T) R, thing T, err error, statusCode int) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	body, err := json.Marshal(delayed(thing))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	headers := map[string]string{
		"Content-Type":   "application/json",
		"Content-Length": strconv.Itoa(len(body)),
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

func SerializeResponseOK[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, 200)
}

func SerializeResponseCreated[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, 201)
}

func SerializeResponseNoContent(err error) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: 204,
	}, nil
}

func ConvertList[D interface{}, R interface{}](items []D, thunk func(D) R) []R {
	converted := make([]R, len(items))
	for i, item := range items {
		converted[i] = thunk(item)
	}
	return converted
}

func ConvertListPartial[D interface{}, R interface{}](thunk func(D) R) func([]D) Page[R] {
	return func(items []D) Page[R] {
		return Page[R]{Items: ConvertList(items, thunk)}
	}
}

func ConvertQueryResults[D interface{}, R interface{}](items data.QueryResults[D], thunk func(D) R) Page[R] {
	page := Page[R]{
		Items: ConvertList(items.Items, thunk),
	}
	if len(items.NextToken) > 0 {
		token := string(items.NextToken)
		page.NextToken = &token
	}
	return page
}

func ConvertQueryResultsPartial[D interface{}, R interface{}](thunk func(D) R) func(data.QueryResults[D]) Page[R] {
	return func(d data.QueryResults[D]) Page[R] {
		return ConvertQueryResults(d, thunk)
	}
}
