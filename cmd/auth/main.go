package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/config"
	"recipeshare.me/recipes/internal/logging"
)

type AuthThunk func(ctx context.Context, apiToken string) (*events.APIGatewayV2CustomAuthorizerSimpleResponse, error)

type Authorizer struct {
	Verifier *auth.JWTVerifier
	PoolURL  string
	Client   *http.Client
	Logger   *zap.Logger
}

func authorized(claims *auth.Claims) *events.APIGatewayV2CustomAuthorizerSimpleResponse {
	values := make(map[string]interface{})
	for name, value := range claims.ClaimsMap() {
		values[name] = value
	}
	return &events.APIGatewayV2CustomAuthorizerSimpleResponse{
		IsAuthorized: true,
		Context:      values,
	}
}

// JWTAuthThunk verifies tokens signed with the shared secret.
func (a *Authorizer) JWTAuthThunk(ctx context.Context, apiToken string) (*events.APIGatewayV2CustomAuthorizerSimpleResponse, error) {
	if a.Verifier == nil {
		return nil, nil
	}
	claims, err := a.Verifier.ParseBearer(apiToken)
	if err != nil {
		return nil, err
	}
	return authorized(claims), nil
}

// UserInfoAuthThunk asks the identity pool who the token belongs to.
func (a *Authorizer) UserInfoAuthThunk(ctx context.Context, apiToken string) (*events.APIGatewayV2CustomAuthorizerSimpleResponse, error) {
	if a.PoolURL == "" {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/oauth2/userInfo", strings.TrimSuffix(a.PoolURL, "/")), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Add("Authorization", apiToken)
	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}
	var info struct {
		Sub      string `json:"sub"`
		Name     string `json:"name"`
		Username string `json:"username"`
		Picture  string `json:"picture"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %v", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo has no subject")
	}
	claims := &auth.Claims{Name: info.Name, Picture: info.Picture}
	claims.Subject = info.Sub
	if claims.Name == "" {
		claims.Name = info.Username
	}
	return authorized(claims), nil
}

func (a *Authorizer) HandleRequest(ctx context.Context, event events.APIGatewayV2CustomAuthorizerV2Request) (events.APIGatewayV2CustomAuthorizerSimpleResponse, error) {
	response := events.APIGatewayV2CustomAuthorizerSimpleResponse{
		IsAuthorized: false,
	}
	apiToken, ok := event.Headers["authorization"]
	if !ok {
		return response, nil
	}
	thunks := []AuthThunk{
		a.JWTAuthThunk,
		a.UserInfoAuthThunk,
	}
	for _, authThunk := range thunks {
		newResp, err := authThunk(ctx, apiToken)
		if newResp != nil {
			return *newResp, nil
		}
		if err != nil {
			a.Logger.Debug("skipping authorizer", zap.Error(err))
		}
	}
	return response, nil
}

func NewAuthorizer() *Authorizer {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %s", err))
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %s", err))
	}
	authorizer := &Authorizer{
		PoolURL: cfg.Auth.PoolURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
		Logger:  logger,
	}
	if cfg.Auth.JWTSecret != "" {
		authorizer.Verifier = &auth.JWTVerifier{Secret: []byte(cfg.Auth.JWTSecret)}
	}
	return authorizer
}

func main() {
	authorizer := NewAuthorizer()
	lambda.Start(authorizer.HandleRequest)
}
