package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/auth"
)

func request(token string) events.APIGatewayV2CustomAuthorizerV2Request {
	headers := map[string]string{}
	if token != "" {
		headers["authorization"] = token
	}
	return events.APIGatewayV2CustomAuthorizerV2Request{Headers: headers}
}

func TestHandleRequest(t *testing.T) {
	verifier := &auth.JWTVerifier{Secret: []byte("local-secret")}
	pool := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/userInfo" || r.Header.Get("Authorization") != "Bearer pool-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"sub": "pool-user", "username": "poolie"}`))
	}))
	defer pool.Close()

	authorizer := &Authorizer{
		Verifier: verifier,
		PoolURL:  pool.URL,
		Client:   pool.Client(),
		Logger:   zap.NewNop(),
	}
	signed, err := verifier.Sign(auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:    "One",
		Picture: "https://example.com/one.png",
	})
	if err != nil {
		t.Fatalf("Failed to sign token: %s", err)
	}

	t.Run("SignedToken", func(t *testing.T) {
		response, err := authorizer.HandleRequest(context.TODO(), request("Bearer "+signed))
		if err != nil || !response.IsAuthorized {
			t.Fatalf("Expected authorized, got %v: %v", response, err)
		}
		if response.Context["sub"] != "u1" || response.Context["picture"] != "https://example.com/one.png" {
			t.Fatalf("Unexpected context %v", response.Context)
		}
	})

	t.Run("PoolToken", func(t *testing.T) {
		response, err := authorizer.HandleRequest(context.TODO(), request("Bearer pool-token"))
		if err != nil || !response.IsAuthorized {
			t.Fatalf("Expected authorized, got %v: %v", response, err)
		}
		if response.Context["sub"] != "pool-user" || response.Context["name"] != "poolie" {
			t.Fatalf("Unexpected context %v", response.Context)
		}
		if _, ok := response.Context["picture"]; ok {
			t.Fatalf("Expected no picture claim, got %v", response.Context)
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		for _, token := range []string{"", "Bearer nope", "Basic dXNlcjpwYXNz"} {
			response, err := authorizer.HandleRequest(context.TODO(), request(token))
			if err != nil || response.IsAuthorized {
				t.Fatalf("Expected %q to be rejected, got %v: %v", token, response, err)
			}
		}
	})
}
