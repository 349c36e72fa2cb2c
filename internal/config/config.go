package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type StoreKind string

const (
	StoreDynamoDB StoreKind = "dynamodb"
	StoreMemory   StoreKind = "memory"
)

type AuthConfig struct {
	JWTSecret string
	PoolURL   string
}

type AppConfig struct {
	TableName          string
	TopicArn           string
	LogLevel           string
	Store              StoreKind
	HTTPAddr           string
	DynamoDBEndpoint   string
	RateLimitPerMinute int
	Auth               AuthConfig
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present, without overriding
// variables that are already set.
func Load() (AppConfig, error) {
	_ = godotenv.Load()
	cfg := AppConfig{
		TableName:        env("TABLE_NAME"),
		TopicArn:         env("TOPIC_ARN"),
		LogLevel:         env("LOG_LEVEL"),
		Store:            StoreKind(strings.ToLower(env("STORE"))),
		HTTPAddr:         env("HTTP_ADDR"),
		DynamoDBEndpoint: env("DYNAMODB_ENDPOINT"),
		Auth: AuthConfig{
			JWTSecret: env("AUTH_JWT_SECRET"),
			PoolURL:   env("AUTH_POOL_URL"),
		},
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	switch cfg.Store {
	case "":
		cfg.Store = StoreDynamoDB
	case StoreDynamoDB, StoreMemory:
	default:
		return AppConfig{}, errors.New("STORE must be one of dynamodb or memory")
	}
	if cfg.Store == StoreDynamoDB && cfg.TableName == "" {
		return AppConfig{}, errors.New("TABLE_NAME is required")
	}
	cfg.RateLimitPerMinute = 120
	if raw := env("RATE_LIMIT_PER_MINUTE"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return AppConfig{}, errors.New("RATE_LIMIT_PER_MINUTE must be a non-negative number")
		}
		cfg.RateLimitPerMinute = limit
	}
	return cfg, nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
