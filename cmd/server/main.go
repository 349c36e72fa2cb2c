package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/app"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/config"
	"recipeshare.me/recipes/internal/dynamodb/token"
	"recipeshare.me/recipes/internal/logging"
	"recipeshare.me/recipes/internal/memory"
	"recipeshare.me/recipes/internal/metrics"
	"recipeshare.me/recipes/internal/routes/filters"
	"recipeshare.me/recipes/internal/server"
)

func repositories(ctx context.Context, cfg config.AppConfig) (app.Repositories, error) {
	if cfg.Store == config.StoreMemory {
		return app.MemoryRepositories(memory.NewStore()), nil
	}
	awsCfg, err := app.LoadAWS(ctx)
	if err != nil {
		return app.Repositories{}, err
	}
	client := app.NewDynamoDBClient(awsCfg, cfg)
	return app.DynamoDBRepositories(cfg.TableName, client, token.NewGCM()), nil
}

func NewServer(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*server.Server, error) {
	repos, err := repositories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	services := app.NewServices(repos, logger)
	if cfg.Store == config.StoreMemory {
		// No stream runs against the memory store.
		services = services.CascadeInline()
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	router := services.NewRouter(logger)
	router.Metrics = metrics.NewCollector(registry)
	identity := filters.DefaultIdentityFilter()
	if cfg.Auth.JWTSecret != "" {
		identity.Verifier = &auth.JWTVerifier{Secret: []byte(cfg.Auth.JWTSecret)}
	}
	router.Filters = []filters.RequestFilter{filters.DefaultCorsFilter(), identity}
	if cfg.RateLimitPerMinute > 0 {
		router.Use(filters.NewRateLimitFilter(cfg.RateLimitPerMinute))
	}
	return &server.Server{
		Router:   router,
		Chat:     services.Chat,
		Gatherer: registry,
		Logger:   logger,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %s", err))
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %s", err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv, err := NewServer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdown); err != nil {
			logger.Warn("shutdown failed", zap.Error(err))
		}
	}()
	logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", string(cfg.Store)))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
