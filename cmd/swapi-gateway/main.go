// Command swapi-gateway runs the catalog gateway: a caching proxy over the
// upstream catalog API with flag-gated relation expansion, plus accounts,
// favorites and comments.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/holonet/swapi-gateway/pkg/api"
	"github.com/holonet/swapi-gateway/pkg/auth"
	"github.com/holonet/swapi-gateway/pkg/cache"
	"github.com/holonet/swapi-gateway/pkg/config"
	"github.com/holonet/swapi-gateway/pkg/logging"
	"github.com/holonet/swapi-gateway/pkg/resolve"
	"github.com/holonet/swapi-gateway/pkg/store"
	"github.com/holonet/swapi-gateway/pkg/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		fallback := logging.NewLogger("main")
		fallback.Fatal().Err(err).Msg("Configuration error")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("main")

	// Cache store: shared Redis when configured, process-local otherwise.
	var cacheStore cache.Store
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		cancel()
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		cacheStore = cache.NewRedisStore(redisClient)
	} else {
		logger.Warn().Msg("No Redis configured, using in-process cache")
		cacheStore = cache.NewMemoryStore()
	}

	documents, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("Failed to open document store")
	}
	defer documents.Close()

	tokens, err := auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create token manager")
	}

	client, err := upstream.New(upstream.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		UserAgent: "swapi-gateway/0.1.0",
		Timeout:   cfg.Upstream.Timeout,
		RateLimit: cfg.Upstream.RateLimit,
		Burst:     cfg.Upstream.Burst,
		Retry:     upstream.DefaultRetryConfig(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create upstream client")
	}

	resolver := resolve.NewResolver(cacheStore, client, cfg.Resolver.Concurrency)
	expander := resolve.NewExpander(resolver)

	router := api.NewRouter(api.Deps{
		Upstream: client,
		Expander: expander,
		Store:    documents,
		Tokens:   tokens,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Str("upstream", cfg.Upstream.BaseURL).
			Msg("Starting gateway server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
