// ABOUTME: Main entry point for the BlogForge API server
// ABOUTME: Wires together all components and starts the HTTP server

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogforge-app-api/api"
	"blogforge-app-api/api/handlers"
	"blogforge-app-api/core/interfaces"
	"blogforge-app-api/core/sources"
	"blogforge-app-api/core/validation"
	activitysqlite "blogforge-app-api/infrastructure/activity/sqlite"
	"blogforge-app-api/infrastructure/cache/memory"
	"blogforge-app-api/infrastructure/cache/redis"
	stdhttp "blogforge-app-api/infrastructure/http/standard"
	"blogforge-app-api/infrastructure/llm/openai"
	"blogforge-app-api/infrastructure/logger/structured"
	"blogforge-app-api/infrastructure/scraper/readability"
	"blogforge-app-api/infrastructure/search/serper"
	mongostore "blogforge-app-api/infrastructure/storage/mongo"
	pgstore "blogforge-app-api/infrastructure/storage/postgres"
	"blogforge-app-api/pkg/config"
	"blogforge-app-api/pkg/featureflags"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create logger
	logger := structured.NewLogger(structured.Config{
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat,
		File:       cfg.Logging.File,
	})
	// Operational toggles, controlled through FEATURE_* env vars
	flags := featureflags.NewEnvManager("")

	logger.Info("Starting BlogForge API", map[string]interface{}{
		"port":       cfg.Server.Port,
		"cache_type": cfg.Cache.Type,
		"flags":      flags.GetAllFlags(),
	})

	// Create cache
	var cache interfaces.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			cache = memory.NewMemoryCache()
		} else {
			cache = redisCache
			logger.Info("Using Redis cache", map[string]interface{}{
				"address": cfg.Cache.Redis.Address,
			})
		}
	default:
		cache = memory.NewMemoryCache()
		logger.Info("Using memory cache", nil)
	}

	// Create HTTP client
	httpClient := stdhttp.NewStandardHTTPClient(30 * time.Second)

	// Create dependencies container
	deps := interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
	}

	// Connect stores
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	blogStore, err := mongostore.NewStore(startCtx, cfg.Mongo, logger)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := blogStore.Close(shutdownCtx); err != nil {
			logger.Warn("MongoDB disconnect failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	relStore, err := pgstore.NewStore(startCtx, cfg.Postgres, logger)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer relStore.Close()

	var activityStore interfaces.ActivityStore
	if flags.IsEnabled(startCtx, featureflags.ActivityLogEnabled) {
		sqliteStore, err := activitysqlite.NewStore(cfg.Activity.SQLitePath, logger)
		if err != nil {
			log.Fatalf("Failed to open activity store: %v", err)
		}
		defer sqliteStore.Close()
		activityStore = sqliteStore
	}

	// Create external service clients
	searchCache := cache
	if !flags.IsEnabled(startCtx, featureflags.SearchCacheEnabled) {
		searchCache = nil
	}
	scrapeCache := cache
	if !flags.IsEnabled(startCtx, featureflags.ScrapeCacheEnabled) {
		scrapeCache = nil
	}

	searchClient := serper.NewClient(cfg.Search.APIKey, searchCache, logger,
		serper.WithBaseURL(cfg.Search.BaseURL))
	pageScraper := readability.NewScraper(httpClient, scrapeCache, logger)
	chatClient := openai.NewClient(cfg.LLM.APIKey,
		openai.WithBaseURL(cfg.LLM.BaseURL),
		openai.WithModel(cfg.LLM.Model))

	// Create the collection pipeline
	gate := validation.NewGate(relStore, relStore, blogStore, logger)
	collector := sources.NewCollector(deps, searchClient, pageScraper, chatClient, sources.CollectorConfig{
		QueriesPerSubsection:    cfg.Collector.QueriesPerSubsection,
		ResultsPerQuery:         cfg.Collector.ResultsPerQuery,
		MaxSourcesPerSubsection: cfg.Collector.MaxSourcesPerSubsection,
		FanOutLimit:             cfg.Collector.FanOutLimit,
		UnitTimeout:             time.Duration(cfg.Collector.UnitTimeoutSeconds) * time.Second,
	})
	committer := sources.NewCommitter(blogStore, logger)

	// Create API with middleware
	apiConfig := api.APIConfig{
		Logger:        logger,
		ActivityStore: activityStore,
	}
	if flags.IsEnabled(startCtx, featureflags.RateLimitEnabled) {
		apiConfig.RateLimit = 100 // 100 requests per minute
		apiConfig.RateWindow = time.Minute
	}
	humaAPI, router := api.NewAPIWithMiddleware(apiConfig)

	// Create and register handlers
	sourcesHandler := handlers.NewSourcesHandler(blogStore, relStore, logger)
	sourcesHandler.RegisterRoutes(humaAPI)

	streamHandler := handlers.NewStreamHandler(gate, collector, committer, logger)
	streamHandler.RegisterRoutes(router)

	healthHandler := handlers.NewHealthHandler(version)
	healthHandler.RegisterRoutes(humaAPI)

	// Create HTTP server. WriteTimeout must cover an entire collection run,
	// so it is far above the non-streaming endpoints' needs.
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped", nil)
}
