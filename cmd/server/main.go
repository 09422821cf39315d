package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"mindsukoon.app/companion/common/id"
	"mindsukoon.app/companion/common/llm"
	"mindsukoon.app/companion/common/logger"
	"mindsukoon.app/companion/common/otel"
	"mindsukoon.app/companion/core/config"
	"mindsukoon.app/companion/core/db"
	"mindsukoon.app/companion/internal/http/middleware"
	httprouter "mindsukoon.app/companion/internal/http/router"
	"mindsukoon.app/companion/internal/queue"
	"mindsukoon.app/companion/internal/service"
	"mindsukoon.app/companion/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		// slog is not configured yet; OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "companion server starting",
		"env", cfg.Env,
		"service", cfg.OTel.ServiceName,
		"llm_provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"tools_enabled", cfg.Companion.ToolsEnabled)

	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	agent, err := llm.NewAgentClient(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}

	// Postgres only backs the admin audit view; chat works without it.
	var safetyEvents store.SafetyEventStore
	if cfg.DB.Enabled() {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to apply schema", "error", err)
			os.Exit(1)
		}
		safetyEvents = store.NewSafetyEventStore(database.Pool())
		slog.InfoContext(ctx, "database connected")
	}

	var (
		rdb      redis.Cmdable
		observer *service.RiskPublisher
	)
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "redis connected", "stream", cfg.Redis.SafetyStream)

		producer := queue.NewRedisProducer(redisClient, cfg.Redis.SafetyStream, slog.Default())
		defer producer.Close()

		rdb = redisClient
		observer = service.NewRiskPublisher(producer)
	} else {
		slog.WarnContext(ctx, "redis disabled: safety events are logged only and search results are not cached")
	}

	tsClient, err := service.NewTypesenseClient(cfg.Knowledge)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create typesense client", "error", err)
		os.Exit(1)
	}
	retriever, err := service.NewRetriever(tsClient)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create knowledge retriever", "error", err)
		os.Exit(1)
	}
	if tsClient == nil {
		slog.InfoContext(ctx, "typesense not configured, using embedded knowledge base")
	}

	searcher := service.NewSearcher(cfg.Search, rdb)
	if searcher == nil {
		slog.InfoContext(ctx, "web search disabled (no TAVILY_API_KEY)")
	}

	components := service.Components{
		LLM:       agent,
		Retriever: retriever,
		Searcher:  searcher,
		Companion: cfg.Companion,
	}
	if observer != nil {
		components.Observer = observer
	}

	sessions := service.NewSessionRegistry(service.NewAssistantFactory(components), cfg.Companion.SessionIdleTimeout)

	runCtx, stopRun := context.WithCancel(ctx)
	defer stopRun()
	go sessions.Run(runCtx, time.Minute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, httprouter.Services{
		Chat:         service.NewChatService(sessions, cfg.Companion.TurnTimeout),
		SafetyEvents: service.NewSafetyEventService(safetyEvents),
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", middleware.AdminKeyHeader},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Companion.TurnTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")
	stopRun()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services httprouter.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		AdminAPIKey: cfg.AdminAPIKey,
	})

	return router
}

const banner = `
 ___ ___  __  __ ___  _   _  _ ___ ___  _  _
/ __/ _ \|  \/  | _ \/_\ | \| |_ _/ _ \| \| |
| (_| (_) | |\/| |  _/ _ \| .' || | (_) | .' |
\___\___/|_|  |_|_|/_/ \_\_|\_|___\___/|_|\_|
`
