package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tracepace/coach/common/id"
	"github.com/tracepace/coach/common/logger"
	"github.com/tracepace/coach/common/otel"
	"github.com/tracepace/coach/core/config"
	"github.com/tracepace/coach/core/db"
	"github.com/tracepace/coach/internal/activity"
	"github.com/tracepace/coach/internal/calendar"
	"github.com/tracepace/coach/internal/completion"
	"github.com/tracepace/coach/internal/convstore"
	"github.com/tracepace/coach/internal/corpus"
	"github.com/tracepace/coach/internal/dataserver"
	"github.com/tracepace/coach/internal/pipeline"
	"github.com/tracepace/coach/internal/queue"
	"github.com/tracepace/coach/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.Load(config.ServiceTypeDataServer)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.Setup(cfg)

	if telemetry != nil {
		slog.Info("otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.Info("otel disabled (no endpoint configured)")
	}
	slog.Info("data tool server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)

	if err := id.Init(1); err != nil {
		slog.Error("failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("database connected")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	producer := queue.NewRedisProducer(redisClient, queue.StreamName())

	q := database.Queries()

	corpusCache := corpus.New(corpus.NewPostgresStore(q))
	if err := corpusCache.LoadAll(ctx); err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}
	slog.Info("corpus loaded")

	comp, err := completion.New(completion.Config{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
	})
	if err != nil {
		slog.Error("failed to build completion client", "error", err)
		os.Exit(1)
	}

	st := store.New(q)
	cal := calendar.New(q)
	conv := convstore.New(q, producer)
	pipe := pipeline.New(corpusCache, comp, cal)
	activities := activity.NewRegistry(activity.NewStravaLike(), activity.NewManualLike())

	srv := dataserver.New(st, cal, conv, pipe, activities)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := srv.NewRouter(cfg.OTel.Enabled(), cfg.OTel.ServiceName)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("http server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown error", "error", err)
		}
	}
	slog.Info("shutdown complete")
}
