package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tracepace/coach/common/id"
	"github.com/tracepace/coach/common/logger"
	"github.com/tracepace/coach/common/otel"
	"github.com/tracepace/coach/core/config"
	"github.com/tracepace/coach/core/db"
	"github.com/tracepace/coach/internal/completion"
	"github.com/tracepace/coach/internal/convstore"
	"github.com/tracepace/coach/internal/queue"
	"github.com/tracepace/coach/internal/summarizer"
	"github.com/tracepace/coach/internal/worker"
)

const maxRecomputeAttempts = 5

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	slog.Info("summary worker starting", "env", cfg.Env)

	if err := id.Init(2); err != nil {
		slog.Error("failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       queue.StreamName(),
		Group:        "summary-workers",
		Consumer:     "worker-1",
		DLQStream:    queue.StreamName() + ".dlq",
		BatchSize:    10,
		Block:        5 * time.Second,
		MaxAttempts:  maxRecomputeAttempts,
		RequeueDelay: 2 * time.Second,
	})
	if err != nil {
		slog.Error("failed to build redis consumer", "error", err)
		os.Exit(1)
	}

	comp, err := completion.New(completion.Config{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
	})
	if err != nil {
		slog.Error("failed to build completion client", "error", err)
		os.Exit(1)
	}

	conv := convstore.New(database.Queries(), nil)
	summ := summarizer.New(conv, comp)
	w := worker.New(consumer, summ, maxRecomputeAttempts)

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		slog.Error("worker stopped with error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown error", "error", err)
		}
	}
	slog.Info("worker shutdown complete")
}
