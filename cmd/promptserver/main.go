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

	"github.com/tracepace/coach/common/logger"
	"github.com/tracepace/coach/common/otel"
	"github.com/tracepace/coach/core/config"
	"github.com/tracepace/coach/internal/promptserver"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.Load(config.ServiceTypePromptServer)

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
	slog.Info("prompt tool server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)

	srv := promptserver.New("prompts")

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
