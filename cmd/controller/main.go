// The execution controller has no end-user-facing transport (spec
// Non-goal) — ingesting athlete messages from a chat surface is an
// external collaborator's job. This binary wires the controller's
// dependencies and drives turns from newline-delimited JSON on stdin, a
// local operator/integration-test harness rather than a product surface.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tracepace/coach/common/logger"
	"github.com/tracepace/coach/common/otel"
	"github.com/tracepace/coach/core/config"
	"github.com/tracepace/coach/internal/completion"
	"github.com/tracepace/coach/internal/controller"
	"github.com/tracepace/coach/internal/extractor"
	"github.com/tracepace/coach/internal/toolclient"
)

// toolErrorCategory reports the toolclient.ToolError category wrapped
// inside err, or "UNKNOWN" for an error that never touched the tool
// client (e.g. a save_progress version conflict raised directly by the
// controller).
func toolErrorCategory(err error) string {
	var toolErr toolclient.ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Category()
	}
	return "UNKNOWN"
}

type turnLine struct {
	ConversationID int64  `json:"conversation_id"`
	AthleteID      int64  `json:"athlete_id"`
	UserMessage    string `json:"user_message"`
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(config.ServiceTypeController)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.Setup(cfg)
	slog.Info("execution controller starting", "env", cfg.Env)

	tools, err := toolclient.New(toolclient.Config{
		DataToolEndpoint:   cfg.Controller.DataToolEndpoint,
		PromptToolEndpoint: cfg.Controller.PromptToolEndpoint,
		ToolCallTimeout:    cfg.Controller.ToolCallTimeout(),
		PlanDeadline:       cfg.Controller.PlanDeadline(),
	})
	if err != nil {
		slog.Error("failed to build tool client (fail-closed)", "error", err)
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

	ext := extractor.New(comp)
	ctrl := controller.New(tools, ext, comp, nil)
	scheduler := controller.NewScheduler(ctrl, 8, cfg.Controller.TurnDeadline())

	if telemetry != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = telemetry.Shutdown(shutdownCtx)
		}()
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var in turnLine
		if err := json.Unmarshal(line, &in); err != nil {
			fmt.Fprintf(os.Stderr, "invalid turn line: %v\n", err)
			continue
		}

		resp, err := scheduler.Submit(ctx, controller.Request{
			ConversationID: in.ConversationID,
			AthleteID:      in.AthleteID,
			UserMessage:    in.UserMessage,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "turn failed [%s]: %v\n", toolErrorCategory(err), err)
			continue
		}

		out, _ := json.Marshal(resp)
		fmt.Println(string(out))
	}

	slog.Info("execution controller shutdown complete")
}
