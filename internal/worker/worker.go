// Package worker runs the background consumer loop that drains
// recompute_summary tasks from internal/queue and hands them to
// internal/summarizer: a task_runner/reclaimer pattern narrowed to a
// live single-task-type loop.
package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tracepace/coach/common/logger"
	"github.com/tracepace/coach/internal/queue"
)

// Consumer is the slice of queue.RedisConsumer the worker loop needs —
// narrowed to an interface so the loop can be tested without Redis.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Recomputer is the slice of summarizer.Summarizer the worker loop needs.
type Recomputer interface {
	Recompute(ctx context.Context, conversationID int64) error
}

// Worker polls a Consumer and recomputes conversation summaries,
// retrying failed tasks up to maxAttempts before routing them to the
// dead-letter stream.
type Worker struct {
	consumer    Consumer
	summarizer  Recomputer
	maxAttempts int
}

func New(consumer Consumer, s Recomputer, maxAttempts int) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Worker{consumer: consumer, summarizer: s, maxAttempts: maxAttempts}
}

// Run blocks, processing batches until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "coach.worker.summarizer"})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		messages, err := w.consumer.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			slog.ErrorContext(ctx, "worker: reading batch failed", "error", err)
			continue
		}

		for _, msg := range messages {
			w.process(ctx, msg)
		}
	}
}

func (w *Worker) process(ctx context.Context, msg queue.Message) {
	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.process_message")
	defer sc.End()
	ctx = sc.Context()

	err := w.summarizer.Recompute(ctx, msg.ConversationID)
	if err == nil {
		if ackErr := w.consumer.Ack(ctx, msg); ackErr != nil {
			slog.ErrorContext(ctx, "worker: ack failed", "error", ackErr, "conversation_id", msg.ConversationID)
		}
		return
	}
	sc.RecordError(err)

	errMsg := logger.Truncate(err.Error(), 500)
	slog.WarnContext(ctx, "worker: recompute failed", "error", errMsg, "conversation_id", msg.ConversationID, "attempt", msg.Attempt)

	if msg.Attempt >= w.maxAttempts {
		if dlqErr := w.consumer.SendDLQ(ctx, msg, errMsg); dlqErr != nil {
			slog.ErrorContext(ctx, "worker: dlq send failed", "error", dlqErr, "conversation_id", msg.ConversationID)
		}
		return
	}

	if requeueErr := w.consumer.Requeue(ctx, msg, errMsg); requeueErr != nil {
		slog.ErrorContext(ctx, "worker: requeue failed", "error", requeueErr, "conversation_id", msg.ConversationID)
	}
}
