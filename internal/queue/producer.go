package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/tracepace/coach/common/logger"
)

// Producer enqueues background work. convstore calls this once per
// AppendMessages so the rolling summary recompute never sits on the
// turn's critical path.
type Producer interface {
	Enqueue(ctx context.Context, task Task) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
}

// NewRedisProducer builds a Producer backed by a single Redis stream.
func NewRedisProducer(client *redis.Client, stream string) Producer {
	return &redisProducer{client: client, stream: stream}
}

func (p *redisProducer) Enqueue(ctx context.Context, task Task) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "coach.queue.producer",
	})

	attempt := task.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	values := map[string]any{
		"task_type":       string(task.TaskType),
		"conversation_id": task.ConversationID,
		"attempt":         attempt,
	}
	if task.TraceID != "" {
		values["trace_id"] = task.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue task (stream=%s): %w", p.stream, err)
	}

	slog.DebugContext(ctx, "enqueued task",
		"task_type", task.TaskType,
		"conversation_id", task.ConversationID,
		"attempt", attempt,
		"stream", p.stream)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
