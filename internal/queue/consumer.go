package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tracepace/coach/common/logger"
)

// ConsumerConfig configures a RedisConsumer's stream, consumer-group
// identity, and retry/DLQ behavior.
type ConsumerConfig struct {
	Stream       string
	Group        string
	Consumer     string
	DLQStream    string
	BatchSize    int64
	Block        time.Duration
	MaxAttempts  int
	RequeueDelay time.Duration
}

// Message is one delivered, parsed task plus enough of the raw Redis
// entry to ack or requeue it.
type Message struct {
	ID             string
	TaskType       TaskType
	ConversationID int64
	TraceID        string
	Attempt        int
	Raw            redis.XMessage
}

// MessageProcessor processes a queue message.
type MessageProcessor func(ctx context.Context, msg Message) error

// RedisConsumer reads recompute_summary tasks off a consumer group.
type RedisConsumer struct {
	client *redis.Client
	cfg    ConsumerConfig
}

// NewRedisConsumer builds a RedisConsumer and ensures its consumer group
// exists, creating the stream if necessary.
func NewRedisConsumer(client *redis.Client, cfg ConsumerConfig) (*RedisConsumer, error) {
	c := &RedisConsumer{client: client, cfg: cfg}
	if err := c.ensureGroup(context.Background()); err != nil { //nolint:contextcheck
		return nil, err
	}
	return c, nil
}

func (c *RedisConsumer) ensureGroup(ctx context.Context) error {
	// Starting from "0" instead of "$" means a restarted group doesn't
	// lose tasks that were added before it first ran.
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	return nil
}

// Read fetches up to BatchSize pending tasks, blocking for up to Block.
func (c *RedisConsumer) Read(ctx context.Context) ([]Message, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "coach.queue.consumer",
	})

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, ">"},
		Count:    c.cfg.BatchSize,
		Block:    c.cfg.Block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	var messages []Message
	for _, stream := range streams {
		for _, raw := range stream.Messages {
			parsed, parseErr := parseMessage(raw)
			if parseErr != nil {
				slog.ErrorContext(ctx, "failed to parse queued task",
					"error", parseErr, "raw_message_id", raw.ID, "stream", c.cfg.Stream)
				_ = c.Ack(ctx, Message{ID: raw.ID, Raw: raw})
				continue
			}
			messages = append(messages, parsed)
		}
	}

	if len(messages) > 0 {
		slog.DebugContext(ctx, "read tasks from stream",
			"count", len(messages), "stream", c.cfg.Stream, "consumer", c.cfg.Consumer)
	}
	return messages, nil
}

// Ack acknowledges successful processing of msg.
func (c *RedisConsumer) Ack(ctx context.Context, msg Message) error {
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
		return fmt.Errorf("xack (stream=%s): %w", c.cfg.Stream, err)
	}
	return nil
}

// Requeue acks the delivered message and re-adds it with Attempt+1, up
// to MaxAttempts; beyond that, callers should route to SendDLQ instead.
func (c *RedisConsumer) Requeue(ctx context.Context, msg Message, errMsg string) error {
	if err := c.Ack(ctx, msg); err != nil {
		return fmt.Errorf("acking failed task for requeue: %w", err)
	}

	attempt := msg.Attempt + 1
	values := map[string]any{
		"task_type":       string(msg.TaskType),
		"conversation_id": msg.ConversationID,
		"attempt":         attempt,
	}
	if msg.TraceID != "" {
		values["trace_id"] = msg.TraceID
	}
	if errMsg != "" {
		values["last_error"] = errMsg
	}

	if c.cfg.RequeueDelay > 0 {
		time.Sleep(c.cfg.RequeueDelay)
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{Stream: c.cfg.Stream, Values: values}).Err(); err != nil {
		return fmt.Errorf("xadd requeue: %w", err)
	}

	slog.InfoContext(ctx, "task requeued for retry", "next_attempt", attempt, "reason", errMsg)
	return nil
}

// SendDLQ acks the delivered message and appends it to the dead-letter
// stream, recording the terminal error.
func (c *RedisConsumer) SendDLQ(ctx context.Context, msg Message, errMsg string) error {
	if err := c.Ack(ctx, msg); err != nil {
		return fmt.Errorf("acking failed task for dlq: %w", err)
	}

	values := map[string]any{
		"task_type":       string(msg.TaskType),
		"conversation_id": msg.ConversationID,
		"attempt":         msg.Attempt,
		"error":           errMsg,
	}
	if err := c.client.XAdd(ctx, &redis.XAddArgs{Stream: c.cfg.DLQStream, Values: values}).Err(); err != nil {
		return fmt.Errorf("xadd dlq (stream=%s): %w", c.cfg.DLQStream, err)
	}

	slog.ErrorContext(ctx, "task sent to DLQ", "final_error", errMsg, "dlq_stream", c.cfg.DLQStream)
	return nil
}

func parseMessage(raw redis.XMessage) (Message, error) {
	taskType, ok := raw.Values["task_type"]
	if !ok {
		return Message{}, fmt.Errorf("missing task_type")
	}
	convIDRaw, ok := raw.Values["conversation_id"]
	if !ok {
		return Message{}, fmt.Errorf("missing conversation_id")
	}
	convID, err := strconv.ParseInt(fmt.Sprint(convIDRaw), 10, 64)
	if err != nil {
		return Message{}, fmt.Errorf("parsing conversation_id: %w", err)
	}

	attempt := 1
	if a, ok := raw.Values["attempt"]; ok {
		if n, err := strconv.Atoi(fmt.Sprint(a)); err == nil && n > 0 {
			attempt = n
		}
	}

	traceID := ""
	if t, ok := raw.Values["trace_id"]; ok {
		traceID = fmt.Sprint(t)
	}

	tt := TaskType(fmt.Sprint(taskType))
	if tt != TaskTypeRecomputeSummary {
		return Message{}, fmt.Errorf("unknown task_type %q", tt)
	}

	return Message{
		ID:             raw.ID,
		TaskType:       tt,
		ConversationID: convID,
		TraceID:        traceID,
		Attempt:        attempt,
		Raw:            raw,
	}, nil
}
