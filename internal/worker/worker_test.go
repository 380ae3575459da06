package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tracepace/coach/internal/queue"
	"github.com/tracepace/coach/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	batches [][]queue.Message
	calls   int

	acked    []queue.Message
	requeued []queue.Message
	dlqed    []queue.Message
}

func (f *fakeConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	if f.calls >= len(f.batches) {
		return nil, context.Canceled
	}
	batch := f.batches[f.calls]
	f.calls++
	return batch, nil
}

func (f *fakeConsumer) Ack(ctx context.Context, msg queue.Message) error {
	f.acked = append(f.acked, msg)
	return nil
}

func (f *fakeConsumer) Requeue(ctx context.Context, msg queue.Message, errMsg string) error {
	f.requeued = append(f.requeued, msg)
	return nil
}

func (f *fakeConsumer) SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error {
	f.dlqed = append(f.dlqed, msg)
	return nil
}

type fakeRecomputer struct {
	failFor map[int64]bool
}

func (f *fakeRecomputer) Recompute(ctx context.Context, conversationID int64) error {
	if f.failFor[conversationID] {
		return errors.New("boom")
	}
	return nil
}

func TestWorker_AcksSuccessfulRecompute(t *testing.T) {
	consumer := &fakeConsumer{batches: [][]queue.Message{
		{{ID: "1-0", ConversationID: 42, Attempt: 1}},
	}}
	w := worker.New(consumer, &fakeRecomputer{}, 3)

	err := w.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, consumer.acked, 1)
	assert.Equal(t, int64(42), consumer.acked[0].ConversationID)
	assert.Empty(t, consumer.requeued)
	assert.Empty(t, consumer.dlqed)
}

func TestWorker_RequeuesBelowMaxAttempts(t *testing.T) {
	consumer := &fakeConsumer{batches: [][]queue.Message{
		{{ID: "1-0", ConversationID: 7, Attempt: 1}},
	}}
	w := worker.New(consumer, &fakeRecomputer{failFor: map[int64]bool{7: true}}, 3)

	_ = w.Run(context.Background())

	assert.Len(t, consumer.requeued, 1)
	assert.Empty(t, consumer.dlqed)
	assert.Empty(t, consumer.acked)
}

func TestWorker_SendsToDLQAtMaxAttempts(t *testing.T) {
	consumer := &fakeConsumer{batches: [][]queue.Message{
		{{ID: "1-0", ConversationID: 7, Attempt: 3}},
	}}
	w := worker.New(consumer, &fakeRecomputer{failFor: map[int64]bool{7: true}}, 3)

	_ = w.Run(context.Background())

	assert.Len(t, consumer.dlqed, 1)
	assert.Empty(t, consumer.requeued)
}
