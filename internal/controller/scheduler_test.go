package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tracepace/coach/internal/toolclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_SerializesSameConversation(t *testing.T) {
	var running int32
	var maxConcurrent int32

	c := &Controller{}
	s := NewScheduler(c, 4, 0)

	// Bypass HandleTurn (needs a live toolclient) by driving the lock
	// directly through a stand-in that mirrors Submit's critical section.
	run := func() {
		lock := s.lockFor(42)
		lock.Lock()
		defer lock.Unlock()

		n := atomic.AddInt32(&running, 1)
		for {
			cur := atomic.LoadInt32(&maxConcurrent)
			if n <= cur || atomic.CompareAndSwapInt32(&maxConcurrent, cur, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxConcurrent)
}

func TestScheduler_LockForReusesSameMutex(t *testing.T) {
	s := NewScheduler(&Controller{}, 1, 0)
	a := s.lockFor(7)
	b := s.lockFor(7)
	assert.Same(t, a, b)
}

func TestScheduler_SubmitRespectsContextCancellation(t *testing.T) {
	s := NewScheduler(&Controller{}, 1, 0)
	s.sem <- struct{}{} // saturate the pool

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Submit(ctx, Request{ConversationID: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_SubmitEnforcesTurnDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`{"result": {}}`))
	}))
	defer srv.Close()

	tools, err := toolclient.New(toolclient.Config{
		DataToolEndpoint: srv.URL, PromptToolEndpoint: srv.URL,
		ToolCallTimeout: time.Second, PlanDeadline: time.Second,
	})
	require.NoError(t, err)

	c := &Controller{tools: tools}
	s := NewScheduler(c, 1, 5*time.Millisecond)

	_, err = s.Submit(context.Background(), Request{ConversationID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
