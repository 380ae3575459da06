package controller

import (
	"context"
	"sync"
	"time"
)

// Scheduler enforces the turn-scheduling model: turns for the same
// conversation are strictly serialized, while turns for distinct
// conversations run concurrently across a bounded worker pool. A
// goroutine-pool dispatch loop narrowed from a generic task queue to
// per-conversation serialization. Turns waiting on the same conversation
// are not guaranteed to run in arrival order.
type Scheduler struct {
	controller   *Controller
	sem          chan struct{}
	turnDeadline time.Duration

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewScheduler builds a Scheduler that runs at most poolSize turns
// concurrently, one at a time per conversation ID. turnDeadline bounds
// how long a single HandleTurn call may run before Submit gives up on
// it; zero means no per-turn deadline beyond ctx's own.
func NewScheduler(c *Controller, poolSize int, turnDeadline time.Duration) *Scheduler {
	if poolSize <= 0 {
		poolSize = 8
	}
	return &Scheduler{
		controller:   c,
		sem:          make(chan struct{}, poolSize),
		turnDeadline: turnDeadline,
		locks:        make(map[int64]*sync.Mutex),
	}
}

// Submit runs req through the controller, blocking until a pool slot and
// that conversation's lock are both available. Safe for concurrent use.
func (s *Scheduler) Submit(ctx context.Context, req Request) (*Response, error) {
	convLock := s.lockFor(req.ConversationID)

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.sem }()

	convLock.Lock()
	defer convLock.Unlock()

	if s.turnDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.turnDeadline)
		defer cancel()
	}

	return s.controller.HandleTurn(ctx, req)
}

func (s *Scheduler) lockFor(conversationID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[conversationID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[conversationID] = l
	}
	return l
}
