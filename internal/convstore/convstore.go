// Package convstore is C9, the conversation store: durable conversation
// history plus the optimistic-concurrency progress row the controller
// reads and writes once per turn. A typed accessor wrapping sqlc.Queries,
// built around a version-column optimistic concurrency rule.
package convstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tracepace/coach/common/id"
	"github.com/tracepace/coach/core/db/sqlc"
	"github.com/tracepace/coach/internal/model"
	"github.com/tracepace/coach/internal/queue"
)

// ErrVersionConflict signals a stale progress write; the caller must
// re-read LoadProgress and retry the merge.
var ErrVersionConflict = sqlc.ErrVersionConflict

// Store is C9's public surface.
type Store struct {
	q        *sqlc.Queries
	producer queue.Producer // nil is valid: summary recompute becomes a no-op enqueue
}

// New builds a Store. producer may be nil if background summary
// recompute is not wired up (e.g. in tests).
func New(q *sqlc.Queries, producer queue.Producer) *Store {
	return &Store{q: q, producer: producer}
}

// LoadContext returns up to limit most recent messages for a
// conversation, oldest first. A store error degrades to an empty slice
// rather than propagating — the controller treats "no history" as a
// valid (if suboptimal) starting point rather than a fatal failure —
// the fail-closed boundary belongs to the tool client, not to
// degraded-but-available history.
func (s *Store) LoadContext(ctx context.Context, conversationID int64, limit int) ([]model.Message, error) {
	rows, err := s.q.ListRecentMessages(ctx, conversationID, int32(limit))
	if err != nil {
		return nil, nil
	}
	out := make([]model.Message, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		out[len(rows)-1-i] = model.Message{
			ID: r.ID, ConversationID: r.ConversationID, Seq: int(r.Seq),
			Author: r.Author, Role: r.Role, Content: r.Content, Timestamp: r.Timestamp,
		}
	}
	return out, nil
}

// MessagePair is one athlete message and the coach's reply to it,
// appended together so a turn is never left with an unanswered message.
type MessagePair struct {
	Athlete model.Message
	Coach   model.Message
}

// AppendMessages persists both sides of a turn and enqueues a
// recompute_summary job so internal/summarizer can refresh the rolling
// summary off the turn's critical path.
func (s *Store) AppendMessages(ctx context.Context, conversationID int64, pair MessagePair) error {
	seq, err := s.q.MaxMessageSeq(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("reading max message seq: %w", err)
	}

	if _, err := s.q.InsertMessage(ctx, sqlc.InsertMessageParams{
		ID: id.New(), ConversationID: conversationID, Seq: seq + 1,
		Author: pair.Athlete.Author, Role: pair.Athlete.Role, Content: pair.Athlete.Content,
	}); err != nil {
		return fmt.Errorf("inserting athlete message: %w", err)
	}

	if _, err := s.q.InsertMessage(ctx, sqlc.InsertMessageParams{
		ID: id.New(), ConversationID: conversationID, Seq: seq + 2,
		Author: pair.Coach.Author, Role: pair.Coach.Role, Content: pair.Coach.Content,
	}); err != nil {
		return fmt.Errorf("inserting coach message: %w", err)
	}

	s.touchConversation(ctx, conversationID)

	if s.producer != nil {
		_ = s.producer.Enqueue(ctx, queue.Task{
			TaskType:       queue.TaskTypeRecomputeSummary,
			ConversationID: conversationID,
		})
	}

	return nil
}

// LoadProgress reads the current slot-filling state for a conversation.
func (s *Store) LoadProgress(ctx context.Context, conversationID int64) (model.Progress, error) {
	row, err := s.q.GetProgress(ctx, conversationID)
	if err != nil {
		return model.Progress{}, fmt.Errorf("loading progress: %w", err)
	}

	var slots map[string]model.SlotValue
	if len(row.KnownSlots) > 0 {
		if err := json.Unmarshal(row.KnownSlots, &slots); err != nil {
			return model.Progress{}, fmt.Errorf("unmarshal known slots: %w", err)
		}
	}

	return model.Progress{
		ConversationID: row.ConversationID,
		TargetAction:   row.TargetAction,
		KnownSlots:     slots,
		PendingSlot:    row.PendingSlot,
		Summary:        row.Summary,
		Version:        int(row.Version),
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

// SaveProgress writes progress back with an optimistic compare-and-swap
// on Version. Callers must have read the row they are updating in the
// same turn; a conflict means another turn raced ahead and the caller
// must reload and re-merge rather than blindly overwrite it.
func (s *Store) SaveProgress(ctx context.Context, progress model.Progress) error {
	slotsJSON, err := json.Marshal(progress.KnownSlots)
	if err != nil {
		return fmt.Errorf("marshal known slots: %w", err)
	}

	err = s.q.SaveProgress(ctx, progress.ConversationID, progress.TargetAction, slotsJSON, progress.PendingSlot, progress.Summary, int32(progress.Version))
	if errors.Is(err, sqlc.ErrVersionConflict) {
		return ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// CreateProgress seeds the initial progress row for a brand-new
// conversation (version 1).
func (s *Store) CreateProgress(ctx context.Context, conversationID int64) error {
	empty, err := json.Marshal(map[string]model.SlotValue{})
	if err != nil {
		return err
	}
	return s.q.CreateProgress(ctx, conversationID, "", empty, "", "")
}

// EnsureConversation links conversationID to athleteID, creating the row
// the first time a conversation is seen and doing nothing afterward.
func (s *Store) EnsureConversation(ctx context.Context, conversationID, athleteID int64) error {
	_, err := s.q.GetConversation(ctx, conversationID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("checking conversation: %w", err)
	}
	if _, err := s.q.CreateConversation(ctx, conversationID, athleteID); err != nil {
		return fmt.Errorf("creating conversation: %w", err)
	}
	return nil
}

// touchConversation bumps a conversation's updated_at to mark activity.
// Best-effort: a stale timestamp never blocks message persistence.
func (s *Store) touchConversation(ctx context.Context, conversationID int64) {
	if err := s.q.TouchConversation(ctx, conversationID, time.Now()); err != nil {
		_ = err
	}
}
