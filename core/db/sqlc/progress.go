package sqlc

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned by SaveProgress when the row's version
// has moved since it was read (optimistic concurrency control).
var ErrVersionConflict = errors.New("conversation progress version conflict")

const getProgress = `
SELECT conversation_id, target_action, known_slots, pending_slot, summary, version, updated_at
FROM conversation_progress
WHERE conversation_id = $1
`

func (q *Queries) GetProgress(ctx context.Context, conversationID int64) (ConversationProgress, error) {
	row := q.db.QueryRow(ctx, getProgress, conversationID)
	var p ConversationProgress
	err := row.Scan(&p.ConversationID, &p.TargetAction, &p.KnownSlots, &p.PendingSlot, &p.Summary, &p.Version, &p.UpdatedAt)
	return p, err
}

const upsertProgressInitial = `
INSERT INTO conversation_progress (conversation_id, target_action, known_slots, pending_slot, summary, version, updated_at)
VALUES ($1, $2, $3, $4, $5, 1, now())
ON CONFLICT (conversation_id) DO NOTHING
`

func (q *Queries) CreateProgress(ctx context.Context, conversationID int64, targetAction string, knownSlots []byte, pendingSlot, summary string) error {
	_, err := q.db.Exec(ctx, upsertProgressInitial, conversationID, targetAction, knownSlots, pendingSlot, summary)
	return err
}

const saveProgressCAS = `
UPDATE conversation_progress
SET target_action = $2, known_slots = $3, pending_slot = $4, summary = $5, version = version + 1, updated_at = now()
WHERE conversation_id = $1 AND version = $6
`

// SaveProgress performs a compare-and-swap write keyed on the expected
// version. It returns ErrVersionConflict (not a generic error) when no row
// matched, so callers can distinguish "stale read, re-fetch" from a real
// failure.
func (q *Queries) SaveProgress(ctx context.Context, conversationID int64, targetAction string, knownSlots []byte, pendingSlot, summary string, expectedVersion int32) error {
	tag, err := q.db.Exec(ctx, saveProgressCAS, conversationID, targetAction, knownSlots, pendingSlot, summary, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}
