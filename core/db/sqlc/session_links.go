package sqlc

import "context"

const insertSessionLink = `
INSERT INTO session_links (planned_session_id, activity_id, method, confidence, linked_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (planned_session_id) DO UPDATE
SET activity_id = EXCLUDED.activity_id, method = EXCLUDED.method, confidence = EXCLUDED.confidence, linked_at = now()
`

// InsertSessionLink enforces the 1:1 PlannedSession<->Activity constraint
// (P7) via the unique index on planned_session_id: re-linking the same
// planned session replaces its prior link rather than creating a second
// row.
func (q *Queries) InsertSessionLink(ctx context.Context, plannedSessionID, activityID int64, method string, confidence float64) error {
	_, err := q.db.Exec(ctx, insertSessionLink, plannedSessionID, activityID, method, confidence)
	return err
}

const getSessionLink = `
SELECT planned_session_id, activity_id, method, confidence, linked_at
FROM session_links WHERE planned_session_id = $1
`

func (q *Queries) GetSessionLink(ctx context.Context, plannedSessionID int64) (SessionLink, error) {
	row := q.db.QueryRow(ctx, getSessionLink, plannedSessionID)
	var l SessionLink
	err := row.Scan(&l.PlannedSessionID, &l.ActivityID, &l.Method, &l.Confidence, &l.LinkedAt)
	return l, err
}
