package sqlc

import (
	"context"
	"time"
)

const createConversation = `
INSERT INTO conversations (id, athlete_id, created_at, updated_at)
VALUES ($1, $2, now(), now())
RETURNING id, athlete_id, created_at, updated_at
`

func (q *Queries) CreateConversation(ctx context.Context, id, athleteID int64) (Conversation, error) {
	row := q.db.QueryRow(ctx, createConversation, id, athleteID)
	var c Conversation
	err := row.Scan(&c.ID, &c.AthleteID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getConversation = `
SELECT id, athlete_id, created_at, updated_at FROM conversations WHERE id = $1
`

func (q *Queries) GetConversation(ctx context.Context, id int64) (Conversation, error) {
	row := q.db.QueryRow(ctx, getConversation, id)
	var c Conversation
	err := row.Scan(&c.ID, &c.AthleteID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const touchConversation = `
UPDATE conversations SET updated_at = $2 WHERE id = $1
`

func (q *Queries) TouchConversation(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.Exec(ctx, touchConversation, id, at)
	return err
}
