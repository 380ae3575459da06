package sqlc

import "context"

const insertMessage = `
INSERT INTO messages (id, conversation_id, seq, author, role, content, timestamp)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, conversation_id, seq, author, role, content, timestamp
`

type InsertMessageParams struct {
	ID             int64
	ConversationID int64
	Seq            int32
	Author         string
	Role           string
	Content        string
}

func (q *Queries) InsertMessage(ctx context.Context, arg InsertMessageParams) (Message, error) {
	row := q.db.QueryRow(ctx, insertMessage,
		arg.ID, arg.ConversationID, arg.Seq, arg.Author, arg.Role, arg.Content, nowFunc())
	var m Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Author, &m.Role, &m.Content, &m.Timestamp)
	return m, err
}

const listRecentMessages = `
SELECT id, conversation_id, seq, author, role, content, timestamp
FROM messages
WHERE conversation_id = $1
ORDER BY seq DESC
LIMIT $2
`

func (q *Queries) ListRecentMessages(ctx context.Context, conversationID int64, limit int32) ([]Message, error) {
	rows, err := q.db.Query(ctx, listRecentMessages, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Author, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const maxMessageSeq = `
SELECT COALESCE(MAX(seq), 0) FROM messages WHERE conversation_id = $1
`

func (q *Queries) MaxMessageSeq(ctx context.Context, conversationID int64) (int32, error) {
	row := q.db.QueryRow(ctx, maxMessageSeq, conversationID)
	var seq int32
	err := row.Scan(&seq)
	return seq, err
}
