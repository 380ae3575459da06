package sqlc

import "context"

const getAthlete = `
SELECT id, display_name, race_type, audience, created_at FROM athletes WHERE id = $1
`

func (q *Queries) GetAthlete(ctx context.Context, id int64) (Athlete, error) {
	row := q.db.QueryRow(ctx, getAthlete, id)
	var a Athlete
	err := row.Scan(&a.ID, &a.DisplayName, &a.RaceType, &a.Audience, &a.CreatedAt)
	return a, err
}

const createAthlete = `
INSERT INTO athletes (id, display_name, race_type, audience, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING id, display_name, race_type, audience, created_at
`

func (q *Queries) CreateAthlete(ctx context.Context, id int64, displayName, raceType, audience string) (Athlete, error) {
	row := q.db.QueryRow(ctx, createAthlete, id, displayName, raceType, audience)
	var a Athlete
	err := row.Scan(&a.ID, &a.DisplayName, &a.RaceType, &a.Audience, &a.CreatedAt)
	return a, err
}
