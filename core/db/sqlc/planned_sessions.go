package sqlc

import (
	"context"
	"time"
)

const upsertPlannedSession = `
INSERT INTO planned_sessions (
	id, plan_id, athlete_id, starts_at, ends_at, sport, session_type, intent,
	distance_meters, duration_seconds, text, steps, status, tags, version
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1)
ON CONFLICT (athlete_id, starts_at, session_type, plan_id) DO UPDATE
SET ends_at = EXCLUDED.ends_at, intent = EXCLUDED.intent,
    distance_meters = EXCLUDED.distance_meters, duration_seconds = EXCLUDED.duration_seconds,
    text = EXCLUDED.text, steps = EXCLUDED.steps, tags = EXCLUDED.tags,
    version = planned_sessions.version + 1
WHERE planned_sessions.status != 'completed'
RETURNING id, plan_id, athlete_id, starts_at, ends_at, sport, session_type, intent,
          distance_meters, duration_seconds, text, steps, status, tags, version
`

type UpsertPlannedSessionParams struct {
	ID              int64
	PlanID          int64
	AthleteID       int64
	StartsAt        time.Time
	EndsAt          time.Time
	Sport           string
	SessionType     string
	Intent          string
	DistanceMeters  float64
	DurationSeconds int32
	Text            string
	Steps           []byte // JSONB
	Status          string
	Tags            []byte // JSONB
}

func scanPlannedSession(row interface {
	Scan(dest ...any) error
}) (PlannedSession, error) {
	var s PlannedSession
	err := row.Scan(&s.ID, &s.PlanID, &s.AthleteID, &s.StartsAt, &s.EndsAt, &s.Sport, &s.SessionType, &s.Intent,
		&s.DistanceMeters, &s.DurationSeconds, &s.Text, &s.Steps, &s.Status, &s.Tags, &s.Version)
	return s, err
}

// UpsertPlannedSession is the idempotent write B7/C8 use: the unique index
// on (athlete_id, starts_at, session_type, plan_id) makes a duplicate
// call a no-op update rather than a second row (R1). A row already marked
// completed is left untouched by the WHERE clause on the update arm; the
// statement then returns no row, so the call reports pgx.ErrNoRows rather
// than clobbering the completed session.
func (q *Queries) UpsertPlannedSession(ctx context.Context, arg UpsertPlannedSessionParams) (PlannedSession, error) {
	row := q.db.QueryRow(ctx, upsertPlannedSession,
		arg.ID, arg.PlanID, arg.AthleteID, arg.StartsAt, arg.EndsAt, arg.Sport, arg.SessionType, arg.Intent,
		arg.DistanceMeters, arg.DurationSeconds, arg.Text, arg.Steps, arg.Status, arg.Tags)
	return scanPlannedSession(row)
}

const countPlannedSessionsForAthlete = `
SELECT COUNT(*) FROM planned_sessions WHERE athlete_id = $1
`

// CountPlannedSessionsForAthlete backs internal/store.HasRacePlan: a
// nonzero count means the athlete already has a materialized plan.
func (q *Queries) CountPlannedSessionsForAthlete(ctx context.Context, athleteID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countPlannedSessionsForAthlete, athleteID)
	var n int64
	err := row.Scan(&n)
	return n, err
}

const getPlannedSessionByDay = `
SELECT id, plan_id, athlete_id, starts_at, ends_at, sport, session_type, intent,
       distance_meters, duration_seconds, text, steps, status, tags, version
FROM planned_sessions
WHERE athlete_id = $1 AND starts_at = $2
`

func (q *Queries) GetPlannedSessionByDay(ctx context.Context, athleteID int64, startsAt time.Time) (PlannedSession, error) {
	row := q.db.QueryRow(ctx, getPlannedSessionByDay, athleteID, startsAt)
	return scanPlannedSession(row)
}

const listPlanSessions = `
SELECT id, plan_id, athlete_id, starts_at, ends_at, sport, session_type, intent,
       distance_meters, duration_seconds, text, steps, status, tags, version
FROM planned_sessions
WHERE plan_id = $1
ORDER BY starts_at
`

func (q *Queries) ListPlanSessions(ctx context.Context, planID int64) ([]PlannedSession, error) {
	rows, err := q.db.Query(ctx, listPlanSessions, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlannedSession
	for rows.Next() {
		s, err := scanPlannedSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const updatePlannedSessionDay = `
UPDATE planned_sessions
SET intent = $3, distance_meters = $4, duration_seconds = $5, text = $6, steps = $7, version = version + 1
WHERE athlete_id = $1 AND starts_at = $2 AND status != 'completed'
`

func (q *Queries) UpdatePlannedSessionDay(ctx context.Context, athleteID int64, startsAt time.Time, intent string, distanceMeters float64, durationSeconds int32, text string, steps []byte) error {
	_, err := q.db.Exec(ctx, updatePlannedSessionDay, athleteID, startsAt, intent, distanceMeters, durationSeconds, text, steps)
	return err
}
