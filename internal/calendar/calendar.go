// Package calendar is the Calendar Persistor (C8): the only writer of
// planned_sessions and session_links. A store-wraps-sqlc accessor where
// every write goes through an idempotent upsert rather than a plain
// insert.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tracepace/coach/common/id"
	"github.com/tracepace/coach/core/db/sqlc"
	"github.com/tracepace/coach/internal/model"
)

// Calendar is C8's public surface.
type Calendar struct {
	q *sqlc.Queries
}

func New(q *sqlc.Queries) *Calendar {
	return &Calendar{q: q}
}

// InsertPlan persists every session B6 materialized for planID. The
// unique index on (athlete_id, starts_at, session_type, plan_id) makes a
// repeated call idempotent (R1): a duplicate upsert updates the existing
// row in place instead of creating a second one. A row with the same key
// that is already completed is never overwritten: the session is skipped
// with a logged conflict warning and left out of the returned slice.
func (c *Calendar) InsertPlan(ctx context.Context, planID int64, sessions []model.PlannedSession) ([]model.PlannedSession, error) {
	out := make([]model.PlannedSession, 0, len(sessions))
	for _, s := range sessions {
		stepsJSON, err := json.Marshal(s.Steps)
		if err != nil {
			return nil, fmt.Errorf("calendar: marshal steps: %w", err)
		}

		tagsJSON, err := json.Marshal(s.Tags)
		if err != nil {
			return nil, fmt.Errorf("calendar: marshal tags: %w", err)
		}

		status := s.Status
		if status == "" {
			status = model.SessionStatusPlanned
		}

		row, err := c.q.UpsertPlannedSession(ctx, sqlc.UpsertPlannedSessionParams{
			ID:              id.New(),
			PlanID:          planID,
			AthleteID:       s.AthleteID,
			StartsAt:        s.StartsAt,
			EndsAt:          s.EndsAt,
			Sport:           s.Sport,
			SessionType:     s.SessionType,
			Intent:          s.Intent,
			DistanceMeters:  s.DistanceM,
			DurationSeconds: int32(s.DurationS),
			Text:            s.Text,
			Steps:           stepsJSON,
			Status:          status,
			Tags:            tagsJSON,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				slog.WarnContext(ctx, "calendar: completed session conflicts with planned session; skipped",
					"plan_id", planID, "athlete_id", s.AthleteID,
					"starts_at", s.StartsAt.Format("2006-01-02"), "session_type", s.SessionType)
				continue
			}
			return nil, fmt.Errorf("calendar: upserting planned session for %s: %w", s.StartsAt.Format("2006-01-02"), err)
		}

		out = append(out, toModel(row))
	}
	return out, nil
}

// ModifyDay applies a requested change to a single already-planned day.
// Intent is preserved unless ExplicitIntentChange is set (P4) — a
// distance-only edit never silently turns a long run into a quality
// session.
func (c *Calendar) ModifyDay(ctx context.Context, athleteID int64, mod model.DayModification) (model.PlannedSession, error) {
	existing, err := c.q.GetPlannedSessionByDay(ctx, athleteID, mod.Date)
	if err != nil {
		return model.PlannedSession{}, fmt.Errorf("calendar: loading existing day: %w", err)
	}

	intent := existing.Intent
	if mod.ExplicitIntentChange && mod.NewIntent != "" {
		intent = mod.NewIntent
	}

	distanceM := existing.DistanceMeters
	if mod.NewDistanceM > 0 {
		distanceM = mod.NewDistanceM
	}

	var steps []model.WorkoutStep
	if err := json.Unmarshal(existing.Steps, &steps); err != nil {
		return model.PlannedSession{}, fmt.Errorf("calendar: unmarshal existing steps: %w", err)
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return model.PlannedSession{}, fmt.Errorf("calendar: remarshal steps: %w", err)
	}

	text := existing.Text
	if mod.Reason != "" {
		text = fmt.Sprintf("%s (%s)", existing.Text, mod.Reason)
	}

	if err := c.q.UpdatePlannedSessionDay(ctx, athleteID, mod.Date, intent, distanceM, existing.DurationSeconds, text, stepsJSON); err != nil {
		return model.PlannedSession{}, fmt.Errorf("calendar: updating day: %w", err)
	}

	updated, err := c.q.GetPlannedSessionByDay(ctx, athleteID, mod.Date)
	if err != nil {
		return model.PlannedSession{}, fmt.Errorf("calendar: reloading updated day: %w", err)
	}
	return toModel(updated), nil
}

// Link records a 1:1 pairing between a planned session and a completed
// activity (P7). Re-linking the same planned session to a different
// activity replaces the prior link at the SQL layer, never creates a
// second row.
func (c *Calendar) Link(ctx context.Context, plannedSessionID, activityID int64, method string, confidence float64) error {
	return c.q.InsertSessionLink(ctx, plannedSessionID, activityID, method, confidence)
}

// AutoLink links activityID to athleteID's planned session on day, if one
// exists, unless a link already there carries confidence at or above the
// proposed value — an automatic date match never downgrades a prior,
// more confident link (e.g. one a coach confirmed by hand).
func (c *Calendar) AutoLink(ctx context.Context, athleteID, activityID int64, day time.Time, confidence float64) error {
	planned, err := c.q.GetPlannedSessionByDay(ctx, athleteID, day)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("calendar: finding planned session for %s: %w", day.Format("2006-01-02"), err)
	}

	if existing, err := c.q.GetSessionLink(ctx, planned.ID); err == nil && existing.Confidence >= confidence {
		return nil
	}

	return c.q.InsertSessionLink(ctx, planned.ID, activityID, "auto_date_match", confidence)
}

func toModel(row sqlc.PlannedSession) model.PlannedSession {
	var steps []model.WorkoutStep
	_ = json.Unmarshal(row.Steps, &steps)
	var tags []string
	_ = json.Unmarshal(row.Tags, &tags)
	return model.PlannedSession{
		ID: row.ID, PlanID: row.PlanID, AthleteID: row.AthleteID, StartsAt: row.StartsAt, EndsAt: row.EndsAt,
		Sport: row.Sport, SessionType: row.SessionType, Intent: row.Intent,
		DistanceM: row.DistanceMeters, DurationS: int(row.DurationSeconds),
		Text: row.Text, Steps: steps, Status: row.Status, Tags: tags,
		Version: int(row.Version),
	}
}
