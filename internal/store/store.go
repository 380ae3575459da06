// Package store is the typed accessor over sqlc.Queries that the Data
// Tool Server (C2) uses for everything outside conversation/progress
// (owned by internal/convstore) and planned sessions/session links (owned
// by internal/calendar): athlete lookups and the "does a prior race plan
// exist" check the weekly_plan gating rule depends on.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tracepace/coach/core/db/sqlc"
	"github.com/tracepace/coach/internal/model"
)

// ErrNotFound is returned when a lookup finds no matching row.
var ErrNotFound = errors.New("not found")

// Store provides typed accessors over the underlying sqlc queries.
type Store struct {
	q *sqlc.Queries
}

// New builds a Store bound to q.
func New(q *sqlc.Queries) *Store {
	return &Store{q: q}
}

// GetAthlete loads an athlete profile by ID.
func (s *Store) GetAthlete(ctx context.Context, id int64) (model.Athlete, error) {
	row, err := s.q.GetAthlete(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Athlete{}, ErrNotFound
		}
		return model.Athlete{}, fmt.Errorf("getting athlete %d: %w", id, err)
	}
	return model.Athlete{
		ID: row.ID, DisplayName: row.DisplayName, RaceType: row.RaceType,
		Audience: row.Audience, CreatedAt: row.CreatedAt,
	}, nil
}

// CreateAthlete creates a new athlete profile.
func (s *Store) CreateAthlete(ctx context.Context, id int64, displayName, raceType, audience string) (model.Athlete, error) {
	row, err := s.q.CreateAthlete(ctx, id, displayName, raceType, audience)
	if err != nil {
		return model.Athlete{}, fmt.Errorf("creating athlete: %w", err)
	}
	return model.Athlete{
		ID: row.ID, DisplayName: row.DisplayName, RaceType: row.RaceType,
		Audience: row.Audience, CreatedAt: row.CreatedAt,
	}, nil
}

// AthleteIDForConversation resolves which athlete a conversation belongs
// to, the linkage internal/dataserver's load_context needs to evaluate
// the weekly_plan gating precondition.
func (s *Store) AthleteIDForConversation(ctx context.Context, conversationID int64) (int64, error) {
	conv, err := s.q.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("getting conversation %d: %w", conversationID, err)
	}
	return conv.AthleteID, nil
}

// HasRacePlan reports whether the athlete already has at least one
// planned session from a plan_race_build/plan_season invocation — the
// precondition internal/controller's gating rule checks before allowing
// a "weekly_plan" target to execute directly. Decided as a hard
// precondition rather than a soft warning: a weekly plan with no season
// context to hang off of isn't a coherent plan.
func (s *Store) HasRacePlan(ctx context.Context, athleteID int64) (bool, error) {
	count, err := s.q.CountPlannedSessionsForAthlete(ctx, athleteID)
	if err != nil {
		return false, fmt.Errorf("counting planned sessions for athlete %d: %w", athleteID, err)
	}
	return count > 0, nil
}
