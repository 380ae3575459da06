package pipeline

import (
	"context"

	"github.com/tracepace/coach/internal/model"
)

// Persistor is the subset of internal/calendar.Calendar B7 needs.
type Persistor interface {
	InsertPlan(ctx context.Context, planID int64, sessions []model.PlannedSession) ([]model.PlannedSession, error)
}

// B7 hands the materialized sessions to C8 for durable storage. No
// retries — the caller gets the error back and the turn fails closed.
// InsertPlan upserts the sessions one at a time without a transaction, so
// a failure part-way leaves the sessions written before it in place.
func B7(ctx context.Context, persistor Persistor, planID int64, sessions []model.PlannedSession) ([]model.PlannedSession, error) {
	return persistor.InsertPlan(ctx, planID, sessions)
}
