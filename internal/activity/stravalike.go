package activity

import (
	"context"
	"time"

	"github.com/tracepace/coach/internal/model"
)

// StravaLike is an inert reference adapter shaped like a webhook/OAuth
// activity provider would be. It satisfies Source but never makes an
// outbound call — real ingestion mechanics are out of scope; this exists
// so get_recent_activities has a concrete provider to dispatch to in
// tests.
type StravaLike struct {
	// Activities is pre-seeded test data, keyed by athlete ID.
	Activities map[int64][]model.Activity
}

func NewStravaLike() *StravaLike {
	return &StravaLike{Activities: make(map[int64][]model.Activity)}
}

func (s *StravaLike) Name() string { return "stravalike" }

func (s *StravaLike) RecentActivities(ctx context.Context, athleteID int64, since time.Time) ([]model.Activity, error) {
	var out []model.Activity
	for _, a := range s.Activities[athleteID] {
		if !a.OccurredAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}
