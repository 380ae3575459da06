package activity

import (
	"context"
	"time"

	"github.com/tracepace/coach/internal/model"
)

// ManualLike is a reference adapter over athlete-entered activities (no
// provider round trip at all, the opposite end of the spectrum from
// StravaLike). Grounded the same way — inert, just enough to exercise
// get_recent_activities' dispatch-by-source-name path.
type ManualLike struct {
	Activities map[int64][]model.Activity
}

func NewManualLike() *ManualLike {
	return &ManualLike{Activities: make(map[int64][]model.Activity)}
}

func (m *ManualLike) Name() string { return "manuallike" }

func (m *ManualLike) Add(athleteID int64, a model.Activity) {
	a.Source = m.Name()
	m.Activities[athleteID] = append(m.Activities[athleteID], a)
}

func (m *ManualLike) RecentActivities(ctx context.Context, athleteID int64, since time.Time) ([]model.Activity, error) {
	var out []model.Activity
	for _, a := range m.Activities[athleteID] {
		if !a.OccurredAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}
