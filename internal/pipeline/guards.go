package pipeline

import (
	"fmt"

	"github.com/tracepace/coach/internal/model"
)

// volumeTolerance is the allowed relative slack between a week's assigned
// distance total and its target before guardB4ToB5 rejects it.
const volumeTolerance = 0.01

// guardB2ToB3 checks the macro plan is well-formed: at least one week,
// strictly increasing week index, strictly decreasing days-to-race.
func guardB2ToB3(weeks []MacroWeek) error {
	if len(weeks) == 0 {
		return &StageError{Stage: "B2", Guard: "guardB2ToB3", Err: fmt.Errorf("macro plan produced zero weeks")}
	}
	for i := 1; i < len(weeks); i++ {
		if weeks[i].Index != weeks[i-1].Index+1 {
			return &StageError{Stage: "B2", Guard: "guardB2ToB3", Err: fmt.Errorf("week index is not contiguous at %d", i)}
		}
		if weeks[i].DaysToRace >= weeks[i-1].DaysToRace {
			return &StageError{Stage: "B2", Guard: "guardB2ToB3", Err: fmt.Errorf("days-to-race did not decrease at week %d", i)}
		}
	}
	return nil
}

// guardB4ToB5 checks every week's assigned distances sum to its target
// weekly volume within 1% — B4's allocator is supposed to land on target
// exactly, so any drift here means a day's distance was set (or left
// unset) outside the allocator.
func guardB4ToB5(weeks []model.WeekRecord) error {
	for _, week := range weeks {
		sum := 0.0
		for _, d := range week.Days {
			sum += d.DistanceM
		}
		target := week.TargetWeeklyDistanceM
		if target == 0 {
			if sum != 0 {
				return &StageError{Stage: "B4", Guard: "guardB4ToB5",
					Err: fmt.Errorf("week %d has zero target but %.0fm assigned", week.Index, sum)}
			}
			continue
		}
		diff := sum - target
		if diff < 0 {
			diff = -diff
		}
		if diff > target*volumeTolerance {
			return &StageError{Stage: "B4", Guard: "guardB4ToB5",
				Err: fmt.Errorf("week %d assigned %.0fm, target %.0fm, outside 1%% tolerance", week.Index, sum, target)}
		}
	}
	return nil
}

// guardB5ToB6 checks every non-rest day has exactly one primary metric set
// — distance XOR duration — before session-text generation is attempted.
func guardB5ToB6(weeks []model.WeekRecord) error {
	for _, week := range weeks {
		for _, d := range week.Days {
			if d.Intent == model.IntentRest {
				continue
			}
			hasDistance := d.DistanceM > 0
			hasDuration := d.DurationS > 0
			if hasDistance == hasDuration {
				return &StageError{Stage: "B5", Guard: "guardB5ToB6",
					Err: fmt.Errorf("week %d day %s must have exactly one of distance/duration set, got distance=%.0f duration=%d",
						week.Index, d.Date.Format("2006-01-02"), d.DistanceM, d.DurationS)}
			}
		}
	}
	return nil
}

// guardB7 checks no two materialized sessions share an athlete and a
// starts-at second — the upsert key B7 persists against — before they
// reach the persistor.
func guardB7(sessions []model.PlannedSession) error {
	seen := make(map[[2]int64]bool, len(sessions))
	for _, s := range sessions {
		key := [2]int64{s.AthleteID, s.StartsAt.Unix()}
		if seen[key] {
			return &StageError{Stage: "B6", Guard: "guardB7",
				Err: fmt.Errorf("duplicate session for athlete %d at %s", s.AthleteID, s.StartsAt.Format("2006-01-02T15:04:05"))}
		}
		seen[key] = true
	}
	return nil
}
