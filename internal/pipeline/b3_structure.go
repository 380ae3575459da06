package pipeline

import (
	"fmt"

	"github.com/tracepace/coach/internal/model"
)

// StructureSource is the subset of internal/corpus.Cache B3 needs.
type StructureSource interface {
	Structures(philosophyID, raceType, audience, phase string, daysToRace int) []model.Structure
}

var dayLabelOffset = map[string]int{
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// B3 assigns a training phase and a concrete day structure to every
// macro week, and expands each structure's day slots into calendar
// dates. Distances/durations are left zero — B4 fills those in. Every
// chosen structure's own rules (hard-day spacing, hard-day cap, required
// long-run count) are checked against the day intents it just produced —
// a corpus document whose day pattern violates its own declared rules
// aborts the week right here, before B4 ever sizes a distance for a day
// that should never exist (P6).
func B3(src StructureSource, philosophy model.Philosophy, weeks []MacroWeek, pc model.PlanningContext) ([]model.WeekRecord, error) {
	var out []model.WeekRecord
	for _, mw := range weeks {
		phase := mw.Phase

		candidates := src.Structures(philosophy.ID, pc.Athlete.RaceType, pc.Athlete.Audience, phase, mw.DaysToRace)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("pipeline: B3: no structure matches philosophy=%s phase=%s days_to_race=%d for week %d",
				philosophy.ID, phase, mw.DaysToRace, mw.Index)
		}
		structure := candidates[0]

		days := make([]model.DayRecord, len(structure.Days))
		for i, sd := range structure.Days {
			offset, ok := dayLabelOffset[sd.Label]
			if !ok {
				return nil, fmt.Errorf("pipeline: B3: structure %s has unrecognized day label %q", structure.ID, sd.Label)
			}
			days[i] = model.DayRecord{
				Date:   mw.StartsAt.AddDate(0, 0, offset),
				Intent: sd.Intent,
			}
		}

		if err := validateStructureRules(structure, days, mw.Index); err != nil {
			return nil, err
		}

		out = append(out, model.WeekRecord{
			Index:                 mw.Index,
			StartsAt:              mw.StartsAt,
			Phase:                 phase,
			StructureID:           structure.ID,
			TargetWeeklyDistanceM: mw.TargetWeeklyDistanceM,
			Days:                  days,
		})
	}
	return out, nil
}

// validateStructureRules checks a structure's own declared rules against
// the day intents it just produced: no two hard-intent days adjacent
// (when required), a hard-day cap, and the required long-run count (P6,
// and the long-run half of P5).
func validateStructureRules(structure model.Structure, days []model.DayRecord, weekIndex int) error {
	hardCount, longCount := 0, 0
	prevHard := false
	for _, d := range days {
		isHard := d.Intent == model.IntentQuality || d.Intent == model.IntentLong
		if isHard {
			hardCount++
		}
		if structure.Rules.NoConsecutiveHardDays && isHard && prevHard {
			return &StageError{Stage: "B3", Guard: "structureRules",
				Err: fmt.Errorf("week %d has consecutive hard days, structure %q forbids it", weekIndex, structure.ID)}
		}
		prevHard = isHard
		if d.Intent == model.IntentLong {
			longCount++
		}
	}
	if structure.Rules.HardDaysMax > 0 && hardCount > structure.Rules.HardDaysMax {
		return &StageError{Stage: "B3", Guard: "structureRules",
			Err: fmt.Errorf("week %d has %d hard days, structure %q allows at most %d", weekIndex, hardCount, structure.ID, structure.Rules.HardDaysMax)}
	}
	if structure.Rules.LongRunRequiredCount > 0 && longCount != structure.Rules.LongRunRequiredCount {
		return &StageError{Stage: "B3", Guard: "structureRules",
			Err: fmt.Errorf("week %d has %d long runs, structure %q requires exactly %d", weekIndex, longCount, structure.ID, structure.Rules.LongRunRequiredCount)}
	}
	return nil
}
