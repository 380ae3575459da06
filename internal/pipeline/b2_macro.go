package pipeline

import (
	"fmt"
	"time"

	"github.com/tracepace/coach/internal/model"
)

// defaultWeeklyDistanceM is the starting weekly volume B2 ramps from when
// the athlete's current weekly mileage hasn't been filled yet (it's an
// optional slot) — a conservative novice baseline, not a guess at the
// athlete's actual fitness.
const defaultWeeklyDistanceM = 20 * 1609.34

// recoveryWeekInterval is how often a build-phase week is a recovery week
// instead of a progression week: every 3-4 build weeks.
const recoveryWeekInterval = 4

// buildWeekIncrease is the week-over-week volume increase applied on a
// non-recovery build week — the 10% ceiling, applied as the bound itself
// rather than sampled below it, for a deterministic pipeline.
const buildWeekIncrease = 1.10

// recoveryWeekFactor cuts a recovery week's volume to this fraction of the
// peak volume reached so far — the midpoint of the 20-30% cut range.
const recoveryWeekFactor = 0.75

// taperWeekDecrease is the week-over-week volume decrease applied during
// the taper phase.
const taperWeekDecrease = 0.80

// MacroWeek is B2's output: a week's calendar anchor, its training phase,
// and its target weekly volume, before any philosophy or day-level
// structure has been chosen.
type MacroWeek struct {
	Index                 int
	StartsAt              time.Time
	DaysToRace            int
	Phase                 string // base | build | peak | taper
	Focus                 string
	TargetWeeklyDistanceM float64
}

// B2 lays out the macro plan: one entry per week from pc.StartsAt up to
// and including the week race day falls in, assigning each week a phase
// and a target weekly volume. Progression rules: week-over-week increase
// never exceeds 10% during build, a recovery week cuts volume 20-30%
// every 3-4 build weeks, and taper weeks decrease monotonically. It knows
// nothing about philosophy or day-level structure yet — that's B2_5 and
// B3.
func B2(pc model.PlanningContext) ([]MacroWeek, error) {
	if pc.RaceDate.IsZero() {
		return nil, fmt.Errorf("pipeline: B2: race date is required")
	}
	start := pc.StartsAt
	if start.IsZero() {
		start = mondayOf(time.Now())
	} else {
		start = mondayOf(start)
	}
	if !pc.RaceDate.After(start) {
		return nil, fmt.Errorf("pipeline: B2: race date %s is not after plan start %s", pc.RaceDate, start)
	}

	var weeks []MacroWeek
	for i, weekStart := 0, start; !weekStart.After(pc.RaceDate); i, weekStart = i+1, weekStart.AddDate(0, 0, 7) {
		daysToRace := int(pc.RaceDate.Sub(weekStart).Hours() / 24)
		weeks = append(weeks, MacroWeek{Index: i, StartsAt: weekStart, DaysToRace: daysToRace})
	}

	total := len(weeks)
	startingDistanceM := pc.WeeklyMileageM
	if startingDistanceM <= 0 {
		startingDistanceM = defaultWeeklyDistanceM
	}

	current := startingDistanceM
	peak := startingDistanceM
	buildStreak := 0
	for i := range weeks {
		phase := phaseForIndex(i, total)
		weeks[i].Phase = phase
		weeks[i].Focus = focusForPhase(phase)

		switch phase {
		case model.PhaseBase:
			current = startingDistanceM
		case model.PhaseBuild:
			buildStreak++
			if buildStreak%recoveryWeekInterval == 0 {
				current = peak * recoveryWeekFactor
			} else {
				current = current * buildWeekIncrease
			}
			if current > peak {
				peak = current
			}
		case model.PhasePeak:
			current = peak
		case model.PhaseTaper:
			current = current * taperWeekDecrease
		}
		weeks[i].TargetWeeklyDistanceM = current
	}

	return weeks, nil
}

// phaseForIndex buckets a macro week into base/build/peak/taper purely by
// its position in the plan — philosophy-specific taper length isn't known
// yet at B2 (B2.5 runs after), so this uses a fixed taper window, a base
// window of a quarter of the plan, and a single peak week. Phase is monotonically non-decreasing
// in index: base -> build -> peak -> taper.
func phaseForIndex(index, total int) string {
	if total <= 1 {
		return model.PhaseTaper
	}

	taperWeeks := 2
	if taperWeeks > total-1 {
		taperWeeks = 1
	}
	remaining := total - index
	if remaining <= taperWeeks {
		return model.PhaseTaper
	}

	baseWeeks := total / 4
	if baseWeeks < 1 {
		baseWeeks = 1
	}
	if index < baseWeeks {
		return model.PhaseBase
	}

	peakStart := total - taperWeeks - 1
	if peakStart > baseWeeks && index >= peakStart {
		return model.PhasePeak
	}
	return model.PhaseBuild
}

func focusForPhase(phase string) string {
	switch phase {
	case model.PhaseBase:
		return "aerobic base"
	case model.PhaseBuild:
		return "volume build"
	case model.PhasePeak:
		return "race-specific sharpening"
	case model.PhaseTaper:
		return "taper"
	default:
		return phase
	}
}

func mondayOf(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}
