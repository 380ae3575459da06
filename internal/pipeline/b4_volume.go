package pipeline

import (
	"fmt"

	"github.com/tracepace/coach/internal/model"
)

// baseIntentUnits are the relative weight each intent gets when the
// residual left after the long run's share is set is split across the
// remaining days. Rest and long days aren't split by weight — rest gets
// zero, long gets its own fixed share below.
var baseIntentUnits = map[string]float64{
	model.IntentQuality: 1.5,
	model.IntentEasy:    1.0,
}

const (
	// longRunShare is the fixed fraction of weekly volume a single
	// required long run receives — the midpoint of the 25-35% allocation
	// band, fixed as a constant so the allocation is deterministic.
	longRunShare = 0.30

	// easyDayFloorM is the minimum distance an easy day may be assigned
	// (2 miles).
	easyDayFloorM = 2 * 1609.34

	// fatigueFactorFloor/Ceil bound the fatigue-feedback scaling factor
	// applied to weekly volume before allocation.
	fatigueFactorFloor = 0.7
	fatigueFactorCeil  = 1.0
)

// B4 allocates each week's target weekly volume across its days: the
// long run (if the week has one) takes a fixed share of the week, easy
// days are floored at a minimum distance, and hard (quality) days absorb
// whatever's left — the "residual" rule — with the remainder split
// proportionally by intent weight before the floor is enforced. fatigue
// is an optional caller-supplied feedback factor in [0.7, 1.0] scaling
// the week's target volume down before allocation; pass 1.0 for none.
// Pure function: no I/O, no corpus access.
func B4(weeks []model.WeekRecord, fatigue float64) ([]model.WeekRecord, error) {
	fatigue = clampFatigue(fatigue)

	out := make([]model.WeekRecord, len(weeks))
	for wi, week := range weeks {
		days := make([]model.DayRecord, len(week.Days))
		copy(days, week.Days)

		target := week.TargetWeeklyDistanceM * fatigue
		if err := allocateWeek(days, target); err != nil {
			return nil, fmt.Errorf("pipeline: B4: week %d: %w", week.Index, err)
		}

		out[wi] = model.WeekRecord{
			Index: week.Index, StartsAt: week.StartsAt, Phase: week.Phase, StructureID: week.StructureID,
			TargetWeeklyDistanceM: target, Days: days,
		}
	}
	return out, nil
}

func clampFatigue(f float64) float64 {
	if f <= 0 {
		return 1.0
	}
	if f < fatigueFactorFloor {
		return fatigueFactorFloor
	}
	if f > fatigueFactorCeil {
		return fatigueFactorCeil
	}
	return f
}

// allocateWeek sets DistanceM on every non-rest day in place so the week
// sums to target: the long run(s) take longRunShare of target split
// evenly among themselves, the remainder is split between easy and hard
// days by baseIntentUnits weight, and any easy day left below the floor
// is topped up out of the hard days' share (the deterministic residual
// rule) — which keeps the week's total exactly target, not merely close
// to it.
func allocateWeek(days []model.DayRecord, target float64) error {
	var longIdx, easyIdx, hardIdx []int
	for i, d := range days {
		switch d.Intent {
		case model.IntentLong:
			longIdx = append(longIdx, i)
		case model.IntentEasy:
			easyIdx = append(easyIdx, i)
		case model.IntentQuality:
			hardIdx = append(hardIdx, i)
		}
	}

	longTotal := 0.0
	if len(longIdx) > 0 {
		longTotal = target * longRunShare
		per := longTotal / float64(len(longIdx))
		for _, i := range longIdx {
			days[i].DistanceM = per
		}
	}

	remaining := target - longTotal
	if remaining < 0 {
		return fmt.Errorf("target volume %.0fm too small to cover a long run at %.0f%% share", target, longRunShare*100)
	}

	easyFloorTotal := easyDayFloorM * float64(len(easyIdx))
	if len(easyIdx) > 0 && easyFloorTotal > remaining {
		return fmt.Errorf("target volume %.0fm cannot cover %d easy day(s) at the %.1f mi floor after the long run share",
			target, len(easyIdx), easyDayFloorM/1609.34)
	}

	totalUnits := baseIntentUnits[model.IntentEasy]*float64(len(easyIdx)) + baseIntentUnits[model.IntentQuality]*float64(len(hardIdx))
	if totalUnits == 0 {
		if remaining > 0.01*target {
			return fmt.Errorf("no easy or hard days to absorb %.0fm of remaining weekly volume", remaining)
		}
		return nil
	}
	for _, i := range easyIdx {
		days[i].DistanceM = remaining * baseIntentUnits[model.IntentEasy] / totalUnits
	}
	for _, i := range hardIdx {
		days[i].DistanceM = remaining * baseIntentUnits[model.IntentQuality] / totalUnits
	}

	// Enforce the easy-day floor, funding any shortfall out of the hard
	// days' allocation — hard days receive the residual after long and
	// easy are set, so they're what absorbs this adjustment too.
	shortfall := 0.0
	for _, i := range easyIdx {
		if days[i].DistanceM < easyDayFloorM {
			shortfall += easyDayFloorM - days[i].DistanceM
			days[i].DistanceM = easyDayFloorM
		}
	}
	if shortfall > 0 {
		if len(hardIdx) == 0 {
			return fmt.Errorf("easy-day floor needs %.0fm more but the week has no hard days to fund it from", shortfall)
		}
		hardTotal := 0.0
		for _, i := range hardIdx {
			hardTotal += days[i].DistanceM
		}
		if hardTotal < shortfall {
			return fmt.Errorf("hard days can't absorb the %.0fm easy-day floor shortfall", shortfall)
		}
		scale := (hardTotal - shortfall) / hardTotal
		for _, i := range hardIdx {
			days[i].DistanceM *= scale
		}
	}

	return nil
}
