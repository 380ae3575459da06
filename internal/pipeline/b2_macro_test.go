package pipeline_test

import (
	"testing"
	"time"

	"github.com/tracepace/coach/internal/model"
	"github.com/tracepace/coach/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestB2_WeeksCountDownToRaceDay(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // a Monday
	race := start.AddDate(0, 0, 7*8)                     // 8 weeks out

	weeks, err := pipeline.B2(model.PlanningContext{StartsAt: start, RaceDate: race})
	require.NoError(t, err)

	require.Len(t, weeks, 9)
	assert.Equal(t, 0, weeks[0].Index)
	assert.Greater(t, weeks[0].DaysToRace, weeks[len(weeks)-1].DaysToRace)
	assert.LessOrEqual(t, weeks[len(weeks)-1].DaysToRace, 7)
}

func TestB2_RejectsRaceDateNotAfterStart(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	_, err := pipeline.B2(model.PlanningContext{StartsAt: start, RaceDate: start})
	assert.Error(t, err)
}

func TestB2_RequiresRaceDate(t *testing.T) {
	_, err := pipeline.B2(model.PlanningContext{})
	assert.Error(t, err)
}

func TestB2_EndsInATaperPhase(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	race := start.AddDate(0, 0, 7*12)

	weeks, err := pipeline.B2(model.PlanningContext{StartsAt: start, RaceDate: race, WeeklyMileageM: 30 * 1609.34})
	require.NoError(t, err)

	assert.Equal(t, model.PhaseTaper, weeks[len(weeks)-1].Phase)
	assert.Equal(t, model.PhaseBase, weeks[0].Phase)
}

func TestB2_TaperWeeksDecreaseMonotonically(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	race := start.AddDate(0, 0, 7*14)

	weeks, err := pipeline.B2(model.PlanningContext{StartsAt: start, RaceDate: race, WeeklyMileageM: 30 * 1609.34})
	require.NoError(t, err)

	var taperTargets []float64
	for _, w := range weeks {
		if w.Phase == model.PhaseTaper {
			taperTargets = append(taperTargets, w.TargetWeeklyDistanceM)
		}
	}
	require.NotEmpty(t, taperTargets)
	for i := 1; i < len(taperTargets); i++ {
		assert.Less(t, taperTargets[i], taperTargets[i-1])
	}
}

func TestB2_BuildWeeksIncreaseByAtMostTenPercent(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	race := start.AddDate(0, 0, 7*16)

	weeks, err := pipeline.B2(model.PlanningContext{StartsAt: start, RaceDate: race, WeeklyMileageM: 25 * 1609.34})
	require.NoError(t, err)

	for i := 1; i < len(weeks); i++ {
		if weeks[i].Phase != model.PhaseBuild || weeks[i-1].Phase != model.PhaseBuild {
			continue
		}
		if weeks[i].TargetWeeklyDistanceM <= weeks[i-1].TargetWeeklyDistanceM {
			continue // recovery week
		}
		ratio := weeks[i].TargetWeeklyDistanceM / weeks[i-1].TargetWeeklyDistanceM
		assert.LessOrEqual(t, ratio, 1.101)
	}
}

func TestB2_HasARecoveryWeekDuringALongBuildPhase(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	race := start.AddDate(0, 0, 7*16)

	weeks, err := pipeline.B2(model.PlanningContext{StartsAt: start, RaceDate: race, WeeklyMileageM: 25 * 1609.34})
	require.NoError(t, err)

	sawDrop := false
	for i := 1; i < len(weeks); i++ {
		if weeks[i].Phase == model.PhaseBuild && weeks[i-1].Phase == model.PhaseBuild &&
			weeks[i].TargetWeeklyDistanceM < weeks[i-1].TargetWeeklyDistanceM {
			sawDrop = true
		}
	}
	assert.True(t, sawDrop, "expected at least one recovery week drop within the build phase")
}
