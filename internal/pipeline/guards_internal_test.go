package pipeline

import (
	"time"

	"testing"

	"github.com/tracepace/coach/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardB2ToB3_RejectsEmptyMacroPlan(t *testing.T) {
	err := guardB2ToB3(nil)
	require.Error(t, err)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "B2", stageErr.Stage)
}

func TestGuardB2ToB3_RejectsNonDecreasingDaysToRace(t *testing.T) {
	weeks := []MacroWeek{
		{Index: 0, DaysToRace: 14},
		{Index: 1, DaysToRace: 14},
	}
	err := guardB2ToB3(weeks)
	assert.Error(t, err)
}

func TestGuardB2ToB3_AcceptsWellFormedPlan(t *testing.T) {
	weeks := []MacroWeek{
		{Index: 0, DaysToRace: 21},
		{Index: 1, DaysToRace: 14},
		{Index: 2, DaysToRace: 7},
	}
	assert.NoError(t, guardB2ToB3(weeks))
}

func TestGuardB4ToB5_RejectsVolumeOutsideTolerance(t *testing.T) {
	weeks := []model.WeekRecord{{
		Index:                 0,
		TargetWeeklyDistanceM: 10000,
		Days: []model.DayRecord{
			{Intent: model.IntentEasy, DistanceM: 1000},
		},
	}}
	err := guardB4ToB5(weeks)
	assert.Error(t, err)
}

func TestGuardB4ToB5_AcceptsVolumeWithinTolerance(t *testing.T) {
	weeks := []model.WeekRecord{{
		Index:                 0,
		TargetWeeklyDistanceM: 10000,
		Days: []model.DayRecord{
			{Intent: model.IntentEasy, DistanceM: 4000},
			{Intent: model.IntentLong, DistanceM: 6000},
		},
	}}
	assert.NoError(t, guardB4ToB5(weeks))
}

func TestGuardB4ToB5_AcceptsZeroTargetZeroVolume(t *testing.T) {
	weeks := []model.WeekRecord{{Index: 0, TargetWeeklyDistanceM: 0, Days: []model.DayRecord{{Intent: model.IntentRest}}}}
	assert.NoError(t, guardB4ToB5(weeks))
}

func TestGuardB5ToB6_RejectsNeitherMetricSet(t *testing.T) {
	weeks := []model.WeekRecord{{
		Days: []model.DayRecord{{Intent: model.IntentEasy, DistanceM: 0, DurationS: 0}},
	}}
	assert.Error(t, guardB5ToB6(weeks))
}

func TestGuardB5ToB6_RejectsBothMetricsSet(t *testing.T) {
	weeks := []model.WeekRecord{{
		Days: []model.DayRecord{{Intent: model.IntentEasy, DistanceM: 5000, DurationS: 1800}},
	}}
	assert.Error(t, guardB5ToB6(weeks))
}

func TestGuardB5ToB6_AllowsRestDayWithNeitherMetric(t *testing.T) {
	weeks := []model.WeekRecord{{
		Days: []model.DayRecord{{Intent: model.IntentRest}},
	}}
	assert.NoError(t, guardB5ToB6(weeks))
}

func TestGuardB5ToB6_AcceptsExactlyOneMetricSet(t *testing.T) {
	weeks := []model.WeekRecord{{
		Days: []model.DayRecord{{Intent: model.IntentEasy, DistanceM: 5000}},
	}}
	assert.NoError(t, guardB5ToB6(weeks))
}

func TestGuardB7_RejectsDuplicateAthleteStartsAt(t *testing.T) {
	at := time.Date(2026, 8, 3, 6, 0, 0, 0, time.UTC)
	sessions := []model.PlannedSession{
		{AthleteID: 1, StartsAt: at},
		{AthleteID: 1, StartsAt: at},
	}
	assert.Error(t, guardB7(sessions))
}

func TestGuardB7_AcceptsDistinctAthleteOrTime(t *testing.T) {
	at := time.Date(2026, 8, 3, 6, 0, 0, 0, time.UTC)
	sessions := []model.PlannedSession{
		{AthleteID: 1, StartsAt: at},
		{AthleteID: 2, StartsAt: at},
		{AthleteID: 1, StartsAt: at.Add(24 * time.Hour)},
	}
	assert.NoError(t, guardB7(sessions))
}
