package pipeline_test

import (
	"testing"
	"time"

	"github.com/tracepace/coach/internal/model"
	"github.com/tracepace/coach/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestB4_DistributesWeeklyTargetAcrossDays(t *testing.T) {
	week := model.WeekRecord{
		TargetWeeklyDistanceM: 40 * 1609.34,
		Days: []model.DayRecord{
			{Intent: model.IntentLong},
			{Intent: model.IntentQuality},
			{Intent: model.IntentEasy},
			{Intent: model.IntentEasy},
			{Intent: model.IntentRest},
		},
	}

	out, err := pipeline.B4([]model.WeekRecord{week}, 0)
	require.NoError(t, err)

	var total float64
	for _, d := range out[0].Days {
		total += d.DistanceM
	}
	assert.InDelta(t, 40*1609.34, total, 1.0)

	restIdx := 4
	assert.Equal(t, 0.0, out[0].Days[restIdx].DistanceM)

	longIdx, easyIdx := 0, 2
	assert.Greater(t, out[0].Days[longIdx].DistanceM, out[0].Days[easyIdx].DistanceM)
}

func TestB4_LongRunGetsAFixedShareOfWeeklyVolume(t *testing.T) {
	week := model.WeekRecord{
		TargetWeeklyDistanceM: 30 * 1609.34,
		Days: []model.DayRecord{
			{Intent: model.IntentLong},
			{Intent: model.IntentEasy},
			{Intent: model.IntentEasy},
		},
	}

	out, err := pipeline.B4([]model.WeekRecord{week}, 0)
	require.NoError(t, err)

	share := out[0].Days[0].DistanceM / week.TargetWeeklyDistanceM
	assert.InDelta(t, 0.30, share, 0.01)
}

func TestB4_EnforcesEasyDayFloor(t *testing.T) {
	week := model.WeekRecord{
		TargetWeeklyDistanceM: 10 * 1609.34,
		Days: []model.DayRecord{
			{Intent: model.IntentLong},
			{Intent: model.IntentEasy},
			{Intent: model.IntentQuality},
		},
	}

	out, err := pipeline.B4([]model.WeekRecord{week}, 0)
	require.NoError(t, err)

	easyIdx := 1
	assert.GreaterOrEqual(t, out[0].Days[easyIdx].DistanceM, 2*1609.34-0.01)
}

func TestB4_NeverSetsBothDistanceAndDuration(t *testing.T) {
	week := model.WeekRecord{
		TargetWeeklyDistanceM: 20 * 1609.34,
		Days: []model.DayRecord{
			{Intent: model.IntentLong},
			{Intent: model.IntentEasy},
			{Intent: model.IntentQuality},
			{Intent: model.IntentRest},
		},
	}

	out, err := pipeline.B4([]model.WeekRecord{week}, 0)
	require.NoError(t, err)

	for _, d := range out[0].Days {
		assert.Equal(t, 0, d.DurationS)
	}
}

func TestB4_FatigueFactorScalesTargetDown(t *testing.T) {
	week := model.WeekRecord{
		TargetWeeklyDistanceM: 30 * 1609.34,
		Days: []model.DayRecord{
			{Intent: model.IntentLong},
			{Intent: model.IntentEasy},
		},
	}

	full, err := pipeline.B4([]model.WeekRecord{week}, 1.0)
	require.NoError(t, err)
	reduced, err := pipeline.B4([]model.WeekRecord{week}, 0.7)
	require.NoError(t, err)

	assert.Less(t, reduced[0].TargetWeeklyDistanceM, full[0].TargetWeeklyDistanceM)
	assert.InDelta(t, full[0].TargetWeeklyDistanceM*0.7, reduced[0].TargetWeeklyDistanceM, 1.0)
}

func TestB4_RejectsFatigueOutOfRangeByClamping(t *testing.T) {
	week := model.WeekRecord{
		TargetWeeklyDistanceM: 20 * 1609.34,
		Days:                  []model.DayRecord{{Intent: model.IntentEasy}},
	}

	out, err := pipeline.B4([]model.WeekRecord{week}, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 20*1609.34*0.7, out[0].TargetWeeklyDistanceM, 1.0)
}

func TestB4_PreservesWeekMetadata(t *testing.T) {
	week := model.WeekRecord{
		Index: 2, StartsAt: time.Now(), Phase: "taper", StructureID: "struct-1",
		TargetWeeklyDistanceM: 10000,
		Days:                  []model.DayRecord{{Intent: model.IntentEasy}},
	}

	out, err := pipeline.B4([]model.WeekRecord{week}, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, out[0].Index)
	assert.Equal(t, "taper", out[0].Phase)
	assert.Equal(t, "struct-1", out[0].StructureID)
}

func TestB4_ErrorsWhenTargetTooSmallForEasyFloor(t *testing.T) {
	week := model.WeekRecord{
		TargetWeeklyDistanceM: 1000,
		Days: []model.DayRecord{
			{Intent: model.IntentLong},
			{Intent: model.IntentEasy},
			{Intent: model.IntentEasy},
			{Intent: model.IntentEasy},
		},
	}

	_, err := pipeline.B4([]model.WeekRecord{week}, 0)
	assert.Error(t, err)
}
