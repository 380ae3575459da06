package trainingload_test

import (
	"testing"
	"time"

	"github.com/tracepace/coach/internal/model"
	"github.com/tracepace/coach/internal/trainingload"

	"github.com/stretchr/testify/assert"
)

func TestComputeCTLATLTSB_Empty(t *testing.T) {
	m := trainingload.ComputeCTLATLTSB(nil)
	assert.Equal(t, trainingload.Metrics{}, m)
}

func TestComputeCTLATLTSB_ConstantLoad(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var history []model.DailyLoad
	for i := 0; i < 200; i++ {
		history = append(history, model.DailyLoad{Date: base.AddDate(0, 0, i), TSS: 50})
	}

	m := trainingload.ComputeCTLATLTSB(history)

	assert.InDelta(t, 50, m.CTL, 0.5)
	assert.InDelta(t, 50, m.ATL, 0.5)
	assert.InDelta(t, 0, m.TSB, 0.5)
}

func TestComputeCTLATLTSB_OrderIndependent(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	forward := []model.DailyLoad{
		{Date: base, TSS: 80},
		{Date: base.AddDate(0, 0, 1), TSS: 20},
		{Date: base.AddDate(0, 0, 2), TSS: 60},
	}
	reversed := []model.DailyLoad{forward[2], forward[0], forward[1]}

	assert.Equal(t, trainingload.ComputeCTLATLTSB(forward), trainingload.ComputeCTLATLTSB(reversed))
}

func TestComputeCTLATLTSB_RecentSpikeRaisesATLMoreThanCTL(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var history []model.DailyLoad
	for i := 0; i < 30; i++ {
		history = append(history, model.DailyLoad{Date: base.AddDate(0, 0, i), TSS: 40})
	}
	history = append(history, model.DailyLoad{Date: base.AddDate(0, 0, 30), TSS: 200})

	m := trainingload.ComputeCTLATLTSB(history)

	assert.Greater(t, m.ATL, m.CTL)
	assert.Less(t, m.TSB, 0.0)
}

func TestEstimateDailyLoad_BucketsByDayAndSumsDuration(t *testing.T) {
	day1 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	activities := []model.Activity{
		{ID: 1, OccurredAt: day1, DurationS: 3600, Type: "run"},
		{ID: 2, OccurredAt: day1.Add(6 * time.Hour), DurationS: 1800, Type: "run"},
		{ID: 3, OccurredAt: day1.AddDate(0, 0, 1), DurationS: 3600, Type: "ride"},
	}

	loads := trainingload.EstimateDailyLoad(activities)

	assert.Len(t, loads, 2)
	assert.InDelta(t, 150, loads[0].TSS, 0.01)
	assert.InDelta(t, 100, loads[1].TSS, 0.01)
}

func TestEstimateDailyLoad_Empty(t *testing.T) {
	assert.Empty(t, trainingload.EstimateDailyLoad(nil))
}
