// Package trainingload computes CTL/ATL/TSB from a daily training-stress
// history. It is a pure function package — no I/O, no clock reads — used
// by the Execution Controller's context assembly for display only; it
// never gates DECIDE.
package trainingload

import (
	"sort"
	"time"

	"github.com/tracepace/coach/internal/model"
)

const (
	ctlDays = 42
	atlDays = 7
)

// Metrics is the CTL/ATL/TSB snapshot for the most recent day in history.
type Metrics struct {
	CTL float64 // chronic training load, 42-day exponentially weighted average of TSS
	ATL float64 // acute training load, 7-day exponentially weighted average of TSS
	TSB float64 // training stress balance, CTL - ATL
}

// EstimateDailyLoad buckets activities by calendar day and converts each
// into a training-stress proxy: one hour of moving time is worth 100 TSS,
// the conventional one-hour-at-threshold baseline. No power or heart-rate
// stream is available to this package, so duration is the only honest
// input; callers that gain access to a real TSS source should replace
// this step, not ComputeCTLATLTSB.
func EstimateDailyLoad(activities []model.Activity) []model.DailyLoad {
	byDay := make(map[string]float64, len(activities))
	order := make([]string, 0, len(activities))
	for _, a := range activities {
		key := a.OccurredAt.Format("2006-01-02")
		if _, seen := byDay[key]; !seen {
			order = append(order, key)
		}
		byDay[key] += (float64(a.DurationS) / 3600.0) * 100.0
	}

	loads := make([]model.DailyLoad, 0, len(order))
	for _, key := range order {
		date, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		loads = append(loads, model.DailyLoad{Date: date, TSS: byDay[key]})
	}
	return loads
}

// ComputeCTLATLTSB folds history (any order, deduplicated by caller) into
// a single Metrics value as of the latest date present. An empty history
// yields the zero value.
func ComputeCTLATLTSB(history []model.DailyLoad) Metrics {
	if len(history) == 0 {
		return Metrics{}
	}

	sorted := make([]model.DailyLoad, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	ctlAlpha := 2.0 / float64(ctlDays+1)
	atlAlpha := 2.0 / float64(atlDays+1)

	var ctl, atl float64
	for _, day := range sorted {
		ctl = ctl + ctlAlpha*(day.TSS-ctl)
		atl = atl + atlAlpha*(day.TSS-atl)
	}

	return Metrics{CTL: ctl, ATL: atl, TSB: ctl - atl}
}
