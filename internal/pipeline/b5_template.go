package pipeline

import (
	"fmt"

	"github.com/tracepace/coach/internal/model"
)

// TemplateSource is the subset of internal/corpus.Cache B5 needs.
type TemplateSource interface {
	Templates(philosophyID, raceType, audience, phase, sessionType string) []model.Template
}

// B5 assigns a TemplateID to every non-rest day, preferring the
// highest-priority template (corpus tie-break already applied) whose
// declared distance_m parameter range contains the day's allocated
// distance; falls back to the top candidate overall when no template
// declares that parameter or none of the ranges fit. B5 only selects a
// template: it does not instantiate the template's parameter ranges, and
// each day keeps the distance B4 allocated.
func B5(src TemplateSource, philosophy model.Philosophy, weeks []model.WeekRecord, pc model.PlanningContext) ([]model.WeekRecord, error) {
	out := make([]model.WeekRecord, len(weeks))
	for wi, week := range weeks {
		days := make([]model.DayRecord, len(week.Days))
		copy(days, week.Days)

		for di, d := range days {
			if d.Intent == model.IntentRest {
				continue
			}
			candidates := src.Templates(philosophy.ID, pc.Athlete.RaceType, pc.Athlete.Audience, week.Phase, d.Intent)
			if len(candidates) == 0 {
				return nil, fmt.Errorf("pipeline: B5: no template matches philosophy=%s phase=%s intent=%s for week %d day %s",
					philosophy.ID, week.Phase, d.Intent, week.Index, d.Date.Format("2006-01-02"))
			}
			days[di].TemplateID = selectTemplate(candidates, d.DistanceM).ID
		}

		out[wi] = model.WeekRecord{Index: week.Index, StartsAt: week.StartsAt, Phase: week.Phase, StructureID: week.StructureID, Days: days}
	}
	return out, nil
}

func selectTemplate(candidates []model.Template, distanceM float64) model.Template {
	for _, t := range candidates {
		bounds, ok := t.Params["distance_m"]
		if !ok {
			continue
		}
		if distanceM >= bounds.Min && distanceM <= bounds.Max {
			return t
		}
	}
	return candidates[0]
}
