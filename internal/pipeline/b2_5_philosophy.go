package pipeline

import (
	"fmt"

	"github.com/tracepace/coach/internal/model"
)

// PhilosophySource is the subset of internal/corpus.Cache B2_5 needs.
type PhilosophySource interface {
	Philosophies(raceType, audience string) []model.Philosophy
}

// B2_5 selects the philosophy the rest of the plan is built against. If
// pc.PhilosophyID is already set (an athlete or a prior turn pinned one
// explicitly) it is looked up and returned unchanged rather than
// re-ranked. Candidates are pre-sorted by the corpus (priority desc, id
// asc); B2_5 only has to apply the Requires/Prohibits gate and take the
// first survivor — that ordering is what makes selection deterministic.
func B2_5(src PhilosophySource, pc model.PlanningContext) (model.Philosophy, error) {
	candidates := src.Philosophies(pc.Athlete.RaceType, pc.Athlete.Audience)
	if len(candidates) == 0 {
		return model.Philosophy{}, fmt.Errorf("pipeline: B2_5: no philosophy documents match race_type=%s audience=%s", pc.Athlete.RaceType, pc.Athlete.Audience)
	}

	if pc.PhilosophyID != "" {
		for _, p := range candidates {
			if p.ID == pc.PhilosophyID {
				return p, nil
			}
		}
		return model.Philosophy{}, fmt.Errorf("pipeline: B2_5: pinned philosophy %q not found among candidates", pc.PhilosophyID)
	}

	tags := make(map[string]bool, len(pc.AthleteTags))
	for _, t := range pc.AthleteTags {
		tags[t] = true
	}

	for _, p := range candidates {
		if philosophyApplies(p, tags) {
			return p, nil
		}
	}
	return model.Philosophy{}, fmt.Errorf("pipeline: B2_5: no philosophy survives requires/prohibits gating for the athlete's tags")
}

func philosophyApplies(p model.Philosophy, tags map[string]bool) bool {
	for _, required := range p.Requires {
		if !tags[required] {
			return false
		}
	}
	for _, prohibited := range p.Prohibits {
		if tags[prohibited] {
			return false
		}
	}
	return true
}
