package corpus

import (
	"encoding/json"
	"fmt"

	"github.com/tracepace/coach/internal/model"
)

// structureSpec is the shape the "structure_spec" front-matter block
// takes.
type structureSpec struct {
	Days              []model.StructureDay `json:"days"`
	HardGroup         []string             `json:"hard_group"`
	DaysToRace        [2]int               `json:"days_to_race"`
	Rules             structureRulesSpec   `json:"rules"`
	SessionGroups     []string             `json:"session_groups"`
	TaperDaysToRaceLE int                  `json:"taper_days_to_race_le"`
}

type structureRulesSpec struct {
	HardDaysMax           int  `json:"hard_days_max"`
	NoConsecutiveHardDays bool `json:"no_consecutive_hard_days"`
	LongRun               struct {
		RequiredCount int `json:"required_count"`
	} `json:"long_run"`
}

// templateSpec is the shape the "template_spec"/"template_sets"
// front-matter block takes.
type templateSpec struct {
	Steps  []model.TemplateStep  `json:"steps"`
	Params map[string][2]float64 `json:"params"`
}

type philosophySpec struct {
	HardDaysPerWeek int      `json:"hard_days_per_week"`
	TaperWeeks      int      `json:"taper_weeks"`
	LongRunEmphasis float64  `json:"long_run_emphasis"`
	Requires        []string `json:"requires"`
	Prohibits       []string `json:"prohibits"`
}

type docEnvelope struct {
	model.FrontMatter
	StructureSpec  *structureSpec  `json:"structure_spec,omitempty"`
	TemplateSpec   *templateSpec   `json:"template_spec,omitempty"`
	PhilosophySpec *philosophySpec `json:"philosophy_spec,omitempty"`
}

func parsePhilosophy(d RawDocument) (model.Philosophy, error) {
	var env docEnvelope
	if err := json.Unmarshal(d.FrontMatter, &env); err != nil {
		return model.Philosophy{}, fmt.Errorf("unmarshal philosophy front matter: %w", err)
	}
	p := model.Philosophy{
		FrontMatter: env.FrontMatter,
		Body:        d.Body,
		Embedding:   d.Embedding,
	}
	if env.PhilosophySpec != nil {
		p.HardDaysPerWeek = env.PhilosophySpec.HardDaysPerWeek
		p.TaperWeeks = env.PhilosophySpec.TaperWeeks
		p.LongRunEmphasis = env.PhilosophySpec.LongRunEmphasis
		p.Requires = env.PhilosophySpec.Requires
		p.Prohibits = env.PhilosophySpec.Prohibits
	}
	return p, nil
}

func parseStructure(d RawDocument) (model.Structure, error) {
	var env docEnvelope
	if err := json.Unmarshal(d.FrontMatter, &env); err != nil {
		return model.Structure{}, fmt.Errorf("unmarshal structure front matter: %w", err)
	}
	s := model.Structure{
		FrontMatter: env.FrontMatter,
		Body:        d.Body,
		Embedding:   d.Embedding,
	}
	if env.StructureSpec != nil {
		s.Days = env.StructureSpec.Days
		s.HardGroup = env.StructureSpec.HardGroup
		s.DaysToRace = env.StructureSpec.DaysToRace
		s.SessionGroups = env.StructureSpec.SessionGroups
		s.TaperDaysToRaceLE = env.StructureSpec.TaperDaysToRaceLE
		s.Rules = model.StructureRules{
			HardDaysMax:           env.StructureSpec.Rules.HardDaysMax,
			NoConsecutiveHardDays: env.StructureSpec.Rules.NoConsecutiveHardDays,
			LongRunRequiredCount:  env.StructureSpec.Rules.LongRun.RequiredCount,
		}
		applyHardGroup(s.Days, s.HardGroup)
	}
	return s, nil
}

// applyHardGroup maps each day labeled in hardGroup to IntentQuality, the
// canonical "hard day" resolution: intent, not a separate hard-day flag,
// is what the rest of the pipeline reads.
func applyHardGroup(days []model.StructureDay, hardGroup []string) {
	hard := make(map[string]bool, len(hardGroup))
	for _, label := range hardGroup {
		hard[label] = true
	}
	for i := range days {
		if hard[days[i].Label] {
			days[i].Intent = model.IntentQuality
		}
	}
}

func parseTemplate(d RawDocument) (model.Template, error) {
	var env docEnvelope
	if err := json.Unmarshal(d.FrontMatter, &env); err != nil {
		return model.Template{}, fmt.Errorf("unmarshal template front matter: %w", err)
	}
	t := model.Template{
		FrontMatter: env.FrontMatter,
		Body:        d.Body,
		Embedding:   d.Embedding,
	}
	if env.TemplateSpec != nil {
		t.Steps = env.TemplateSpec.Steps
		if len(env.TemplateSpec.Params) > 0 {
			t.Params = make(map[string]model.ParamRange, len(env.TemplateSpec.Params))
			for name, bounds := range env.TemplateSpec.Params {
				t.Params[name] = model.ParamRange{Min: bounds[0], Max: bounds[1]}
			}
		}
	}
	return t, nil
}
