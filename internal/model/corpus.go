package model

// FrontMatter is the parsed header block of a corpus document, shared by
// all three document kinds. Kind-specific fields live in the typed structs
// below; FrontMatter only carries the fields every document kind declares.
type FrontMatter struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind"` // philosophy | structure | template
	PhilosophyID string   `json:"philosophy_id,omitempty"`
	RaceType     string   `json:"race_type,omitempty"`
	Audience     string   `json:"audience,omitempty"`
	Phase        string   `json:"phase,omitempty"`
	SessionType  string   `json:"session_type,omitempty"`
	Priority     int      `json:"priority"`
	Tags         []string `json:"tags,omitempty"`
}

// Philosophy is a coaching-philosophy document: prose guidance plus the
// structural parameters (hard-day spacing, taper length) parsed from its
// spec block, plus the gating predicates B2.5 filters candidates by. B2
// and B3 do not read HardDaysPerWeek or TaperWeeks.
type Philosophy struct {
	FrontMatter
	Body            string
	HardDaysPerWeek int
	TaperWeeks      int
	LongRunEmphasis float64 // 0..1, weight given to the long run; B4 does not read it and uses a fixed long-run share
	Requires        []string // athlete tags that must ALL be present for this philosophy to apply
	Prohibits       []string // athlete tags that, if any present, exclude this philosophy
	Embedding       []float64
}

// Structure is a week-structure document: a named arrangement of day
// intents (quality/easy/long/rest) for a training phase, plus the rules
// block B3 enforces.
type Structure struct {
	FrontMatter
	Body              string
	Days              []StructureDay
	HardGroup         []string // day labels mapped to IntentQuality at load time (the canonical "hard day" resolution)
	DaysToRace        [2]int   // inclusive [min, max] days-to-race window this applies to
	Rules             StructureRules
	SessionGroups      []string
	TaperDaysToRaceLE int // parsed taper_days_to_race_le; B3 does not read it and takes the top-ranked candidate
	Embedding         []float64
}

// StructureRules is a structure document's "rules" block: hard-day
// spacing and long-run-count constraints B3 enforces.
type StructureRules struct {
	HardDaysMax           int
	NoConsecutiveHardDays bool
	LongRunRequiredCount  int
}

// StructureDay is one day slot in a Structure.
type StructureDay struct {
	Label  string `json:"label"` // e.g. "mon", "tue"
	Intent string `json:"intent"` // quality | easy | long | rest
}

// Intent values for a planned session or structure day.
const (
	IntentQuality = "quality"
	IntentEasy    = "easy"
	IntentLong    = "long"
	IntentRest    = "rest"
)

// Phase values for a macro week, in the order B2's progression moves
// through them.
const (
	PhaseBase  = "base"
	PhaseBuild = "build"
	PhasePeak  = "peak"
	PhaseTaper = "taper"
)

// Template is a session-template document: the skeleton text and step
// pattern used to materialize a concrete session for a given intent, plus
// the parameter ranges B5 resolves a concrete distance/duration within
// (e.g. "easy_mi_range": [3, 10], "hard_minutes_max": 40).
type Template struct {
	FrontMatter
	Body      string
	Steps     []TemplateStep
	Params    map[string]ParamRange
	Embedding []float64
}

// ParamRange is an inclusive [min, max] bound on one of a template's
// instantiable parameters.
type ParamRange struct {
	Min float64
	Max float64
}

// TemplateStep is one step in a session template, prior to session-text
// generation filling in concrete targets.
type TemplateStep struct {
	StepIndex   int    `json:"step_index"`
	StepType    string `json:"step_type"`
	TargetsHint string `json:"targets_hint"`
	Purpose     string `json:"purpose"`
}
