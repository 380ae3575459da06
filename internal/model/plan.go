package model

import "time"

// PlanningContext is the full input the C7 pipeline needs to produce a
// plan: the athlete, their known slots, and the race/date parameters
// extracted by C5 and merged by C6.
type PlanningContext struct {
	Athlete        Athlete
	AthleteTags    []string // drives B2.5's philosophy Requires/Prohibits gating
	StartsAt       time.Time
	RaceDate       time.Time
	TargetTime     *time.Duration
	WeeklyMileageM float64
	PhilosophyID   string  // pre-selected philosophy, if any; B2.5 only runs when empty
	Phase          string
	FatigueFactor  float64 // optional caller-supplied B4 scaling factor, clamped to [0.7, 1.0]; 0 means none supplied
}

// WeekRecord is one week of a plan as produced by B2 (week structure
// selection) and refined by later stages.
type WeekRecord struct {
	Index                 int // 0 = first week of the plan
	StartsAt              time.Time
	Phase                 string
	StructureID           string
	TargetWeeklyDistanceM float64 // B2's progression target; B4 allocates days against this
	Days                  []DayRecord
}

// DayRecord is one day within a WeekRecord.
type DayRecord struct {
	Date       time.Time
	Intent     string
	DistanceM  float64
	DurationS  int
	TemplateID string
}

// Sport is the only sport this domain's corpus and pipeline produce
// sessions for.
const SportRun = "run"

// PlannedSession persistence status values.
const (
	SessionStatusPlanned   = "planned"
	SessionStatusCompleted = "completed"
)

// PlannedSession is a fully materialized, persistable session: the output
// of B6/B7 for a single DayRecord. Exactly one of DistanceM/DurationS is
// the primary metric (distance XOR duration); the other is zero.
type PlannedSession struct {
	ID          int64
	PlanID      int64
	AthleteID   int64
	StartsAt    time.Time
	EndsAt      time.Time
	Sport       string
	SessionType string
	Intent      string
	DistanceM   float64
	DurationS   int
	Text        string
	Steps       []WorkoutStep
	Status      string
	Tags        []string
	Version     int
}

// WorkoutStep is one concrete step in a materialized session's text.
// StepIndex is canonical; StepOrder is accepted on read for forward
// compatibility with older rows but never written.
type WorkoutStep struct {
	StepIndex    int    `json:"step_index"`
	StepOrder    int    `json:"step_order,omitempty"`
	StepType     string `json:"step_type"`
	Targets      string `json:"targets"`
	Instructions string `json:"instructions"`
	Purpose      string `json:"purpose"`
}

// SessionLink records a 1:1 pairing between a PlannedSession and a
// completed Activity.
type SessionLink struct {
	PlannedSessionID int64
	ActivityID       int64
	Method           string
	Confidence       float64
	LinkedAt         time.Time
}

// PlanResult is the output of Pipeline.Run: the full set of weeks and
// materialized sessions ready for C8 to persist.
type PlanResult struct {
	PlanID   int64
	Weeks    []WeekRecord
	Sessions []PlannedSession
}

// DayModification describes a requested change to a single already-planned
// day (the "modify_day" tool).
type DayModification struct {
	Date                 time.Time
	NewIntent            string
	NewDistanceM         float64
	Reason               string
	ExplicitIntentChange bool
}
