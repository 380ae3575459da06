package model

import "time"

// Athlete is the coached user a conversation, calendar, and activity
// history all belong to.
type Athlete struct {
	ID          int64
	DisplayName string
	RaceType    string // e.g. "marathon", "half_marathon", "50k"
	Audience    string // e.g. "novice", "intermediate", "advanced"
	CreatedAt   time.Time
}

// Activity is a single completed training session ingested from an
// external provider. internal/activity owns the Source interface that
// produces these; this type is the shared shape the rest of the domain
// reads.
type Activity struct {
	ID         int64     `json:"id"`
	AthleteID  int64     `json:"athlete_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"type"` // run, ride, swim, strength, other
	DurationS  int       `json:"duration_s"`
	DistanceM  float64   `json:"distance_m"`
	Source     string    `json:"source"`
}

// DailyLoad is the input to internal/trainingload's CTL/ATL/TSB
// computation: one training-stress value per day.
type DailyLoad struct {
	Date time.Time `json:"date"`
	TSS  float64   `json:"tss"`
}
