package dataserver

import (
	"time"

	"github.com/tracepace/coach/internal/model"
)

// The closed set of typed request structs the handler decodes arguments
// into per tool name (§9 redesign flag: no dynamic duck-typed arguments).

type loadContextRequest struct {
	ConversationID int64 `json:"conversation_id"`
	AthleteID      int64 `json:"athlete_id"`
	Limit          int   `json:"limit"`
}

type saveContextRequest struct {
	ConversationID int64  `json:"conversation_id"`
	AthleteMessage string `json:"athlete_message"`
	CoachMessage   string `json:"coach_message"`
	MessageID      int64  `json:"message_id"`
}

type loadProgressRequest struct {
	ConversationID int64 `json:"conversation_id"`
}

type getRecentActivitiesRequest struct {
	AthleteID int64  `json:"athlete_id"`
	Days      int    `json:"days"`
	Provider  string `json:"provider"`
}

type plannedSessionInput struct {
	StartsAt    time.Time `json:"starts_at"`
	SessionType string    `json:"session_type"`
	Intent      string    `json:"intent"`
	Text        string    `json:"text"`
}

type savePlannedSessionsRequest struct {
	AthleteID int64                 `json:"athlete_id"`
	PlanID    int64                 `json:"plan_id"`
	PlanType  string                `json:"plan_type"`
	Sessions  []plannedSessionInput `json:"sessions"`
}

// planningRequest is the shape every target_action tool call arrives in:
// the controller's executeTool always sends {athlete_id, known_slots},
// letting CLASSIFY_TARGET/EXTRACT decide which slots matter for a given
// action instead of the tool boundary caring.
type planningRequest struct {
	AthleteID  int64                         `json:"athlete_id"`
	KnownSlots map[string]model.SlotValue    `json:"known_slots"`
	Modifications []modifyDayArgs            `json:"modifications"` // modify_week only
}

type modifyDayArgs struct {
	Date                 time.Time `json:"date"`
	NewIntent            string    `json:"new_intent"`
	NewDistanceM         float64   `json:"new_distance_m"`
	Reason               string    `json:"reason"`
	ExplicitIntentChange bool      `json:"explicit_intent_change"`
}
