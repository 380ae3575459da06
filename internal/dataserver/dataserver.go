// Package dataserver is the Data Tool Server (C2): the Gin HTTP service
// behind every data-carrying tool name in internal/toolclient's routing
// table. It owns nothing itself — every operation delegates to
// internal/store, internal/calendar, internal/convstore, internal/pipeline,
// or internal/activity — and maps their errors onto the closed error-code
// taxonomy before replying.
package dataserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/tracepace/coach/internal/activity"
	"github.com/tracepace/coach/internal/calendar"
	"github.com/tracepace/coach/internal/convstore"
	"github.com/tracepace/coach/internal/model"
	"github.com/tracepace/coach/internal/pipeline"
	"github.com/tracepace/coach/internal/slot"
	"github.com/tracepace/coach/internal/store"
)

// Server wires the Data Tool Server's dependencies and dispatches by tool
// name onto the closed set of typed handlers below.
type Server struct {
	store      *store.Store
	calendar   *calendar.Calendar
	convstore  *convstore.Store
	pipeline   *pipeline.Pipeline
	activities *activity.Registry
}

func New(st *store.Store, cal *calendar.Calendar, conv *convstore.Store, pipe *pipeline.Pipeline, activities *activity.Registry) *Server {
	return &Server{store: st, calendar: cal, convstore: conv, pipeline: pipe, activities: activities}
}

// dispatch routes a tool call to its handler. Unrecognized tool names are
// a protocol-level error at the client, but the server still reports it
// through the same {code, message} shape for a consistent boundary.
func (s *Server) dispatch(ctx context.Context, tool string, args json.RawMessage) (any, *toolError) {
	switch tool {
	case "load_context":
		return s.loadContext(ctx, args)
	case "save_context":
		return s.saveContext(ctx, args)
	case "save_progress":
		return s.saveProgress(ctx, args)
	case "load_progress":
		return s.loadProgress(ctx, args)
	case "get_recent_activities":
		return s.getRecentActivities(ctx, args)
	case "save_planned_sessions":
		return s.savePlannedSessions(ctx, args)
	case "plan_race_build", "plan_season":
		return s.runPipeline(ctx, args)
	case "add_workout":
		return s.addWorkout(ctx, args)
	case "modify_day":
		return s.modifyDay(ctx, args)
	case "modify_week":
		return s.modifyWeek(ctx, args)
	default:
		return nil, newError(CodeInvalidInput, "unrecognized tool %q", tool)
	}
}

func decode[T any](args json.RawMessage, into *T) *toolError {
	if err := json.Unmarshal(args, into); err != nil {
		return newError(CodeInvalidInput, "decoding arguments: %v", err)
	}
	return nil
}

type contextResult struct {
	Messages    []model.Message `json:"messages"`
	Progress    model.Progress  `json:"progress"`
	HasRacePlan bool            `json:"has_race_plan"`
}

func (s *Server) loadContext(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var req loadContextRequest
	if tErr := decode(args, &req); tErr != nil {
		return nil, tErr
	}
	if req.Limit <= 0 {
		return nil, newError(CodeInvalidLimit, "limit must be positive, got %d", req.Limit)
	}

	if req.AthleteID != 0 {
		if err := s.convstore.EnsureConversation(ctx, req.ConversationID, req.AthleteID); err != nil {
			return nil, newError(CodeDBError, "ensuring conversation: %v", err)
		}
	}

	messages, err := s.convstore.LoadContext(ctx, req.ConversationID, req.Limit)
	if err != nil {
		return nil, newError(CodeDBError, "loading context: %v", err)
	}

	progress, err := s.convstore.LoadProgress(ctx, req.ConversationID)
	if err != nil {
		if createErr := s.convstore.CreateProgress(ctx, req.ConversationID); createErr != nil {
			return nil, newError(CodeDBError, "seeding progress: %v", createErr)
		}
		progress, err = s.convstore.LoadProgress(ctx, req.ConversationID)
		if err != nil {
			return nil, newError(CodeDBError, "loading progress after seed: %v", err)
		}
	}

	// A lookup failure here (e.g. conversation not yet linked to an
	// athlete) degrades to "no known race plan" rather than failing
	// load_context outright — it only feeds the weekly_plan gating rule.
	hasPlan := false
	if athleteID, err := s.store.AthleteIDForConversation(ctx, req.ConversationID); err == nil {
		hasPlan, _ = s.store.HasRacePlan(ctx, athleteID)
	}

	return contextResult{Messages: messages, Progress: progress, HasRacePlan: hasPlan}, nil
}

func (s *Server) saveContext(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var req saveContextRequest
	if tErr := decode(args, &req); tErr != nil {
		return nil, tErr
	}
	if req.AthleteMessage == "" && req.CoachMessage == "" {
		return nil, newError(CodeInvalidMessage, "save_context requires at least one of athlete_message/coach_message")
	}

	err := s.convstore.AppendMessages(ctx, req.ConversationID, convstore.MessagePair{
		Athlete: model.Message{Role: model.RoleAthlete, Author: "athlete", Content: req.AthleteMessage, Timestamp: time.Now()},
		Coach:   model.Message{Role: model.RoleCoach, Author: "coach", Content: req.CoachMessage, Timestamp: time.Now()},
	})
	if err != nil {
		return nil, newError(CodeDBError, "saving context: %v", err)
	}
	return map[string]bool{"ok": true}, nil
}

func (s *Server) saveProgress(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var progress model.Progress
	if tErr := decode(args, &progress); tErr != nil {
		return nil, tErr
	}

	err := s.convstore.SaveProgress(ctx, progress)
	if errors.Is(err, convstore.ErrVersionConflict) {
		return nil, newError(CodeInvalidInput, "version conflict saving progress for conversation %d", progress.ConversationID)
	}
	if err != nil {
		return nil, newError(CodeDBError, "saving progress: %v", err)
	}
	return map[string]bool{"ok": true}, nil
}

func (s *Server) loadProgress(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var req loadProgressRequest
	if tErr := decode(args, &req); tErr != nil {
		return nil, tErr
	}
	progress, err := s.convstore.LoadProgress(ctx, req.ConversationID)
	if err != nil {
		return nil, newError(CodeDBError, "loading progress: %v", err)
	}
	return progress, nil
}

func (s *Server) getRecentActivities(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var req getRecentActivitiesRequest
	if tErr := decode(args, &req); tErr != nil {
		return nil, tErr
	}
	if req.Days <= 0 {
		return nil, newError(CodeInvalidDays, "days must be positive, got %d", req.Days)
	}

	provider := req.Provider
	if provider == "" {
		all := s.activities.All()
		if len(all) == 0 {
			return nil, newError(CodeDBError, "no activity provider registered")
		}
		provider = all[0]
	}
	source, ok := s.activities.Get(provider)
	if !ok {
		return nil, newError(CodeInvalidInput, "unrecognized activity provider %q", provider)
	}

	since := time.Now().AddDate(0, 0, -req.Days)
	activities, err := source.RecentActivities(ctx, req.AthleteID, since)
	if err != nil {
		return nil, newError(CodeDBError, "loading recent activities: %v", err)
	}

	for _, a := range activities {
		day := a.OccurredAt.UTC().Truncate(24 * time.Hour)
		if linkErr := s.calendar.AutoLink(ctx, req.AthleteID, a.ID, day, autoLinkConfidence); linkErr != nil {
			slog.WarnContext(ctx, "dataserver: auto-linking activity to planned session failed", "error", linkErr, "activity_id", a.ID)
		}
	}

	return activities, nil
}

// autoLinkConfidence is the confidence score recorded for a same-day
// date-match auto-link — below what a manual or provider-asserted match
// would carry, so a later higher-confidence link always wins.
const autoLinkConfidence = 0.6

func (s *Server) savePlannedSessions(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var req savePlannedSessionsRequest
	if tErr := decode(args, &req); tErr != nil {
		return nil, tErr
	}
	if len(req.Sessions) == 0 {
		return nil, newError(CodeInvalidSessionData, "save_planned_sessions requires at least one session")
	}

	sessions := make([]model.PlannedSession, 0, len(req.Sessions))
	for _, in := range req.Sessions {
		if in.SessionType == "" || in.StartsAt.IsZero() {
			return nil, newError(CodeInvalidSessionData, "session missing starts_at/session_type")
		}
		sessions = append(sessions, model.PlannedSession{
			AthleteID: req.AthleteID, StartsAt: in.StartsAt,
			SessionType: in.SessionType, Intent: in.Intent, Text: in.Text,
		})
	}

	persisted, err := s.calendar.InsertPlan(ctx, req.PlanID, sessions)
	if err != nil {
		return nil, newError(CodeDBError, "saving planned sessions: %v", err)
	}
	return persisted, nil
}

// planningContextFrom builds a model.PlanningContext out of the athlete
// profile plus whatever known_slots the controller has accumulated,
// reporting MISSING_RACE_INFO / INVALID_RACE_DATE from the planning tool
// family's error taxonomy.
func (s *Server) planningContextFrom(ctx context.Context, athleteID int64, known map[string]model.SlotValue) (model.PlanningContext, *toolError) {
	athlete, err := s.store.GetAthlete(ctx, athleteID)
	if err != nil {
		return model.PlanningContext{}, newError(CodeAthleteNotFound, "athlete %d not found", athleteID)
	}

	raceDateVal, ok := known[slot.RaceDate]
	if !ok {
		return model.PlanningContext{}, newError(CodeMissingRaceInfo, "race_date is required")
	}
	raceDate, ok := raceDateVal.Normalized.(time.Time)
	if !ok {
		return model.PlanningContext{}, newError(CodeInvalidRaceDate, "race_date did not normalize to a date")
	}
	if raceDate.Before(time.Now()) {
		return model.PlanningContext{}, newError(CodeInvalidRaceDate, "race_date %s is in the past", raceDate)
	}

	pc := model.PlanningContext{
		Athlete:  athlete,
		StartsAt: mondayOf(time.Now()),
		RaceDate: raceDate,
	}

	if v, ok := known[slot.RaceDistance]; ok {
		if s, ok := v.Normalized.(string); ok {
			pc.Athlete.RaceType = s
		}
	}
	if v, ok := known[slot.WeeklyMileage]; ok {
		if f, ok := v.Normalized.(float64); ok {
			pc.WeeklyMileageM = f
		}
	}
	if v, ok := known[slot.TargetTime]; ok {
		if d, ok := v.Normalized.(time.Duration); ok {
			pc.TargetTime = &d
		}
	}
	return pc, nil
}

func (s *Server) runPipeline(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var req planningRequest
	if tErr := decode(args, &req); tErr != nil {
		return nil, tErr
	}

	pc, tErr := s.planningContextFrom(ctx, req.AthleteID, req.KnownSlots)
	if tErr != nil {
		return nil, tErr
	}

	result, err := s.pipeline.Run(ctx, pc)
	if err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			return nil, newError(CodeInvalidSessionData, "planning pipeline failed at %s: %v", stageErr.Stage, stageErr.Err)
		}
		return nil, newError(CodeDBError, "planning pipeline: %v", err)
	}
	return result, nil
}

func (s *Server) addWorkout(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var req planningRequest
	if tErr := decode(args, &req); tErr != nil {
		return nil, tErr
	}

	descVal, ok := req.KnownSlots[slot.WorkoutDescription]
	if !ok {
		return nil, newError(CodeInvalidWorkoutDesc, "workout_description is required")
	}
	desc, ok := descVal.Normalized.(string)
	if !ok || desc == "" {
		return nil, newError(CodeInvalidWorkoutDesc, "workout_description did not normalize to text")
	}

	intent := model.IntentEasy
	if v, ok := req.KnownSlots[slot.NewIntent]; ok {
		if s, ok := v.Normalized.(string); ok {
			intent = s
		}
	}

	date := time.Now()
	if v, ok := req.KnownSlots[slot.ModifyDate]; ok {
		if t, ok := v.Normalized.(time.Time); ok {
			date = t
		}
	}

	session := model.PlannedSession{
		AthleteID: req.AthleteID, StartsAt: date,
		SessionType: intent, Intent: intent, Text: desc,
	}
	persisted, err := s.calendar.InsertPlan(ctx, 0, []model.PlannedSession{session})
	if err != nil {
		return nil, newError(CodeDBError, "adding workout: %v", err)
	}
	return persisted[0], nil
}

func (s *Server) modifyDay(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var req planningRequest
	if tErr := decode(args, &req); tErr != nil {
		return nil, tErr
	}

	mod, tErr := modificationFromSlots(req.KnownSlots)
	if tErr != nil {
		return nil, tErr
	}

	updated, err := s.calendar.ModifyDay(ctx, req.AthleteID, mod)
	if err != nil {
		return nil, newError(CodeInvalidSessionData, "modifying day: %v", err)
	}
	return updated, nil
}

func (s *Server) modifyWeek(ctx context.Context, args json.RawMessage) (any, *toolError) {
	var req planningRequest
	if tErr := decode(args, &req); tErr != nil {
		return nil, tErr
	}

	if len(req.Modifications) == 0 {
		if mod, tErr := modificationFromSlots(req.KnownSlots); tErr == nil {
			req.Modifications = []modifyDayArgs{{
				Date: mod.Date, NewIntent: mod.NewIntent, NewDistanceM: mod.NewDistanceM,
				Reason: mod.Reason, ExplicitIntentChange: mod.ExplicitIntentChange,
			}}
		}
	}
	if len(req.Modifications) == 0 {
		return nil, newError(CodeInvalidDateFormat, "modify_week requires at least one modification")
	}

	updated := make([]model.PlannedSession, 0, len(req.Modifications))
	for _, m := range req.Modifications {
		result, err := s.calendar.ModifyDay(ctx, req.AthleteID, model.DayModification{
			Date: m.Date, NewIntent: m.NewIntent, NewDistanceM: m.NewDistanceM,
			Reason: m.Reason, ExplicitIntentChange: m.ExplicitIntentChange,
		})
		if err != nil {
			return nil, newError(CodeInvalidSessionData, "modifying week day %s: %v", m.Date.Format("2006-01-02"), err)
		}
		updated = append(updated, result)
	}
	return updated, nil
}

func modificationFromSlots(known map[string]model.SlotValue) (model.DayModification, *toolError) {
	dateVal, ok := known[slot.ModifyDate]
	if !ok {
		return model.DayModification{}, newError(CodeInvalidDateFormat, "modify_date is required")
	}
	date, ok := dateVal.Normalized.(time.Time)
	if !ok {
		return model.DayModification{}, newError(CodeInvalidDateFormat, "modify_date did not normalize to a date")
	}

	mod := model.DayModification{Date: date}
	if v, ok := known[slot.NewIntent]; ok {
		if s, ok := v.Normalized.(string); ok {
			mod.NewIntent = s
			mod.ExplicitIntentChange = true
		}
	}
	return mod, nil
}

func mondayOf(t time.Time) time.Time {
	t = t.Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
