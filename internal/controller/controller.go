// Package controller is the Execution Controller (C6): the conversational
// state machine that turns one athlete message into one coach response,
// filling slots turn by turn until a target action's required attributes
// are all known, then handing off to a tool call instead of ever
// generating training content itself. The turn cycle is
// load -> build context -> plan -> validate -> execute -> persist, with
// a terminal-validator rule: a failed validator falls back to a fixed
// deterministic question, it never retries against the model.
package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tracepace/coach/common/id"
	"github.com/tracepace/coach/common/logger"
	"github.com/tracepace/coach/internal/completion"
	"github.com/tracepace/coach/internal/extractor"
	"github.com/tracepace/coach/internal/model"
	"github.com/tracepace/coach/internal/slot"
	"github.com/tracepace/coach/internal/toolclient"
	"github.com/tracepace/coach/internal/trainingload"
)

// Controller runs one turn of the conversation state machine.
type Controller struct {
	tools      *toolclient.Client
	extractor  *extractor.Extractor
	completion completion.Client
	validators []Validator
}

// New builds a Controller. validators defaults to DefaultValidators()
// when nil.
func New(tools *toolclient.Client, ext *extractor.Extractor, comp completion.Client, validators []Validator) *Controller {
	if validators == nil {
		validators = DefaultValidators()
	}
	return &Controller{tools: tools, extractor: ext, completion: comp, validators: validators}
}

// Request is one inbound turn.
type Request struct {
	ConversationID int64
	AthleteID      int64
	UserMessage    string
}

// Response is what the controller hands back to whatever transport
// surfaced the athlete's message.
type Response struct {
	Text         string
	TargetAction string
	ToolInvoked  string
	AskedSlot    string
	LoadMetrics  *trainingload.Metrics
}

const (
	loadMetricsLookbackDays = 42
	contextHistoryLimit     = 20
)

// loadTrainingMetrics fetches the athlete's recent activity history and
// folds it into a CTL/ATL/TSB snapshot for display in the turn response.
// It never gates DECIDE: any failure here is logged and swallowed so a
// missing or erroring activity provider never blocks a turn.
func (c *Controller) loadTrainingMetrics(ctx context.Context, athleteID int64) *trainingload.Metrics {
	raw, err := c.tools.Call(ctx, "get_recent_activities", map[string]any{
		"athlete_id": athleteID,
		"days":       loadMetricsLookbackDays,
	})
	if err != nil {
		slog.WarnContext(ctx, "controller: loading recent activities for training load", "error", err)
		return nil
	}
	var activities []model.Activity
	if err := json.Unmarshal(raw, &activities); err != nil {
		slog.WarnContext(ctx, "controller: decoding recent activities", "error", err)
		return nil
	}
	metrics := trainingload.ComputeCTLATLTSB(trainingload.EstimateDailyLoad(activities))
	return &metrics
}

type contextEnvelope struct {
	Messages    []model.Message `json:"messages"`
	Progress    model.Progress  `json:"progress"`
	HasRacePlan bool            `json:"has_race_plan"`
}

type classifyResult struct {
	TargetAction       string   `json:"target_action" jsonschema:"required"`
	RequiredAttributes []string `json:"required_attributes"`
	OptionalAttributes []string `json:"optional_attributes"`
	Confidence         float64  `json:"confidence" jsonschema:"required"`
}

// HandleTurn runs INIT -> LOAD_PROGRESS -> CLASSIFY_TARGET -> EXTRACT ->
// MERGE -> DECIDE -> {ASK_ONE|EXECUTE_TOOL|CHAT} -> PERSIST_PROGRESS ->
// EMIT_RESPONSE for exactly one athlete message.
func (c *Controller) HandleTurn(ctx context.Context, req Request) (*Response, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(req.ConversationID),
		AthleteID:      logger.Ptr(req.AthleteID),
		Component:      "coach.controller.turn",
	})

	// LOAD_PROGRESS
	loaded, err := c.tools.Call(ctx, "load_context", map[string]any{
		"conversation_id": req.ConversationID,
		"athlete_id":      req.AthleteID,
		"limit":           contextHistoryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("controller: load_context: %w", err)
	}
	var envelope contextEnvelope
	if err := json.Unmarshal(loaded, &envelope); err != nil {
		return nil, fmt.Errorf("controller: decoding load_context result: %w", err)
	}
	progress := envelope.Progress
	if progress.KnownSlots == nil {
		progress.KnownSlots = map[string]model.SlotValue{}
	}

	// CLASSIFY_TARGET
	classification, err := c.classifyTarget(ctx, req.UserMessage, progress)
	if err != nil {
		return nil, fmt.Errorf("controller: classify_target: %w", err)
	}
	classification = ApplyGating(classification, envelope.HasRacePlan)
	ctx = logger.WithLogFields(ctx, logger.LogFields{TargetAction: logger.Ptr(classification.TargetAction)})

	// EXTRACT
	extraction, err := c.extractor.Extract(ctx, extractor.ExtractRequest{
		UserMessage:         req.UserMessage,
		AttributesRequested: append(append([]string{}, classification.RequiredAttributes...), classification.OptionalAttributes...),
		KnownSlots:          progress.KnownSlots,
		ConversationSummary: progress.Summary,
		JustPromptedSlot:    progress.PendingSlot,
	})
	if err != nil {
		return nil, fmt.Errorf("controller: extract: %w", err)
	}

	// MERGE
	for name, v := range extraction.Values {
		progress.KnownSlots[name] = v
	}
	for name := range extraction.AmbiguousFields {
		delete(progress.KnownSlots, name)
	}
	progress.TargetAction = classification.TargetAction

	// DECIDE
	missing := missingAttributes(classification.RequiredAttributes, progress.KnownSlots)
	turn := c.decide(classification, progress, missing)

	// Validate, with a single deterministic fallback on failure.
	if err := Validate(c.validators, turn); err != nil {
		slog.WarnContext(ctx, "controller: validator rejected turn, falling back", "error", err)
		turn = fallbackTurn(classification, progress)
	}

	var resp *Response
	switch turn.Decision {
	case DecisionAskOne:
		progress.PendingSlot = turn.AskedSlot
		resp = &Response{Text: turn.ResponseText, TargetAction: classification.TargetAction, AskedSlot: turn.AskedSlot}
	case DecisionExecuteTool:
		progress.PendingSlot = ""
		toolResult, err := c.executeTool(ctx, classification.TargetAction, req.AthleteID, progress)
		if err != nil {
			return nil, fmt.Errorf("controller: execute_tool: %w", err)
		}
		resp = &Response{Text: turn.ResponseText, TargetAction: classification.TargetAction, ToolInvoked: classification.TargetAction}
		_ = toolResult
	default:
		progress.PendingSlot = ""
		resp = &Response{Text: turn.ResponseText, TargetAction: classification.TargetAction}
	}

	resp.LoadMetrics = c.loadTrainingMetrics(ctx, req.AthleteID)

	// PERSIST_PROGRESS
	if _, err := c.tools.Call(ctx, "save_progress", progress); err != nil {
		return nil, fmt.Errorf("controller: save_progress: %w", err)
	}
	if _, err := c.tools.Call(ctx, "save_context", map[string]any{
		"conversation_id": req.ConversationID,
		"athlete_message": req.UserMessage,
		"coach_message":   resp.Text,
		"message_id":      id.New(),
	}); err != nil {
		return nil, fmt.Errorf("controller: save_context: %w", err)
	}

	// EMIT_RESPONSE
	return resp, nil
}

func (c *Controller) classifyTarget(ctx context.Context, userMessage string, progress model.Progress) (model.TargetClassification, error) {
	schema := completion.GenerateSchema[classifyResult]()
	var raw classifyResult
	_, err := c.completion.Complete(ctx, completion.Request{
		SystemPrompt: classifyTargetSystemPrompt(),
		UserPrompt:   userMessage,
		SchemaName:   "target_classification",
		Schema:       schema,
		Temperature:  completion.Temp(0),
	}, &raw)
	if err != nil {
		return model.TargetClassification{}, err
	}
	return model.TargetClassification{
		TargetAction:       raw.TargetAction,
		RequiredAttributes: filterKnownSlotNames(raw.RequiredAttributes),
		OptionalAttributes: filterKnownSlotNames(raw.OptionalAttributes),
		Confidence:         raw.Confidence,
	}, nil
}

// filterKnownSlotNames drops any attribute name the model invented that
// isn't in the closed slot set — classification feeds straight into
// EXTRACT and ASK_ONE, and an unrecognized name there would otherwise
// surface as a silently-ignored extraction request or an unanswerable
// question.
func filterKnownSlotNames(names []string) []string {
	if len(names) == 0 {
		return names
	}
	known := make(map[string]bool, len(slot.Names()))
	for _, n := range slot.Names() {
		known[n] = true
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if known[n] {
			out = append(out, n)
		}
	}
	return out
}

func classifyTargetSystemPrompt() string {
	return "Classify the athlete's message into exactly one target_action: " +
		"plan_race_build, plan_season, add_workout, modify_day, modify_week, weekly_plan, or chat. " +
		"Report only the action and its required/optional attribute names — never extract their values."
}

func (c *Controller) decide(classification model.TargetClassification, progress model.Progress, missing []string) Turn {
	t := Turn{
		TargetAction:       classification.TargetAction,
		RequiredAttributes: classification.RequiredAttributes,
		KnownSlots:         progress.KnownSlots,
	}

	if classification.TargetAction == model.ActionChat {
		t.Decision = DecisionChat
		t.ResponseText = "Got it — let me know whenever you're ready to talk training."
		return t
	}

	if len(missing) == 0 {
		t.Decision = DecisionExecuteTool
		t.ResponseText = fmt.Sprintf("Building your %s now.", humanAction(classification.TargetAction))
		return t
	}

	askSlot := missing[0]
	def, ok := slot.Get(askSlot)
	prompt := fmt.Sprintf("What's your %s?", askSlot)
	if ok {
		prompt = def.Prompt
	}
	t.Decision = DecisionAskOne
	t.AskedSlot = askSlot
	t.ResponseText = prompt
	return t
}

func fallbackTurn(classification model.TargetClassification, progress model.Progress) Turn {
	missing := missingAttributes(classification.RequiredAttributes, progress.KnownSlots)
	if len(missing) == 0 {
		return Turn{
			Decision:     DecisionExecuteTool,
			TargetAction: classification.TargetAction,
			ResponseText: "Building your plan now.",
		}
	}
	def, ok := slot.Get(missing[0])
	prompt := fmt.Sprintf("What's your %s?", missing[0])
	if ok {
		prompt = def.Prompt
	}
	return Turn{
		Decision:     DecisionAskOne,
		TargetAction: classification.TargetAction,
		AskedSlot:    missing[0],
		ResponseText: prompt,
	}
}

func (c *Controller) executeTool(ctx context.Context, targetAction string, athleteID int64, progress model.Progress) (json.RawMessage, error) {
	return c.tools.Call(ctx, targetAction, map[string]any{
		"athlete_id":  athleteID,
		"known_slots": progress.KnownSlots,
	})
}

func missingAttributes(required []string, known map[string]model.SlotValue) []string {
	var missing []string
	for _, attr := range required {
		if _, ok := known[attr]; !ok {
			missing = append(missing, attr)
		}
	}
	return missing
}

func humanAction(action string) string {
	switch action {
	case model.ActionPlanRaceBuild:
		return "race build"
	case model.ActionPlanSeason:
		return "season plan"
	case model.ActionAddWorkout:
		return "workout"
	case model.ActionModifyDay:
		return "day update"
	case model.ActionModifyWeek:
		return "week update"
	default:
		return "plan"
	}
}
