package controller

import "github.com/tracepace/coach/internal/model"

// ApplyGating rewrites a raw target classification against dependency
// rules that a model's classification alone cannot know. The only rule
// today: "weekly_plan" requires a prior race plan to already exist for
// the athlete; if none does, the turn is redirected to plan_race_build
// instead, unconditionally. This is a pure function so it is unit-tested
// directly, in isolation from the orchestrator that calls it.
func ApplyGating(classification model.TargetClassification, hasRacePlan bool) model.TargetClassification {
	if classification.TargetAction != model.ActionWeeklyPlan {
		return classification
	}
	if hasRacePlan {
		return classification
	}

	return model.TargetClassification{
		TargetAction:       model.ActionPlanRaceBuild,
		RequiredAttributes: classification.RequiredAttributes,
		OptionalAttributes: classification.OptionalAttributes,
		Confidence:         classification.Confidence,
	}
}
