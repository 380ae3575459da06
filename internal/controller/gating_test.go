package controller_test

import (
	"testing"

	"github.com/tracepace/coach/internal/controller"
	"github.com/tracepace/coach/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestApplyGating_RewritesWeeklyPlanWithoutPriorRacePlan(t *testing.T) {
	in := model.TargetClassification{
		TargetAction:       model.ActionWeeklyPlan,
		RequiredAttributes: []string{"race_distance"},
		Confidence:         0.9,
	}

	out := controller.ApplyGating(in, false)

	assert.Equal(t, model.ActionPlanRaceBuild, out.TargetAction)
	assert.Equal(t, in.RequiredAttributes, out.RequiredAttributes)
}

func TestApplyGating_LeavesWeeklyPlanWhenRacePlanExists(t *testing.T) {
	in := model.TargetClassification{TargetAction: model.ActionWeeklyPlan}

	out := controller.ApplyGating(in, true)

	assert.Equal(t, model.ActionWeeklyPlan, out.TargetAction)
}

func TestApplyGating_LeavesOtherActionsUntouched(t *testing.T) {
	in := model.TargetClassification{TargetAction: model.ActionChat}

	out := controller.ApplyGating(in, false)

	assert.Equal(t, model.ActionChat, out.TargetAction)
}
